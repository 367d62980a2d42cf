package er

import "fmt"

type Code int

const (
	BadRequestCode      Code = 400
	UnauthenticatedCode Code = 401
	UnauthorizedCode    Code = 403
	NotFoundCode        Code = 404
	ConflictCode        Code = 409
	TooManyRequestCode  Code = 429
	InternalErrorCode   Code = 500
	GatewayErrorCode    Code = 502
)

var ErrStrMap = map[Code]string{
	BadRequestCode:      "bad request",
	UnauthenticatedCode: "unauthenticated",
	UnauthorizedCode:    "unauthorized",
	NotFoundCode:        "not found",
	ConflictCode:        "conflict",
	TooManyRequestCode:  "too many requests",
	InternalErrorCode:   "internal server error",
	GatewayErrorCode:    "payment gateway error",
}

// ApiError 帶有錯誤碼的錯誤, handler層依Code決定http status
type ApiError struct {
	Code Code
	Msg  string
}

func (e *ApiError) Error() string {
	return fmt.Sprintf("[%d] %s", e.Code, e.Msg)
}

func New(code Code, msg string) *ApiError {
	return &ApiError{
		Code: code,
		Msg:  msg,
	}
}

func Newf(code Code, format string, args ...any) *ApiError {
	return &ApiError{
		Code: code,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// CodeOf 取出錯誤碼, 非ApiError一律視為InternalErrorCode
func CodeOf(err error) Code {
	if apiErr, ok := err.(*ApiError); ok {
		return apiErr.Code
	}
	return InternalErrorCode
}
