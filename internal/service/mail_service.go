package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/rs/zerolog/log"

	"github.com/nodeforge1/nodeforge-website/internal/event"
)

const orderConfirmationTmpl = `<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Thank you for your order, {{.FirstName}}!</h2>
  <p>We've received your payment and your order is now being processed.</p>
  <table style="border-collapse: collapse;">
    <tr><td style="padding: 4px 12px 4px 0;"><b>Order number</b></td><td>{{.OrderRef}}</td></tr>
    <tr><td style="padding: 4px 12px 4px 0;"><b>Total paid</b></td><td>${{.TotalPrice}}</td></tr>
  </table>
  <p>You'll get another email with tracking details once your order ships.</p>
</body>
</html>`

// mailSender 寄信介面, 測試時替換
type mailSender interface {
	Send(e *email.Email) error
}

type smtpSender struct {
	addr string
	auth smtp.Auth
}

func (s *smtpSender) Send(e *email.Email) error {
	return e.Send(s.addr, s.auth)
}

// MailService 付款完成後寄訂單確認信
// 掛在kafka consumer後面, 回傳error時事件會被重讀
type MailService struct {
	sender   mailSender
	from     string
	template *template.Template
}

func NewMailService(smtpHost, smtpPort, account, authKey, senderName string) *MailService {
	return &MailService{
		sender: &smtpSender{
			addr: fmt.Sprintf("%s:%s", smtpHost, smtpPort),
			auth: smtp.PlainAuth("", account, authKey, smtpHost),
		},
		from:     fmt.Sprintf("%s <%s>", senderName, account),
		template: template.Must(template.New("order_confirmation").Parse(orderConfirmationTmpl)),
	}
}

// newMailServiceWithSender for testing
func newMailServiceWithSender(sender mailSender, from string) *MailService {
	return &MailService{
		sender:   sender,
		from:     from,
		template: template.Must(template.New("order_confirmation").Parse(orderConfirmationTmpl)),
	}
}

// HandleOrderPaid 寄出訂單確認信
func (s *MailService) HandleOrderPaid(ctx context.Context, evt event.OrderPaidEvent) error {
	var body bytes.Buffer
	if err := s.template.Execute(&body, map[string]string{
		"FirstName":  evt.FirstName,
		"OrderRef":   evt.OrderRef,
		"TotalPrice": evt.TotalPrice.StringFixed(2),
	}); err != nil {
		return fmt.Errorf("failed to render confirmation email: %w", err)
	}

	e := email.NewEmail()
	e.From = s.from
	e.To = []string{evt.Email}
	e.Subject = fmt.Sprintf("Order confirmation %s", evt.OrderRef)
	e.HTML = body.Bytes()

	if err := s.sender.Send(e); err != nil {
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}

	log.Info().Str("order_ref", evt.OrderRef).Str("email", evt.Email).
		Msg("order confirmation email sent")
	return nil
}
