package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/nodeforge1/nodeforge-website/internal/model"
)

var (
	ErrInvalidBasePrice = errors.New("invalid base price")
	ErrOptionNotFound   = errors.New("option not found")
	ErrInvalidOption    = errors.New("invalid option price")
	ErrInvalidQuantity  = errors.New("quantity must be at least 1")
)

// Calculate 計算選配後的單價
// 未選擇的維度加價為0, 預設值由caller事先補上, 這層不做任何default substitution
// total = basePrice + Σ(各維度選中選項的加價)
func Calculate(product *model.Product, config model.Configuration) (decimal.Decimal, error) {
	if product.BasePrice.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%w: %s", ErrInvalidBasePrice, product.BasePrice)
	}

	total := product.BasePrice

	if config.Software != "" {
		surcharge, err := findSoftware(product.Options.Software, config.Software)
		if err != nil {
			return decimal.Decimal{}, err
		}
		total = total.Add(surcharge)
	}
	if config.Ram != "" {
		surcharge, err := findRam(product.Options.Ram, config.Ram)
		if err != nil {
			return decimal.Decimal{}, err
		}
		total = total.Add(surcharge)
	}
	if config.Storage != "" {
		surcharge, err := findStorage(product.Options.Storage, config.Storage)
		if err != nil {
			return decimal.Decimal{}, err
		}
		total = total.Add(surcharge)
	}
	if config.Processor != "" {
		surcharge, err := findProcessor(product.Options.Processor, config.Processor)
		if err != nil {
			return decimal.Decimal{}, err
		}
		total = total.Add(surcharge)
	}

	return total, nil
}

// CalculateTotal 計算選配後乘上數量的總價, 數量只在最後的彙總步驟套用
func CalculateTotal(product *model.Product, config model.Configuration, quantity int) (decimal.Decimal, error) {
	if quantity < 1 {
		return decimal.Decimal{}, fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}

	unit, err := Calculate(product, config)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return unit.Mul(decimal.NewFromInt(int64(quantity))), nil
}

func findSoftware(opts []model.SoftwareOption, name string) (decimal.Decimal, error) {
	for _, opt := range opts {
		if opt.Name == name {
			return validSurcharge("software", name, opt.Price)
		}
	}
	return decimal.Decimal{}, fmt.Errorf("%w: software %q", ErrOptionNotFound, name)
}

func findRam(opts []model.RamOption, size string) (decimal.Decimal, error) {
	for _, opt := range opts {
		if opt.Size == size {
			return validSurcharge("ram", size, opt.Price)
		}
	}
	return decimal.Decimal{}, fmt.Errorf("%w: ram %q", ErrOptionNotFound, size)
}

func findStorage(opts []model.StorageOption, typ string) (decimal.Decimal, error) {
	for _, opt := range opts {
		if opt.Type == typ {
			return validSurcharge("storage", typ, opt.Price)
		}
	}
	return decimal.Decimal{}, fmt.Errorf("%w: storage %q", ErrOptionNotFound, typ)
}

func findProcessor(opts []model.ProcessorOption, m string) (decimal.Decimal, error) {
	for _, opt := range opts {
		if opt.Model == m {
			return validSurcharge("processor", m, opt.Price)
		}
	}
	return decimal.Decimal{}, fmt.Errorf("%w: processor %q", ErrOptionNotFound, m)
}

// 加價必須是非負數
func validSurcharge(dimension, label string, price decimal.Decimal) (decimal.Decimal, error) {
	if price.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%w: %s %q", ErrInvalidOption, dimension, label)
	}
	return price, nil
}
