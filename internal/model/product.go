package model

import (
	"github.com/shopspring/decimal"
)

// SoftwareOption 節點軟體選項
type SoftwareOption struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// RamOption 記憶體選項
type RamOption struct {
	Size  string          `json:"size"`
	Price decimal.Decimal `json:"price"`
}

// StorageOption 儲存空間選項
type StorageOption struct {
	Type  string          `json:"type"`
	Price decimal.Decimal `json:"price"`
}

// ProcessorOption 處理器選項
type ProcessorOption struct {
	Model string          `json:"model"`
	Price decimal.Decimal `json:"price"`
}

// ProductOptions 各維度可加購的選項清單, 每個price都是對basePrice的加價
type ProductOptions struct {
	Software  []SoftwareOption  `json:"software"`
	Ram       []RamOption       `json:"ram"`
	Storage   []StorageOption   `json:"storage"`
	Processor []ProcessorOption `json:"processor"`
}

// DefaultSpecs 預設規格, 每個值必須對應options內某個選項的label
type DefaultSpecs struct {
	Processor string `json:"processor"`
	Ram       string `json:"ram"`
	Storage   string `json:"storage"`
}

type ProductSpecs struct {
	Software     string       `json:"software"`
	DefaultSpecs DefaultSpecs `json:"defaultSpecs"`
}

type Product struct {
	ID          uint            `gorm:"primaryKey" json:"-"`
	ProductID   string          `gorm:"not null;type:varchar(100);unique" json:"id"`
	Name        string          `gorm:"not null;type:varchar(100)" json:"name"`
	Description string          `gorm:"not null;type:text" json:"description"`
	BasePrice   decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"basePrice"`
	Image       string          `gorm:"not null;type:text" json:"image"`
	Specs       ProductSpecs    `gorm:"not null;type:jsonb;serializer:json" json:"specs"`
	Options     ProductOptions  `gorm:"not null;type:jsonb;serializer:json" json:"options"`
	BaseModel
}

// Configuration 單一商品的規格選擇, 空字串代表該維度未選擇
type Configuration struct {
	Software  string `json:"software,omitempty"`
	Ram       string `json:"ram,omitempty"`
	Storage   string `json:"storage,omitempty"`
	Processor string `json:"processor,omitempty"`
}
