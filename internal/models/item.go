package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is a product in the catalog.
//
// Price uses exact decimal arithmetic. Serialization to the wire format
// (string with two decimal places) happens in the handlers.
type Item struct {
	ID          uint            `json:"item_id" gorm:"primaryKey"`
	Name        string          `json:"item_name" gorm:"type:varchar(200)" validate:"required,min=1,max=200"`
	Description string          `json:"item_description" gorm:"type:text"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2)"`
	CategoryID  uint            `json:"item_category" validate:"required"`
	Picture     string          `json:"item_picture" gorm:"type:varchar(255)"`
	Slug        string          `json:"slug" gorm:"uniqueIndex;type:varchar(220)"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
