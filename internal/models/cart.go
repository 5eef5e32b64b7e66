package models

// Cart holds a user's current selection. Exactly one per user, created
// lazily on first access.
type Cart struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	UserID string `json:"user" gorm:"uniqueIndex;type:varchar(36)"`

	Items []CartItem `json:"cart_items" gorm:"constraint:OnDelete:CASCADE"`
}

// CartItem is the (cart, item) join row. The composite unique index keeps
// at most one row per distinct item in a cart; repeat adds bump Quantity.
type CartItem struct {
	ID       uint `json:"id" gorm:"primaryKey"`
	CartID   uint `json:"-" gorm:"uniqueIndex:idx_cart_item"`
	ItemID   uint `json:"-" gorm:"uniqueIndex:idx_cart_item"`
	Item     Item `json:"item" gorm:"constraint:OnDelete:CASCADE"`
	Quantity int  `json:"quantity" validate:"gte=1"`
}
