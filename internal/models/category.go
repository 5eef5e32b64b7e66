package models

// Category groups items. Deleting a category deletes its items.
type Category struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;type:varchar(50)" validate:"required,min=1,max=50"`
	Slug string `json:"slug" gorm:"uniqueIndex;type:varchar(60)"`

	Items []Item `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}
