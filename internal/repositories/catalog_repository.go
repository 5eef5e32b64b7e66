package repositories

import "sbf/internal/models"

// CategoryRepository defines the interface for category data access.
type CategoryRepository interface {
	GetAll() ([]models.Category, error)
	GetByID(id uint) (*models.Category, error)
	Create(category *models.Category) error
	Delete(id uint) error
}

// ItemRepository defines the interface for item data access.
type ItemRepository interface {
	GetAll() ([]models.Item, error)
	GetByID(id uint) (*models.Item, error)
	GetBySlug(slug string) (*models.Item, error)
	Create(item *models.Item) error
	Update(item *models.Item) error
	Delete(id uint) error
	SlugExists(slug string, excludeID uint) (bool, error)
}
