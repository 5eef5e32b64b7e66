package repositories

import (
	"fmt"

	"sbf/internal/models"

	"gorm.io/gorm"
)

// GORMCategoryRepository is a GORM implementation of CategoryRepository.
type GORMCategoryRepository struct {
	db *gorm.DB
}

// NewGORMCategoryRepository creates a new instance of GORMCategoryRepository.
func NewGORMCategoryRepository(db *gorm.DB) *GORMCategoryRepository {
	return &GORMCategoryRepository{db: db}
}

// GetAll retrieves all categories ordered by name.
func (r *GORMCategoryRepository) GetAll() ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.Order("name").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to get all categories: %w", err)
	}
	return categories, nil
}

// GetByID retrieves a single category by its ID.
func (r *GORMCategoryRepository) GetByID(id uint) (*models.Category, error) {
	var category models.Category
	if err := r.db.First(&category, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &category, nil
}

// Create inserts a new category. ErrDuplicate on a name or slug collision.
func (r *GORMCategoryRepository) Create(category *models.Category) error {
	if err := r.db.Create(category).Error; err != nil {
		if terr := translate(err); terr == ErrDuplicate {
			return terr
		}
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// Delete removes a category and cascades to its items and any cart rows
// referencing them, in one transaction.
func (r *GORMCategoryRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var itemIDs []uint
		if err := tx.Model(&models.Item{}).Where("category_id = ?", id).Pluck("id", &itemIDs).Error; err != nil {
			return fmt.Errorf("failed to list items for category %d: %w", id, err)
		}
		if len(itemIDs) > 0 {
			if err := tx.Delete(&models.CartItem{}, "item_id IN ?", itemIDs).Error; err != nil {
				return fmt.Errorf("failed to delete cart rows for category %d: %w", id, err)
			}
			if err := tx.Delete(&models.Item{}, "category_id = ?", id).Error; err != nil {
				return fmt.Errorf("failed to delete items for category %d: %w", id, err)
			}
		}
		res := tx.Delete(&models.Category{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete category: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// GORMItemRepository is a GORM implementation of ItemRepository.
type GORMItemRepository struct {
	db *gorm.DB
}

// NewGORMItemRepository creates a new instance of GORMItemRepository.
func NewGORMItemRepository(db *gorm.DB) *GORMItemRepository {
	return &GORMItemRepository{db: db}
}

// GetAll retrieves all items ordered by name, matching the catalog listing.
func (r *GORMItemRepository) GetAll() ([]models.Item, error) {
	var items []models.Item
	if err := r.db.Order("name").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to get all items: %w", err)
	}
	return items, nil
}

// GetByID retrieves a single item by its ID.
func (r *GORMItemRepository) GetByID(id uint) (*models.Item, error) {
	var item models.Item
	if err := r.db.First(&item, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

// GetBySlug retrieves a single item by its slug.
func (r *GORMItemRepository) GetBySlug(slug string) (*models.Item, error) {
	var item models.Item
	if err := r.db.First(&item, "slug = ?", slug).Error; err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

// Create inserts a new item. ErrDuplicate on a slug collision; the unique
// index is the authority when two writers race on the same name.
func (r *GORMItemRepository) Create(item *models.Item) error {
	if err := r.db.Create(item).Error; err != nil {
		if terr := translate(err); terr == ErrDuplicate {
			return terr
		}
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}

// Update saves all fields of an existing item.
func (r *GORMItemRepository) Update(item *models.Item) error {
	res := r.db.Save(item)
	if res.Error != nil {
		if terr := translate(res.Error); terr == ErrDuplicate {
			return terr
		}
		return fmt.Errorf("failed to update item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an item and any cart rows referencing it.
func (r *GORMItemRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.CartItem{}, "item_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete cart rows for item %d: %w", id, err)
		}
		res := tx.Delete(&models.Item{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete item: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// SlugExists reports whether another row already uses the slug.
func (r *GORMItemRepository) SlugExists(slug string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.Model(&models.Item{}).Where("slug = ?", slug)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check slug %q: %w", slug, err)
	}
	return count > 0, nil
}
