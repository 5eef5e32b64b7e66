package services

import (
	"errors"
	"fmt"

	"sbf/internal/models"
	"sbf/internal/repositories"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
)

// slugAttempts bounds the create-retry loop when concurrent writers collide
// on the same derived slug. The unique index stays the authority.
const slugAttempts = 3

// CatalogService handles business logic for categories and items.
type CatalogService struct {
	categoryRepo repositories.CategoryRepository
	itemRepo     repositories.ItemRepository
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(categoryRepo repositories.CategoryRepository, itemRepo repositories.ItemRepository) *CatalogService {
	return &CatalogService{
		categoryRepo: categoryRepo,
		itemRepo:     itemRepo,
	}
}

// GetAllCategories retrieves all categories.
func (s *CatalogService) GetAllCategories() ([]models.Category, error) {
	return s.categoryRepo.GetAll()
}

// CreateCategory creates a category, deriving a slug from the name when none
// is given. Name collisions surface as repositories.ErrDuplicate.
func (s *CatalogService) CreateCategory(category *models.Category) error {
	explicitSlug := category.Slug != ""
	base := category.Slug
	if !explicitSlug {
		base = slug.Make(category.Name)
		category.Slug = base
	}

	for attempt := 0; ; attempt++ {
		err := s.categoryRepo.Create(category)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repositories.ErrDuplicate) || explicitSlug || attempt >= slugAttempts {
			return err
		}
		category.Slug = fmt.Sprintf("%s-%d", base, attempt+1)
	}
}

// DeleteCategory deletes a category, cascading to its items.
func (s *CatalogService) DeleteCategory(id uint) error {
	return s.categoryRepo.Delete(id)
}

// GetAllItems retrieves all items.
func (s *CatalogService) GetAllItems() ([]models.Item, error) {
	return s.itemRepo.GetAll()
}

// GetItemByID retrieves a single item by its ID.
func (s *CatalogService) GetItemByID(id uint) (*models.Item, error) {
	return s.itemRepo.GetByID(id)
}

// GetItemBySlug retrieves a single item by its slug.
func (s *CatalogService) GetItemBySlug(itemSlug string) (*models.Item, error) {
	return s.itemRepo.GetBySlug(itemSlug)
}

// CreateItem validates the price, checks the owning category and assigns a
// unique slug before inserting. When two writers race on the same name the
// unique index rejects the loser and the slug is re-derived.
func (s *CatalogService) CreateItem(item *models.Item) error {
	if item.Price.LessThan(decimal.Zero) {
		return ErrNegativePrice
	}
	if _, err := s.categoryRepo.GetByID(item.CategoryID); err != nil {
		return err
	}

	explicitSlug := item.Slug != ""
	for attempt := 0; ; attempt++ {
		if !explicitSlug {
			if err := s.assignSlug(item); err != nil {
				return err
			}
		}
		err := s.itemRepo.Create(item)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repositories.ErrDuplicate) || explicitSlug || attempt >= slugAttempts {
			return err
		}
		item.Slug = ""
	}
}

// UpdateItem saves an already-merged item after re-validating the price.
func (s *CatalogService) UpdateItem(item *models.Item) error {
	if item.Price.LessThan(decimal.Zero) {
		return ErrNegativePrice
	}
	if item.Slug == "" {
		if err := s.assignSlug(item); err != nil {
			return err
		}
	}
	return s.itemRepo.Update(item)
}

// DeleteItem deletes an item and the cart rows referencing it.
func (s *CatalogService) DeleteItem(id uint) error {
	return s.itemRepo.Delete(id)
}

// assignSlug derives the base slug from the item name and appends -1, -2, …
// until no other row uses it.
func (s *CatalogService) assignSlug(item *models.Item) error {
	base := slug.Make(item.Name)
	candidate := base
	for i := 1; ; i++ {
		exists, err := s.itemRepo.SlugExists(candidate, item.ID)
		if err != nil {
			return err
		}
		if !exists {
			break
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	item.Slug = candidate
	return nil
}
