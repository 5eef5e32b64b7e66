package repositories

import (
	"fmt"

	"sbf/internal/models"

	"gorm.io/gorm"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

// GetOrCreateByUser returns the user's cart, creating it on first access.
// The unique index on user_id guards the create; a concurrent loser simply
// re-reads the row the winner inserted.
func (r *GORMCartRepository) GetOrCreateByUser(userID string) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.First(&cart, "user_id = ?", userID).Error
	if err == nil {
		return &cart, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to get cart for user %s: %w", userID, err)
	}

	cart = models.Cart{UserID: userID}
	if err := r.db.Create(&cart).Error; err != nil {
		if translate(err) == ErrDuplicate {
			if err := r.db.First(&cart, "user_id = ?", userID).Error; err != nil {
				return nil, fmt.Errorf("failed to re-read cart for user %s: %w", userID, err)
			}
			return &cart, nil
		}
		return nil, fmt.Errorf("failed to create cart for user %s: %w", userID, err)
	}
	return &cart, nil
}

// GetItems returns the cart's rows with their items preloaded, in insertion
// order.
func (r *GORMCartRepository) GetItems(cartID uint) ([]models.CartItem, error) {
	var rows []models.CartItem
	if err := r.db.Preload("Item").Where("cart_id = ?", cartID).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get cart items: %w", err)
	}
	return rows, nil
}

// AddItem increments the quantity of an existing (cart, item) row with an
// atomic UPDATE, or inserts a new row with the requested quantity. If the
// insert loses a race against another add, the increment is retried.
func (r *GORMCartRepository) AddItem(cartID, itemID uint, quantity int) error {
	res := r.db.Model(&models.CartItem{}).
		Where("cart_id = ? AND item_id = ?", cartID, itemID).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", quantity))
	if res.Error != nil {
		return fmt.Errorf("failed to increment cart item: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	row := models.CartItem{CartID: cartID, ItemID: itemID, Quantity: quantity}
	if err := r.db.Create(&row).Error; err != nil {
		if translate(err) != ErrDuplicate {
			return fmt.Errorf("failed to create cart item: %w", err)
		}
		// Lost the insert race; the row exists now, so increment it.
		res = r.db.Model(&models.CartItem{}).
			Where("cart_id = ? AND item_id = ?", cartID, itemID).
			UpdateColumn("quantity", gorm.Expr("quantity + ?", quantity))
		if res.Error != nil {
			return fmt.Errorf("failed to increment cart item after conflict: %w", res.Error)
		}
	}
	return nil
}

// RemoveItem deletes the (cart, item) row. ErrNotFound when no such row
// exists, so removing twice fails the second time.
func (r *GORMCartRepository) RemoveItem(cartID, itemID uint) error {
	res := r.db.Delete(&models.CartItem{}, "cart_id = ? AND item_id = ?", cartID, itemID)
	if res.Error != nil {
		return fmt.Errorf("failed to remove cart item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Clear deletes every row of the cart. Idempotent: clearing an empty cart
// succeeds with no change.
func (r *GORMCartRepository) Clear(cartID uint) error {
	if err := r.db.Delete(&models.CartItem{}, "cart_id = ?", cartID).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// Reconcile makes the cart's rows exactly equal the desired (item, quantity)
// set: quantities of items in both sets are updated, items only in the
// desired set are inserted, items only in the current set are deleted. The
// whole diff runs in one transaction.
func (r *GORMCartRepository) Reconcile(cartID uint, desired map[uint]int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var current []models.CartItem
		if err := tx.Where("cart_id = ?", cartID).Find(&current).Error; err != nil {
			return fmt.Errorf("failed to load cart items: %w", err)
		}

		existing := make(map[uint]models.CartItem, len(current))
		for _, row := range current {
			existing[row.ItemID] = row
		}

		for itemID, qty := range desired {
			row, ok := existing[itemID]
			if !ok {
				row = models.CartItem{CartID: cartID, ItemID: itemID, Quantity: qty}
				if err := tx.Create(&row).Error; err != nil {
					return fmt.Errorf("failed to create cart item %d: %w", itemID, err)
				}
				continue
			}
			if row.Quantity != qty {
				if err := tx.Model(&models.CartItem{}).Where("id = ?", row.ID).
					UpdateColumn("quantity", qty).Error; err != nil {
					return fmt.Errorf("failed to update cart item %d: %w", itemID, err)
				}
			}
		}

		for itemID, row := range existing {
			if _, keep := desired[itemID]; !keep {
				if err := tx.Delete(&models.CartItem{}, "id = ?", row.ID).Error; err != nil {
					return fmt.Errorf("failed to delete cart item %d: %w", itemID, err)
				}
			}
		}
		return nil
	})
}
