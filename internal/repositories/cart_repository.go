package repositories

import "sbf/internal/models"

// CartRepository defines the interface for cart data access.
//
// AddItem must use an atomic storage-level increment so concurrent adds for
// the same (cart, item) pair are both reflected. Reconcile must apply its
// whole diff in one transaction.
type CartRepository interface {
	GetOrCreateByUser(userID string) (*models.Cart, error)
	GetItems(cartID uint) ([]models.CartItem, error)
	AddItem(cartID, itemID uint, quantity int) error
	RemoveItem(cartID, itemID uint) error
	Clear(cartID uint) error
	Reconcile(cartID uint, desired map[uint]int) error
}
