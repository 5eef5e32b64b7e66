package services

import (
	"encoding/json"
	"errors"
	"log"

	"sbf/internal/models"
	"sbf/internal/repositories"
	"sbf/pkg/rabbitmq"

	"github.com/shopspring/decimal"
)

// CartService handles business logic for per-user shopping carts.
type CartService struct {
	cartRepo repositories.CartRepository
	itemRepo repositories.ItemRepository
	mqClient *rabbitmq.Client
}

// NewCartService creates a new CartService. mqClient may be nil; cart events
// are then skipped.
func NewCartService(cartRepo repositories.CartRepository, itemRepo repositories.ItemRepository, mqClient *rabbitmq.Client) *CartService {
	return &CartService{
		cartRepo: cartRepo,
		itemRepo: itemRepo,
		mqClient: mqClient,
	}
}

// DesiredItem is one entry of a full-cart reconciliation request.
type DesiredItem struct {
	ItemID   uint
	Quantity int
}

// CartView is a cart with its rows and the total at current item prices.
type CartView struct {
	Cart  *models.Cart
	Items []models.CartItem
	Total decimal.Decimal
}

// GetCart returns the user's cart, creating it lazily on first access.
func (s *CartService) GetCart(userID string) (*CartView, error) {
	cart, err := s.cartRepo.GetOrCreateByUser(userID)
	if err != nil {
		return nil, err
	}
	return s.view(cart)
}

// AddItem adds quantity of the item with the given slug to the user's cart.
// An existing row is incremented atomically at the storage layer; otherwise
// a new row starts at quantity.
func (s *CartService) AddItem(userID, itemSlug string, quantity int) (*CartView, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	item, err := s.itemRepo.GetBySlug(itemSlug)
	if err != nil {
		return nil, err
	}
	cart, err := s.cartRepo.GetOrCreateByUser(userID)
	if err != nil {
		return nil, err
	}
	if err := s.cartRepo.AddItem(cart.ID, item.ID, quantity); err != nil {
		return nil, err
	}
	s.publishCartEvent("cart.item_added", cart)
	return s.view(cart)
}

// RemoveItem deletes the row for the given item slug. ErrNotInCart when the
// cart does not hold the item, so a second removal fails.
func (s *CartService) RemoveItem(userID, itemSlug string) (*CartView, error) {
	item, err := s.itemRepo.GetBySlug(itemSlug)
	if err != nil {
		return nil, err
	}
	cart, err := s.cartRepo.GetOrCreateByUser(userID)
	if err != nil {
		return nil, err
	}
	if err := s.cartRepo.RemoveItem(cart.ID, item.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotInCart
		}
		return nil, err
	}
	s.publishCartEvent("cart.item_removed", cart)
	return s.view(cart)
}

// Clear deletes all rows of the user's cart. Always succeeds, including on
// an already-empty cart.
func (s *CartService) Clear(userID string) (*CartView, error) {
	cart, err := s.cartRepo.GetOrCreateByUser(userID)
	if err != nil {
		return nil, err
	}
	if err := s.cartRepo.Clear(cart.ID); err != nil {
		return nil, err
	}
	s.publishCartEvent("cart.cleared", cart)
	return s.view(cart)
}

// Reconcile makes the cart's contents exactly equal the desired set. Every
// quantity must be >= 1 and every item must exist; any failure rejects the
// whole batch before a single row changes. The applied diff is one
// transaction. Duplicate item ids collapse, last entry winning.
func (s *CartService) Reconcile(userID string, desired []DesiredItem) (*CartView, error) {
	target := make(map[uint]int, len(desired))
	for _, d := range desired {
		if d.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		if _, err := s.itemRepo.GetByID(d.ItemID); err != nil {
			return nil, err
		}
		target[d.ItemID] = d.Quantity
	}

	cart, err := s.cartRepo.GetOrCreateByUser(userID)
	if err != nil {
		return nil, err
	}
	if err := s.cartRepo.Reconcile(cart.ID, target); err != nil {
		return nil, err
	}
	s.publishCartEvent("cart.reconciled", cart)
	return s.view(cart)
}

// view loads the cart rows and computes the total in exact decimal
// arithmetic at the items' current prices.
func (s *CartService) view(cart *models.Cart) (*CartView, error) {
	rows, err := s.cartRepo.GetItems(cart.ID)
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.Item.Price.Mul(decimal.NewFromInt(int64(row.Quantity))))
	}
	return &CartView{Cart: cart, Items: rows, Total: total}, nil
}

func (s *CartService) publishCartEvent(event string, cart *models.Cart) {
	if s.mqClient == nil {
		return
	}
	body, err := json.Marshal(map[string]interface{}{
		"event":   event,
		"cart_id": cart.ID,
		"user_id": cart.UserID,
	})
	if err != nil {
		log.Printf("Failed to marshal cart event: %v", err)
		return
	}
	if err := s.mqClient.Publish("", rabbitmq.CartEventsQueue, body); err != nil {
		log.Printf("Warning: Failed to publish %s for cart %d: %v", event, cart.ID, err)
	}
}

// TotalString renders the total the way the API serializes money, so an
// empty cart reads "0.00".
func (v *CartView) TotalString() string {
	return v.Total.StringFixed(2)
}
