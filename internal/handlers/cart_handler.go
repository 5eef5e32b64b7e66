package handlers

import (
	"errors"
	"log"

	"sbf/internal/models"
	"sbf/internal/repositories"
	"sbf/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the authenticated user's cart.
type CartHandler struct {
	cartService *services.CartService
	validate    *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(cartService *services.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the cart routes. All of them require
// authentication.
func (h *CartHandler) RegisterRoutes(protected fiber.Router) {
	protected.Get("/cart", h.HandleGetCart)
	protected.Post("/cart", h.HandleAddToCart)
	protected.Put("/cart", h.HandleReconcileCart)
	protected.Delete("/cart", h.HandleRemoveOrClear)
}

// HandleGetCart returns the user's cart, creating it on first access.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	user := currentUser(c)
	view, err := h.cartService.GetCart(user.ID)
	if err != nil {
		log.Printf("Error getting cart for user %s: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve cart",
		})
	}
	return c.JSON(newCartResponse(view))
}

// AddToCartRequest represents the request body for adding one item.
// Quantity defaults to 1 when absent; a non-integer value fails body
// parsing.
type AddToCartRequest struct {
	Slug     string `json:"slug" validate:"required"`
	Quantity *int   `json:"quantity"`
}

// HandleAddToCart adds quantity of the item with the given slug; a repeat
// add increments the existing row.
func (h *CartHandler) HandleAddToCart(c *fiber.Ctx) error {
	var req AddToCartRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	user := currentUser(c)
	view, err := h.cartService.AddItem(user.ID, req.Slug, quantity)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidQuantity):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Validation failed",
				"errors":  fiber.Map{"quantity": err.Error()},
			})
		case errors.Is(err, repositories.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Item not found",
			})
		}
		log.Printf("Error adding item %s to cart: %v", req.Slug, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not add item to cart",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(newCartResponse(view))
}

// ReconcileCartRequest represents the request body for a full-cart update.
type ReconcileCartRequest struct {
	CartItems []struct {
		ItemID   uint `json:"item_id" validate:"required"`
		Quantity int  `json:"quantity"`
	} `json:"cart_items"`
}

// HandleReconcileCart replaces the cart's contents with the desired set.
// Any invalid quantity or unknown item rejects the whole request with the
// cart untouched.
func (h *CartHandler) HandleReconcileCart(c *fiber.Ctx) error {
	var req ReconcileCartRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	desired := make([]services.DesiredItem, 0, len(req.CartItems))
	for _, entry := range req.CartItems {
		desired = append(desired, services.DesiredItem{ItemID: entry.ItemID, Quantity: entry.Quantity})
	}

	user := currentUser(c)
	view, err := h.cartService.Reconcile(user.ID, desired)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidQuantity):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Validation failed",
				"errors":  fiber.Map{"quantity": err.Error()},
			})
		case errors.Is(err, repositories.ErrNotFound):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Validation failed",
				"errors":  fiber.Map{"item_id": "unknown item"},
			})
		}
		log.Printf("Error reconciling cart for user %s: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update cart",
		})
	}
	return c.JSON(newCartResponse(view))
}

// RemoveFromCartRequest represents the request body for DELETE /cart. With a
// slug one row is removed; without, the cart is cleared.
type RemoveFromCartRequest struct {
	Slug string `json:"slug"`
}

// HandleRemoveOrClear removes a single item or clears the whole cart.
// Clearing is idempotent; removing an absent item is a 404.
func (h *CartHandler) HandleRemoveOrClear(c *fiber.Ctx) error {
	var req RemoveFromCartRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid request body",
				"error":   err.Error(),
			})
		}
	}

	user := currentUser(c)
	if req.Slug == "" {
		view, err := h.cartService.Clear(user.ID)
		if err != nil {
			log.Printf("Error clearing cart for user %s: %v", user.ID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not clear cart",
			})
		}
		return c.JSON(newCartResponse(view))
	}

	view, err := h.cartService.RemoveItem(user.ID, req.Slug)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotInCart):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Item not in cart",
			})
		case errors.Is(err, repositories.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Item not found",
			})
		}
		log.Printf("Error removing item %s from cart: %v", req.Slug, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not remove item from cart",
		})
	}
	return c.JSON(newCartResponse(view))
}

func currentUser(c *fiber.Ctx) *models.User {
	return c.Locals("user").(*models.User)
}
