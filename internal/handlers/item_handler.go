package handlers

import (
	"errors"
	"log"
	"strconv"

	"sbf/internal/models"
	"sbf/internal/repositories"
	"sbf/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// ItemHandler handles HTTP requests for catalog items.
type ItemHandler struct {
	catalogService *services.CatalogService
	validate       *validator.Validate
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(catalogService *services.CatalogService) *ItemHandler {
	return &ItemHandler{
		catalogService: catalogService,
		validate:       validator.New(),
	}
}

// RegisterRoutes registers item routes. Reads are public, mutations require
// authentication.
func (h *ItemHandler) RegisterRoutes(public, protected fiber.Router) {
	public.Get("/items", h.HandleListItems)
	public.Get("/items/:id", h.HandleGetItem)
	protected.Post("/items", h.HandleCreateItem)
	protected.Put("/items/:id", h.HandleUpdateItem)
	protected.Delete("/items/:id", h.HandleDeleteItem)
}

// HandleListItems retrieves all items.
func (h *ItemHandler) HandleListItems(c *fiber.Ctx) error {
	items, err := h.catalogService.GetAllItems()
	if err != nil {
		log.Printf("Error getting all items: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve items",
		})
	}
	return c.JSON(newItemResponses(items))
}

// HandleGetItem retrieves a single item by its ID.
func (h *ItemHandler) HandleGetItem(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid item id",
		})
	}
	item, err := h.catalogService.GetItemByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Item not found",
			})
		}
		log.Printf("Error getting item %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve item",
		})
	}
	return c.JSON(newItemResponse(item))
}

// ItemRequest represents the request body for creating an item. Price comes
// in as a string and is parsed as an exact decimal.
type ItemRequest struct {
	ItemName        string `json:"item_name" validate:"required,min=1,max=200"`
	ItemDescription string `json:"item_description"`
	Price           string `json:"price" validate:"required"`
	ItemCategory    uint   `json:"item_category" validate:"required"`
	ItemPicture     string `json:"item_picture"`
	Slug            string `json:"slug"`
}

// HandleCreateItem creates a new item, deriving the slug when none is given.
func (h *ItemHandler) HandleCreateItem(c *fiber.Ctx) error {
	var req ItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  fiber.Map{"price": "price must be a decimal number"},
		})
	}

	item := &models.Item{
		Name:        req.ItemName,
		Description: req.ItemDescription,
		Price:       price,
		CategoryID:  req.ItemCategory,
		Picture:     req.ItemPicture,
		Slug:        req.Slug,
	}
	if err := h.catalogService.CreateItem(item); err != nil {
		switch {
		case errors.Is(err, services.ErrNegativePrice):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Validation failed",
				"errors":  fiber.Map{"price": err.Error()},
			})
		case errors.Is(err, repositories.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Category not found",
			})
		case errors.Is(err, repositories.ErrDuplicate):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Slug already in use",
			})
		}
		log.Printf("Error creating item: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create item",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(newItemResponse(item))
}

// UpdateItemRequest represents a partial item update; absent fields keep
// their stored values.
type UpdateItemRequest struct {
	ItemName        *string `json:"item_name" validate:"omitempty,min=1,max=200"`
	ItemDescription *string `json:"item_description"`
	Price           *string `json:"price"`
	ItemCategory    *uint   `json:"item_category"`
	ItemPicture     *string `json:"item_picture"`
	Slug            *string `json:"slug"`
}

// HandleUpdateItem applies a partial update to an existing item.
func (h *ItemHandler) HandleUpdateItem(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid item id",
		})
	}

	var req UpdateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	item, err := h.catalogService.GetItemByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Item not found",
			})
		}
		log.Printf("Error loading item %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve item",
		})
	}

	if req.ItemName != nil {
		item.Name = *req.ItemName
	}
	if req.ItemDescription != nil {
		item.Description = *req.ItemDescription
	}
	if req.Price != nil {
		price, err := decimal.NewFromString(*req.Price)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Validation failed",
				"errors":  fiber.Map{"price": "price must be a decimal number"},
			})
		}
		item.Price = price
	}
	if req.ItemCategory != nil {
		item.CategoryID = *req.ItemCategory
	}
	if req.ItemPicture != nil {
		item.Picture = *req.ItemPicture
	}
	if req.Slug != nil {
		item.Slug = *req.Slug
	}

	if err := h.catalogService.UpdateItem(item); err != nil {
		switch {
		case errors.Is(err, services.ErrNegativePrice):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Validation failed",
				"errors":  fiber.Map{"price": err.Error()},
			})
		case errors.Is(err, repositories.ErrDuplicate):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Slug already in use",
			})
		}
		log.Printf("Error updating item %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update item",
		})
	}
	return c.JSON(newItemResponse(item))
}

// HandleDeleteItem deletes an item by its ID.
func (h *ItemHandler) HandleDeleteItem(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid item id",
		})
	}
	if err := h.catalogService.DeleteItem(id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Item not found",
			})
		}
		log.Printf("Error deleting item %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not delete item",
		})
	}
	return c.JSON(fiber.Map{"message": "Item deleted successfully"})
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
