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

// CategoryHandler handles HTTP requests for categories.
type CategoryHandler struct {
	catalogService *services.CatalogService
	validate       *validator.Validate
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(catalogService *services.CatalogService) *CategoryHandler {
	return &CategoryHandler{
		catalogService: catalogService,
		validate:       validator.New(),
	}
}

// RegisterRoutes registers category routes. Listing is public, mutations
// require authentication.
func (h *CategoryHandler) RegisterRoutes(public, protected fiber.Router) {
	public.Get("/categories", h.HandleListCategories)
	protected.Post("/categories", h.HandleCreateCategory)
	protected.Delete("/categories/:id", h.HandleDeleteCategory)
}

// HandleListCategories retrieves all categories.
func (h *CategoryHandler) HandleListCategories(c *fiber.Ctx) error {
	categories, err := h.catalogService.GetAllCategories()
	if err != nil {
		log.Printf("Error getting all categories: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve categories",
		})
	}
	return c.JSON(categories)
}

// CategoryRequest represents the request body for creating a category.
type CategoryRequest struct {
	Name string `json:"name" validate:"required,min=1,max=50"`
	Slug string `json:"slug" validate:"omitempty,max=60"`
}

// HandleCreateCategory creates a category; the slug is derived from the name
// when none is supplied.
func (h *CategoryHandler) HandleCreateCategory(c *fiber.Ctx) error {
	var req CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	category := &models.Category{Name: req.Name, Slug: req.Slug}
	if err := h.catalogService.CreateCategory(category); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Category name or slug already in use",
			})
		}
		log.Printf("Error creating category: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create category",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// HandleDeleteCategory deletes a category and, by cascade, its items.
func (h *CategoryHandler) HandleDeleteCategory(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid category id",
		})
	}
	if err := h.catalogService.DeleteCategory(id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Category not found",
			})
		}
		log.Printf("Error deleting category %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not delete category",
		})
	}
	return c.JSON(fiber.Map{"message": "Category deleted successfully"})
}
