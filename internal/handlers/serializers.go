package handlers

import (
	"time"

	"sbf/internal/models"
	"sbf/internal/services"
)

// Wire representations. Money is always a string with two decimal places.

// ItemResponse is the serialized item representation.
type ItemResponse struct {
	ItemID          uint      `json:"item_id"`
	ItemName        string    `json:"item_name"`
	ItemDescription string    `json:"item_description"`
	ItemPicture     string    `json:"item_picture"`
	Price           string    `json:"price"`
	ItemCategory    uint      `json:"item_category"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	Slug            string    `json:"slug"`
}

func newItemResponse(item *models.Item) ItemResponse {
	return ItemResponse{
		ItemID:          item.ID,
		ItemName:        item.Name,
		ItemDescription: item.Description,
		ItemPicture:     item.Picture,
		Price:           item.Price.StringFixed(2),
		ItemCategory:    item.CategoryID,
		CreatedAt:       item.CreatedAt,
		UpdatedAt:       item.UpdatedAt,
		Slug:            item.Slug,
	}
}

func newItemResponses(items []models.Item) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for i := range items {
		out = append(out, newItemResponse(&items[i]))
	}
	return out
}

// CartItemResponse is one serialized cart line with its item embedded.
type CartItemResponse struct {
	ID       uint         `json:"id"`
	Item     ItemResponse `json:"item"`
	Quantity int          `json:"quantity"`
}

// CartResponse is the serialized cart representation.
type CartResponse struct {
	ID         uint               `json:"id"`
	User       string             `json:"user"`
	CartItems  []CartItemResponse `json:"cart_items"`
	TotalPrice string             `json:"total_price"`
}

func newCartResponse(view *services.CartView) CartResponse {
	lines := make([]CartItemResponse, 0, len(view.Items))
	for i := range view.Items {
		row := &view.Items[i]
		lines = append(lines, CartItemResponse{
			ID:       row.ID,
			Item:     newItemResponse(&row.Item),
			Quantity: row.Quantity,
		})
	}
	return CartResponse{
		ID:         view.Cart.ID,
		User:       view.Cart.UserID,
		CartItems:  lines,
		TotalPrice: view.TotalString(),
	}
}
