package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tavolo-pos/api/internal/database"
)

// DiscountStore defines the database methods needed by discount handlers.
// Satisfied by *database.Queries.
type DiscountStore interface {
	ListActiveDiscounts(ctx context.Context) ([]database.Discount, error)
	GetDiscount(ctx context.Context, id uuid.UUID) (database.Discount, error)
}

type DiscountHandler struct {
	store DiscountStore
}

func NewDiscountHandler(store DiscountStore) *DiscountHandler {
	return &DiscountHandler{store: store}
}

func (h *DiscountHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
}

type discountListItem struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	Type               string    `json:"type"`
	Value              string    `json:"value"`
	MinimumOrderAmount string    `json:"minimum_order_amount"`
}

// List handles GET /discounts.
func (h *DiscountHandler) List(w http.ResponseWriter, r *http.Request) {
	discounts, err := h.store.ListActiveDiscounts(r.Context())
	if err != nil {
		respondServiceError(w, "list discounts", err)
		return
	}
	resp := make([]discountListItem, 0, len(discounts))
	for _, d := range discounts {
		resp = append(resp, discountListItem{
			ID:                 d.ID,
			Name:               d.Name,
			Type:               d.Type,
			Value:              numericToString(d.Value),
			MinimumOrderAmount: numericToString(d.MinimumOrderAmount),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"discounts": resp})
}

// Get handles GET /discounts/{id}. Inactive discounts are still readable
// so receipts referencing them can resolve names.
func (h *DiscountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid discount ID")
		return
	}
	d, err := h.store.GetDiscount(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "discount not found")
			return
		}
		respondServiceError(w, "get discount", err)
		return
	}
	writeJSON(w, http.StatusOK, discountListItem{
		ID:                 d.ID,
		Name:               d.Name,
		Type:               d.Type,
		Value:              numericToString(d.Value),
		MinimumOrderAmount: numericToString(d.MinimumOrderAmount),
	})
}
