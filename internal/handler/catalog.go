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

// CatalogStore defines the database methods needed by catalog read
// handlers. Satisfied by *database.Queries.
type CatalogStore interface {
	ListProducts(ctx context.Context) ([]database.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (database.Product, error)
	ListModifierGroupsByProduct(ctx context.Context, productID uuid.UUID) ([]database.ModifierGroup, error)
	ListModifierOptionsByGroup(ctx context.Context, groupID uuid.UUID) ([]database.ModifierOption, error)
}

// CatalogHandler serves the product catalog terminals render menus and
// selection wizards from.
type CatalogHandler struct {
	store CatalogStore
}

func NewCatalogHandler(store CatalogStore) *CatalogHandler {
	return &CatalogHandler{store: store}
}

func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
}

type productSummaryResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Price string    `json:"price"`
}

type modifierOptionResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	PriceAdjustment string    `json:"price_adjustment"`
	SelectionCost   int32     `json:"selection_cost"`
	SortOrder       int32     `json:"sort_order"`
}

type modifierGroupResponse struct {
	ID                               uuid.UUID                `json:"id"`
	Name                             string                   `json:"name"`
	MinSelection                     int32                    `json:"min_selection"`
	SelectionBudget                  int32                    `json:"selection_budget"`
	MaxSelections                    *int32                   `json:"max_selections"`
	MaxSelectionsSyncedToOptionCount bool                     `json:"max_selections_synced_to_option_count"`
	AllowRepeatedSelections          bool                     `json:"allow_repeated_selections"`
	ExactBudgetRequired              bool                     `json:"exact_budget_required"`
	Options                          []modifierOptionResponse `json:"options"`
}

type productDetailResponse struct {
	productSummaryResponse
	ModifierGroups []modifierGroupResponse `json:"modifier_groups"`
}

// List handles GET /products.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.ListProducts(r.Context())
	if err != nil {
		respondServiceError(w, "list products", err)
		return
	}
	resp := make([]productSummaryResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, productSummaryResponse{
			ID:    p.ID,
			Name:  p.Name,
			Price: numericToString(p.Price),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"products": resp})
}

// Get handles GET /products/{id}, returning the product with its full
// modifier group configuration in wizard order.
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product ID")
		return
	}
	p, err := h.store.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		respondServiceError(w, "get product", err)
		return
	}

	groups, err := h.store.ListModifierGroupsByProduct(r.Context(), id)
	if err != nil {
		respondServiceError(w, "list modifier groups", err)
		return
	}

	resp := productDetailResponse{
		productSummaryResponse: productSummaryResponse{
			ID:    p.ID,
			Name:  p.Name,
			Price: numericToString(p.Price),
		},
		ModifierGroups: []modifierGroupResponse{},
	}
	for _, g := range groups {
		options, err := h.store.ListModifierOptionsByGroup(r.Context(), g.ID)
		if err != nil {
			respondServiceError(w, "list modifier options", err)
			return
		}
		gr := modifierGroupResponse{
			ID:                               g.ID,
			Name:                             g.Name,
			MinSelection:                     g.MinSelection,
			SelectionBudget:                  g.SelectionBudget,
			MaxSelectionsSyncedToOptionCount: g.MaxSelectionsSyncedToOptionCount,
			AllowRepeatedSelections:          g.AllowRepeatedSelections,
			ExactBudgetRequired:              g.ExactBudgetRequired,
			Options:                          []modifierOptionResponse{},
		}
		if g.MaxSelections.Valid {
			max := g.MaxSelections.Int32
			gr.MaxSelections = &max
		}
		for _, o := range options {
			gr.Options = append(gr.Options, modifierOptionResponse{
				ID:              o.ID,
				Name:            o.Name,
				PriceAdjustment: numericToString(o.PriceAdjustment),
				SelectionCost:   o.SelectionCost,
				SortOrder:       o.SortOrder,
			})
		}
		resp.ModifierGroups = append(resp.ModifierGroups, gr)
	}
	writeJSON(w, http.StatusOK, resp)
}
