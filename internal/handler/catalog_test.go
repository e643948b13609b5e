package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/tavolo-pos/api/internal/database"
	"github.com/tavolo-pos/api/internal/enum"
	"github.com/tavolo-pos/api/internal/handler"
	"github.com/tavolo-pos/api/internal/middleware"
)

// --- Mock CatalogStore ---

type mockCatalogStore struct {
	products map[uuid.UUID]database.Product
	groups   map[uuid.UUID][]database.ModifierGroup
	options  map[uuid.UUID][]database.ModifierOption
}

func newMockCatalogStore() *mockCatalogStore {
	return &mockCatalogStore{
		products: make(map[uuid.UUID]database.Product),
		groups:   make(map[uuid.UUID][]database.ModifierGroup),
		options:  make(map[uuid.UUID][]database.ModifierOption),
	}
}

func (m *mockCatalogStore) ListProducts(ctx context.Context) ([]database.Product, error) {
	out := []database.Product{}
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockCatalogStore) GetProduct(ctx context.Context, id uuid.UUID) (database.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return database.Product{}, pgx.ErrNoRows
	}
	return p, nil
}

func (m *mockCatalogStore) ListModifierGroupsByProduct(ctx context.Context, productID uuid.UUID) ([]database.ModifierGroup, error) {
	return m.groups[productID], nil
}

func (m *mockCatalogStore) ListModifierOptionsByGroup(ctx context.Context, groupID uuid.UUID) ([]database.ModifierOption, error) {
	return m.options[groupID], nil
}

func setupCatalogRouter(store handler.CatalogStore) http.Handler {
	h := handler.NewCatalogHandler(store)
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testJWTSecret))
	r.Route("/products", h.RegisterRoutes)
	return r
}

// seedMockCatalog adds a burger with one required size group.
func seedMockCatalog(store *mockCatalogStore) uuid.UUID {
	productID := uuid.New()
	groupID := uuid.New()
	store.products[productID] = database.Product{
		ID:       productID,
		Name:     "Classic Burger",
		Price:    toNumeric("8.00"),
		IsActive: true,
	}
	store.groups[productID] = []database.ModifierGroup{
		{
			ID:              groupID,
			Name:            "Size",
			MinSelection:    1,
			SelectionBudget: 1,
			MaxSelections:   pgtype.Int4{Int32: 1, Valid: true},
		},
	}
	store.options[groupID] = []database.ModifierOption{
		{ID: uuid.New(), GroupID: groupID, Name: "Regular", PriceAdjustment: toNumeric("0"), SelectionCost: 1, SortOrder: 0},
		{ID: uuid.New(), GroupID: groupID, Name: "Large", PriceAdjustment: toNumeric("2.00"), SelectionCost: 1, SortOrder: 1},
	}
	return productID
}

// =====================
// Catalog reads
// =====================

func TestListProducts(t *testing.T) {
	store := newMockCatalogStore()
	seedMockCatalog(store)
	router := setupCatalogRouter(store)

	rr := doAuthRequest(t, router, "GET", "/products/", nil, enum.UserRoleCashier)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	products := resp["products"].([]interface{})
	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(products))
	}
	p := products[0].(map[string]interface{})
	if p["name"] != "Classic Burger" {
		t.Errorf("expected Classic Burger, got %v", p["name"])
	}
	if p["price"] != "8.00" {
		t.Errorf("expected price 8.00, got %v", p["price"])
	}
}

func TestGetProductWithModifierConfig(t *testing.T) {
	store := newMockCatalogStore()
	productID := seedMockCatalog(store)
	router := setupCatalogRouter(store)

	rr := doAuthRequest(t, router, "GET", "/products/"+productID.String(), nil, enum.UserRoleCashier)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	groups := resp["modifier_groups"].([]interface{})
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	g := groups[0].(map[string]interface{})
	if g["min_selection"].(float64) != 1 {
		t.Errorf("expected min_selection 1, got %v", g["min_selection"])
	}
	if g["max_selections"].(float64) != 1 {
		t.Errorf("expected max_selections 1, got %v", g["max_selections"])
	}
	options := g["options"].([]interface{})
	if len(options) != 2 {
		t.Fatalf("expected 2 options, got %d", len(options))
	}
	large := options[1].(map[string]interface{})
	if large["price_adjustment"] != "2.00" {
		t.Errorf("expected Large adjustment 2.00, got %v", large["price_adjustment"])
	}
}

func TestGetProductNotFound(t *testing.T) {
	router := setupCatalogRouter(newMockCatalogStore())

	rr := doAuthRequest(t, router, "GET", "/products/"+uuid.New().String(), nil, enum.UserRoleCashier)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestGetProductInvalidID(t *testing.T) {
	router := setupCatalogRouter(newMockCatalogStore())

	rr := doAuthRequest(t, router, "GET", "/products/bad-id", nil, enum.UserRoleCashier)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

// =====================
// Discount reads
// =====================

type mockDiscountStore struct {
	discounts map[uuid.UUID]database.Discount
}

func (m *mockDiscountStore) ListActiveDiscounts(ctx context.Context) ([]database.Discount, error) {
	out := []database.Discount{}
	for _, d := range m.discounts {
		if d.IsActive {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockDiscountStore) GetDiscount(ctx context.Context, id uuid.UUID) (database.Discount, error) {
	d, ok := m.discounts[id]
	if !ok {
		return database.Discount{}, pgx.ErrNoRows
	}
	return d, nil
}

func setupDiscountRouter(store handler.DiscountStore) http.Handler {
	h := handler.NewDiscountHandler(store)
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testJWTSecret))
	r.Route("/discounts", h.RegisterRoutes)
	return r
}

func TestListDiscountsActiveOnly(t *testing.T) {
	active := database.Discount{
		ID: uuid.New(), Name: "Happy Hour 10%", Type: "PERCENT",
		Value: toNumeric("10"), MinimumOrderAmount: toNumeric("0"), IsActive: true,
	}
	retired := database.Discount{
		ID: uuid.New(), Name: "Old Promo", Type: "FIXED",
		Value: toNumeric("1.00"), MinimumOrderAmount: toNumeric("0"), IsActive: false,
	}
	store := &mockDiscountStore{discounts: map[uuid.UUID]database.Discount{
		active.ID:  active,
		retired.ID: retired,
	}}
	router := setupDiscountRouter(store)

	rr := doAuthRequest(t, router, "GET", "/discounts/", nil, enum.UserRoleCashier)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	resp := decodeResponse(t, rr)
	discounts := resp["discounts"].([]interface{})
	if len(discounts) != 1 {
		t.Fatalf("expected only the active discount, got %d", len(discounts))
	}
	d := discounts[0].(map[string]interface{})
	if d["name"] != "Happy Hour 10%" {
		t.Errorf("unexpected discount: %v", d["name"])
	}
	if d["value"] != "10.00" {
		t.Errorf("expected value 10.00, got %v", d["value"])
	}
}

func TestGetDiscount(t *testing.T) {
	d := database.Discount{
		ID: uuid.New(), Name: "Big Table 15%", Type: "PERCENT",
		Value: toNumeric("15"), MinimumOrderAmount: toNumeric("50.00"), IsActive: true,
	}
	store := &mockDiscountStore{discounts: map[uuid.UUID]database.Discount{d.ID: d}}
	router := setupDiscountRouter(store)

	rr := doAuthRequest(t, router, "GET", "/discounts/"+d.ID.String(), nil, enum.UserRoleCashier)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	resp := decodeResponse(t, rr)
	if resp["minimum_order_amount"] != "50.00" {
		t.Errorf("expected minimum 50.00, got %v", resp["minimum_order_amount"])
	}
}

func TestGetDiscountNotFound(t *testing.T) {
	store := &mockDiscountStore{discounts: map[uuid.UUID]database.Discount{}}
	router := setupDiscountRouter(store)

	rr := doAuthRequest(t, router, "GET", "/discounts/"+uuid.New().String(), nil, enum.UserRoleCashier)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}
