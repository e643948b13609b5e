package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tavolo-pos/api/internal/database"
	"github.com/tavolo-pos/api/internal/pricing"
	"github.com/tavolo-pos/api/internal/selection"
	"github.com/tavolo-pos/api/internal/service"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*pricing.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*pricing.Order, error)
	ListOrders(ctx context.Context, status string) ([]database.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (*pricing.Order, error)
	AddItem(ctx context.Context, orderID uuid.UUID, req service.AddItemRequest) (*pricing.Order, error)
	UpdateItemQuantity(ctx context.Context, orderID, itemID uuid.UUID, quantity int32) (*pricing.Order, error)
	SetItemComment(ctx context.Context, orderID, itemID uuid.UUID, comment string) (*pricing.Order, error)
	SetOrderComment(ctx context.Context, orderID uuid.UUID, comment string) (*pricing.Order, error)
	ApplyDiscount(ctx context.Context, orderID uuid.UUID, req service.ApplyDiscountRequest) (*pricing.Order, error)
	FinalizeOrder(ctx context.Context, orderID uuid.UUID, payments []service.PaymentRequest) (*pricing.Order, error)
	VoidItem(ctx context.Context, orderID, itemID uuid.UUID, voidType string) (*pricing.Order, error)
	VoidOrder(ctx context.Context, orderID uuid.UUID, voidType string) (*pricing.Order, error)
}

// OrderNotifier pushes order updates to connected displays.
// Satisfied by *ws.Hub.
type OrderNotifier interface {
	NotifyOrderUpdated(orderID uuid.UUID, payload interface{})
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc      OrderServicer
	notifier OrderNotifier
}

func NewOrderHandler(svc OrderServicer, notifier OrderNotifier) *OrderHandler {
	return &OrderHandler{svc: svc, notifier: notifier}
}

// RegisterRoutes registers order endpoints on the given Chi router.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}/status", h.UpdateStatus)
	r.Patch("/{id}/comment", h.SetComment)
	r.Post("/{id}/items", h.AddItem)
	r.Patch("/{id}/items/{itemID}", h.UpdateItem)
	r.Post("/{id}/discount", h.ApplyDiscount)
	r.Post("/{id}/payments", h.Finalize)
}

// RegisterManagerRoutes registers the endpoints behind the manager role.
func (h *OrderHandler) RegisterManagerRoutes(r chi.Router) {
	r.Post("/{id}/void", h.VoidOrder)
	r.Post("/{id}/items/{itemID}/void", h.VoidItem)
}

// --- Request / Response types ---

type createOrderRequest struct {
	OrderType   string `json:"order_type"`
	TableNumber string `json:"table_number"`
	Comment     string `json:"comment"`
}

type addItemRequest struct {
	ProductID string              `json:"product_id"`
	Quantity  int32               `json:"quantity"`
	Comment   string              `json:"comment"`
	Modifiers []itemChoiceRequest `json:"modifiers"`
}

type itemChoiceRequest struct {
	OptionID string `json:"option_id"`
	Quantity int32  `json:"quantity"`
}

type updateItemRequest struct {
	Quantity *int32  `json:"quantity"`
	Comment  *string `json:"comment"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type commentRequest struct {
	Comment string `json:"comment"`
}

type applyDiscountRequest struct {
	DiscountID string `json:"discount_id"`
	ItemID     string `json:"item_id"`
}

type finalizeRequest struct {
	Payments []paymentRequest `json:"payments"`
}

type paymentRequest struct {
	Method string `json:"method"`
	Amount string `json:"amount"`
}

type voidRequest struct {
	VoidType string `json:"void_type"`
}

type modifierResponse struct {
	OptionID        uuid.UUID `json:"option_id"`
	Name            string    `json:"name"`
	PriceAdjustment string    `json:"price_adjustment"`
	Quantity        int32     `json:"quantity"`
}

type discountResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Type  string    `json:"type"`
	Value string    `json:"value"`
}

type itemResponse struct {
	ID          uuid.UUID          `json:"id"`
	ProductID   uuid.UUID          `json:"product_id"`
	ProductName string             `json:"product_name"`
	Quantity    int32              `json:"quantity"`
	UnitPrice   string             `json:"unit_price"`
	Modifiers   []modifierResponse `json:"modifiers"`
	Comment     *string            `json:"comment"`
	Discount    *discountResponse  `json:"discount"`
	Status      string             `json:"status"`
	VoidType    *string            `json:"void_type"`
	LineTotal   string             `json:"line_total"`
}

type paymentResponse struct {
	Method string `json:"method"`
	Amount string `json:"amount"`
}

type orderResponse struct {
	ID          uuid.UUID         `json:"id"`
	OrderNumber string            `json:"order_number"`
	Status      string            `json:"status"`
	OrderType   string            `json:"order_type"`
	TableNumber *string           `json:"table_number"`
	Comment     *string           `json:"comment"`
	Discount    *discountResponse `json:"discount"`
	Subtotal    string            `json:"subtotal"`
	TotalAmount string            `json:"total_amount"`
	Items       []itemResponse    `json:"items"`
	Payments    []paymentResponse `json:"payments"`
}

type orderSummaryResponse struct {
	ID          uuid.UUID `json:"id"`
	OrderNumber string    `json:"order_number"`
	Status      string    `json:"status"`
	OrderType   string    `json:"order_type"`
	TableNumber *string   `json:"table_number"`
	TotalAmount string    `json:"total_amount"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func toOrderResponse(o *pricing.Order) orderResponse {
	resp := orderResponse{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		Status:      o.Status,
		OrderType:   o.OrderType,
		TableNumber: optional(o.TableNumber),
		Comment:     optional(o.Comment),
		Subtotal:    o.Subtotal.StringFixed(2),
		TotalAmount: o.TotalAmount.StringFixed(2),
		Items:       []itemResponse{},
		Payments:    []paymentResponse{},
	}
	if o.Discount != nil {
		resp.Discount = &discountResponse{
			ID:    o.Discount.ID,
			Name:  o.Discount.Name,
			Type:  o.Discount.Type,
			Value: o.Discount.Value.StringFixed(2),
		}
	}
	for i := range o.Items {
		it := &o.Items[i]
		lineTotal, err := it.Total()
		if err != nil {
			lineTotal = decimal.Zero
		}
		ir := itemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.PriceAtTimeOfOrder.StringFixed(2),
			Modifiers:   []modifierResponse{},
			Comment:     optional(it.Comment),
			Status:      it.Status,
			VoidType:    optional(it.VoidType),
			LineTotal:   lineTotal.StringFixed(2),
		}
		if it.Discount != nil {
			ir.Discount = &discountResponse{
				ID:    it.Discount.ID,
				Name:  it.Discount.Name,
				Type:  it.Discount.Type,
				Value: it.Discount.Value.StringFixed(2),
			}
		}
		for _, m := range it.Modifiers {
			ir.Modifiers = append(ir.Modifiers, modifierResponse{
				OptionID:        m.OptionID,
				Name:            m.Name,
				PriceAdjustment: m.PriceAdjustment.StringFixed(2),
				Quantity:        m.Quantity,
			})
		}
		resp.Items = append(resp.Items, ir)
	}
	for _, p := range o.Payments {
		resp.Payments = append(resp.Payments, paymentResponse{
			Method: p.Method,
			Amount: p.Amount.StringFixed(2),
		})
	}
	return resp
}

func (h *OrderHandler) notify(o *pricing.Order) {
	if h.notifier != nil {
		h.notifier.NotifyOrderUpdated(o.ID, toOrderResponse(o))
	}
}

func orderIDParam(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	return id, err == nil
}

// --- Handlers ---

// Create handles POST /orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OrderType == "" {
		writeError(w, http.StatusBadRequest, "order_type is required")
		return
	}

	order, err := h.svc.CreateOrder(r.Context(), service.CreateOrderRequest{
		OrderType:   req.OrderType,
		TableNumber: req.TableNumber,
		Comment:     req.Comment,
	})
	if err != nil {
		respondServiceError(w, "create order", err)
		return
	}
	h.notify(order)
	writeJSON(w, http.StatusCreated, toOrderResponse(order))
}

// List handles GET /orders?status=OPEN.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = "OPEN"
	}
	orders, err := h.svc.ListOrders(r.Context(), status)
	if err != nil {
		respondServiceError(w, "list orders", err)
		return
	}
	resp := make([]orderSummaryResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, orderSummaryResponse{
			ID:          o.ID,
			OrderNumber: o.OrderNumber,
			Status:      o.Status,
			OrderType:   o.OrderType,
			TableNumber: optionalText(o.TableNumber),
			TotalAmount: numericToString(o.TotalAmount),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"orders": resp})
}

// Get handles GET /orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid order ID")
		return
	}
	order, err := h.svc.GetOrder(r.Context(), id)
	if err != nil {
		respondServiceError(w, "get order", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// UpdateStatus handles PATCH /orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid order ID")
		return
	}
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	order, err := h.svc.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		respondServiceError(w, "update order status", err)
		return
	}
	h.notify(order)
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// SetComment handles PATCH /orders/{id}/comment.
func (h *OrderHandler) SetComment(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid order ID")
		return
	}
	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	order, err := h.svc.SetOrderComment(r.Context(), id, req.Comment)
	if err != nil {
		respondServiceError(w, "set order comment", err)
		return
	}
	h.notify(order)
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// AddItem handles POST /orders/{id}/items.
func (h *OrderHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid order ID")
		return
	}
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product_id")
		return
	}
	if req.Quantity <= 0 {
		writeError(w, http.StatusBadRequest, "quantity must be > 0")
		return
	}
	choices := make([]selection.Choice, 0, len(req.Modifiers))
	for i, m := range req.Modifiers {
		optionID, err := uuid.Parse(m.OptionID)
		if err != nil {
			writeError(w, http.StatusBadRequest, formatIndexError("modifiers", i, "invalid option_id"))
			return
		}
		qty := m.Quantity
		if qty == 0 {
			qty = 1
		}
		choices = append(choices, selection.Choice{OptionID: optionID, Quantity: qty})
	}

	order, err := h.svc.AddItem(r.Context(), id, service.AddItemRequest{
		ProductID: productID,
		Quantity:  req.Quantity,
		Comment:   req.Comment,
		Choices:   choices,
	})
	if err != nil {
		respondServiceError(w, "add order item", err)
		return
	}
	h.notify(order)
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// UpdateItem handles PATCH /orders/{id}/items/{itemID}. Quantity and
// comment can be updated independently; quantity 0 removes the line.
func (h *OrderHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid order ID")
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item ID")
		return
	}
	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Quantity == nil && req.Comment == nil {
		writeError(w, http.StatusBadRequest, "quantity or comment is required")
		return
	}

	var order *pricing.Order
	if req.Quantity != nil {
		order, err = h.svc.UpdateItemQuantity(r.Context(), id, itemID, *req.Quantity)
		if err != nil {
			respondServiceError(w, "update item quantity", err)
			return
		}
	}
	if req.Comment != nil {
		order, err = h.svc.SetItemComment(r.Context(), id, itemID, *req.Comment)
		if err != nil {
			respondServiceError(w, "set item comment", err)
			return
		}
	}
	h.notify(order)
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// ApplyDiscount handles POST /orders/{id}/discount. An empty discount_id
// clears the discount; item_id targets a single line.
func (h *OrderHandler) ApplyDiscount(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid order ID")
		return
	}
	var req applyDiscountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	svcReq := service.ApplyDiscountRequest{}
	if req.DiscountID != "" {
		discountID, err := uuid.Parse(req.DiscountID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid discount_id")
			return
		}
		svcReq.DiscountID = &discountID
	}
	if req.ItemID != "" {
		itemID, err := uuid.Parse(req.ItemID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid item_id")
			return
		}
		svcReq.ItemID = &itemID
	}

	order, err := h.svc.ApplyDiscount(r.Context(), id, svcReq)
	if err != nil {
		respondServiceError(w, "apply discount", err)
		return
	}
	h.notify(order)
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// Finalize handles POST /orders/{id}/payments.
func (h *OrderHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid order ID")
		return
	}
	var req finalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	payments := make([]service.PaymentRequest, 0, len(req.Payments))
	for i, p := range req.Payments {
		amount, err := decimal.NewFromString(p.Amount)
		if err != nil {
			writeError(w, http.StatusBadRequest, formatIndexError("payments", i, "invalid amount"))
			return
		}
		payments = append(payments, service.PaymentRequest{Method: p.Method, Amount: amount})
	}

	order, err := h.svc.FinalizeOrder(r.Context(), id, payments)
	if err != nil {
		respondServiceError(w, "finalize order", err)
		return
	}
	h.notify(order)
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// VoidItem handles POST /orders/{id}/items/{itemID}/void.
func (h *OrderHandler) VoidItem(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid order ID")
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item ID")
		return
	}
	var req voidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	order, err := h.svc.VoidItem(r.Context(), id, itemID, req.VoidType)
	if err != nil {
		respondServiceError(w, "void order item", err)
		return
	}
	h.notify(order)
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// VoidOrder handles POST /orders/{id}/void.
func (h *OrderHandler) VoidOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid order ID")
		return
	}
	var req voidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	order, err := h.svc.VoidOrder(r.Context(), id, req.VoidType)
	if err != nil {
		respondServiceError(w, "void order", err)
		return
	}
	h.notify(order)
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}
