package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/tavolo-pos/api/internal/database"
)

// ReportStore defines the database methods needed by report handlers.
// Satisfied by *database.Queries.
type ReportStore interface {
	GetSalesSummary(ctx context.Context, from, to pgtype.Timestamptz) (database.SalesSummaryRow, error)
	GetSalesByMethod(ctx context.Context, from, to pgtype.Timestamptz) ([]database.SalesByMethodRow, error)
	GetVoidSummary(ctx context.Context, from, to pgtype.Timestamptz) ([]database.VoidSummaryRow, error)
}

// ReportHandler serves end-of-day sales and void reports. Manager only.
type ReportHandler struct {
	store ReportStore
}

func NewReportHandler(store ReportStore) *ReportHandler {
	return &ReportHandler{store: store}
}

func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/daily", h.Daily)
}

type salesByMethodResponse struct {
	Method       string `json:"method"`
	PaymentCount int64  `json:"payment_count"`
	TotalTaken   string `json:"total_taken"`
}

type voidSummaryResponse struct {
	VoidType  string `json:"void_type"`
	ItemCount int64  `json:"item_count"`
	UnitCount int64  `json:"unit_count"`
	LostValue string `json:"lost_value"`
}

type dailyReportResponse struct {
	Date        string                  `json:"date"`
	OrderCount  int64                   `json:"order_count"`
	Subtotal    string                  `json:"subtotal"`
	TotalAmount string                  `json:"total_amount"`
	ByMethod    []salesByMethodResponse `json:"by_method"`
	Voids       []voidSummaryResponse   `json:"voids"`
}

// Daily handles GET /reports/daily?date=YYYY-MM-DD, defaulting to today.
func (h *ReportHandler) Daily(w http.ResponseWriter, r *http.Request) {
	day := time.Now()
	if s := r.URL.Query().Get("date"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date format, use YYYY-MM-DD")
			return
		}
		day = t
	}
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	to := from.AddDate(0, 0, 1)
	fromTz := pgtype.Timestamptz{Time: from, Valid: true}
	toTz := pgtype.Timestamptz{Time: to, Valid: true}

	summary, err := h.store.GetSalesSummary(r.Context(), fromTz, toTz)
	if err != nil {
		respondServiceError(w, "sales summary", err)
		return
	}
	byMethod, err := h.store.GetSalesByMethod(r.Context(), fromTz, toTz)
	if err != nil {
		respondServiceError(w, "sales by method", err)
		return
	}
	voids, err := h.store.GetVoidSummary(r.Context(), fromTz, toTz)
	if err != nil {
		respondServiceError(w, "void summary", err)
		return
	}

	resp := dailyReportResponse{
		Date:        from.Format("2006-01-02"),
		OrderCount:  summary.OrderCount,
		Subtotal:    numericToString(summary.Subtotal),
		TotalAmount: numericToString(summary.TotalAmount),
		ByMethod:    []salesByMethodResponse{},
		Voids:       []voidSummaryResponse{},
	}
	for _, m := range byMethod {
		resp.ByMethod = append(resp.ByMethod, salesByMethodResponse{
			Method:       m.Method,
			PaymentCount: m.PaymentCount,
			TotalTaken:   numericToString(m.TotalTaken),
		})
	}
	for _, v := range voids {
		resp.Voids = append(resp.Voids, voidSummaryResponse{
			VoidType:  v.VoidType,
			ItemCount: v.ItemCount,
			UnitCount: v.UnitCount,
			LostValue: numericToString(v.LostValue),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
