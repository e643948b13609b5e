package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/tavolo-pos/api/internal/pricing"
	"github.com/tavolo-pos/api/internal/selection"
	"github.com/tavolo-pos/api/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func numericToString(n pgtype.Numeric) string {
	if !n.Valid {
		return "0.00"
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return "0.00"
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return "0.00"
	}
	return d.StringFixed(2)
}

func optionalText(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

func formatIndexError(field string, idx int, msg string) string {
	return field + "[" + strconv.Itoa(idx) + "]: " + msg
}

// isNotFoundError maps to 404.
func isNotFoundError(err error) bool {
	return errors.Is(err, service.ErrOrderNotFound) ||
		errors.Is(err, service.ErrProductNotFound) ||
		errors.Is(err, service.ErrDiscountNotFound) ||
		errors.Is(err, pricing.ErrItemNotFound)
}

// isValidationError maps to 400: the request itself is malformed.
func isValidationError(err error) bool {
	return errors.Is(err, service.ErrInvalidOrderType) ||
		errors.Is(err, service.ErrInvalidQuantity) ||
		errors.Is(err, service.ErrInvalidPaymentMethod) ||
		errors.Is(err, service.ErrInvalidOrderStatus) ||
		errors.Is(err, service.ErrNoPayments)
}

// isSelectionError maps to 422: the choices are well formed but break the
// product's modifier rules, usually because the terminal's catalog is stale.
func isSelectionError(err error) bool {
	return errors.Is(err, selection.ErrUnknownOption) ||
		errors.Is(err, selection.ErrMaxSelectionsReached) ||
		errors.Is(err, selection.ErrBudgetExceeded) ||
		errors.Is(err, selection.ErrCostLocked) ||
		errors.Is(err, selection.ErrGroupNotSatisfied) ||
		errors.Is(err, selection.ErrRepeatNotAllowed)
}

// isConflictError maps to 409: the order is in the wrong state, or the
// payment amounts no longer match the total.
func isConflictError(err error) bool {
	return pricing.IsStateError(err) ||
		errors.Is(err, pricing.ErrAmountMismatch) ||
		errors.Is(err, service.ErrInvalidStatusTransition)
}

// respondServiceError translates a service error into an HTTP response.
func respondServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case isNotFoundError(err):
		writeError(w, http.StatusNotFound, err.Error())
	case isValidationError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case isSelectionError(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case isConflictError(err):
		writeError(w, http.StatusConflict, err.Error())
	default:
		log.Printf("ERROR: %s: %v", op, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
