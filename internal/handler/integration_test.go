//go:build integration

package handler_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/tavolo-pos/api/internal/auth"
	"github.com/tavolo-pos/api/internal/config"
	"github.com/tavolo-pos/api/internal/database"
	"github.com/tavolo-pos/api/internal/router"
	"github.com/tavolo-pos/api/internal/ws"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// testCatalog holds the IDs created by seedTestCatalog.
type testCatalog struct {
	productID  uuid.UUID
	largeID    uuid.UUID
	cheeseID   uuid.UUID
	discountID uuid.UUID
}

// TestIntegrationFlow exercises the full order lifecycle against a real
// PostgreSQL database: create, add items with modifier selections,
// consolidation, discount, split payment, void, and the daily report.
func TestIntegrationFlow(t *testing.T) {
	ctx := context.Background()

	// Start PostgreSQL container
	pgContainer, connStr, cleanup := setupPostgresContainer(t, ctx)
	defer cleanup()

	// Run migrations
	runMigrations(t, connStr)

	// Create pgxpool connection
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}
	defer pool.Close()

	cfg := &config.Config{
		Port:        "8082",
		DatabaseURL: connStr,
		JWTSecret:   testJWTSecret,
	}
	queries := database.New(pool)
	hub := ws.NewHub()
	// NOTE: hub.Run() goroutine leaks on test exit; Hub has no shutdown mechanism.
	// Acceptable for tests; production should add context-based shutdown.
	go hub.Run()

	r := router.New(cfg, queries, pool, hub)
	server := httptest.NewServer(r)
	defer server.Close()

	// Token issuance lives in the staff system; mint compatible tokens directly
	cashierToken := mintToken(t, "CASHIER")
	managerToken := mintToken(t, "MANAGER")

	// --- 1. Seed catalog (no catalog write API) ---
	cat := seedTestCatalog(t, ctx, pool)

	// --- 2. Catalog endpoint exposes the modifier configuration ---
	productResp := httpGetJSON(t, server, fmt.Sprintf("/products/%s", cat.productID), cashierToken)
	groups := productResp["modifier_groups"].([]interface{})
	if len(groups) != 2 {
		t.Fatalf("expected 2 modifier groups, got %d", len(groups))
	}

	// --- 3. Create order ---
	orderResp := httpPostJSON(t, server, "/orders", map[string]interface{}{
		"order_type":   "DINE_IN",
		"table_number": "7",
	}, cashierToken)
	orderID := uuid.MustParse(orderResp["id"].(string))
	if orderResp["order_number"].(string) != "TVL-001" {
		t.Fatalf("first order number: got %s, want TVL-001", orderResp["order_number"])
	}
	if orderResp["status"].(string) != "OPEN" {
		t.Fatalf("new order status: got %s, want OPEN", orderResp["status"])
	}

	// --- 4. Add burger with Large + Cheese: 8.00 + 2.00 + 1.00 = 11.00 ---
	itemBody := map[string]interface{}{
		"product_id": cat.productID.String(),
		"quantity":   1,
		"modifiers": []map[string]interface{}{
			{"option_id": cat.largeID.String()},
			{"option_id": cat.cheeseID.String()},
		},
	}
	afterItem := httpPostJSON(t, server, fmt.Sprintf("/orders/%s/items", orderID), itemBody, cashierToken)
	if afterItem["subtotal"].(string) != "11.00" {
		t.Fatalf("subtotal after first item: got %s, want 11.00", afterItem["subtotal"])
	}

	// --- 5. Same product and choices again: consolidates into one line ---
	afterSecond := httpPostJSON(t, server, fmt.Sprintf("/orders/%s/items", orderID), itemBody, cashierToken)
	items := afterSecond["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("expected consolidation into 1 line, got %d", len(items))
	}
	line := items[0].(map[string]interface{})
	if line["quantity"].(float64) != 2 {
		t.Fatalf("consolidated quantity: got %v, want 2", line["quantity"])
	}
	if afterSecond["total_amount"].(string) != "22.00" {
		t.Fatalf("total after consolidation: got %s, want 22.00", afterSecond["total_amount"])
	}
	itemID := uuid.MustParse(line["id"].(string))

	// --- 6. Order-level 10 percent discount: 22.00 -> 19.80 ---
	afterDiscount := httpPostJSON(t, server, fmt.Sprintf("/orders/%s/discount", orderID), map[string]interface{}{
		"discount_id": cat.discountID.String(),
	}, cashierToken)
	if afterDiscount["total_amount"].(string) != "19.80" {
		t.Fatalf("total after discount: got %s, want 19.80", afterDiscount["total_amount"])
	}

	// --- 7. Underpayment is rejected and leaves the order OPEN ---
	status := httpPostStatus(t, server, fmt.Sprintf("/orders/%s/payments", orderID), map[string]interface{}{
		"payments": []map[string]string{{"method": "CASH", "amount": "5.00"}},
	}, cashierToken)
	if status != http.StatusConflict {
		t.Fatalf("underpayment: got status %d, want 409", status)
	}
	check := httpGetJSON(t, server, fmt.Sprintf("/orders/%s", orderID), cashierToken)
	if check["status"].(string) != "OPEN" {
		t.Fatalf("order after failed payment: got %s, want OPEN", check["status"])
	}

	// --- 8. Split payment covering the total finalizes the order ---
	paid := httpPostJSON(t, server, fmt.Sprintf("/orders/%s/payments", orderID), map[string]interface{}{
		"payments": []map[string]string{
			{"method": "CASH", "amount": "10.00"},
			{"method": "CARD", "amount": "9.80"},
		},
	}, cashierToken)
	if paid["status"].(string) != "PAID" {
		t.Fatalf("order after payment: got %s, want PAID", paid["status"])
	}
	if len(paid["payments"].([]interface{})) != 2 {
		t.Fatalf("expected 2 payments, got %d", len(paid["payments"].([]interface{})))
	}

	// --- 9. Cashier cannot void; manager can ---
	status = httpPostStatus(t, server, fmt.Sprintf("/orders/%s/items/%s/void", orderID, itemID), map[string]string{
		"void_type": "SHORT",
	}, cashierToken)
	if status != http.StatusForbidden {
		t.Fatalf("cashier void: got status %d, want 403", status)
	}

	voided := httpPostJSON(t, server, fmt.Sprintf("/orders/%s/items/%s/void", orderID, itemID), map[string]string{
		"void_type": "SHORT",
	}, managerToken)
	vItems := voided["items"].([]interface{})
	if len(vItems) != 1 {
		t.Fatalf("voided item should stay listed, got %d items", len(vItems))
	}
	vLine := vItems[0].(map[string]interface{})
	if vLine["status"].(string) != "VOIDED" {
		t.Fatalf("item status after void: got %s, want VOIDED", vLine["status"])
	}
	if voided["total_amount"].(string) != "0.00" {
		t.Fatalf("total after voiding the only line: got %s, want 0.00", voided["total_amount"])
	}

	// --- 10. Daily report (manager only) ---
	status = httpGetStatus(t, server, "/reports/daily", cashierToken)
	if status != http.StatusForbidden {
		t.Fatalf("cashier report access: got status %d, want 403", status)
	}

	report := httpGetJSON(t, server, "/reports/daily", managerToken)
	if report["order_count"].(float64) != 1 {
		t.Fatalf("report order_count: got %v, want 1", report["order_count"])
	}
	byMethod := report["by_method"].([]interface{})
	if len(byMethod) != 2 {
		t.Fatalf("expected 2 payment methods in report, got %d", len(byMethod))
	}
	voids := report["voids"].([]interface{})
	if len(voids) != 1 {
		t.Fatalf("expected 1 void row, got %d", len(voids))
	}
	voidRow := voids[0].(map[string]interface{})
	if voidRow["void_type"].(string) != "SHORT" {
		t.Fatalf("void row type: got %s, want SHORT", voidRow["void_type"])
	}
	if voidRow["unit_count"].(float64) != 2 {
		t.Fatalf("void row unit_count: got %v, want 2", voidRow["unit_count"])
	}
	// Lost value counts base units only: 8.00 x 2
	if voidRow["lost_value"].(string) != "16.00" {
		t.Fatalf("void row lost_value: got %s, want 16.00", voidRow["lost_value"])
	}

	t.Logf("Integration test passed: container=%s, order=%s", pgContainer.GetContainerID(), orderID)
}

// --- Setup helpers ---

func setupPostgresContainer(t *testing.T, ctx context.Context) (testcontainers.Container, string, func()) {
	t.Helper()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("tavolo_test"),
		tcpostgres.WithUsername("pos"),
		tcpostgres.WithPassword("pos"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("get connection string: %v", err)
	}

	cleanup := func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	}

	return pgContainer, connStr, cleanup
}

func runMigrations(t *testing.T, connStr string) {
	t.Helper()

	// Connect with stdlib for migrate
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("open db for migrations: %v", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		t.Fatalf("create migrate driver: %v", err)
	}

	// Path relative to this test file's package directory (internal/handler/).
	// Go test sets cwd to the package directory.
	m, err := migrate.NewWithDatabaseInstance(
		"file://../../migrations",
		"postgres", driver)
	if err != nil {
		t.Fatalf("create migrate instance: %v", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		t.Fatalf("run migrations: %v", err)
	}
}

func mintToken(t *testing.T, role string) string {
	t.Helper()
	token, err := auth.GenerateToken(testJWTSecret, uuid.New(), role)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

// seedTestCatalog inserts a burger with a required Size group and an
// optional Toppings group, plus a 10 percent order discount.
func seedTestCatalog(t *testing.T, ctx context.Context, pool *pgxpool.Pool) testCatalog {
	t.Helper()
	var cat testCatalog

	err := pool.QueryRow(ctx,
		`INSERT INTO products (name, price) VALUES ($1, $2) RETURNING id`,
		"Classic Burger", "8.00",
	).Scan(&cat.productID)
	if err != nil {
		t.Fatalf("insert product: %v", err)
	}

	var sizeGroupID uuid.UUID
	err = pool.QueryRow(ctx,
		`INSERT INTO modifier_groups (name, min_selection, selection_budget)
		 VALUES ('Size', 1, 1) RETURNING id`,
	).Scan(&sizeGroupID)
	if err != nil {
		t.Fatalf("insert size group: %v", err)
	}
	_, err = pool.Exec(ctx,
		`INSERT INTO modifier_options (group_id, name, price_adjustment, selection_cost, sort_order)
		 VALUES ($1, 'Regular', '0', 1, 0)`, sizeGroupID)
	if err != nil {
		t.Fatalf("insert regular option: %v", err)
	}
	err = pool.QueryRow(ctx,
		`INSERT INTO modifier_options (group_id, name, price_adjustment, selection_cost, sort_order)
		 VALUES ($1, 'Large', '2.00', 1, 1) RETURNING id`, sizeGroupID,
	).Scan(&cat.largeID)
	if err != nil {
		t.Fatalf("insert large option: %v", err)
	}

	var toppingsGroupID uuid.UUID
	err = pool.QueryRow(ctx,
		`INSERT INTO modifier_groups (name, min_selection, selection_budget, max_selections)
		 VALUES ('Toppings', 0, 3, 3) RETURNING id`,
	).Scan(&toppingsGroupID)
	if err != nil {
		t.Fatalf("insert toppings group: %v", err)
	}
	err = pool.QueryRow(ctx,
		`INSERT INTO modifier_options (group_id, name, price_adjustment, selection_cost, sort_order)
		 VALUES ($1, 'Cheese', '1.00', 1, 0) RETURNING id`, toppingsGroupID,
	).Scan(&cat.cheeseID)
	if err != nil {
		t.Fatalf("insert cheese option: %v", err)
	}
	_, err = pool.Exec(ctx,
		`INSERT INTO modifier_options (group_id, name, price_adjustment, selection_cost, sort_order)
		 VALUES ($1, 'Bacon', '1.50', 1, 1)`, toppingsGroupID)
	if err != nil {
		t.Fatalf("insert bacon option: %v", err)
	}

	for i, gid := range []uuid.UUID{sizeGroupID, toppingsGroupID} {
		_, err = pool.Exec(ctx,
			`INSERT INTO product_modifier_groups (product_id, group_id, display_order)
			 VALUES ($1, $2, $3)`, cat.productID, gid, i)
		if err != nil {
			t.Fatalf("link group: %v", err)
		}
	}

	err = pool.QueryRow(ctx,
		`INSERT INTO discounts (name, type, value, minimum_order_amount)
		 VALUES ('Happy Hour 10%', 'PERCENT', '10', '0') RETURNING id`,
	).Scan(&cat.discountID)
	if err != nil {
		t.Fatalf("insert discount: %v", err)
	}

	return cat
}

// --- HTTP helpers ---

func httpPostJSON(t *testing.T, server *httptest.Server, path string, body interface{}, token string) map[string]interface{} {
	t.Helper()
	resp := doPost(t, server, path, body, token)
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errResp)
		t.Fatalf("POST %s: status %d, body: %v", path, resp.StatusCode, errResp)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return result
}

func httpPostStatus(t *testing.T, server *httptest.Server, path string, body interface{}, token string) int {
	t.Helper()
	resp := doPost(t, server, path, body, token)
	defer resp.Body.Close()
	return resp.StatusCode
}

func doPost(t *testing.T, server *httptest.Server, path string, body interface{}, token string) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}

	req, err := http.NewRequest("POST", server.URL+path, bytes.NewReader(b))
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	return resp
}

func httpGetJSON(t *testing.T, server *httptest.Server, path string, token string) map[string]interface{} {
	t.Helper()
	resp := doGet(t, server, path, token)
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errResp)
		t.Fatalf("GET %s: status %d, body: %v", path, resp.StatusCode, errResp)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return result
}

func httpGetStatus(t *testing.T, server *httptest.Server, path string, token string) int {
	t.Helper()
	resp := doGet(t, server, path, token)
	defer resp.Body.Close()
	return resp.StatusCode
}

func doGet(t *testing.T, server *httptest.Server, path string, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest("GET", server.URL+path, nil)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	return resp
}
