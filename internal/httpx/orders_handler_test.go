package httpx

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRouter wires the handler without a database; every case below must be
// rejected before any store call.
func testRouter() *chi.Mux {
	h := &OrdersHandler{
		Log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func doRequest(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, req)
	return rec
}

func messageOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp["message"]
}

func TestPlaceOrderMalformedBody(t *testing.T) {
	rec := doRequest(t, http.MethodPost, "/orders", "{not json")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid request body", messageOf(t, rec))
}

func TestPlaceOrderValidationFailure(t *testing.T) {
	body := `{
		"username": "craftfan",
		"fullName": "Craft Fan",
		"email": "not-an-email",
		"phone": "+1 555 123 4567",
		"items": [{"_id": "2b6cbd6e-5c44-4a5a-9a39-0a9a147b9a01", "name": "Frame1", "price": 100, "quantity": 1, "offer": 0}],
		"totalAmount": 100,
		"address": {"street": "12 Artisan Way", "city": "Pune", "state": "MH", "postalCode": "411001"},
		"paymentMethod": "COD"
	}`

	rec := doRequest(t, http.MethodPost, "/orders", body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid email format", messageOf(t, rec))
}

func TestPlaceOrderEmptyItems(t *testing.T) {
	body := `{
		"username": "craftfan",
		"fullName": "Craft Fan",
		"email": "craftfan@example.com",
		"phone": "+1 555 123 4567",
		"items": [],
		"totalAmount": 100,
		"address": {"street": "12 Artisan Way", "city": "Pune", "state": "MH", "postalCode": "411001"},
		"paymentMethod": "COD"
	}`

	rec := doRequest(t, http.MethodPost, "/orders", body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "order must contain at least one item", messageOf(t, rec))
}

func TestUpdateStatusBadOrderID(t *testing.T) {
	rec := doRequest(t, http.MethodPatch, "/orders/not-a-uuid/status", `{"status": "Shipped"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid order ID format", messageOf(t, rec))
}

func TestUpdateStatusInvalidStatus(t *testing.T) {
	rec := doRequest(t, http.MethodPatch,
		"/orders/2b6cbd6e-5c44-4a5a-9a39-0a9a147b9a01/status", `{"status": "Refunded"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid order status", messageOf(t, rec))
}

func TestUpdateStatusMalformedBody(t *testing.T) {
	rec := doRequest(t, http.MethodPatch,
		"/orders/2b6cbd6e-5c44-4a5a-9a39-0a9a147b9a01/status", "{")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid request body", messageOf(t, rec))
}

func TestParseDate(t *testing.T) {
	if _, ok := parseDate(""); ok {
		t.Error("empty string should not parse")
	}
	if _, ok := parseDate("yesterday"); ok {
		t.Error("garbage should not parse")
	}

	d, ok := parseDate("2026-08-01")
	require.True(t, ok)
	assert.Equal(t, 2026, d.Year())

	d, ok = parseDate("2026-08-01T10:30:00Z")
	require.True(t, ok)
	assert.Equal(t, 30, d.Minute())
}
