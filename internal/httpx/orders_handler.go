package httpx

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/craftculture/orders-api/internal/cache"
	"github.com/craftculture/orders-api/internal/database"
	"github.com/craftculture/orders-api/internal/events"
	"github.com/craftculture/orders-api/internal/models"
	"github.com/craftculture/orders-api/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type OrdersHandler struct {
	DB     *sql.DB
	Cache  *cache.OrderCache // optional
	Events *events.Producer  // optional
	Log    *slog.Logger
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/orders", h.placeOrder)
	r.Get("/orders", h.listOrders)
	r.Get("/orders/{username}", h.getUserOrders)
	r.Patch("/orders/{orderId}/status", h.updateStatus)
}

func (h *OrdersHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req store.PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := store.PlaceOrder(r.Context(), h.DB, req)
	if err != nil {
		var ve store.ValidationError
		if errors.As(err, &ve) || database.IsBusinessError(err) {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		h.Log.Error("place order", "error", err)
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	if h.Cache != nil {
		if err := h.Cache.InvalidateUser(r.Context(), order.Username); err != nil {
			h.Log.Warn("invalidate order cache", "username", order.Username, "error", err)
		}
	}
	if h.Events != nil {
		h.Events.OrderCreated(order)
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":           "Order created successfully",
		"orderId":           order.ID,
		"estimatedDelivery": order.DeliveryDate,
	})
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := store.ListOrdersFilter{
		Status: models.OrderStatus(q.Get("status")),
		Page:   1,
		Limit:  10,
		SortBy: "-orderDate",
	}
	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		filter.Page = p
	}
	if l, err := strconv.Atoi(q.Get("limit")); err == nil && l > 0 {
		filter.Limit = l
	}
	if s := q.Get("sortBy"); s != "" {
		filter.SortBy = s
	}
	if t, ok := parseDate(q.Get("startDate")); ok {
		filter.StartDate = &t
	}
	if t, ok := parseDate(q.Get("endDate")); ok {
		filter.EndDate = &t
	}

	list, err := store.ListOrders(r.Context(), h.DB, filter)
	if err != nil {
		h.Log.Error("list orders", "error", err)
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, list)
}

func (h *OrdersHandler) getUserOrders(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	if h.Cache != nil {
		if orders, err := h.Cache.GetUserOrders(r.Context(), username); err == nil {
			writeJSON(w, http.StatusOK, orders)
			return
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			h.Log.Warn("order cache read", "username", username, "error", err)
		}
	}

	orders, err := store.GetOrdersByUsername(r.Context(), h.DB, username)
	if err != nil {
		h.Log.Error("get user orders", "username", username, "error", err)
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}

	if h.Cache != nil {
		if err := h.Cache.SetUserOrders(r.Context(), username, orders); err != nil {
			h.Log.Warn("order cache write", "username", username, "error", err)
		}
	}

	writeJSON(w, http.StatusOK, orders)
}

type updateStatusReq struct {
	Status         string `json:"status"`
	TrackingNumber string `json:"trackingNumber"`
	Notes          string `json:"notes"`
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")
	if _, err := uuid.Parse(orderID); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid order ID format")
		return
	}

	var req updateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status := models.OrderStatus(req.Status)
	if !status.Valid() {
		writeMessage(w, http.StatusBadRequest, "invalid order status")
		return
	}

	order, err := store.UpdateOrderStatus(r.Context(), h.DB, orderID, status, req.TrackingNumber, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrOrderNotFound):
			writeMessage(w, http.StatusNotFound, "order not found")
		case errors.Is(err, database.ErrOrderCancelled):
			writeMessage(w, http.StatusBadRequest, err.Error())
		default:
			h.Log.Error("update order status", "order_id", orderID, "error", err)
			writeMessage(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	if h.Cache != nil {
		if err := h.Cache.InvalidateUser(r.Context(), order.Username); err != nil {
			h.Log.Warn("invalidate order cache", "username", order.Username, "error", err)
		}
	}
	if h.Events != nil {
		h.Events.OrderStatusChanged(order)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Order status updated successfully",
		"order":   order,
	})
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
