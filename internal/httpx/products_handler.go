package httpx

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/craftculture/orders-api/internal/database"
	"github.com/craftculture/orders-api/internal/store"
	"github.com/go-chi/chi/v5"
)

// ProductsHandler is the read side of the catalog the storefront consumes.
// Products are only ever mutated by the order workflow and the seeder.
type ProductsHandler struct {
	DB  *sql.DB
	Log *slog.Logger
}

func (h *ProductsHandler) Register(r *chi.Mux) {
	r.Get("/products", h.listProducts)
	r.Get("/products/{id}", h.getProduct)
}

func (h *ProductsHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	page, pageSize := 1, 20
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		pageSize = l
	}

	result, err := store.ListProducts(r.Context(), h.DB, page, pageSize)
	if err != nil {
		h.Log.Error("list products", "error", err)
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *ProductsHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	product, err := store.GetProduct(r.Context(), h.DB, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, database.ErrProductNotFound) {
			writeMessage(w, http.StatusNotFound, "product not found")
			return
		}
		h.Log.Error("get product", "error", err)
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, product)
}
