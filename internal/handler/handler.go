// Package handler exposes the store operations as a JSON API. Handlers
// parse and validate input at the edge, delegate to the domain components,
// and map domain errors to HTTP status codes.
package handler

import (
	"net/http"

	"github.com/Elaba987/pry-Inventario/internal/checkout"
	"github.com/Elaba987/pry-Inventario/internal/domain/cart"
	"github.com/Elaba987/pry-Inventario/internal/domain/product"
	"github.com/Elaba987/pry-Inventario/internal/domain/report"
	"github.com/Elaba987/pry-Inventario/internal/domain/sale"
	"github.com/Elaba987/pry-Inventario/internal/domain/supplier"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// LowStockThreshold is the stock level below which the low stock filter
	// reports a product. Values below 1 fall back to the domain default.
	LowStockThreshold int
}

// Handler serves the API, delegating business logic to the injected
// components.
type Handler struct {
	products  *product.Store
	cart      *cart.Session
	ledger    *sale.Ledger
	suppliers *supplier.Store
	reports   *report.Aggregator
	dashboard *report.Dashboard
	checkout  *checkout.Service

	lowStockThreshold int
}

// New constructs a Handler with the required components.
func New(
	cfg Config,
	products *product.Store,
	cartSession *cart.Session,
	ledger *sale.Ledger,
	suppliers *supplier.Store,
	reports *report.Aggregator,
	dashboard *report.Dashboard,
	checkoutSvc *checkout.Service,
) *Handler {
	threshold := cfg.LowStockThreshold
	if threshold < 1 {
		threshold = product.DefaultLowStockThreshold
	}
	return &Handler{
		products:          products,
		cart:              cartSession,
		ledger:            ledger,
		suppliers:         suppliers,
		reports:           reports,
		dashboard:         dashboard,
		checkout:          checkoutSvc,
		lowStockThreshold: threshold,
	}
}

// Register mounts all API routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.listProducts)
	mux.HandleFunc("POST /api/products", h.addProduct)
	mux.HandleFunc("GET /api/products/{key}", h.getProduct)
	mux.HandleFunc("PUT /api/products/{key}", h.updateProduct)
	mux.HandleFunc("PUT /api/products/{key}/stock", h.setStock)
	mux.HandleFunc("DELETE /api/products/{key}", h.removeProduct)

	mux.HandleFunc("GET /api/cart", h.getCart)
	mux.HandleFunc("POST /api/cart/items", h.addCartItem)
	mux.HandleFunc("DELETE /api/cart/items/{index}", h.removeCartItem)
	mux.HandleFunc("POST /api/checkout", h.commitSale)

	mux.HandleFunc("GET /api/sales", h.listSales)
	mux.HandleFunc("GET /api/sales/{ticket}/ticket", h.downloadTicket)
	mux.HandleFunc("GET /api/reports/{period}", h.getReport)
	mux.HandleFunc("GET /api/dashboard", h.getDashboard)

	mux.HandleFunc("GET /api/suppliers", h.listSuppliers)
	mux.HandleFunc("POST /api/suppliers", h.addSupplier)
	mux.HandleFunc("DELETE /api/suppliers/{index}", h.removeSupplier)
}
