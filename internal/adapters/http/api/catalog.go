package api

import (
	"context"
	"fmt"
	"net/http"

	service "github.com/okian/barberbook/internal/app"
	"github.com/okian/barberbook/internal/domain/model"
	"github.com/shopspring/decimal"
)

// CatalogDependencies defines inventory and service catalog operations.
type CatalogDependencies interface {
	Products(ctx context.Context) ([]model.Product, error)
	CreateProduct(ctx context.Context, in service.ProductInput) (model.Product, error)
	UpdateProduct(ctx context.Context, id string, in service.ProductInput) (model.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	Catalog(ctx context.Context, kind service.CatalogKind) ([]model.CatalogItem, error)
	CreateCatalogItem(ctx context.Context, kind service.CatalogKind, name string, price decimal.Decimal) (model.CatalogItem, error)
	DeleteCatalogItem(ctx context.Context, kind service.CatalogKind, id string) error
}

type catalogItemRequest struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// catalogKinds maps URL segments to catalogs.
var catalogKinds = map[string]service.CatalogKind{
	"services": service.CatalogServices,
	"extras":   service.CatalogExtras,
}

// CatalogHandler handles products and the two service catalogs.
type CatalogHandler struct {
	deps CatalogDependencies
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(deps CatalogDependencies) *CatalogHandler {
	return &CatalogHandler{deps: deps}
}

// HandleListProducts handles GET /api/products.
func (h *CatalogHandler) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.deps.Products(r.Context())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// HandleCreateProduct handles POST /api/products.
func (h *CatalogHandler) HandleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req service.ProductInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	p, err := h.deps.CreateProduct(r.Context(), req)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// HandleUpdateProduct handles PATCH /api/products/{id}.
func (h *CatalogHandler) HandleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req service.ProductInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	p, err := h.deps.UpdateProduct(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleDeleteProduct handles DELETE /api/products/{id}.
func (h *CatalogHandler) HandleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.DeleteProduct(r.Context(), r.PathValue("id")); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListCatalog handles GET /api/catalog/{kind}.
func (h *CatalogHandler) HandleListCatalog(w http.ResponseWriter, r *http.Request) {
	kind, err := catalogKind(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	items, err := h.deps.Catalog(r.Context(), kind)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// HandleCreateCatalogItem handles POST /api/catalog/{kind}.
func (h *CatalogHandler) HandleCreateCatalogItem(w http.ResponseWriter, r *http.Request) {
	kind, err := catalogKind(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	var req catalogItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	item, err := h.deps.CreateCatalogItem(r.Context(), kind, req.Name, req.Price)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// HandleDeleteCatalogItem handles DELETE /api/catalog/{kind}/{id}.
func (h *CatalogHandler) HandleDeleteCatalogItem(w http.ResponseWriter, r *http.Request) {
	kind, err := catalogKind(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	if err := h.deps.DeleteCatalogItem(r.Context(), kind, r.PathValue("id")); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func catalogKind(r *http.Request) (service.CatalogKind, error) {
	kind, ok := catalogKinds[r.PathValue("kind")]
	if !ok {
		return "", fmt.Errorf("%w: unknown catalog %q", service.ErrNotFound, r.PathValue("kind"))
	}
	return kind, nil
}
