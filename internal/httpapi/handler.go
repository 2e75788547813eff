package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/nikolayk812/cartledger/internal/cart"
	"github.com/nikolayk812/cartledger/internal/checkout"
	"github.com/nikolayk812/cartledger/internal/domain"
)

// Handler adapts the cart and checkout services to the storefront's JSON
// endpoints. It owns nothing but decoding, encoding and status mapping.
type Handler struct {
	cart     *cart.Service
	checkout *checkout.Service
	logger   *slog.Logger
}

func NewHandler(cartSvc *cart.Service, checkoutSvc *checkout.Service, logger *slog.Logger) (*Handler, error) {
	if cartSvc == nil {
		return nil, errors.New("cart service is nil")
	}
	if checkoutSvc == nil {
		return nil, errors.New("checkout service is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{cart: cartSvc, checkout: checkoutSvc, logger: logger}, nil
}

func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/cart", func(r chi.Router) {
		r.Post("/order-info", h.handleOrderInfo)
		r.Post("/add-item", h.handleAddItem)
		r.Post("/set-item-quantity", h.handleSetItemQuantity)
		r.Post("/remove-item", h.handleRemoveItem)
		r.Post("/clear", h.handleClearCart)
		r.Post("/shipping-details", h.handleShippingDetails)
	})

	r.Post("/checkout/payment", h.handlePayment)

	return r
}

func (h *Handler) handleOrderInfo(w http.ResponseWriter, r *http.Request) {
	var req orderInfoRequest
	if !h.decode(w, r, &req) {
		return
	}

	order, err := h.cart.GetOrder(r.Context(), req.OrderID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeOrder(w, order)
}

func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if !h.decode(w, r, &req) {
		return
	}

	order, err := h.cart.AddItem(r.Context(), req.OrderID, req.CatalogObjectID, req.Quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeOrder(w, order)
}

func (h *Handler) handleSetItemQuantity(w http.ResponseWriter, r *http.Request) {
	var req setItemQuantityRequest
	if !h.decode(w, r, &req) {
		return
	}

	order, err := h.cart.SetItemQuantity(r.Context(), req.OrderID, req.UID, req.Quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeOrder(w, order)
}

func (h *Handler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	var req removeItemRequest
	if !h.decode(w, r, &req) {
		return
	}

	order, err := h.cart.RemoveItem(r.Context(), req.OrderID, req.UID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeOrder(w, order)
}

func (h *Handler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	var req orderInfoRequest
	if !h.decode(w, r, &req) {
		return
	}

	order, err := h.cart.ClearCart(r.Context(), req.OrderID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeOrder(w, order)
}

func (h *Handler) handleShippingDetails(w http.ResponseWriter, r *http.Request) {
	var req shippingDetailsRequest
	if !h.decode(w, r, &req) {
		return
	}

	order, err := h.cart.SetShippingFulfillment(r.Context(), req.OrderID, req.toDomain())
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeOrder(w, order)
}

func (h *Handler) handlePayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if !h.decode(w, r, &req) {
		return
	}

	receipt, err := h.checkout.Settle(r.Context(), req.OrderID, req.SourceID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, receiptResponse{Receipt: toReceiptResponse(receipt)})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, into any) bool {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func (h *Handler) writeOrder(w http.ResponseWriter, order domain.Order) {
	h.writeJSON(w, http.StatusOK, orderResponse{Order: toOrderResponse(order)})
}

// writeError maps the domain taxonomy onto status codes. Auth failures are
// the deployment's upstream credentials, not the caller's fault, hence 502.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrVersionConflict):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrAuth):
		status = http.StatusBadGateway
	case errors.Is(err, domain.ErrTransient):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("unclassified failure", "error", err)
	}

	h.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("encoding response failed", "error", err)
	}
}
