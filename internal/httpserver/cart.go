package httpserver

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"nimbus-pos/internal/cart"
	"nimbus-pos/internal/service/checkout"
	"nimbus-pos/internal/service/terminal"

	"github.com/gin-gonic/gin"
)

type addLineRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type setLineRequest struct {
	Quantity *int `json:"quantity"`
}

// session returns the POS session of the request and echoes it back so a
// client without one learns the generated id.
func session(c *gin.Context) string {
	id := terminal.NormalizeSession(c.GetHeader(sessionHeader))
	c.Header(sessionHeader, id)
	return id
}

// writeCart renders a cart view. Rejected mutations keep the cart untouched
// and are reported with the matching status.
func (h *handlers) writeCart(c *gin.Context, okStatus int, v terminal.View, err error) {
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	switch v.Outcome {
	case cart.RejectedWrongStore:
		c.JSON(http.StatusConflict, gin.H{"error": "product belongs to another store", "cart": v})
	case cart.NotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "line not found", "cart": v})
	default:
		c.JSON(okStatus, v)
	}
}

func (h *handlers) getCart(c *gin.Context) {
	v, err := h.deps.TerminalSvc.Get(c.Request.Context(), currentStore(c), session(c))
	h.writeCart(c, http.StatusOK, v, err)
}

func (h *handlers) addCartLine(c *gin.Context) {
	var req addLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if strings.TrimSpace(req.ProductID) == "" {
		badRequest(c, "productId required")
		return
	}
	v, err := h.deps.TerminalSvc.AddProduct(c.Request.Context(), currentStore(c), session(c), req.ProductID, req.Quantity)
	h.writeCart(c, http.StatusOK, v, err)
}

func (h *handlers) setCartLine(c *gin.Context) {
	var req setLineRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
		badRequest(c, "quantity required")
		return
	}
	v, err := h.deps.TerminalSvc.SetQuantity(c.Request.Context(), currentStore(c), session(c), c.Param("productID"), *req.Quantity)
	h.writeCart(c, http.StatusOK, v, err)
}

func (h *handlers) removeCartLine(c *gin.Context) {
	v, err := h.deps.TerminalSvc.RemoveLine(c.Request.Context(), currentStore(c), session(c), c.Param("productID"))
	h.writeCart(c, http.StatusOK, v, err)
}

func (h *handlers) clearCart(c *gin.Context) {
	v, err := h.deps.TerminalSvc.Clear(c.Request.Context(), currentStore(c), session(c))
	h.writeCart(c, http.StatusOK, v, err)
}

func (h *handlers) markCartPending(c *gin.Context) {
	v, err := h.deps.TerminalSvc.MarkPending(c.Request.Context(), currentStore(c), session(c))
	h.writeCart(c, http.StatusOK, v, err)
}

func (h *handlers) checkout(c *gin.Context) {
	var pay checkout.Payment
	if err := c.ShouldBindJSON(&pay); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "invalid request body")
		return
	}
	receipt, err := h.deps.CheckoutSvc.Checkout(c.Request.Context(), currentStore(c), userID(c), session(c), pay)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, receipt)
}
