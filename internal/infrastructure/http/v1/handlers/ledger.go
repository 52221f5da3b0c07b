package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"takoyaki/internal/core/apperror"
	"takoyaki/internal/core/entity"
	"takoyaki/internal/core/id"
	"takoyaki/internal/domain/ledger"
)

// LedgerHandler exposes read access to the stock ledger.
type LedgerHandler struct {
	*BaseHandler
	service *ledger.Service
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(base *BaseHandler, service *ledger.Service) *LedgerHandler {
	return &LedgerHandler{BaseHandler: base, service: service}
}

// History handles GET /ledger/items/:id/history
func (h *LedgerHandler) History(c *gin.Context) {
	itemID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var from, to time.Time
	if t, err := h.ParseDateQuery(c, "from"); err != nil {
		h.Error(c, err)
		return
	} else if t != nil {
		from = *t
	}
	if t, err := h.ParseDateQuery(c, "to"); err != nil {
		h.Error(c, err)
		return
	} else if t != nil {
		to = *t
	}

	entries, err := h.service.History(c.Request.Context(), itemID, from, to)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, entries)
}

// OnHand handles GET /ledger/items/:id/on-hand
func (h *LedgerHandler) OnHand(c *gin.Context) {
	itemID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var scope ledger.Scope
	if v := c.Query("location"); v != "" {
		loc := entity.Location(v)
		if !entity.ValidLocation(loc) {
			h.Error(c, apperror.NewValidation("unknown location").WithDetail("location", v))
			return
		}
		scope.Location = &loc
	}
	if t, err := h.ParseDateQuery(c, "asOf"); err != nil {
		h.Error(c, err)
		return
	} else if t != nil {
		scope.AsOf = t
	}

	qty, err := h.service.QuantityOnHand(c.Request.Context(), itemID, scope)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"itemId": itemID, "qty": qty})
}

// RegisterRoutes wires ledger routes.
func (h *LedgerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/items/:id/history", h.History)
	rg.GET("/items/:id/on-hand", h.OnHand)
}
