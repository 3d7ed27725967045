package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/layer-3/gmstreak/core"
	"github.com/layer-3/gmstreak/service"
)

// CheckinHandlers contains HTTP handlers for the check-in endpoints
type CheckinHandlers struct {
	checkinService *service.CheckinService
}

// NewCheckinHandlers creates new check-in handlers
func NewCheckinHandlers(checkinService *service.CheckinService) *CheckinHandlers {
	return &CheckinHandlers{
		checkinService: checkinService,
	}
}

// Connect resolves a signing provider and binds a wallet session
func (h *CheckinHandlers) Connect(c *gin.Context) {
	session, token, err := h.checkinService.Connect(c.Request.Context())
	if err != nil {
		statusCode := http.StatusInternalServerError
		errorMsg := "Failed to connect wallet"

		switch {
		case errors.Is(err, core.ErrNoProvider):
			statusCode = http.StatusServiceUnavailable
			errorMsg = err.Error()
		case errors.Is(err, core.ErrSigningRejected):
			statusCode = http.StatusForbidden
			errorMsg = "Wallet connection rejected"
		case errors.Is(err, core.ErrInvalidAddress):
			statusCode = http.StatusBadGateway
			errorMsg = "Wallet returned an invalid address"
		}

		c.JSON(statusCode, gin.H{"error": errorMsg})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"address":       session.Address,
		"environment":   session.Environment.String(),
		"session_token": token,
	})
}

// Restore returns the previously connected wallet address, if any
func (h *CheckinHandlers) Restore(c *gin.Context) {
	address, err := h.checkinService.Restore(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to restore session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"address": address})
}

// Disconnect clears the persisted wallet session
func (h *CheckinHandlers) Disconnect(c *gin.Context) {
	if err := h.checkinService.Disconnect(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to disconnect"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Disconnected"})
}

// CheckIn commits today's signed attestation for the session wallet
func (h *CheckinHandlers) CheckIn(c *gin.Context) {
	address, exists := c.Get("walletAddress")
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Wallet not found in context"})
		return
	}

	record, err := h.checkinService.CheckIn(c.Request.Context(), address.(string))
	if err != nil {
		statusCode := http.StatusInternalServerError
		errorMsg := "Failed to check in"

		switch {
		case errors.Is(err, core.ErrAlreadyCheckedIn):
			statusCode = http.StatusConflict
			errorMsg = "Already checked in today"
		case errors.Is(err, core.ErrSigningRejected):
			statusCode = http.StatusForbidden
			errorMsg = "Signing request rejected"
		case errors.Is(err, core.ErrNoProvider):
			statusCode = http.StatusServiceUnavailable
			errorMsg = err.Error()
		}

		c.JSON(statusCode, gin.H{"error": errorMsg})
		return
	}

	c.JSON(http.StatusOK, record)
}

// Record returns the session wallet's check-in record
func (h *CheckinHandlers) Record(c *gin.Context) {
	address, exists := c.Get("walletAddress")
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Wallet not found in context"})
		return
	}

	record, err := h.checkinService.Record(c.Request.Context(), address.(string))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load record"})
		return
	}

	c.JSON(http.StatusOK, record)
}

// Profile returns any wallet's record read-only, no session needed
func (h *CheckinHandlers) Profile(c *gin.Context) {
	record, err := h.checkinService.Record(c.Request.Context(), c.Param("address"))
	if err != nil {
		if errors.Is(err, core.ErrInvalidAddress) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid address"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load record"})
		return
	}

	c.JSON(http.StatusOK, record)
}

// Share builds the session wallet's card and routes it through the host's
// open-URL action when one is attached
func (h *CheckinHandlers) Share(c *gin.Context) {
	address, exists := c.Get("walletAddress")
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Wallet not found in context"})
		return
	}

	card, err := h.checkinService.Share(c.Request.Context(), address.(string))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to share"})
		return
	}

	c.JSON(http.StatusOK, card)
}

// ShareCard returns the shareable summary for any wallet
func (h *CheckinHandlers) ShareCard(c *gin.Context) {
	card, err := h.checkinService.ShareCard(c.Request.Context(), c.Param("address"))
	if err != nil {
		if errors.Is(err, core.ErrInvalidAddress) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid address"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build share card"})
		return
	}

	c.JSON(http.StatusOK, card)
}
