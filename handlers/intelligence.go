package handlers

import (
	"errors"
	"net/http"

	"quickbook/middleware"
	"quickbook/models"
	"quickbook/services/booking"
	ai "quickbook/services/intelligence"
	"quickbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChatIntentHandler exposes booking intent detection to the chat assistant.
type ChatIntentHandler struct {
	Service ai.ChatIntentService
}

func NewChatIntentHandler(svc ai.ChatIntentService) *ChatIntentHandler {
	return &ChatIntentHandler{Service: svc}
}

func (h *ChatIntentHandler) DetectBookingIntentHandler(c *gin.Context) {
	logger := getLogger(c)
	scope := middleware.ScopeFromContext(c)

	var req models.ChatBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, booking.CodeValidation, "Invalid request payload", err.Error())
		return
	}

	resp, err := h.Service.DetectBookingIntent(c.Request.Context(), scope, req)
	if err != nil {
		var ie *booking.IntentError
		if errors.As(err, &ie) {
			utils.JSONError(c, http.StatusBadRequest, ie.Code, ie.Message, "")
			return
		}
		logger.Error("booking intent detection failed", zap.String("sessionId", req.SessionID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process message", "")
		return
	}

	c.JSON(http.StatusOK, resp)
}
