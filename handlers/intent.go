package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"quickbook/middleware"
	"quickbook/models"
	"quickbook/services/booking"
	"quickbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IntentHandler serves the quick-book intent endpoints.
type IntentHandler struct {
	Service booking.IntentService
	Logger  *zap.Logger
}

func NewIntentHandler(svc booking.IntentService, logger *zap.Logger) *IntentHandler {
	if logger == nil {
		logger = utils.GetLogger()
	}
	return &IntentHandler{Service: svc, Logger: logger}
}

// StartIntentHandler creates an intent for the selected service.
func (h *IntentHandler) StartIntentHandler(c *gin.Context) {
	scope := middleware.ScopeFromContext(c)

	var req models.StartIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, booking.CodeValidation, "Invalid request payload", err.Error())
		return
	}

	intent, err := h.Service.StartIntent(c.Request.Context(), scope, booking.StartIntentInput{
		SessionID:     req.SessionID,
		ServiceName:   req.ServiceName,
		PriceCents:    req.PriceCents,
		DurationLabel: req.DurationLabel,
		BookingType:   req.BookingType,
	})
	if err != nil {
		h.writeError(c, "StartIntent", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"intentId": intent.ID})
}

// AttachContactHandler stores the visitor's contact details on the intent.
func (h *IntentHandler) AttachContactHandler(c *gin.Context) {
	scope := middleware.ScopeFromContext(c)
	intentID := c.Param("intentId")

	var req models.AttachContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, booking.CodeValidation, "Invalid request payload", err.Error())
		return
	}

	res, err := h.Service.AttachContact(c.Request.Context(), scope, intentID, models.Contact{
		Name:  req.Name,
		Phone: req.Phone,
		Email: req.Email,
	})
	if err != nil {
		h.writeError(c, "AttachContact", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"leadId": res.LeadID})
}

// ClickHandler resolves the booking handoff. Replays return the recorded result.
func (h *IntentHandler) ClickHandler(c *gin.Context) {
	scope := middleware.ScopeFromContext(c)
	intentID := c.Param("intentId")

	res, err := h.Service.Click(c.Request.Context(), scope, intentID)
	if err != nil {
		h.writeError(c, "Click", err)
		return
	}

	body := gin.H{
		"handling":     res.Handling,
		"redirectType": res.RedirectType,
	}
	if res.URL != "" {
		body["url"] = res.URL
	}
	if res.ProviderName != "" {
		body["providerName"] = res.ProviderName
	}
	c.JSON(http.StatusOK, body)
}

// CompleteHandler marks the intent done once the visitor has been handed off.
func (h *IntentHandler) CompleteHandler(c *gin.Context) {
	scope := middleware.ScopeFromContext(c)

	intent, err := h.Service.Complete(c.Request.Context(), scope, c.Param("intentId"))
	if err != nil {
		h.writeError(c, "Complete", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"intentId": intent.ID, "status": intent.Status})
}

// GetIntentHandler returns the stored intent so the widget can resume.
func (h *IntentHandler) GetIntentHandler(c *gin.Context) {
	scope := middleware.ScopeFromContext(c)

	intent, err := h.Service.GetIntent(c.Request.Context(), scope, c.Param("intentId"))
	if err != nil {
		h.writeError(c, "GetIntent", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"intent": intent})
}

// ExportIntentsHandler lists a workspace's intents updated since a timestamp.
func (h *IntentHandler) ExportIntentsHandler(c *gin.Context) {
	workspaceID := c.Param("workspaceId")

	var since time.Time
	if raw := c.Query("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, booking.CodeValidation, "since must be an RFC3339 timestamp", err.Error())
			return
		}
		since = t
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, booking.CodeValidation, "limit must be a number", err.Error())
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, booking.CodeValidation, "offset must be a number", err.Error())
		return
	}

	intents, err := h.Service.ExportIntents(c.Request.Context(), workspaceID, since, limit, offset)
	if err != nil {
		h.writeError(c, "ExportIntents", err)
		return
	}
	if intents == nil {
		intents = []models.BookingIntent{}
	}
	c.JSON(http.StatusOK, gin.H{"intents": intents, "count": len(intents)})
}

func (h *IntentHandler) writeError(c *gin.Context, op string, err error) {
	var ie *booking.IntentError
	if errors.As(err, &ie) {
		utils.JSONError(c, statusForCode(ie.Code), ie.Code, ie.Message, "")
		return
	}
	h.Logger.Error(op+": request failed",
		zap.String("workspaceId", c.Param("workspaceId")),
		zap.String("botId", c.Param("botId")),
		zap.String("intentId", c.Param("intentId")),
		zap.Error(err))
	utils.JSONError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong, please try again", "")
}

func statusForCode(code string) int {
	switch code {
	case booking.CodeIntentNotFound:
		return http.StatusNotFound
	case booking.CodeValidation:
		return http.StatusBadRequest
	case booking.CodeContactRequired:
		return http.StatusUnprocessableEntity
	case booking.CodeContactNotCaptured, booking.CodeAlreadyBooked, booking.CodeNotClicked:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
