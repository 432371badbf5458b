package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/coursewire/coursewire/internal/application"
	"github.com/coursewire/coursewire/internal/interface/middleware"
	"github.com/coursewire/coursewire/pkg/response"
)

type BillingHandler struct {
	Svc    *application.BillingService
	Logger *logrus.Logger
}

func NewBillingHandler(svc *application.BillingService, logger *logrus.Logger) *BillingHandler {
	return &BillingHandler{Svc: svc, Logger: logger}
}

// Subscribe GET /api/subscribe (authenticated)
func (h *BillingHandler) Subscribe(c *gin.Context) {
	u := middleware.CurrentUser(c)
	sub, err := h.Svc.BuySubscription(c.Request.Context(), u)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"subscription_id": sub.ID,
		"status":          sub.Status,
	}, "subscription purchased successfully")
}
