package controllers

import (
	"net/http"
	"strconv"
	"time"

	"nutribot/services"

	"github.com/gin-gonic/gin"
)

type SubscriptionController struct {
	Store services.Store
	Quota *services.QuotaService
}

func NewSubscriptionController(store services.Store, quota *services.QuotaService) *SubscriptionController {
	return &SubscriptionController{Store: store, Quota: quota}
}

func (sc *SubscriptionController) Status(c *gin.Context) {
	tid, err := strconv.ParseInt(c.Query("telegram_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid 'telegram_id'"})
		return
	}
	user, err := sc.Store.GetOrCreateUser(tid, "", "", "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	q, err := sc.Store.QuotaByUser(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	remaining, err := sc.Quota.RemainingFree(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"subscribed":       q.Subscribed(time.Now()),
		"subscribed_until": q.SubscribedUntil,
		"free_used":        q.FreeUsed,
		"free_remaining":   remaining,
	})
}

// Cancel clears a user's subscription window. Admin only; this is the
// one way an expiry ever moves backwards.
func (sc *SubscriptionController) Cancel(c *gin.Context) {
	var body struct {
		TelegramID int64 `json:"telegram_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := sc.Store.GetOrCreateUser(body.TelegramID, "", "", "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := sc.Quota.CancelSubscription(user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
