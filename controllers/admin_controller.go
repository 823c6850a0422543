package controllers

import (
	"net/http"
	"time"

	"nutribot/config"
	"nutribot/services"
	"nutribot/utils"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	Store    services.Store
	Settings *config.Settings
}

func NewAdminController(store services.Store, settings *config.Settings) *AdminController {
	return &AdminController{Store: store, Settings: settings}
}

// Health reports the usage counters the operator dashboard polls.
func (ac *AdminController) Health(c *gin.Context) {
	counts, err := ac.Store.Counts(time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"counts": counts,
		"time":   time.Now().UTC(),
	})
}

// IssueToken hands out an operator JWT for an admin user. The chat
// adapter calls it when an admin asks for dashboard access; a user
// qualifies through the stored admin flag or the bootstrap ID list.
func (ac *AdminController) IssueToken(c *gin.Context) {
	var body struct {
		TelegramID int64 `json:"telegram_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := ac.Store.GetOrCreateUser(body.TelegramID, "", "", "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !user.IsAdmin && !ac.Settings.IsAdminID(user.TelegramID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not an admin"})
		return
	}

	token, err := utils.GenerateAdminJWT(user.TelegramID, ac.Settings.JWTSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
