package controllers

import (
	"net/http"

	"nutribot/services"

	"github.com/gin-gonic/gin"
)

type EventController struct {
	Store  services.Store
	Dialog *services.DialogService
}

func NewEventController(store services.Store, dialog *services.DialogService) *EventController {
	return &EventController{Store: store, Dialog: dialog}
}

// HandleEvent is the single intake for everything the chat adapter
// decoded from an update: commands, wizard answers, meal photos,
// payment callbacks, synthetic timeout ticks.
func (ec *EventController) HandleEvent(c *gin.Context) {
	var body struct {
		TelegramID int64          `json:"telegram_id" binding:"required"`
		Username   string         `json:"username"`
		FirstName  string         `json:"first_name"`
		LastName   string         `json:"last_name"`
		Event      services.Event `json:"event" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := ec.Store.GetOrCreateUser(body.TelegramID, body.Username, body.FirstName, body.LastName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := ec.Dialog.HandleEvent(user.ID, body.Event)
	c.JSON(http.StatusOK, resp)
}
