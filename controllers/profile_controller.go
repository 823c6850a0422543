package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"nutribot/services"

	"github.com/gin-gonic/gin"
)

type ProfileController struct {
	Store services.Store
}

func NewProfileController(store services.Store) *ProfileController {
	return &ProfileController{Store: store}
}

func (pc *ProfileController) GetProfile(c *gin.Context) {
	tid, err := strconv.ParseInt(c.Query("telegram_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid 'telegram_id'"})
		return
	}

	user, err := pc.Store.GetOrCreateUser(tid, "", "", "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	p, err := pc.Store.ProfileByUser(user.ID)
	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not set up yet"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sex":            p.Sex,
		"age":            p.Age,
		"weight":         p.Weight,
		"height":         p.Height,
		"activity":       p.Activity,
		"goal":           p.Goal,
		"manual_targets": p.ManualTargets,
		"targets": gin.H{
			"calories": p.TargetCalories,
			"protein":  p.TargetProtein,
			"fat":      p.TargetFat,
			"carbs":    p.TargetCarbs,
		},
	})
}
