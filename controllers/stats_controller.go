package controllers

import (
	"net/http"
	"strconv"
	"time"

	"nutribot/services"

	"github.com/gin-gonic/gin"
)

type StatsController struct {
	Store    services.Store
	Entries  *services.EntryService
	Calendar *services.CalendarService
}

func NewStatsController(store services.Store, entries *services.EntryService, calendar *services.CalendarService) *StatsController {
	return &StatsController{Store: store, Entries: entries, Calendar: calendar}
}

func (sc *StatsController) userID(c *gin.Context) (uint, bool) {
	tid, err := strconv.ParseInt(c.Query("telegram_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid 'telegram_id'"})
		return 0, false
	}
	u, err := sc.Store.GetOrCreateUser(tid, "", "", "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return 0, false
	}
	return u.ID, true
}

// Day returns the aggregate for one date, or 204 when the date has no
// entries (distinct from a zero day).
func (sc *StatsController) Day(c *gin.Context) {
	userID, ok := sc.userID(c)
	if !ok {
		return
	}

	dateStr := c.Query("date")
	if dateStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing 'date' query param"})
		return
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format. Use YYYY-MM-DD"})
		return
	}

	day, err := sc.Entries.AggregateDay(userID, date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if day == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, day)
}

// Range returns the aggregates for an inclusive date range.
func (sc *StatsController) Range(c *gin.Context) {
	userID, ok := sc.userID(c)
	if !ok {
		return
	}

	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'from' date. Use YYYY-MM-DD"})
		return
	}
	to, err := time.Parse("2006-01-02", c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'to' date. Use YYYY-MM-DD"})
		return
	}

	days, err := sc.Entries.Aggregate(userID, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, days)
}

// Days pages through the calendar of dates that have entries.
func (sc *StatsController) Days(c *gin.Context) {
	userID, ok := sc.userID(c)
	if !ok {
		return
	}

	anchor := time.Now()
	if s := c.Query("anchor"); s != "" {
		var err error
		anchor, err = time.Parse("2006-01-02", s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'anchor' date. Use YYYY-MM-DD"})
			return
		}
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "7"))

	dates, err := sc.Calendar.ListDays(userID, anchor, services.Direction(c.DefaultQuery("direction", "backward")), pageSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.Format("2006-01-02"))
	}
	c.JSON(http.StatusOK, gin.H{"dates": out})
}
