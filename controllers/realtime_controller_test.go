package controllers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nutribot/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressWSReceivesBroadcast(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := services.NewMemoryStore()
	hub := services.NewProgressHub()
	rc := NewRealtimeController(store, hub)

	r := gin.New()
	r.GET("/ws/progress", rc.ProgressWS)
	srv := httptest.NewServer(r)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/progress?telegram_id=42"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	user, err := store.GetOrCreateUser(42, "", "", "")
	require.NoError(t, err)

	day := &services.DayAggregate{Date: "2026-08-15"}
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))

	// Registration happens in the handler goroutine after the handshake,
	// so keep broadcasting until the client sees a frame.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		tick := time.NewTicker(10 * time.Millisecond)
		defer tick.Stop()
		for {
			select {
			case <-stop:
				return
			case <-tick.C:
				hub.BroadcastProgress(user.ID, day)
			}
		}
	}()

	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var payload struct {
		Kind string `json:"kind"`
		Day  struct {
			Date string `json:"date"`
		} `json:"day"`
	}
	require.NoError(t, json.Unmarshal(msg, &payload))
	assert.Equal(t, "progress.updated", payload.Kind)
	assert.Equal(t, "2026-08-15", payload.Day.Date)
}
