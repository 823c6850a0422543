package controllers

import (
	"net/http"
	"strconv"
	"time"

	"nutribot/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type RealtimeController struct {
	Store services.Store
	Hub   *services.ProgressHub
}

func NewRealtimeController(store services.Store, hub *services.ProgressHub) *RealtimeController {
	return &RealtimeController{Store: store, Hub: hub}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // tighten behind ALB/CloudFront if needed
}

// ProgressWS streams day-progress updates to a client while it is open.
func (rc *RealtimeController) ProgressWS(c *gin.Context) {
	tid, err := strconv.ParseInt(c.Query("telegram_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid 'telegram_id'"})
		return
	}
	user, err := rc.Store.GetOrCreateUser(tid, "", "", "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	cl := &services.WSClient{UserID: user.ID, Conn: conn}
	rc.Hub.Register(cl)

	// ping to keep connections alive through some proxies
	go func() {
		t := time.NewTicker(25 * time.Second)
		defer t.Stop()
		for range t.C {
			if err := cl.WriteMessage(websocket.PingMessage, nil); err != nil {
				rc.Hub.Unregister(cl)
				return
			}
		}
	}()

	// read loop ends on client close/error → unregister
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			rc.Hub.Unregister(cl)
			return
		}
	}
}
