package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	gws "github.com/gorilla/websocket"
	apperrors "github.com/ikkim/vitrine-backend/internal/errors"
	"github.com/ikkim/vitrine-backend/internal/middleware"
	ws "github.com/ikkim/vitrine-backend/internal/websocket"
)

type WSController struct {
	hub      *ws.Hub
	upgrader gws.Upgrader
}

// NewWSController accepts upgrades from the configured origins only; a
// wildcard entry or a request without Origin header is accepted.
func NewWSController(hub *ws.Hub, allowedOrigins []string) *WSController {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &WSController{
		hub: hub,
		upgrader: gws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
	}
}

// Stream upgrades to the session's effect stream
// GET /api/v1/ws?token=
// 토큰은 쿼리로 받지만 로깅하지 않음
func (ctrl *WSController) Stream(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	sessionID, ok := middleware.GetSessionID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Failed to upgrade to WebSocket", err)
		return
	}

	client := ws.NewClient(ctrl.hub, &ws.Conn{Conn: conn}, sessionID)
	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	log.Info("WebSocket connection established")
}
