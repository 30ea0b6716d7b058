// internal/handlers/websocket/ws_handler.go
package websocket

import (
	"net/http"

	"github.com/basharmd94/orderapp-sub000/internal/middleware"
	"github.com/basharmd94/orderapp-sub000/internal/pkg/response"
	ws "github.com/basharmd94/orderapp-sub000/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Token auth happens before the upgrade; origin is not the gate here.
		return true
	},
}

type WebSocketHandler struct {
	hub    *ws.Hub
	logger *zap.Logger
}

func NewWebSocketHandler(hub *ws.Hub, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, logger: logger}
}

// HandleConnection upgrades an authenticated request to a websocket and
// subscribes it to the caller's session events. Runs behind Auth(), which
// accepts the token via the query param for browser clients.
func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}

	client := ws.NewClient(h.hub, conn, claims.Username, h.logger)
	client.Start()
}
