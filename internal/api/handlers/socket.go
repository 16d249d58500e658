package handlers

import (
	"log"
	"net/http"

	ws "github.com/gorilla/websocket"

	"github.com/hyunwoo/beluga-backend/internal/service"
)

var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

type SocketHandler struct {
	accountService *service.AccountService
}

func NewSocketHandler(accountService *service.AccountService) *SocketHandler {
	return &SocketHandler{accountService: accountService}
}

// Handle upgrades an authenticated connection and echoes a greeting for
// every message it receives.
func (h *SocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	// Get token from query parameter
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Token required", http.StatusUnauthorized)
		return
	}

	account, err := h.accountService.ValidateAccessToken(r.Context(), token)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	for {
		msgType, _, err := conn.ReadMessage()
		if err != nil {
			if ws.IsUnexpectedCloseError(err, ws.CloseGoingAway, ws.CloseNormalClosure) {
				log.Printf("WebSocket read error for account %d: %v", account.ID, err)
			}
			return
		}
		if msgType != ws.TextMessage {
			continue
		}
		if err := conn.WriteMessage(ws.TextMessage, []byte("Hello world!")); err != nil {
			log.Printf("WebSocket write error for account %d: %v", account.ID, err)
			return
		}
	}
}
