package handlers

import (
	"task-manager/internal/api/response"
	"task-manager/internal/auth"
	"task-manager/internal/middleware"
	"task-manager/internal/models"
	hub "task-manager/internal/websocket"
	"task-manager/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// UpgradeTaskFeed memverifikasi access token dari query string sebelum
// upgrade; browser tidak bisa mengirim header Authorization untuk WebSocket.
func (h *Handler) UpgradeTaskFeed(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	user, err := h.deps.Auth.Verify(c.UserContext(), c.Query("token"), auth.KindAccess)
	if err != nil {
		logger.SecurityLogger.Warn("Rejected websocket token", zap.String("ip", c.IP()), zap.Error(err))
		return response.Error(c, err)
	}
	middleware.SetCurrentUser(c, user)
	return c.Next()
}

// TaskFeed mendaftarkan koneksi ke hub dan menahannya sampai klien menutup.
// Koneksi dikembalikan ke pool saat handler return, jadi handler menunggu
// WritePump selesai lebih dulu.
func (h *Handler) TaskFeed() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		user, _ := conn.Locals(middleware.IdentityKey).(*models.User)
		client := hub.NewClient(conn, user)

		writerDone := make(chan struct{})
		go func() {
			defer close(writerDone)
			client.WritePump()
		}()
		h.deps.Hub.Register(client)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}

		h.deps.Hub.Unregister(client)
		<-writerDone
	})
}
