package handlers

import (
	"fmt"
	"runtime"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Adrianzinhoxp/ticketsdashboard/internal/api/dto"
)

// StatusHandler serves the bot process status surface: a root status
// document with uptime and memory, and a health probe with the bot tag.
type StatusHandler struct {
	startedAt time.Time
	botTag    func() string
}

// NewStatusHandler returns a new handler instance. botTag resolves the
// connected bot identity lazily, since the gateway may still be connecting.
func NewStatusHandler(botTag func() string) *StatusHandler {
	return &StatusHandler{startedAt: time.Now(), botTag: botTag}
}

// Root GET /.
func (h *StatusHandler) Root(c *fiber.Ctx) error {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	return c.JSON(dto.StatusResponse{
		Status:    "✅ Bot Discord Online!",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(h.startedAt).Truncate(time.Second).String(),
		Memory:    fmt.Sprintf("%dMB", mem.HeapAlloc/1024/1024),
	})
}

// Health GET /health.
func (h *StatusHandler) Health(c *fiber.Ctx) error {
	tag := h.botTag()
	if tag == "" {
		tag = "Offline"
	}
	return c.JSON(fiber.Map{"status": "OK", "bot": tag})
}
