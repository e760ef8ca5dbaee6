package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/Adrianzinhoxp/ticketsdashboard/pkg/util"
)

// IngestAuth validates the bearer JWT on archive ingestion requests. When no
// shared secret is configured the check is disabled with a startup warning;
// read endpoints stay open either way, matching the original dashboard.
func IngestAuth(manager *TokenManager, secretConfigured bool, logger *zap.Logger) fiber.Handler {
	if !secretConfigured {
		logger.Warn("DASHBOARD_SHARED_SECRET not set; ingestion endpoint is unauthenticated")
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return apperrors.NewUnauthorized("bearer token required")
		}
		if _, err := manager.ParseToken(token); err != nil {
			return apperrors.NewUnauthorized("invalid token")
		}
		return c.Next()
	}
}
