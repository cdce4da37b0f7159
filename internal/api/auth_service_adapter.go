package api

import (
	"time"

	"github.com/soaringjerry/Jornada/internal/middleware"
	"github.com/soaringjerry/Jornada/internal/services"
)

// NewAdminAuth builds the login service on top of the token layer the router
// checks, so issued tokens always verify against the same secret.
func NewAdminAuth(password, passwordHash string, jwt *middleware.JWTAuth, ttl time.Duration) (*services.AdminAuthService, error) {
	return services.NewAdminAuthService(password, passwordHash, jwt.Sign, ttl)
}
