// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"

	userstore "github.com/reservehub/reservehub/internal/app/store/users"
	"github.com/reservehub/reservehub/internal/app/system/authz"
	"github.com/reservehub/reservehub/internal/app/system/normalize"
	"github.com/reservehub/reservehub/internal/app/system/timeouts"
	"github.com/reservehub/reservehub/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
// It applies timeout overrides from the environment and makes sure the
// configured bootstrap admin account exists.
//
// Background work (the consistency sweeper and scheduled jobs) starts in
// BuildHandler, once the full dependency set is assembled; Shutdown
// stops it.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeout overrides applied from environment", zap.Int("count", n))
	}

	if appCfg.AdminEmail != "" {
		if err := ensureAdmin(ctx, deps, appCfg.AdminEmail, appCfg.AdminPassword, logger); err != nil {
			return err
		}
	}
	return nil
}

// ensureAdmin creates the bootstrap admin account, or promotes the
// existing account with that email to admin. The password only applies
// on creation; an existing user keeps their credentials.
func ensureAdmin(ctx context.Context, deps DBDeps, email, password string, logger *zap.Logger) error {
	users := userstore.New(deps.MongoDatabase)
	email = normalize.Email(email)

	u, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if u.Role == authz.RoleAdmin {
			return nil
		}
		if err := users.SetRole(ctx, u.ID, authz.RoleAdmin); err != nil {
			return err
		}
		logger.Info("promoted bootstrap admin",
			zap.String("email", email),
			zap.String("previous_role", u.Role))
		return nil

	case errors.Is(err, mongo.ErrNoDocuments):
		created, err := users.Create(ctx, models.User{
			FullName: "Administrator",
			Email:    email,
			Role:     authz.RoleAdmin,
		}, password)
		if err != nil {
			return err
		}
		logger.Info("created bootstrap admin",
			zap.String("email", email),
			zap.String("user_id", created.ID.Hex()))
		return nil

	default:
		return err
	}
}
