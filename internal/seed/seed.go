// Package seed loads demo catalog data and an admin account.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/importer"
	"storefront/internal/logging"
	"storefront/internal/service/user"

	"go.uber.org/zap"
)

//go:embed demo.csv
var demoCatalog []byte

type adminEnsurer interface {
	EnsureAdmin(ctx context.Context, in user.SignupInput) (*domain.User, error)
}

// Admin holds the credentials of the seeded admin account. An empty email
// skips admin creation.
type Admin struct {
	Name     string
	Email    string
	Password string
}

// Apply inserts demo data for manual testing. Products carry fixed ids and the
// admin is only created once, so running it again is harmless.
func Apply(ctx context.Context, catalog importer.CatalogWriter, users adminEnsurer, admin Admin, logger *zap.Logger) error {
	logger = logging.OrNop(logger)
	res, err := importer.NewCSVImporter(bytes.NewReader(demoCatalog), catalog, logger).Run(ctx)
	if err != nil {
		return fmt.Errorf("import demo catalog: %w", err)
	}
	logger.Info("seed: catalog loaded", zap.Int("products", res.Products), zap.Int("new_categories", res.Categories))

	if admin.Email == "" {
		return nil
	}
	u, err := users.EnsureAdmin(ctx, user.SignupInput{Name: admin.Name, Email: admin.Email, Password: admin.Password})
	if err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	logger.Info("seed: admin ready", zap.String("user_id", u.ID), zap.String("email", u.Email))
	return nil
}
