package di

import (
	"fmt"
	"path/filepath"

	"github.com/okushigue/rzqr/internal/config"
	"github.com/okushigue/rzqr/internal/database"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens the run ledger and applies its schema
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	// runs.db - finished pipeline runs, write-only from the pipeline's point of view
	ledgerDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "runs.db"),
		Profile: database.ProfileLedger,
		Name:    "runs",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize runs database: %w", err)
	}
	if err := ledgerDB.Migrate(); err != nil {
		ledgerDB.Close()
		return nil, fmt.Errorf("failed to migrate runs database: %w", err)
	}
	container.LedgerDB = ledgerDB

	log.Info().Str("path", ledgerDB.Path()).Msg("Run ledger initialized")
	return container, nil
}
