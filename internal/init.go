package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/mazkir/mazkir/internal/apperr"
	"github.com/mazkir/mazkir/internal/clock"
	"github.com/mazkir/mazkir/internal/codec"
	"github.com/mazkir/mazkir/internal/models"
	"github.com/mazkir/mazkir/internal/storage"
	"github.com/mazkir/mazkir/internal/vault"
)

// InitVault creates the vault directory skeleton and seeds the token
// ledger with zero balances. Running it on an existing vault is safe:
// present directories and a present ledger are left untouched.
func InitVault(ctx context.Context, cfg *Config) error {
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return fmt.Errorf("create vault dir: %w", err)
	}

	fs, err := storage.NewFS(cfg.Vault.Path, cfg.Vault.Timeout())
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	store := vault.New(fs, clock.System{}, cfg.Vault.Location())

	for _, dir := range []string{
		vault.HabitsDir,
		vault.GoalsDir,
		vault.DailyDir,
		vault.TasksActiveDir,
		vault.TasksArchiveDir,
	} {
		if err := os.MkdirAll(cfg.Vault.Path+"/"+dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	if _, err := store.Read(ctx, vault.LedgerPath); err == nil {
		slog.Info("ledger already present", slog.String("path", vault.LedgerPath))
		return nil
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return fmt.Errorf("read ledger: %w", err)
	}

	today := store.Today()
	meta := codec.NewMetadata()
	meta.Set(models.FieldTotalTokens, 0)
	meta.Set(models.FieldTokensToday, 0)
	meta.Set(models.FieldAllTimeTokens, 0)
	meta.Set(models.FieldUpdated, today)
	if _, err := store.Create(ctx, vault.LedgerPath, meta, "# Motivation Tokens\n"); err != nil {
		return fmt.Errorf("seed ledger: %w", err)
	}
	slog.Info("ledger seeded", slog.String("path", vault.LedgerPath))
	return nil
}
