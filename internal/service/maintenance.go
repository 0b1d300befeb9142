package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jask/smartsavernet/internal/database"
)

// MaintenanceService houses destructive/ops actions surfaced through the CLI.
type MaintenanceService struct {
	DB     *sql.DB
	Driver database.Driver
}

// Wipe deletes every stored transaction for all users. The schema stays intact.
func (s *MaintenanceService) Wipe(ctx context.Context) (int64, error) {
	if s.DB == nil {
		return 0, fmt.Errorf("maintenance: %w", ErrNoDatabase)
	}
	var n int64
	if err := database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM transactions")
		if err != nil {
			return fmt.Errorf("wipe transactions: %w", err)
		}
		n, err = res.RowsAffected()
		return err
	}); err != nil {
		return 0, err
	}
	if s.Driver == database.SQLite {
		_, _ = s.DB.ExecContext(ctx, "VACUUM")
	}
	return n, nil
}
