package store

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLTx runs lot units of work on database transactions. Row locks taken by
// GetLotForUpdate inside the unit hold until commit or rollback.
type SQLTx struct {
	db *sql.DB
}

func NewSQLTx(db *sql.DB) *SQLTx { return &SQLTx{db: db} }

func (t *SQLTx) RunInTx(ctx context.Context, fn func(s Store) error) error {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(NewPostgresTx(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			return fmt.Errorf("rollback failed: %v (original: %w)", rbErr, err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
