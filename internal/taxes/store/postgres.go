package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Soozey/MADAVOLA/internal/taxes/models"
	id "github.com/Soozey/MADAVOLA/pkg/domain"
	"github.com/Soozey/MADAVOLA/pkg/platform/sentinel"
)

const recordColumns = `id, event_type, event_id, tax_type, beneficiary_level, beneficiary_id,
	beneficiary_key, base_amount, rate, amount, currency, status, attribution_note, created_at`

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Postgres implements Store against a SQL connection or transaction. The
// active-uniqueness guard is the partial unique index on tax_records; a
// violation surfaces as sentinel.ErrConflict.
type Postgres struct {
	q querier
}

func NewPostgres(db *sql.DB) *Postgres   { return &Postgres{q: db} }
func NewPostgresTx(tx *sql.Tx) *Postgres { return &Postgres{q: tx} }

func (p *Postgres) HasActiveEvent(ctx context.Context, eventType, eventID string) (bool, error) {
	var exists bool
	err := p.q.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM tax_records
			WHERE event_type = $1 AND event_id = $2 AND status IN ('DUE', 'PAID')
		)`, eventType, eventID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check active event: %w", err)
	}
	return exists, nil
}

func (p *Postgres) CreateBatch(ctx context.Context, records []models.TaxRecord) error {
	for _, r := range records {
		var beneficiary any
		if r.BeneficiaryID != nil {
			beneficiary = uuid.UUID(*r.BeneficiaryID)
		}
		var note any
		if r.AttributionNote != "" {
			note = r.AttributionNote
		}
		_, err := p.q.ExecContext(ctx, `
			INSERT INTO tax_records (id, event_type, event_id, tax_type, beneficiary_level,
				beneficiary_id, beneficiary_key, base_amount, rate, amount, currency,
				status, attribution_note, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			uuid.UUID(r.ID), r.EventType, r.EventID, string(r.TaxType), string(r.Level),
			beneficiary, r.BeneficiaryKey, r.BaseAmount, r.Rate, r.Amount, r.Currency,
			string(r.Status), note, r.CreatedAt)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
				return sentinel.ErrConflict
			}
			return fmt.Errorf("insert tax record: %w", err)
		}
	}
	return nil
}

func (p *Postgres) GetRecord(ctx context.Context, recordID id.TaxRecordID) (*models.TaxRecord, error) {
	row := p.q.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM tax_records WHERE id = $1`, uuid.UUID(recordID))
	return scanRecord(row)
}

func (p *Postgres) UpdateStatus(ctx context.Context, recordID id.TaxRecordID, status models.Status) error {
	res, err := p.q.ExecContext(ctx,
		`UPDATE tax_records SET status = $2 WHERE id = $1`,
		uuid.UUID(recordID), string(status))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("update tax record status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (p *Postgres) List(ctx context.Context, filter Filter) ([]models.TaxRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM tax_records`
	var conds []string
	var args []any
	if filter.EventType != nil {
		args = append(args, *filter.EventType)
		conds = append(conds, fmt.Sprintf("event_type = $%d", len(args)))
	}
	if filter.EventID != nil {
		args = append(args, *filter.EventID)
		conds = append(conds, fmt.Sprintf("event_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := p.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tax records: %w", err)
	}
	defer rows.Close()

	var records []models.TaxRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.TaxRecord, error) {
	var (
		r              models.TaxRecord
		recordID       uuid.UUID
		beneficiary    uuid.NullUUID
		taxType, level string
		status         string
		note           sql.NullString
	)
	err := row.Scan(&recordID, &r.EventType, &r.EventID, &taxType, &level, &beneficiary,
		&r.BeneficiaryKey, &r.BaseAmount, &r.Rate, &r.Amount, &r.Currency, &status,
		&note, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan tax record: %w", err)
	}
	r.ID = id.TaxRecordID(recordID)
	r.TaxType = models.TaxType(taxType)
	r.Level = models.BeneficiaryLevel(level)
	r.Status = models.Status(status)
	r.AttributionNote = note.String
	if beneficiary.Valid {
		beneficiaryID := id.BeneficiaryID(beneficiary.UUID)
		r.BeneficiaryID = &beneficiaryID
	}
	return &r, nil
}
