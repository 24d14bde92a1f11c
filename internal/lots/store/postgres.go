package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/Soozey/MADAVOLA/internal/lots/models"
	id "github.com/Soozey/MADAVOLA/pkg/domain"
	"github.com/Soozey/MADAVOLA/pkg/platform/sentinel"
)

const lotColumns = `id, filiere, product_type, unit, quantity, status, declared_by_actor_id,
	owner_actor_id, origin_geo_point_id, parent_lot_id, receipt_number, qr_value, declared_at`

// querier is satisfied by both *sql.DB and *sql.Tx so the same queries serve
// transactional and read-only paths.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Postgres implements Store against a SQL connection or transaction.
type Postgres struct {
	q querier
}

// NewPostgres binds the store to a connection pool for read-only use.
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{q: db} }

// NewPostgresTx binds the store to one transaction; every write issued through
// it commits or rolls back together.
func NewPostgresTx(tx *sql.Tx) *Postgres { return &Postgres{q: tx} }

func (p *Postgres) GetLot(ctx context.Context, lotID id.LotID) (*models.Lot, error) {
	row := p.q.QueryRowContext(ctx, `SELECT `+lotColumns+` FROM lots WHERE id = $1`, uuid.UUID(lotID))
	return scanLot(row)
}

func (p *Postgres) GetLotForUpdate(ctx context.Context, lotID id.LotID) (*models.Lot, error) {
	row := p.q.QueryRowContext(ctx, `SELECT `+lotColumns+` FROM lots WHERE id = $1 FOR UPDATE`, uuid.UUID(lotID))
	return scanLot(row)
}

func (p *Postgres) GetLotsForUpdate(ctx context.Context, lotIDs []id.LotID) ([]*models.Lot, error) {
	raw := make([]uuid.UUID, len(lotIDs))
	for i, lotID := range lotIDs {
		raw[i] = uuid.UUID(lotID)
	}
	// Stable lock order so concurrent consolidations cannot deadlock.
	rows, err := p.q.QueryContext(ctx,
		`SELECT `+lotColumns+` FROM lots WHERE id = ANY($1) ORDER BY id FOR UPDATE`,
		pq.Array(raw))
	if err != nil {
		return nil, fmt.Errorf("lock lots: %w", err)
	}
	defer rows.Close()

	byID := make(map[id.LotID]*models.Lot, len(lotIDs))
	for rows.Next() {
		lot, err := scanLotRows(rows)
		if err != nil {
			return nil, err
		}
		byID[lot.ID] = lot
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("lock lots: %w", err)
	}

	lots := make([]*models.Lot, 0, len(lotIDs))
	for _, lotID := range lotIDs {
		lot, ok := byID[lotID]
		if !ok {
			return nil, sentinel.ErrNotFound
		}
		lots = append(lots, lot)
	}
	return lots, nil
}

func (p *Postgres) ListLots(ctx context.Context, filter LotFilter) ([]*models.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots`
	var conds []string
	var args []any
	if filter.Owner != nil {
		args = append(args, uuid.UUID(*filter.Owner))
		conds = append(conds, fmt.Sprintf("owner_actor_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY declared_at DESC"

	rows, err := p.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	defer rows.Close()

	var lots []*models.Lot
	for rows.Next() {
		lot, err := scanLotRows(rows)
		if err != nil {
			return nil, err
		}
		lots = append(lots, lot)
	}
	return lots, rows.Err()
}

func (p *Postgres) InsertLot(ctx context.Context, lot *models.Lot) error {
	var parent any
	if lot.ParentLotID != nil {
		parent = uuid.UUID(*lot.ParentLotID)
	}
	_, err := p.q.ExecContext(ctx, `
		INSERT INTO lots (id, filiere, product_type, unit, quantity, status,
			declared_by_actor_id, owner_actor_id, origin_geo_point_id, parent_lot_id,
			receipt_number, qr_value, declared_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		uuid.UUID(lot.ID), string(lot.Filiere), lot.ProductType, lot.Unit, lot.Quantity,
		string(lot.Status), uuid.UUID(lot.DeclaredBy), uuid.UUID(lot.Owner),
		uuid.UUID(lot.OriginGeoID), parent, lot.ReceiptNumber, lot.QRValue, lot.DeclaredAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert lot: %w", err)
	}
	return nil
}

func (p *Postgres) UpdateLotStatusAndOwner(ctx context.Context, lotID id.LotID, status models.Status, owner id.ActorID) error {
	res, err := p.q.ExecContext(ctx,
		`UPDATE lots SET status = $2, owner_actor_id = $3 WHERE id = $1`,
		uuid.UUID(lotID), string(status), uuid.UUID(owner))
	if err != nil {
		return fmt.Errorf("update lot: %w", err)
	}
	return requireOneRow(res)
}

func (p *Postgres) SetParentLot(ctx context.Context, lotID id.LotID, parent id.LotID) error {
	res, err := p.q.ExecContext(ctx,
		`UPDATE lots SET parent_lot_id = $2 WHERE id = $1`,
		uuid.UUID(lotID), uuid.UUID(parent))
	if err != nil {
		return fmt.Errorf("set parent lot: %w", err)
	}
	return requireOneRow(res)
}

func (p *Postgres) InsertLedgerEntries(ctx context.Context, entries []models.LedgerEntry) error {
	for _, e := range entries {
		_, err := p.q.ExecContext(ctx, `
			INSERT INTO inventory_ledger (id, actor_id, lot_id, movement_type,
				quantity_delta, ref_event_type, ref_event_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			uuid.UUID(e.ID), uuid.UUID(e.ActorID), uuid.UUID(e.LotID), string(e.MovementType),
			e.QuantityDelta, string(e.RefEventType), e.RefEventID, e.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert ledger entry: %w", err)
		}
	}
	return nil
}

func (p *Postgres) ListLedger(ctx context.Context, filter LedgerFilter) ([]models.LedgerEntry, error) {
	query := `SELECT id, actor_id, lot_id, movement_type, quantity_delta,
		ref_event_type, ref_event_id, created_at FROM inventory_ledger`
	var conds []string
	var args []any
	if filter.ActorID != nil {
		args = append(args, uuid.UUID(*filter.ActorID))
		conds = append(conds, fmt.Sprintf("actor_id = $%d", len(args)))
	}
	if filter.LotID != nil {
		args = append(args, uuid.UUID(*filter.LotID))
		conds = append(conds, fmt.Sprintf("lot_id = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := p.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	defer rows.Close()

	var entries []models.LedgerEntry
	for rows.Next() {
		var (
			e                       models.LedgerEntry
			entryID, actorID, lotID uuid.UUID
			movementType, refType   string
		)
		if err := rows.Scan(&entryID, &actorID, &lotID, &movementType,
			&e.QuantityDelta, &refType, &e.RefEventID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		e.ID = id.LedgerEntryID(entryID)
		e.ActorID = id.ActorID(actorID)
		e.LotID = id.LotID(lotID)
		e.MovementType = models.MovementType(movementType)
		e.RefEventType = models.RefEventType(refType)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (p *Postgres) SumDeltas(ctx context.Context, actorID *id.ActorID, lotID *id.LotID) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(quantity_delta), 0) FROM inventory_ledger`
	var conds []string
	var args []any
	if actorID != nil {
		args = append(args, uuid.UUID(*actorID))
		conds = append(conds, fmt.Sprintf("actor_id = $%d", len(args)))
	}
	if lotID != nil {
		args = append(args, uuid.UUID(*lotID))
		conds = append(conds, fmt.Sprintf("lot_id = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	var sum decimal.Decimal
	if err := p.q.QueryRowContext(ctx, query, args...).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum deltas: %w", err)
	}
	return sum, nil
}

func (p *Postgres) ListBalances(ctx context.Context, actorID *id.ActorID) ([]models.Balance, error) {
	query := `SELECT actor_id, lot_id, SUM(quantity_delta) FROM inventory_ledger`
	var args []any
	if actorID != nil {
		args = append(args, uuid.UUID(*actorID))
		query += " WHERE actor_id = $1"
	}
	query += " GROUP BY actor_id, lot_id ORDER BY actor_id, lot_id"

	rows, err := p.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}
	defer rows.Close()

	var balances []models.Balance
	for rows.Next() {
		var (
			b              models.Balance
			actor, lotUUID uuid.UUID
		)
		if err := rows.Scan(&actor, &lotUUID, &b.Quantity); err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		b.ActorID = id.ActorID(actor)
		b.LotID = id.LotID(lotUUID)
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLot(row rowScanner) (*models.Lot, error) {
	var (
		lot                      models.Lot
		lotID, declaredBy, owner uuid.UUID
		origin                   uuid.UUID
		parent                   uuid.NullUUID
		filiere, status          string
		receipt, qr              sql.NullString
	)
	err := row.Scan(&lotID, &filiere, &lot.ProductType, &lot.Unit, &lot.Quantity, &status,
		&declaredBy, &owner, &origin, &parent, &receipt, &qr, &lot.DeclaredAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan lot: %w", err)
	}
	lot.ID = id.LotID(lotID)
	lot.Filiere = models.Filiere(filiere)
	lot.Status = models.Status(status)
	lot.DeclaredBy = id.ActorID(declaredBy)
	lot.Owner = id.ActorID(owner)
	lot.OriginGeoID = id.GeoPointID(origin)
	if parent.Valid {
		parentID := id.LotID(parent.UUID)
		lot.ParentLotID = &parentID
	}
	lot.ReceiptNumber = receipt.String
	lot.QRValue = qr.String
	return &lot, nil
}

func scanLotRows(rows *sql.Rows) (*models.Lot, error) {
	return scanLot(rows)
}

func requireOneRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
