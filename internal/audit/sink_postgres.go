package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	id "github.com/Soozey/MADAVOLA/pkg/domain"
)

// PostgresSink appends audit events to the audit_events table. Used when no
// broker is configured; the trail then lives next to the business data.
type PostgresSink struct {
	db *sql.DB
}

func NewPostgresSink(db *sql.DB) *PostgresSink { return &PostgresSink{db: db} }

func (s *PostgresSink) Append(ctx context.Context, event Event) error {
	var meta []byte
	if len(event.Meta) > 0 {
		var err error
		meta, err = json.Marshal(event.Meta)
		if err != nil {
			return fmt.Errorf("marshal audit meta: %w", err)
		}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events (actor_id, action, entity_type, entity_id, meta, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		event.ActorID.String(), event.Action, event.EntityType, event.EntityID, meta, event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ByEntity reads one entity's trail, oldest first.
func (s *PostgresSink) ByEntity(ctx context.Context, entityType, entityID string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT actor_id, action, entity_type, entity_id, meta, occurred_at
		FROM audit_events
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY id`,
		entityType, entityID,
	)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			event Event
			actor string
			meta  []byte
		)
		if err := rows.Scan(&actor, &event.Action, &event.EntityType, &event.EntityID, &meta, &event.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		parsed, err := id.ParseActorID(actor)
		if err != nil {
			return nil, fmt.Errorf("parse audit actor: %w", err)
		}
		event.ActorID = parsed
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &event.Meta); err != nil {
				return nil, fmt.Errorf("unmarshal audit meta: %w", err)
			}
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
