// Package service implements the tax event recorder.
//
// One taxable event yields one atomic batch of five records: the redevance
// line and the four ristourne lines. Duplicate protection is layered: an
// advisory existence check fails fast, and the storage-level uniqueness guard
// is the authoritative, race-safe one, converted to a conflict error when a
// concurrent caller wins.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Soozey/MADAVOLA/internal/audit"
	"github.com/Soozey/MADAVOLA/internal/taxes/calc"
	taxmetrics "github.com/Soozey/MADAVOLA/internal/taxes/metrics"
	"github.com/Soozey/MADAVOLA/internal/taxes/models"
	"github.com/Soozey/MADAVOLA/internal/taxes/store"
	id "github.com/Soozey/MADAVOLA/pkg/domain"
	dErrors "github.com/Soozey/MADAVOLA/pkg/domain-errors"
	"github.com/Soozey/MADAVOLA/pkg/platform/sentinel"
	"github.com/Soozey/MADAVOLA/pkg/requestcontext"
)

// AuditRecorder receives the side-channel trail. Implementations must not block.
type AuditRecorder interface {
	Record(ctx context.Context, event audit.Event)
}

// Service records tax apportionments for taxable events.
type Service struct {
	tx      store.Tx
	rates   calc.Rates
	audit   AuditRecorder
	logger  *slog.Logger
	metrics *taxmetrics.Metrics
	tracer  trace.Tracer
}

type Option func(s *Service)

func WithAuditRecorder(recorder AuditRecorder) Option {
	return func(s *Service) { s.audit = recorder }
}

func WithMetrics(m *taxmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithRates overrides the decree rates, for a rate revision.
func WithRates(rates calc.Rates) Option {
	return func(s *Service) { s.rates = rates }
}

func New(tx store.Tx, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		tx:     tx,
		rates:  calc.DefaultRates(),
		logger: logger,
		tracer: otel.Tracer("madavola/taxes"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateTaxEventRequest carries one taxable event. Beneficiary ids are
// optional; a territorial line without one is recorded as pending attribution.
type CreateTaxEventRequest struct {
	Recorder   id.ActorID
	EventType  string
	EventID    string
	BaseAmount decimal.Decimal
	Currency   string
	CommuneID  *id.BeneficiaryID
	RegionID   *id.BeneficiaryID
	ProvinceID *id.BeneficiaryID
}

// CreateTaxEvent apportions the event base and records the five beneficiary
// lines atomically, all with status DUE.
func (s *Service) CreateTaxEvent(ctx context.Context, req CreateTaxEventRequest) ([]models.TaxRecord, error) {
	ctx, span := s.tracer.Start(ctx, "taxes.CreateTaxEvent")
	defer span.End()

	eventType := strings.ToLower(strings.TrimSpace(req.EventType))
	eventID := strings.TrimSpace(req.EventID)
	if eventType == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "event type is required")
	}
	if eventID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "event id is required")
	}
	span.SetAttributes(
		attribute.String("event_type", eventType),
		attribute.String("event_id", eventID),
	)

	breakdown, err := calc.ComputeBreakdown(s.rates, req.BaseAmount, req.Currency)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	records := make([]models.TaxRecord, 0, len(breakdown.Lines))
	for _, line := range breakdown.Lines {
		record := models.TaxRecord{
			ID:             id.NewTaxRecordID(),
			EventType:      eventType,
			EventID:        eventID,
			TaxType:        line.TaxType,
			Level:          line.Level,
			BeneficiaryKey: models.BeneficiaryKeyNone,
			BaseAmount:     breakdown.BaseAmount,
			Rate:           line.RateOfBase,
			Amount:         line.Amount,
			Currency:       breakdown.Currency,
			Status:         models.StatusDue,
			CreatedAt:      now,
		}
		if beneficiary := beneficiaryForLevel(req, line.Level); beneficiary != nil {
			record.BeneficiaryID = beneficiary
			record.BeneficiaryKey = beneficiary.String()
		} else if territorial(line.Level) {
			record.AttributionNote = models.AttributionPending
		}
		records = append(records, record)
	}

	err = s.tx.RunInTx(ctx, func(st store.Store) error {
		// Fast-fail only; the unique index below is the race-safe guard.
		exists, err := st.HasActiveEvent(ctx, eventType, eventID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check existing taxation")
		}
		if exists {
			return dErrors.New(dErrors.CodeConflict, "taxes already recorded for event")
		}
		if err := st.CreateBatch(ctx, records); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "taxes already recorded for event")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record tax batch")
		}
		return nil
	})
	if err != nil {
		if dErrors.Has(err, dErrors.CodeConflict) && s.metrics != nil {
			s.metrics.EventConflicts.Inc()
		}
		return nil, err
	}

	if s.audit != nil {
		s.audit.Record(ctx, audit.Event{
			ActorID:    req.Recorder,
			Action:     audit.ActionTaxesRecorded,
			EntityType: "tax_event",
			EntityID:   eventType + ":" + eventID,
			Meta: map[string]string{
				"base_amount": breakdown.BaseAmount.StringFixed(calc.MoneyPlaces),
				"currency":    breakdown.Currency,
			},
		})
	}
	if s.metrics != nil {
		s.metrics.EventsRecorded.Inc()
	}
	return records, nil
}

// Breakdown previews the apportionment of a base amount under the service's
// rates without recording anything.
func (s *Service) Breakdown(baseAmount decimal.Decimal, currency string) (*calc.Breakdown, error) {
	return calc.ComputeBreakdown(s.rates, baseAmount, currency)
}

// UpdateStatus writes a record's collection state. No side effects on other
// entities.
func (s *Service) UpdateStatus(ctx context.Context, actor id.ActorID, recordID id.TaxRecordID, status models.Status) error {
	ctx, span := s.tracer.Start(ctx, "taxes.UpdateStatus",
		trace.WithAttributes(attribute.String("tax_record_id", recordID.String())))
	defer span.End()

	if !models.ValidStatus(status) {
		return dErrors.Newf(dErrors.CodeValidation, "unknown status %q", status)
	}

	err := s.tx.RunInTx(ctx, func(st store.Store) error {
		if err := st.UpdateStatus(ctx, recordID, status); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "tax record not found")
			}
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "an active record already exists for this tax line")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update tax record")
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.audit != nil {
		s.audit.Record(ctx, audit.Event{
			ActorID:    actor,
			Action:     audit.ActionTaxStatusSet,
			EntityType: "tax_record",
			EntityID:   recordID.String(),
			Meta:       map[string]string{"status": string(status)},
		})
	}
	if s.metrics != nil {
		s.metrics.StatusUpdates.WithLabelValues(string(status)).Inc()
	}
	return nil
}

// List returns records matching the filter, newest first.
func (s *Service) List(ctx context.Context, filter store.Filter) ([]models.TaxRecord, error) {
	if filter.EventType != nil {
		normalized := strings.ToLower(strings.TrimSpace(*filter.EventType))
		filter.EventType = &normalized
	}
	var records []models.TaxRecord
	err := s.tx.RunInTx(ctx, func(st store.Store) error {
		var err error
		records, err = st.List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func beneficiaryForLevel(req CreateTaxEventRequest, level models.BeneficiaryLevel) *id.BeneficiaryID {
	switch level {
	case models.LevelCommune:
		return req.CommuneID
	case models.LevelRegion:
		return req.RegionID
	case models.LevelProvince:
		return req.ProvinceID
	default:
		return nil
	}
}

func territorial(level models.BeneficiaryLevel) bool {
	switch level {
	case models.LevelCommune, models.LevelRegion, models.LevelProvince:
		return true
	default:
		return false
	}
}
