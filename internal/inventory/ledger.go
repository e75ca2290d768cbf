package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"medcabinet/m/domain"
	"medcabinet/m/internal/expiry"
)

// WarnPastExpiry is attached to AddedBatch when the unit is already expired.
const WarnPastExpiry = "expiration date is in the past"

// ProductLookup resolves a barcode to its catalog entry.
type ProductLookup interface {
	LookupProduct(ctx context.Context, barcode string) (domain.Product, error)
}

// AddedBatch is the outcome of recording a batch. ID is what operators write
// on the physical unit.
type AddedBatch struct {
	ID       int64
	Warnings []string
}

// Entry is a batch together with its classification at listing time.
type Entry struct {
	domain.Batch
	Status expiry.Status `json:"status"`
}

// Ledger owns the tracked batches.
type Ledger struct {
	db      *sqlx.DB
	catalog ProductLookup
	now     func() time.Time
	logger  *zap.Logger
}

// NewLedger constructs a Ledger. A nil clock defaults to time.Now.
func NewLedger(db *sqlx.DB, catalog ProductLookup, now func() time.Time, log *zap.Logger) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{db: db, catalog: catalog, now: now, logger: log}
}

// AddBatch records one unit of the product identified by barcode.
//
// The product's name and description are copied into the batch; later
// catalog changes do not reach it. A past expiration date is accepted and
// reported through AddedBatch.Warnings.
func (l *Ledger) AddBatch(ctx context.Context, barcode, expDate string) (AddedBatch, error) {
	now := l.now()
	exp, err := expiry.Parse(expDate, now.Location())
	if err != nil {
		return AddedBatch{}, fmt.Errorf("%w: bad date format: %w", domain.ErrValidation, err)
	}

	var added AddedBatch
	if exp.Before(now) {
		added.Warnings = append(added.Warnings, WarnPastExpiry)
	}

	product, err := l.catalog.LookupProduct(ctx, barcode)
	if err != nil {
		return AddedBatch{}, err
	}

	res, err := l.db.ExecContext(ctx,
		`INSERT INTO batch (barcode, name, description, exp_date) VALUES (?, ?, ?, ?)`,
		barcode, product.Name, product.Description, expDate)
	if err != nil {
		return AddedBatch{}, fmt.Errorf("failed to insert batch for %q: %w", barcode, err)
	}
	added.ID, err = res.LastInsertId()
	if err != nil {
		return AddedBatch{}, fmt.Errorf("failed to read batch id for %q: %w", barcode, err)
	}

	l.logger.Info("batch added",
		zap.Int64("batch_id", added.ID),
		zap.String("barcode", barcode),
		zap.String("exp_date", expDate),
		zap.Strings("warnings", added.Warnings))
	return added, nil
}

// DeleteBatch removes a batch. Unknown ids are ignored.
func (l *Ledger) DeleteBatch(ctx context.Context, id int64) error {
	res, err := l.db.ExecContext(ctx, `DELETE FROM batch WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete batch %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		l.logger.Info("batch deleted", zap.Int64("batch_id", id))
	}
	return nil
}

// Batches returns every batch ordered by name, then id.
func (l *Ledger) Batches(ctx context.Context) ([]domain.Batch, error) {
	batches := []domain.Batch{}
	err := l.db.SelectContext(ctx, &batches,
		`SELECT id, COALESCE(barcode, '') AS barcode, COALESCE(name, '') AS name,
                COALESCE(description, '') AS description, COALESCE(exp_date, '') AS exp_date
         FROM batch ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list batches: %w", err)
	}
	return batches, nil
}

// ListBatches returns every batch ordered by name, classified against the
// ledger clock. Rows whose date cannot be parsed are kept and tagged
// expiry.Unparseable.
func (l *Ledger) ListBatches(ctx context.Context) ([]Entry, error) {
	batches, err := l.Batches(ctx)
	if err != nil {
		return nil, err
	}

	now := l.now()
	entries := make([]Entry, len(batches))
	for i, b := range batches {
		entries[i] = Entry{Batch: b, Status: expiry.Classify(b.ExpDate, now)}
		if entries[i].Status == expiry.Unparseable {
			l.logger.Warn("batch has unparseable expiration date",
				zap.Int64("batch_id", b.ID), zap.String("exp_date", b.ExpDate))
		}
	}
	return entries, nil
}

// CountBatches returns the number of tracked batches.
func (l *Ledger) CountBatches(ctx context.Context) (int, error) {
	var n int
	if err := l.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM batch`); err != nil {
		return 0, fmt.Errorf("failed to count batches: %w", err)
	}
	return n, nil
}
