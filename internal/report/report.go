// Package report turns the inventory into a classified, ordered table ready
// for a document renderer.
package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"medcabinet/m/domain"
	"medcabinet/m/internal/expiry"
)

// Title heads every inventory report.
const Title = "Inventory Report"

// Column width hints are clamped to this range, in points.
const (
	minColumnWidth = 50
	maxColumnWidth = 200
	widthPerChar   = 5
)

// Header is the column row of the report table.
var Header = []string{"ID", "Barcode", "Name", "Description", "Expiration Date"}

// BatchSource lists batches ordered by name.
type BatchSource interface {
	Batches(ctx context.Context) ([]domain.Batch, error)
}

// Renderer lays a composed report out into a document.
type Renderer interface {
	Render(w io.Writer, r Report) error
}

// Row is one batch of the report with its style hints.
type Row struct {
	ID          int64
	Barcode     string
	Name        string
	Description string
	ExpDate     string
	Status      expiry.Status
	// IsExpired is set only for expiry.Expired; unparseable dates are not
	// considered expired.
	IsExpired bool
}

// Cells returns the row's text in Header order.
func (r Row) Cells() []string {
	return []string{strconv.FormatInt(r.ID, 10), r.Barcode, r.Name, r.Description, r.ExpDate}
}

// Report is the renderer input.
type Report struct {
	ID           string
	Title        string
	GeneratedAt  time.Time
	Header       []string
	Rows         []Row
	ColumnWidths []float64
}

// ExpiredCount returns how many rows are flagged expired.
func (r Report) ExpiredCount() int {
	n := 0
	for _, row := range r.Rows {
		if row.IsExpired {
			n++
		}
	}
	return n
}

// Composer builds inventory reports.
type Composer struct {
	batches BatchSource
	logger  *zap.Logger
}

// NewComposer constructs a Composer.
func NewComposer(batches BatchSource, log *zap.Logger) *Composer {
	return &Composer{batches: batches, logger: log}
}

// Compose classifies every batch against now. Rows keep the name order of
// the source and include batches whose date cannot be parsed.
func (c *Composer) Compose(ctx context.Context, now time.Time) (Report, error) {
	batches, err := c.batches.Batches(ctx)
	if err != nil {
		return Report{}, err
	}

	rows := make([]Row, len(batches))
	for i, b := range batches {
		status := expiry.Classify(b.ExpDate, now)
		rows[i] = Row{
			ID:          b.ID,
			Barcode:     b.Barcode,
			Name:        b.Name,
			Description: b.Description,
			ExpDate:     b.ExpDate,
			Status:      status,
			IsExpired:   status == expiry.Expired,
		}
	}

	rep := Report{
		ID:           uuid.NewString(),
		Title:        Title,
		GeneratedAt:  now,
		Header:       append([]string(nil), Header...),
		Rows:         rows,
		ColumnWidths: columnWidths(Header, rows),
	}
	c.logger.Info("inventory report composed",
		zap.String("report_id", rep.ID),
		zap.Int("rows", len(rows)),
		zap.Int("expired", rep.ExpiredCount()))
	return rep, nil
}

// columnWidths sizes each column from its longest text, header included.
func columnWidths(header []string, rows []Row) []float64 {
	longest := make([]int, len(header))
	for i, h := range header {
		longest[i] = utf8.RuneCountInString(h)
	}
	for _, row := range rows {
		for i, cell := range row.Cells() {
			if n := utf8.RuneCountInString(cell); n > longest[i] {
				longest[i] = n
			}
		}
	}

	widths := make([]float64, len(header))
	for i, n := range longest {
		widths[i] = float64(min(max(n*widthPerChar, minColumnWidth), maxColumnWidth))
	}
	return widths
}

// SaveFile renders rep into the file at path.
func SaveFile(path string, renderer Renderer, rep Report) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrIO, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %w", domain.ErrIO, cerr)
		}
	}()

	if err := renderer.Render(f, rep); err != nil {
		return fmt.Errorf("%w: render %s: %w", domain.ErrIO, path, err)
	}
	return nil
}
