package transfer

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"medcabinet/m/domain"
)

// Header is written as the first line of every export.
var Header = []string{"barcode", "name", "description"}

// ProductStore is the slice of the catalog the transfer service needs.
type ProductStore interface {
	AddProduct(ctx context.Context, barcode, name, description string) error
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

// LineError reports one skipped input line.
type LineError struct {
	Line int
	Err  error
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e LineError) Unwrap() error {
	return e.Err
}

// ImportResult summarizes an import. Rows counted in Imported are committed
// regardless of the errors.
type ImportResult struct {
	RunID    string
	Imported int
	Errors   []LineError
}

// Messages renders every line error for display.
func (r ImportResult) Messages() []string {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Error()
	}
	return msgs
}

// Service moves the catalog in and out of CSV.
type Service struct {
	catalog ProductStore
	logger  *zap.Logger
}

// NewService constructs a Service.
func NewService(catalog ProductStore, log *zap.Logger) *Service {
	return &Service{catalog: catalog, logger: log}
}

// ImportCatalog adds every barcode,name,description record from r to the
// catalog. The first physical line is a header and is dropped without
// inspection. Blank and whitespace-only lines are ignored.
//
// A bad line never stops the import: malformed records, duplicate barcodes
// and failed inserts are collected in ImportResult.Errors and the next line
// is processed. A record that fails to decode, such as one with an unclosed
// quote, is reported at the line where it starts and decoding resumes on the
// following physical line. The returned error is only set when r itself
// fails.
func (s *Service) ImportCatalog(ctx context.Context, r io.Reader) (ImportResult, error) {
	result := ImportResult{RunID: uuid.NewString()}
	log := s.logger.With(zap.String("run_id", result.RunID))

	data, err := io.ReadAll(r)
	if err != nil {
		return result, fmt.Errorf("%w: read catalog: %w", domain.ErrIO, err)
	}
	starts := lineStarts(data)

	// Skip header; the body starts on physical line 2.
	next := 2
	for next <= len(starts) {
		base := next - 1
		reader := csv.NewReader(bytes.NewReader(data[starts[base]:]))
		reader.FieldsPerRecord = -1
		next = len(starts) + 1

		for {
			if err := ctx.Err(); err != nil {
				return result, err
			}

			record, err := reader.Read()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				var parseErr *csv.ParseError
				if !errors.As(err, &parseErr) {
					return result, fmt.Errorf("%w: read catalog: %w", domain.ErrIO, err)
				}
				line := base + parseErr.StartLine
				s.skip(log, &result, line, fmt.Errorf("%w: %w", domain.ErrValidation, parseErr.Err))
				// An open quote may have consumed the lines after it.
				next = line + 1
				break
			}
			line, _ := reader.FieldPos(0)
			line += base

			if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
				continue
			}
			if len(record) != len(Header) {
				s.skip(log, &result, line, fmt.Errorf("%w: expected %d fields, got %d", domain.ErrValidation, len(Header), len(record)))
				continue
			}

			if err := s.catalog.AddProduct(ctx, record[0], record[1], record[2]); err != nil {
				s.skip(log, &result, line, err)
				continue
			}
			result.Imported++
		}
	}

	log.Info("catalog import finished",
		zap.Int("imported", result.Imported),
		zap.Int("skipped", len(result.Errors)))
	return result, nil
}

// lineStarts returns the byte offset of every physical line in data;
// element i is where line i+1 begins.
func lineStarts(data []byte) []int {
	if len(data) == 0 {
		return nil
	}
	starts := []int{0}
	for i, b := range data {
		if b == '\n' && i+1 < len(data) {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func (s *Service) skip(log *zap.Logger, result *ImportResult, line int, err error) {
	log.Warn("skipping catalog line", zap.Int("line", line), zap.Error(err))
	result.Errors = append(result.Errors, LineError{Line: line, Err: err})
}

// ExportCatalog writes a header followed by one record per product.
// Fields holding commas, quotes or newlines are quoted and escaped.
func (s *Service) ExportCatalog(ctx context.Context, w io.Writer) error {
	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("%w: write header: %w", domain.ErrIO, err)
	}
	for _, p := range products {
		if err := writer.Write([]string{p.Barcode, p.Name, p.Description}); err != nil {
			return fmt.Errorf("%w: write product %q: %w", domain.ErrIO, p.Barcode, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("%w: flush catalog: %w", domain.ErrIO, err)
	}

	s.logger.Info("catalog exported", zap.Int("products", len(products)))
	return nil
}

// ImportFile runs ImportCatalog over the file at path.
func (s *Service) ImportFile(ctx context.Context, path string) (ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return ImportResult{}, fmt.Errorf("%w: %w", domain.ErrIO, err)
	}
	defer f.Close()

	return s.ImportCatalog(ctx, f)
}

// ExportFile writes the catalog to path, replacing any existing file.
func (s *Service) ExportFile(ctx context.Context, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrIO, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %w", domain.ErrIO, cerr)
		}
	}()

	return s.ExportCatalog(ctx, f)
}
