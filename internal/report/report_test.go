package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"medcabinet/m/domain"
	"medcabinet/m/internal/catalog"
	"medcabinet/m/internal/expiry"
	"medcabinet/m/internal/inventory"
	"medcabinet/m/internal/testutil"
)

type staticSource []domain.Batch

func (s staticSource) Batches(context.Context) ([]domain.Batch, error) {
	return s, nil
}

type failingSource struct{}

func (failingSource) Batches(context.Context) ([]domain.Batch, error) {
	return nil, errors.New("db closed")
}

var reportNow = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func TestComposeMarksExpiredRows(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t)
	cat := catalog.NewStore(db, zap.NewNop())
	ledger := inventory.NewLedger(db, cat, func() time.Time { return reportNow }, zap.NewNop())

	if err := cat.AddProduct(ctx, "A1", "Aspirin", "Pain relief"); err != nil {
		t.Fatal(err)
	}
	if err := cat.AddProduct(ctx, "B2", "Benadryl", "Allergy"); err != nil {
		t.Fatal(err)
	}
	first, err := ledger.AddBatch(ctx, "B2", "2020-01-01")
	if err != nil {
		t.Fatal(err)
	}
	second, err := ledger.AddBatch(ctx, "A1", "2099-01-01")
	if err != nil {
		t.Fatal(err)
	}

	rep, err := NewComposer(ledger, zap.NewNop()).Compose(ctx, reportNow)
	if err != nil {
		t.Fatal(err)
	}

	if len(rep.Rows) != 2 {
		t.Fatalf("rows = %d", len(rep.Rows))
	}
	// name order: Aspirin (id 2) before Benadryl (id 1)
	if rep.Rows[0].ID != second.ID || rep.Rows[0].IsExpired {
		t.Errorf("row 0 = %+v", rep.Rows[0])
	}
	if rep.Rows[1].ID != first.ID || !rep.Rows[1].IsExpired {
		t.Errorf("row 1 = %+v", rep.Rows[1])
	}
	if rep.ExpiredCount() != 1 {
		t.Errorf("expired = %d", rep.ExpiredCount())
	}
	if rep.Title != Title || !rep.GeneratedAt.Equal(reportNow) || rep.ID == "" {
		t.Errorf("metadata = %q %s %q", rep.Title, rep.GeneratedAt, rep.ID)
	}
}

func TestComposeKeepsUnparseableRows(t *testing.T) {
	src := staticSource{
		{ID: 1, Barcode: "A", Name: "Aspirin", ExpDate: "2020-01-01"},
		{ID: 3, Barcode: "M", Name: "Melatonin", ExpDate: "garbage"},
		{ID: 2, Barcode: "Z", Name: "Zinc", ExpDate: "2099-01-01"},
	}
	rep, err := NewComposer(src, zap.NewNop()).Compose(context.Background(), reportNow)
	if err != nil {
		t.Fatal(err)
	}

	want := []struct {
		id      int64
		status  expiry.Status
		expired bool
	}{
		{1, expiry.Expired, true},
		{3, expiry.Unparseable, false},
		{2, expiry.Valid, false},
	}
	for i, w := range want {
		r := rep.Rows[i]
		if r.ID != w.id || r.Status != w.status || r.IsExpired != w.expired {
			t.Errorf("row %d = %+v, want %+v", i, r, w)
		}
	}
}

func TestComposeColumnWidths(t *testing.T) {
	src := staticSource{
		{ID: 12345678901, Barcode: "0123456789012", Name: "A", Description: strings.Repeat("x", 100), ExpDate: "2099-01-01"},
	}
	rep, err := NewComposer(src, zap.NewNop()).Compose(context.Background(), reportNow)
	if err != nil {
		t.Fatal(err)
	}

	// ID: 11 chars, Barcode: 13, Name: header "Name" wins, Description: capped,
	// Expiration Date: header wins with 15 chars.
	want := []float64{55, 65, 50, 200, 75}
	for i := range want {
		if rep.ColumnWidths[i] != want[i] {
			t.Fatalf("widths = %v, want %v", rep.ColumnWidths, want)
		}
	}
}

func TestComposeEmpty(t *testing.T) {
	rep, err := NewComposer(staticSource{}, zap.NewNop()).Compose(context.Background(), reportNow)
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Rows) != 0 {
		t.Fatalf("rows = %v", rep.Rows)
	}
	want := []float64{50, 50, 50, 55, 75}
	for i := range want {
		if rep.ColumnWidths[i] != want[i] {
			t.Fatalf("widths = %v, want %v", rep.ColumnWidths, want)
		}
	}
}

func TestComposeSourceError(t *testing.T) {
	if _, err := NewComposer(failingSource{}, zap.NewNop()).Compose(context.Background(), reportNow); err == nil {
		t.Fatal("expected error")
	}
}

func TestPDFRenderer(t *testing.T) {
	src := make(staticSource, 0, 120)
	for i := 0; i < 120; i++ {
		exp := "2099-01-01"
		switch i % 3 {
		case 1:
			exp = "2020-01-01"
		case 2:
			exp = "??"
		}
		src = append(src, domain.Batch{ID: int64(i + 1), Barcode: "B", Name: "Paracétamol", Description: strings.Repeat("long text ", 30), ExpDate: exp})
	}
	rep, err := NewComposer(src, zap.NewNop()).Compose(context.Background(), reportNow)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := NewPDFRenderer().Render(&buf, rep); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("output does not look like a PDF: %q", buf.Bytes()[:16])
	}
}

func TestPDFRendererKeepsLongText(t *testing.T) {
	words := make([]string, 80)
	for i := range words {
		words[i] = fmt.Sprintf("w%02dx", i)
	}
	src := staticSource{{ID: 1, Barcode: "A1", Name: "Aspirin", Description: strings.Join(words, " "), ExpDate: "2099-01-01"}}
	rep, err := NewComposer(src, zap.NewNop()).Compose(context.Background(), reportNow)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := (PDFRenderer{}).Render(&buf, rep); err != nil {
		t.Fatal(err)
	}
	for _, w := range words {
		if !bytes.Contains(buf.Bytes(), []byte(w)) {
			t.Fatalf("word %q missing from report", w)
		}
	}
}

func TestPDFRendererShortColumnWidths(t *testing.T) {
	rep := Report{
		Title:        Title,
		GeneratedAt:  reportNow,
		Header:       append([]string(nil), Header...),
		Rows:         []Row{{ID: 1, Name: "Aspirin", ExpDate: "2099-01-01"}},
		ColumnWidths: []float64{60},
	}
	var buf bytes.Buffer
	if err := NewPDFRenderer().Render(&buf, rep); err != nil {
		t.Fatal(err)
	}

	rep.ColumnWidths = nil
	buf.Reset()
	if err := NewPDFRenderer().Render(&buf, rep); err != nil {
		t.Fatal(err)
	}
}

func TestWrapText(t *testing.T) {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetFont("Helvetica", "", 9)
	tr := func(s string) string { return s }

	text := strings.Repeat("cough syrup ", 20) + strings.Repeat("X", 120)
	lines := wrapText(pdf, tr, text, 60)
	if len(lines) < 2 {
		t.Fatalf("lines = %q", lines)
	}
	for _, line := range lines {
		if pdf.GetStringWidth(line) > 60 {
			t.Errorf("line %q is wider than the column", line)
		}
	}
	joined := strings.Join(lines, " ")
	if strings.ReplaceAll(joined, " ", "") != strings.ReplaceAll(text, " ", "") {
		t.Fatalf("text lost in wrapping:\n%s", joined)
	}

	if got := wrapText(pdf, tr, "", 60); len(got) != 1 || got[0] != "" {
		t.Fatalf("empty cell = %q", got)
	}
	if got := wrapText(pdf, tr, "two\nlines", 60); len(got) != 2 {
		t.Fatalf("newline split = %q", got)
	}
}

func TestFitWidths(t *testing.T) {
	got := fitWidths([]float64{200, 200, 100}, 250)
	want := []float64{100, 100, 50}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}

	narrow := []float64{50, 50}
	if got := fitWidths(narrow, 500); got[0] != 50 || got[1] != 50 {
		t.Fatalf("widths changed: %v", got)
	}
}

func TestSaveFile(t *testing.T) {
	rep, err := NewComposer(staticSource{{ID: 1, Name: "A", ExpDate: "2099-01-01"}}, zap.NewNop()).Compose(context.Background(), reportNow)
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "inventory_report.pdf")
	if err := SaveFile(path, NewPDFRenderer(), rep); err != nil {
		t.Fatal(err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Fatalf("stat: %v", err)
	}

	err = SaveFile(filepath.Join(dir, "missing", "r.pdf"), NewPDFRenderer(), rep)
	if !errors.Is(err, domain.ErrIO) {
		t.Fatalf("err = %v, want ErrIO", err)
	}
}
