package seed

import (
	"context"
	"errors"
	"io/fs"

	"go.uber.org/zap"

	"medcabinet/m/internal/transfer"
)

// Importer reads a catalog CSV file into the catalog.
type Importer interface {
	ImportFile(ctx context.Context, path string) (transfer.ImportResult, error)
}

// LoadCatalog ingests the CSV at csvPath, skipping barcodes that are already
// known. A missing or unreadable file is logged and otherwise ignored.
func LoadCatalog(ctx context.Context, importer Importer, csvPath string, log *zap.Logger) int {
	if csvPath == "" {
		return 0
	}

	res, err := importer.ImportFile(ctx, csvPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn("seed catalog not found", zap.String("path", csvPath))
		} else {
			log.Error("unable to load seed catalog", zap.String("path", csvPath), zap.Error(err))
		}
		return res.Imported
	}

	log.Info("seeded product catalog",
		zap.String("path", csvPath),
		zap.Int("rows", res.Imported),
		zap.Int("skipped", len(res.Errors)))
	return res.Imported
}
