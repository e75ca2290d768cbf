package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"medcabinet/m/internal/catalog"
	"medcabinet/m/internal/config"
	"medcabinet/m/internal/database"
	"medcabinet/m/internal/inventory"
	"medcabinet/m/internal/logger"
	"medcabinet/m/internal/migrations"
	"medcabinet/m/internal/report"
	"medcabinet/m/internal/seed"
	"medcabinet/m/internal/transfer"
)

// app bundles the services behind the command tree.
type app struct {
	cfg      config.Config
	log      *zap.Logger
	now      func() time.Time
	catalog  *catalog.Store
	ledger   *inventory.Ledger
	transfer *transfer.Service
	composer *report.Composer
	renderer report.Renderer
}

func newApp(cfg config.Config, log *zap.Logger, db *sqlx.DB, now func() time.Time) *app {
	cat := catalog.NewStore(db, log.Named("catalog"))
	ledger := inventory.NewLedger(db, cat, now, log.Named("inventory"))
	return &app{
		cfg:      cfg,
		log:      log,
		now:      now,
		catalog:  cat,
		ledger:   ledger,
		transfer: transfer.NewService(cat, log.Named("transfer")),
		composer: report.NewComposer(ledger, log.Named("report")),
		renderer: report.NewPDFRenderer(),
	}
}

func main() {
	os.Exit(run())
}

func run() int {
	_ = godotenv.Load()
	cfg := config.Load()

	log, err := logger.NewZapLogger(logger.Config{
		IsDevelopment:     cfg.IsDevelopment(),
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to build logger: %v\n", err)
		return 1
	}
	defer log.Sync()

	db, err := database.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Error("could not open database", zap.String("dsn", cfg.DatabaseDSN), zap.Error(err))
		return 1
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		log.Error("could not prepare schema", zap.Error(err))
		return 1
	}

	ctx := context.Background()
	a := newApp(cfg, log, db, time.Now)
	seed.LoadCatalog(ctx, a.transfer, cfg.SeedCatalog, log.Named("seed"))

	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}
