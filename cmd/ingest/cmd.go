package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"quant_dashboard/internal/app/di"
	"quant_dashboard/internal/feature/marketdata/usecase"
	selentity "quant_dashboard/internal/feature/selection/domain/entity"
	"quant_dashboard/internal/platform/config"
	infradb "quant_dashboard/internal/platform/db"
	"quant_dashboard/internal/platform/logging"
	"quant_dashboard/internal/shared/ratelimiter"
)

// ingestTimeout は1回の実行全体の上限です。
const ingestTimeout = 30 * time.Minute

type ingestOptions struct {
	exchange   string
	symbols    []string
	timeframes []string
	days       int
	noStore    bool
}

func newRootCmd(cfg *config.ServerConfig) *cobra.Command {
	opts := ingestOptions{}

	cmd := &cobra.Command{
		Use:           "ingest",
		Short:         "Fetch candles from an exchange and upsert them into the candle store",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := logging.Setup(cfg.LogLevel, cfg.LogFile); err != nil {
				return err
			}
			req, err := opts.request(cfg)
			if err != nil {
				return err
			}
			return runIngest(cmd, cfg, req)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.exchange, "exchange", usecase.DefaultExchange, "exchange id (okx|binance)")
	f.StringSliceVar(&opts.symbols, "symbol", nil, "pairs to ingest, e.g. BTC/USDT (default: catalogue pairs)")
	f.StringSliceVar(&opts.timeframes, "timeframe", []string{usecase.DefaultTimeframe}, "timeframes to ingest")
	f.IntVar(&opts.days, "days", 7, "how many days of history to fetch")
	f.BoolVar(&opts.noStore, "no-store", false, "fetch only, do not write to the database")

	return cmd
}

// request はフラグとカタログから IngestRequest を組み立てます。
func (o ingestOptions) request(cfg *config.ServerConfig) (usecase.IngestRequest, error) {
	symbols := o.symbols
	if len(symbols) == 0 {
		catalogue, err := config.LoadCatalogue(cfg.CataloguePath)
		if err != nil {
			return usecase.IngestRequest{}, err
		}
		symbols = catalogue.Pairs
	}

	tfs, err := parseTimeframes(o.timeframes)
	if err != nil {
		return usecase.IngestRequest{}, err
	}
	if o.days <= 0 {
		return usecase.IngestRequest{}, fmt.Errorf("--days must be positive, got %d", o.days)
	}
	if !o.noStore && cfg.DBDriver == "" {
		return usecase.IngestRequest{}, fmt.Errorf("DB_DRIVER is not set; configure a database or pass --no-store")
	}

	return usecase.IngestRequest{
		Exchange:   strings.ToLower(strings.TrimSpace(o.exchange)),
		Symbols:    symbols,
		Timeframes: tfs,
		Days:       o.days,
		NoStore:    o.noStore,
	}, nil
}

func parseTimeframes(raw []string) ([]selentity.Timeframe, error) {
	out := make([]selentity.Timeframe, 0, len(raw))
	for _, s := range raw {
		tf := selentity.Timeframe(strings.TrimSpace(s))
		if _, ok := tf.Duration(); !ok {
			return nil, fmt.Errorf("invalid timeframe %q", s)
		}
		out = append(out, tf)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("at least one --timeframe is required")
	}
	return out, nil
}

func runIngest(cmd *cobra.Command, cfg *config.ServerConfig, req usecase.IngestRequest) error {
	var db *gorm.DB
	if !req.NoStore {
		var err error
		db, err = infradb.OpenDB(infradb.Config{Driver: cfg.DBDriver, DSN: cfg.DBDSN, RunMigrations: cfg.RunMigrations})
		if err != nil {
			return err
		}
	}

	limiter := ratelimiter.NewRateLimiter(cfg.IngestRateLimit, time.Minute, clock.New())
	uc := usecase.NewIngestUsecase(di.NewProviders(nil, cfg.UpstreamTimeout), di.NewCandleRepository(db, nil), limiter)

	ctx, cancel := context.WithTimeout(cmd.Context(), ingestTimeout)
	defer cancel()

	sum, err := uc.IngestAll(ctx, req)
	if err != nil {
		return err
	}
	slog.Info("ingest ok", "fetched", sum.Fetched, "stored", sum.Stored, "failed", sum.Failed)
	fmt.Fprintf(cmd.OutOrStdout(), "fetched=%d stored=%d failed=%d\n", sum.Fetched, sum.Stored, sum.Failed)
	return nil
}
