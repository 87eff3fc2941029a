package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"quant_dashboard/internal/app/dashboard"
	chartadapters "quant_dashboard/internal/feature/chart/adapters"
	i18nadapters "quant_dashboard/internal/feature/i18n/adapters"
	i18nusecase "quant_dashboard/internal/feature/i18n/usecase"
	layoutadapters "quant_dashboard/internal/feature/layout/adapters"
	layoutentity "quant_dashboard/internal/feature/layout/domain/entity"
	"quant_dashboard/internal/feature/marketdata/adapters/apiclient"
	"quant_dashboard/internal/platform/config"
	infrahttp "quant_dashboard/internal/platform/http"
	infraredis "quant_dashboard/internal/platform/redis"
)

// alertLog は最後のアラートを保持し、w に書き出します。
type alertLog struct {
	mu   sync.Mutex
	w    io.Writer
	last string
}

func (a *alertLog) Alert(msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.last = msg
	_, _ = fmt.Fprintln(a.w, "alert:", msg)
}

func (a *alertLog) Last() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last
}

// prefsTTL matches the language cookie lifetime.
const prefsTTL = 365 * 24 * time.Hour

// prefsStore picks Redis, then the preference file, then memory. The returned
// func releases the Redis connection.
func prefsStore(ctx context.Context, cfg *config.ClientConfig) (i18nusecase.PreferenceStore, func(), error) {
	if cfg.PrefsRedisAddr != "" {
		rdb, err := infraredis.NewRedisClient(ctx, cfg.PrefsRedisAddr, "")
		if err != nil {
			return nil, nil, err
		}
		return i18nadapters.NewRedisStore(rdb, "dashboard:prefs", cfg.PrefsOwner, prefsTTL), func() { _ = rdb.Close() }, nil
	}
	if cfg.PrefsFile != "" {
		return i18nadapters.NewFileStore(cfg.PrefsFile), func() {}, nil
	}
	return i18nadapters.NewMemoryStore(), func() {}, nil
}

func newLoadCmd(cfg *config.ClientConfig) *cobra.Command {
	var (
		pair, exchange, timeframe, lang string
		width, height                   int
	)

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load one selection through the dashboard and print the chart header",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalogue, err := config.LoadCatalogue(cfg.CataloguePath)
			if err != nil {
				return err
			}
			if pair != "" {
				catalogue.Default.Pair = pair
			}
			if exchange != "" {
				catalogue.Default.Exchange = exchange
			}
			if timeframe != "" {
				catalogue.Default.Timeframe = timeframe
			}

			messages, err := i18nadapters.LoadCatalog()
			if err != nil {
				return err
			}
			prefs, closePrefs, err := prefsStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closePrefs()

			out := cmd.OutOrStdout()
			client := apiclient.NewClient(apiclient.Config{BaseURL: cfg.ServerURL, Timeout: cfg.FetchTimeout},
				infrahttp.NewHTTPClient(cfg.FetchTimeout))
			widgets := &chartadapters.MemoryWidgetFactory{}
			alerts := &alertLog{w: cmd.ErrOrStderr()}

			d, err := dashboard.New(dashboard.Deps{
				Catalogue:    catalogue,
				Messages:     messages,
				Source:       client,
				Container:    chartadapters.NewMemoryContainer(width, height),
				Widgets:      widgets.New,
				View:         layoutadapters.NewMemoryView(layoutentity.Viewport{Width: width, Height: height}, 56, 240, 320),
				Pairs:        client,
				Prefs:        prefs,
				Header:       chartadapters.NewTextHeader(out),
				Notifier:     alerts,
				FetchTimeout: cfg.FetchTimeout,
			})
			if err != nil {
				return err
			}
			defer d.Dispose()

			if lang != "" {
				if _, err := d.Locale.Switch(lang); err != nil {
					_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "warning:", err)
				}
			}

			if err := d.Init(); err != nil {
				return err
			}
			d.Pipeline.Wait()

			if msg := alerts.Last(); msg != "" {
				return errors.New(msg)
			}

			l := d.Labels()
			n := 0
			if w := widgets.Last(); w != nil {
				n = len(w.Candles())
			}
			_, _ = fmt.Fprintf(out, "%s  %s  %s  candles=%d\n", l.Pair, l.Exchange, l.Timeframe, n)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&pair, "pair", "", "trading pair (default: catalogue default)")
	f.StringVar(&exchange, "exchange", "", "exchange (default: catalogue default)")
	f.StringVar(&timeframe, "timeframe", "", "timeframe (default: catalogue default)")
	f.StringVar(&lang, "lang", "", "display language (zh-CN|en-US)")
	f.IntVar(&width, "width", 1280, "chart container width in px")
	f.IntVar(&height, "height", 720, "chart container height in px")
	return cmd
}
