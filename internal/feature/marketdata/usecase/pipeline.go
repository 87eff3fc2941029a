// Package usecase implements the marketdata business logic: normalization of
// raw candles, the dashboard load pipeline, and the backend aggregation and
// ingest use cases.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"quant_dashboard/internal/feature/marketdata/domain"
	"quant_dashboard/internal/feature/marketdata/domain/entity"
	selentity "quant_dashboard/internal/feature/selection/domain/entity"
)

// DefaultLimit is the number of candles requested per load.
const DefaultLimit = 500

// CandleSource fetches the raw candle batch for a selection key.
// Implementations map transport failures to domain.ErrNetwork, an explicit
// error envelope to domain.ErrDataSource and an empty batch to domain.ErrEmptyData.
type CandleSource interface {
	FetchCandles(ctx context.Context, key selentity.Key, limit int) ([]entity.RawCandlePoint, error)
}

// Renderer receives the normalized candle sequence.
type Renderer interface {
	Render(candles []entity.Candle)
}

// LoadingIndicator toggles the loading overlay on the chart container.
type LoadingIndicator interface {
	SetLoading(loading bool)
}

// Notifier surfaces user-facing failures.
type Notifier interface {
	Alert(message string)
}

// Translator looks up localized message text.
type Translator interface {
	T(key string) string
}

// PipelineOptions configures a Pipeline.
type PipelineOptions struct {
	Limit   int
	Timeout time.Duration
	Now     func() time.Time
}

// Pipeline translates a selection key into rendered candles.
//
// Each Load is tagged with a generation number; only the response of the most
// recent Load may render, clear the loading indicator or raise an alert.
type Pipeline struct {
	source    CandleSource
	renderer  Renderer
	indicator LoadingIndicator
	notifier  Notifier
	messages  Translator

	limit   int
	timeout time.Duration
	now     func() time.Time

	seq    atomic.Uint64
	mu     sync.Mutex // serializes the stale check with rendering
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewPipeline creates a Pipeline. indicator, notifier and messages may be nil.
func NewPipeline(source CandleSource, renderer Renderer, indicator LoadingIndicator, notifier Notifier, messages Translator, opts PipelineOptions) *Pipeline {
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pipeline{
		source:    source,
		renderer:  renderer,
		indicator: indicator,
		notifier:  notifier,
		messages:  messages,
		limit:     opts.Limit,
		timeout:   opts.Timeout,
		now:       opts.Now,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// LoadResult describes a completed load.
type LoadResult struct {
	ID      string
	Key     selentity.Key
	Candles []entity.Candle
	Report  NormalizeReport
}

// Load starts a fetch for key and returns immediately; the continuation
// renders or alerts when the response arrives.
func (p *Pipeline) Load(key selentity.Key) {
	gen := p.seq.Add(1)
	p.setLoading(true)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		_, _ = p.run(p.ctx, gen, key)
	}()
}

// LoadSync runs one load on the calling goroutine.
func (p *Pipeline) LoadSync(ctx context.Context, key selentity.Key) (LoadResult, error) {
	gen := p.seq.Add(1)
	p.setLoading(true)
	return p.run(ctx, gen, key)
}

// Wait blocks until every started load has completed.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

// Close cancels in-flight loads and waits for them.
func (p *Pipeline) Close() {
	p.cancel()
	p.wg.Wait()
}

func (p *Pipeline) run(ctx context.Context, gen uint64, key selentity.Key) (LoadResult, error) {
	res := LoadResult{ID: ulid.Make().String(), Key: key}
	log := slog.With("load_id", res.ID, "key", key.String())

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	raw, err := p.source.FetchCandles(ctx, key, p.limit)
	if err == nil {
		res.Candles, res.Report = Normalize(raw, p.now)
		if len(res.Candles) == 0 {
			err = fmt.Errorf("%w: all %d points were unusable", domain.ErrEmptyData, len(raw))
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.seq.Load() {
		log.Debug("discarding stale market data response", "generation", gen, "error", err)
		return res, domain.ErrStaleResponse
	}
	defer p.setLoading(false)

	if err != nil {
		if errors.Is(err, context.Canceled) && p.ctx.Err() != nil {
			return res, err
		}
		log.Error("market data load failed", "error", err)
		p.alert(err)
		return res, err
	}

	if res.Report.Inconsistent > 0 {
		log.Warn("candles violate OHLC ordering", "count", res.Report.Inconsistent)
	}
	log.Info("market data loaded",
		"received", res.Report.Received,
		"rendered", len(res.Candles),
		"dropped", res.Report.Dropped,
		"time_fallbacks", res.Report.TimeFallbacks,
	)
	p.renderer.Render(res.Candles)
	return res, nil
}

func (p *Pipeline) setLoading(v bool) {
	if p.indicator != nil {
		p.indicator.SetLoading(v)
	}
}

func (p *Pipeline) alert(err error) {
	if p.notifier == nil {
		return
	}
	p.notifier.Alert(AlertMessage(p.messages, err))
}

// AlertMessage builds the user-facing text for a load failure.
func AlertMessage(messages Translator, err error) string {
	t := func(key, fallback string) string {
		if messages == nil {
			return fallback
		}
		if s := messages.T(key); s != key {
			return s
		}
		return fallback
	}

	switch {
	case errors.Is(err, domain.ErrDataSource):
		return t("error.datasource", "Failed to load market data") + ": " + upstreamText(err)
	case errors.Is(err, domain.ErrEmptyData):
		return t("error.empty", "No market data available for this selection")
	default:
		return t("error.network", "Network error while loading market data") + ": " + err.Error()
	}
}

// upstreamText strips the sentinel prefix so the alert shows the source's own message.
func upstreamText(err error) string {
	var ds *domain.DataSourceError
	if errors.As(err, &ds) {
		return ds.Message
	}
	return err.Error()
}
