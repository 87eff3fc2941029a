package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quant_dashboard/internal/feature/marketdata/domain"
	"quant_dashboard/internal/feature/marketdata/domain/entity"
	"quant_dashboard/internal/feature/marketdata/usecase"
	selentity "quant_dashboard/internal/feature/selection/domain/entity"
)

// fakeSource returns canned responses. When gate is set, FetchCandles blocks
// until the key's channel is closed.
type fakeSource struct {
	mu     sync.Mutex
	calls  []selentity.Key
	limits []int
	points map[string][]entity.RawCandlePoint
	errs   map[string]error
	gates  map[string]chan struct{}
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		points: map[string][]entity.RawCandlePoint{},
		errs:   map[string]error{},
		gates:  map[string]chan struct{}{},
	}
}

func (f *fakeSource) FetchCandles(ctx context.Context, key selentity.Key, limit int) ([]entity.RawCandlePoint, error) {
	f.mu.Lock()
	f.calls = append(f.calls, key)
	f.limits = append(f.limits, limit)
	gate := f.gates[key.Pair]
	pts, err := f.points[key.Pair], f.errs[key.Pair]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return pts, err
}

type recorder struct {
	mu      sync.Mutex
	renders [][]entity.Candle
	loading []bool
	alerts  []string
}

func (r *recorder) Render(c []entity.Candle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renders = append(r.renders, c)
}

func (r *recorder) SetLoading(v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loading = append(r.loading, v)
}

func (r *recorder) Alert(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, msg)
}

type dict map[string]string

func (d dict) T(key string) string {
	if s, ok := d[key]; ok {
		return s
	}
	return key
}

func point(ts float64, o, h, l, c string) entity.RawCandlePoint {
	return entity.RawCandlePoint{
		Time:  entity.NumberValue(ts),
		Open:  entity.StringValue(o),
		High:  entity.StringValue(h),
		Low:   entity.StringValue(l),
		Close: entity.StringValue(c),
	}
}

func key(pair string) selentity.Key {
	return selentity.Key{Pair: pair, Exchange: "OKX", Timeframe: "4h"}
}

func TestPipeline_LoadSync_RendersNormalizedCandles(t *testing.T) {
	t.Parallel()

	src := newFakeSource()
	src.points["ETH/USDT"] = []entity.RawCandlePoint{
		point(1700000000000, "10", "11", "9", "10.5"),
		point(1700014400000, "x", "11", "9", "10.5"),
	}
	rec := &recorder{}
	p := usecase.NewPipeline(src, rec, rec, rec, nil, usecase.PipelineOptions{})

	res, err := p.LoadSync(context.Background(), key("ETH/USDT"))

	require.NoError(t, err)
	assert.NotEmpty(t, res.ID)
	require.Len(t, rec.renders, 1)
	require.Len(t, rec.renders[0], 1)
	assert.Equal(t, int64(1700000000), rec.renders[0][0].Time.Unix())
	assert.Equal(t, 10.5, rec.renders[0][0].Close)
	assert.Equal(t, []bool{true, false}, rec.loading)
	assert.Empty(t, rec.alerts)
	assert.Equal(t, 1, res.Report.Dropped)
	assert.Equal(t, []int{usecase.DefaultLimit}, src.limits)
}

func TestPipeline_Errors(t *testing.T) {
	t.Parallel()

	messages := dict{
		"error.datasource": "数据加载失败",
		"error.empty":      "暂无数据",
		"error.network":    "网络错误",
	}

	tests := []struct {
		name      string
		points    []entity.RawCandlePoint
		err       error
		wantIs    error
		wantAlert string
	}{
		{
			name:      "data source error carries upstream text",
			err:       &domain.DataSourceError{Message: "symbol not found"},
			wantIs:    domain.ErrDataSource,
			wantAlert: "数据加载失败: symbol not found",
		},
		{
			name:      "empty batch",
			err:       domain.ErrEmptyData,
			wantIs:    domain.ErrEmptyData,
			wantAlert: "暂无数据",
		},
		{
			name:      "every point unusable",
			points:    []entity.RawCandlePoint{point(1, "a", "b", "c", "d")},
			wantIs:    domain.ErrEmptyData,
			wantAlert: "暂无数据",
		},
		{
			name:      "network failure",
			err:       errors.Join(domain.ErrNetwork, errors.New("connection refused")),
			wantIs:    domain.ErrNetwork,
			wantAlert: "网络错误: ",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := newFakeSource()
			src.points["BTC/USDT"] = tt.points
			src.errs["BTC/USDT"] = tt.err
			rec := &recorder{}
			p := usecase.NewPipeline(src, rec, rec, rec, messages, usecase.PipelineOptions{})

			_, err := p.LoadSync(context.Background(), key("BTC/USDT"))

			require.ErrorIs(t, err, tt.wantIs)
			assert.Empty(t, rec.renders, "a failed load must leave the chart untouched")
			require.Len(t, rec.alerts, 1)
			assert.Contains(t, rec.alerts[0], tt.wantAlert)
			assert.Equal(t, []bool{true, false}, rec.loading)
		})
	}
}

func TestPipeline_StaleResponseIsDiscarded(t *testing.T) {
	t.Parallel()

	src := newFakeSource()
	src.points["BTC/USDT"] = []entity.RawCandlePoint{point(1700000000, "1", "2", "0.5", "1.5")}
	src.points["ETH/USDT"] = []entity.RawCandlePoint{point(1700000000, "10", "20", "5", "15")}
	slow := make(chan struct{})
	src.gates["BTC/USDT"] = slow

	rec := &recorder{}
	p := usecase.NewPipeline(src, rec, rec, rec, nil, usecase.PipelineOptions{})
	t.Cleanup(p.Close)

	p.Load(key("BTC/USDT"))
	require.Eventually(t, func() bool {
		src.mu.Lock()
		defer src.mu.Unlock()
		return len(src.calls) == 1
	}, time.Second, time.Millisecond)

	_, err := p.LoadSync(context.Background(), key("ETH/USDT"))
	require.NoError(t, err)

	close(slow)
	p.Wait()

	require.Len(t, rec.renders, 1)
	assert.Equal(t, 15.0, rec.renders[0][0].Close, "only the most recent selection renders")
	assert.Empty(t, rec.alerts)
	assert.Equal(t, []bool{true, true, false}, rec.loading)
}

func TestPipeline_StaleFailureDoesNotAlert(t *testing.T) {
	t.Parallel()

	src := newFakeSource()
	src.errs["BTC/USDT"] = domain.ErrNetwork
	src.points["ETH/USDT"] = []entity.RawCandlePoint{point(1700000000, "10", "20", "5", "15")}
	slow := make(chan struct{})
	src.gates["BTC/USDT"] = slow

	rec := &recorder{}
	p := usecase.NewPipeline(src, rec, rec, rec, nil, usecase.PipelineOptions{})
	t.Cleanup(p.Close)

	p.Load(key("BTC/USDT"))
	p.Load(key("ETH/USDT"))
	close(slow)
	p.Wait()

	assert.Len(t, rec.renders, 1)
	assert.Empty(t, rec.alerts)
}

func TestPipeline_CloseCancelsInFlightLoadsSilently(t *testing.T) {
	t.Parallel()

	src := newFakeSource()
	src.gates["BTC/USDT"] = make(chan struct{})
	rec := &recorder{}
	p := usecase.NewPipeline(src, rec, rec, rec, nil, usecase.PipelineOptions{})

	p.Load(key("BTC/USDT"))
	p.Close()

	assert.Empty(t, rec.renders)
	assert.Empty(t, rec.alerts)
}

func TestPipeline_TimeoutSurfacesAsAlert(t *testing.T) {
	t.Parallel()

	src := newFakeSource()
	src.gates["BTC/USDT"] = make(chan struct{})
	rec := &recorder{}
	p := usecase.NewPipeline(src, rec, rec, rec, nil, usecase.PipelineOptions{Timeout: 10 * time.Millisecond})

	_, err := p.LoadSync(context.Background(), key("BTC/USDT"))

	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Len(t, rec.alerts, 1)
	assert.Contains(t, rec.alerts[0], "Network error")
}

func TestAlertMessage_FallsBackToEnglish(t *testing.T) {
	t.Parallel()

	msg := usecase.AlertMessage(dict{}, &domain.DataSourceError{Message: "bad symbol"})
	assert.Equal(t, "Failed to load market data: bad symbol", msg)

	msg = usecase.AlertMessage(nil, domain.ErrEmptyData)
	assert.Equal(t, "No market data available for this selection", msg)
}
