package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"

	"quant_dashboard/internal/feature/marketdata/domain/entity"
)

// mockCandleRepository はテスト用のCandleRepositoryモック実装です。
type mockCandleRepository struct {
	findFn        func(ctx context.Context, exchange, symbol, timeframe string, limit int) ([]entity.Candle, error)
	upsertBatchFn func(ctx context.Context, candles []entity.Candle) error
}

// Find はモックのFind関数を呼び出します。
func (m *mockCandleRepository) Find(ctx context.Context, exchange, symbol, timeframe string, limit int) ([]entity.Candle, error) {
	if m.findFn != nil {
		return m.findFn(ctx, exchange, symbol, timeframe, limit)
	}
	return nil, nil
}

// UpsertBatch はモックのUpsertBatch関数を呼び出します。
func (m *mockCandleRepository) UpsertBatch(ctx context.Context, candles []entity.Candle) error {
	if m.upsertBatchFn != nil {
		return m.upsertBatchFn(ctx, candles)
	}
	return nil
}

var storedCandles = []entity.Candle{
	{Exchange: "okx", Symbol: "BTC/USDT", Timeframe: "1h", Time: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Open: 150.0, Close: 155.0},
}

// TestNewCachingCandleRepository_Defaults はデフォルト値（TTLとnamespace）が正しく設定されることを検証します。
func TestNewCachingCandleRepository_Defaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		ttl               time.Duration
		namespace         string
		expectedTTL       time.Duration
		expectedNamespace string
	}{
		{
			name:              "default values when zero/empty",
			expectedTTL:       5 * time.Minute,
			expectedNamespace: "candles",
		},
		{
			name:              "negative ttl uses default",
			ttl:               -1 * time.Minute,
			expectedTTL:       5 * time.Minute,
			expectedNamespace: "candles",
		},
		{
			name:              "custom values preserved",
			ttl:               10 * time.Minute,
			namespace:         "custom",
			expectedTTL:       10 * time.Minute,
			expectedNamespace: "custom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := NewCachingCandleRepository(nil, tt.ttl, &mockCandleRepository{}, tt.namespace)

			if repo.ttl != tt.expectedTTL {
				t.Errorf("expected TTL %v, got %v", tt.expectedTTL, repo.ttl)
			}
			if repo.namespace != tt.expectedNamespace {
				t.Errorf("expected namespace %q, got %q", tt.expectedNamespace, repo.namespace)
			}
		})
	}
}

// TestCachingCandleRepository_Find_NilRedis はRedisがnilの場合にキャッシュをバイパスすることを検証します。
func TestCachingCandleRepository_Find_NilRedis(t *testing.T) {
	t.Parallel()

	inner := &mockCandleRepository{
		findFn: func(ctx context.Context, exchange, symbol, timeframe string, limit int) ([]entity.Candle, error) {
			return storedCandles, nil
		},
	}

	repo := NewCachingCandleRepository(nil, 5*time.Minute, inner, "candles")

	candles, err := repo.Find(context.Background(), "okx", "BTC/USDT", "1h", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candles) != len(storedCandles) {
		t.Errorf("expected %d candles, got %d", len(storedCandles), len(candles))
	}
}

// TestCachingCandleRepository_Find_CacheHit はキャッシュヒット時に内部リポジトリを呼ばないことを検証します。
func TestCachingCandleRepository_Find_CacheHit(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	cachedJSON, _ := json.Marshal(storedCandles)
	mock.ExpectGet("candles:okx:BTC/USDT:1h:100").SetVal(string(cachedJSON))

	innerCalled := false
	inner := &mockCandleRepository{
		findFn: func(ctx context.Context, exchange, symbol, timeframe string, limit int) ([]entity.Candle, error) {
			innerCalled = true
			return nil, nil
		},
	}

	repo := NewCachingCandleRepository(rdb, 5*time.Minute, inner, "candles")
	candles, err := repo.Find(context.Background(), "okx", "BTC/USDT", "1h", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if innerCalled {
		t.Error("inner repository should not be called on cache hit")
	}
	if len(candles) != 1 || candles[0].Close != 155.0 {
		t.Errorf("unexpected candles: %+v", candles)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingCandleRepository_Find_CacheMiss はキャッシュミス時にDBから取得してキャッシュに保存することを検証します。
func TestCachingCandleRepository_Find_CacheMiss(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expectedJSON, _ := json.Marshal(storedCandles)
	mock.ExpectGet("candles:okx:BTC/USDT:1h:100").RedisNil()
	mock.ExpectSet("candles:okx:BTC/USDT:1h:100", expectedJSON, 5*time.Minute).SetVal("OK")

	inner := &mockCandleRepository{
		findFn: func(ctx context.Context, exchange, symbol, timeframe string, limit int) ([]entity.Candle, error) {
			return storedCandles, nil
		},
	}

	repo := NewCachingCandleRepository(rdb, 5*time.Minute, inner, "candles")
	candles, err := repo.Find(context.Background(), "okx", "BTC/USDT", "1h", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candles) != 1 {
		t.Errorf("expected 1 candle, got %d", len(candles))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingCandleRepository_Find_InnerError は内部リポジトリのエラーが伝播されることを検証します。
func TestCachingCandleRepository_Find_InnerError(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectGet("candles:okx:BTC/USDT:1h:100").RedisNil()

	expectedErr := errors.New("database error")
	inner := &mockCandleRepository{
		findFn: func(ctx context.Context, exchange, symbol, timeframe string, limit int) ([]entity.Candle, error) {
			return nil, expectedErr
		},
	}

	repo := NewCachingCandleRepository(rdb, 5*time.Minute, inner, "candles")
	_, err := repo.Find(context.Background(), "okx", "BTC/USDT", "1h", 100)

	if !errors.Is(err, expectedErr) {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
}

// TestCachingCandleRepository_Find_CorruptedCache は破損したキャッシュを削除してDBにフォールバックすることを検証します。
func TestCachingCandleRepository_Find_CorruptedCache(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expectedJSON, _ := json.Marshal(storedCandles)
	mock.ExpectGet("candles:okx:BTC/USDT:1h:100").SetVal("invalid json")
	mock.ExpectDel("candles:okx:BTC/USDT:1h:100").SetVal(1)
	mock.ExpectSet("candles:okx:BTC/USDT:1h:100", expectedJSON, 5*time.Minute).SetVal("OK")

	inner := &mockCandleRepository{
		findFn: func(ctx context.Context, exchange, symbol, timeframe string, limit int) ([]entity.Candle, error) {
			return storedCandles, nil
		},
	}

	repo := NewCachingCandleRepository(rdb, 5*time.Minute, inner, "candles")
	if _, err := repo.Find(context.Background(), "okx", "BTC/USDT", "1h", 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingCandleRepository_UpsertBatch_InnerError は内部リポジトリのエラーが伝播されることを検証します。
func TestCachingCandleRepository_UpsertBatch_InnerError(t *testing.T) {
	t.Parallel()

	expectedErr := errors.New("upsert error")
	inner := &mockCandleRepository{
		upsertBatchFn: func(ctx context.Context, candles []entity.Candle) error {
			return expectedErr
		},
	}

	repo := NewCachingCandleRepository(nil, 5*time.Minute, inner, "candles")
	err := repo.UpsertBatch(context.Background(), storedCandles)

	if !errors.Is(err, expectedErr) {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
}

// TestCachingCandleRepository_UpsertBatch_DeduplicatesInvalidation は同一キーの無効化が1回だけ実行されることを検証します。
func TestCachingCandleRepository_UpsertBatch_DeduplicatesInvalidation(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectScan(0, "candles:okx:BTC/USDT:1h:*", 200).SetVal([]string{"candles:okx:BTC/USDT:1h:100", "candles:okx:BTC/USDT:1h:200"}, 0)
	mock.ExpectDel("candles:okx:BTC/USDT:1h:100", "candles:okx:BTC/USDT:1h:200").SetVal(2)
	mock.ExpectScan(0, "candles:binance:BTC/USDT:1h:*", 200).SetVal([]string{}, 0)

	repo := NewCachingCandleRepository(rdb, 5*time.Minute, &mockCandleRepository{}, "candles")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	err := repo.UpsertBatch(context.Background(), []entity.Candle{
		{Exchange: "okx", Symbol: "BTC/USDT", Timeframe: "1h", Time: base},
		{Exchange: "okx", Symbol: "BTC/USDT", Timeframe: "1h", Time: base.Add(time.Hour)},
		{Exchange: "binance", Symbol: "BTC/USDT", Timeframe: "1h", Time: base},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestSafe はsafe関数がRedisキーで問題となる文字を正しくエスケープすることを検証します。
func TestSafe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"BTC/USDT", "BTC/USDT"},
		{"BTC USDT", "BTC_USDT"},
		{"key:value", "key_value"},
		{"", ""},
		{"::", "__"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			if got := safe(tt.input); got != tt.expected {
				t.Errorf("safe(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}
