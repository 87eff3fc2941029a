// Package ratelimiter は上流API呼び出しの頻度制限を提供します。
package ratelimiter

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// RateLimiterは、interval あたり limit 回までに呼び出しを制限します。
type RateLimiter struct {
	mu        sync.Mutex
	clk       clock.Clock
	limit     int           // interval あたりの上限
	interval  time.Duration // どの単位でリセットするか
	count     int
	lastReset time.Time
}

// NewRateLimiterは新しいRateLimiterのインスタンスを生成します。clkがnilなら実時間を使います。
func NewRateLimiter(limit int, interval time.Duration, clk clock.Clock) *RateLimiter {
	if clk == nil {
		clk = clock.New()
	}
	if limit <= 0 {
		limit = 1
	}
	return &RateLimiter{
		clk:       clk,
		limit:     limit,
		interval:  interval,
		lastReset: clk.Now(),
	}
}

// Waitはレートリミットの上限に達しているかを確認し、必要であれば待機します。
// 待機中にctxがキャンセルされた場合はctx.Err()を返します。
func (rl *RateLimiter) Wait(ctx context.Context) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clk.Now()
	// interval を過ぎたらカウントリセット
	if now.Sub(rl.lastReset) >= rl.interval {
		rl.count = 0
		rl.lastReset = now
	}

	rl.count++
	if rl.count <= rl.limit {
		return nil
	}

	sleep := rl.interval - now.Sub(rl.lastReset)
	if sleep > 0 {
		slog.Info("rate limit reached, waiting", "limit", rl.limit, "sleep", sleep)
		t := rl.clk.Timer(sleep)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			rl.count--
			return ctx.Err()
		}
	}
	// リセット
	rl.count = 1
	rl.lastReset = rl.clk.Now()
	return nil
}
