// Package okx はOKX公開REST APIのクライアントを提供します。
package okx

import (
	"os"
	"time"
)

// DefaultBaseURL はOKX本番APIのベースURLです。
const DefaultBaseURL = "https://www.okx.com"

// Config はOKX APIクライアントの設定を保持します。
type Config struct {
	BaseURL string        // APIのベースURL（例: "https://www.okx.com"）
	Timeout time.Duration // HTTPリクエストタイムアウト
}

// LoadConfig は環境変数からOKXの設定を読み込みます。
func LoadConfig() Config {
	base := os.Getenv("OKX_BASE_URL")
	if base == "" {
		base = DefaultBaseURL
	}
	return Config{
		BaseURL: base,
		Timeout: 10 * time.Second,
	}
}
