// Package binance は go-binance を使ったBinance現物の相場データアダプターを提供します。
package binance

import (
	"os"
	"time"
)

// Config holds configuration specific to the Binance adapter.
type Config struct {
	APIKey    string // 公開エンドポイントのみなら空で構いません
	SecretKey string
	BaseURL   string        // 空ならライブラリのデフォルト（https://api.binance.com）
	Timeout   time.Duration // HTTPリクエストタイムアウト
}

// LoadConfig は環境変数からBinanceの設定を読み込みます。
func LoadConfig() Config {
	return Config{
		APIKey:    os.Getenv("BINANCE_API_KEY"),
		SecretKey: os.Getenv("BINANCE_SECRET_KEY"),
		BaseURL:   os.Getenv("BINANCE_BASE_URL"),
		Timeout:   10 * time.Second,
	}
}
