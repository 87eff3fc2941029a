// Package apiclient はダッシュボードからマーケットデータAPIを呼び出すクライアントを提供します。
package apiclient

import "time"

// Config はマーケットデータAPIクライアントの設定を保持します。
type Config struct {
	BaseURL string        // サーバーのベースURL（例: "http://127.0.0.1:5000"）
	Timeout time.Duration // HTTPリクエストタイムアウト
}
