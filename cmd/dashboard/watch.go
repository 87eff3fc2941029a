package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	i18nadapters "quant_dashboard/internal/feature/i18n/adapters"
	i18nusecase "quant_dashboard/internal/feature/i18n/usecase"
	"quant_dashboard/internal/platform/config"
	"quant_dashboard/internal/platform/events"
	"quant_dashboard/internal/platform/ws"
)

// wsURL は http(s) のベースURLを /ws のWebSocket URLへ変換します。
func wsURL(base string) string {
	base = strings.TrimRight(base, "/")
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + "/ws"
}

func newWatchCmd(cfg *config.ClientConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow language changes broadcast by the backend and persist them locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			messages, err := i18nadapters.LoadCatalog()
			if err != nil {
				return err
			}
			prefs, closePrefs, err := prefsStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closePrefs()

			bus := events.NewBus()
			locale, err := i18nusecase.NewLocale(messages, prefs, bus)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "[%s] %s\n", locale.Language(), locale.T("app.title"))

			err = ws.Listen(cmd.Context(), wsURL(cfg.ServerURL), func(msg ws.Message) {
				if msg.Type != string(events.TopicLanguageChanged) {
					return
				}
				var ev i18nusecase.LanguageChanged
				if err := json.Unmarshal(msg.Payload, &ev); err != nil {
					slog.Warn("bad language.changed payload", "error", err)
					return
				}
				lang, err := locale.Switch(string(ev.To))
				if err != nil {
					slog.Warn("language switch fell back", "requested", ev.To, "error", err)
				}
				_, _ = fmt.Fprintf(out, "[%s] %s\n", lang, locale.T("app.title"))
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
