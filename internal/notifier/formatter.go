package notifier

import (
	"fmt"
	"html"
	"path/filepath"
	"strings"
	"time"

	"PairFeed/internal/model"
)

// FormatRunReport formats a run summary into a Telegram message.
func FormatRunReport(s *model.RunSummary) string {
	var b strings.Builder

	status := "✅ <b>PairFeed run complete</b>"
	if !s.OK() {
		status = "❌ <b>PairFeed run failed</b>"
	}
	b.WriteString(fmt.Sprintf("%s | %s\n\n", status, html.EscapeString(s.Symbol)))
	b.WriteString(fmt.Sprintf("Started: %s UTC\n", s.Started.UTC().Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Duration: %s\n", s.Finished.Sub(s.Started).Round(100*time.Millisecond)))

	if s.IntradayRecords > 0 {
		b.WriteString(fmt.Sprintf("Intraday candles: %d\n", s.IntradayRecords))
	} else {
		b.WriteString("Intraday candles: none\n")
	}
	b.WriteString(fmt.Sprintf("Daily candles: %d\n", s.DailyRecords))
	if s.ForecastModel != "" {
		b.WriteString(fmt.Sprintf("Forecast model: %s\n", s.ForecastModel))
	}

	if len(s.Files) > 0 {
		b.WriteString(fmt.Sprintf("\n📁 <b>Files (%d)</b>\n", len(s.Files)))
		for _, f := range s.Files {
			b.WriteString(fmt.Sprintf("  %s\n", html.EscapeString(filepath.Base(f))))
		}
	}

	if !s.OK() {
		b.WriteString(fmt.Sprintf("\n⚠️ %s\n", html.EscapeString(s.Err)))
	}
	return b.String()
}
