package recorder

import "PairFeed/internal/model"

// RunEvent summarizes one pipeline run.
type RunEvent struct {
	Status          string // "OK" or "FAILED"
	IntradayRecords int
	DailyRecords    int
	ForecastModel   string
	Files           int
	Error           string
}

// Recorder persists run history for later analysis.
type Recorder interface {
	RecordPayload(p *model.Payload) error
	RecordForecast(f *model.ForecastResult) error
	RecordRun(evt *RunEvent) error
	Close() error
}
