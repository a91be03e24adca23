package recorder

import "PairFeed/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordPayload(_ *model.Payload) error         { return nil }
func (n *NoopRecorder) RecordForecast(_ *model.ForecastResult) error { return nil }
func (n *NoopRecorder) RecordRun(_ *RunEvent) error                  { return nil }
func (n *NoopRecorder) Close() error                                 { return nil }
