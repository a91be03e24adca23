package model

import "time"

// RunSummary describes what one pipeline run fetched and wrote.
type RunSummary struct {
	Symbol          string
	Started         time.Time
	Finished        time.Time
	IntradayRecords int
	DailyRecords    int
	ForecastModel   string
	Files           []string
	Err             string
}

// OK reports whether the run completed without a fatal error.
func (s *RunSummary) OK() bool { return s.Err == "" }
