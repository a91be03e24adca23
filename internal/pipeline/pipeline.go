package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"PairFeed/internal/collector"
	"PairFeed/internal/forecast"
	"PairFeed/internal/model"
	"PairFeed/internal/payload"
	"PairFeed/internal/recorder"
	"PairFeed/internal/writer"
)

// ErrNoDailyData aborts a run: without daily bars there is nothing to forecast.
var ErrNoDailyData = errors.New("no daily data returned")

// Reporter delivers a run summary somewhere a human will see it.
type Reporter interface {
	Report(ctx context.Context, s *model.RunSummary) error
}

// Target is a fetch window plus the file suffix its payloads are written under.
type Target struct {
	collector.Window
	FileTag string
}

// Options names the pair and the files a run produces.
type Options struct {
	Symbol         string
	InvertedSymbol string
	Tag            string
	InvertedTag    string
	Intraday       Target
	Daily          Target
	Horizon        int
	NoForecast     bool
}

// Runner executes one fetch → build → invert → forecast → write pass.
type Runner struct {
	Opts       Options
	Fetcher    collector.Fetcher
	Writer     writer.Writer
	Forecaster *forecast.Forecaster
	Recorder   recorder.Recorder
	Reporter   Reporter
	Now        func() time.Time

	logger zerolog.Logger
}

// NewRunner wires a Runner. A nil recorder or reporter is replaced by a no-op.
func NewRunner(opts Options, f collector.Fetcher, w writer.Writer, fc *forecast.Forecaster,
	rec recorder.Recorder, rep Reporter, now func() time.Time, logger zerolog.Logger) *Runner {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if now == nil {
		now = time.Now
	}
	return &Runner{
		Opts:       opts,
		Fetcher:    f,
		Writer:     w,
		Forecaster: fc,
		Recorder:   rec,
		Reporter:   rep,
		Now:        now,
		logger:     logger.With().Str("component", "pipeline").Logger(),
	}
}

// Run performs a full pass. Intraday problems only warn; missing daily data
// or a failed write returns an error after whatever was already written.
func (r *Runner) Run(ctx context.Context) (*model.RunSummary, error) {
	sum := &model.RunSummary{Symbol: r.Opts.Symbol, Started: r.Now()}

	err := r.run(ctx, sum)

	sum.Finished = r.Now()
	if err != nil {
		sum.Err = err.Error()
	}
	r.recordRun(sum)
	if r.Reporter != nil {
		if rerr := r.Reporter.Report(ctx, sum); rerr != nil {
			r.logger.Warn().Err(rerr).Msg("report run summary")
		}
	}
	return sum, err
}

func (r *Runner) run(ctx context.Context, sum *model.RunSummary) error {
	intraday := r.Opts.Intraday
	rows, err := r.Fetcher.FetchBars(ctx, r.Opts.Symbol, intraday.Window)
	if err != nil {
		r.logger.Warn().Err(err).Str("window", intraday.String()).Msg("intraday fetch failed")
		rows = nil
	}
	if len(rows) == 0 {
		r.logger.Warn().
			Str("symbol", r.Opts.Symbol).
			Str("window", intraday.String()).
			Str("source", r.Fetcher.Name()).
			Msg("no intraday data returned, skipping intraday files")
	} else {
		p, err := r.writePair(intraday, rows, sum)
		if err != nil {
			return err
		}
		sum.IntradayRecords = p.Meta.Records
	}

	daily := r.Opts.Daily
	rows, err = r.Fetcher.FetchBars(ctx, r.Opts.Symbol, daily.Window)
	if err != nil {
		return fmt.Errorf("fetch daily bars (%s, %s): %w", r.Opts.Symbol, daily, err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("%w (%s, %s)", ErrNoDailyData, r.Opts.Symbol, daily)
	}
	p, err := r.writePair(daily, rows, sum)
	if err != nil {
		return err
	}
	sum.DailyRecords = p.Meta.Records

	if r.Opts.NoForecast || r.Forecaster == nil {
		return nil
	}
	return r.writeForecasts(p, sum)
}

// writePair builds the payload for rows, derives its inverse and writes both.
// It returns the original-direction payload.
func (r *Runner) writePair(t Target, rows []model.Row, sum *model.RunSummary) (*model.Payload, error) {
	orig := payload.Build(rows, r.Opts.Symbol, t.Interval, r.Now())
	inv := payload.Invert(orig, r.Opts.InvertedSymbol)

	for _, out := range []struct {
		tag string
		p   *model.Payload
	}{
		{r.Opts.Tag, orig},
		{r.Opts.InvertedTag, inv},
	} {
		path, err := r.Writer.WriteJSON(writer.FileName(out.tag, t.FileTag), out.p)
		if err != nil {
			return nil, err
		}
		sum.Files = append(sum.Files, path)
		r.logger.Info().Int("candles", len(out.p.Candles)).Str("path", path).Msg("wrote candles")

		if err := r.Recorder.RecordPayload(out.p); err != nil {
			r.logger.Warn().Err(err).Str("symbol", out.p.Symbol).Msg("record payload")
		}
	}
	return orig, nil
}

func (r *Runner) writeForecasts(daily *model.Payload, sum *model.RunSummary) error {
	res, err := r.Forecaster.Forecast(r.Opts.Symbol, daily.Closes(), daily.LastTime(), r.Opts.Horizon)
	if err != nil {
		r.logger.Warn().Err(err).Msg("forecast skipped")
		return nil
	}
	sum.ForecastModel = res.Model

	inv := forecast.InvertForecast(res, r.Opts.InvertedSymbol)
	for _, out := range []struct {
		tag string
		f   *model.ForecastResult
	}{
		{r.Opts.Tag, res},
		{r.Opts.InvertedTag, inv},
	} {
		path, err := r.Writer.WriteJSON(writer.FileName(out.tag, "forecast"), out.f)
		if err != nil {
			return err
		}
		sum.Files = append(sum.Files, path)
		r.logger.Info().
			Str("model", out.f.Model).
			Int("horizon", out.f.HorizonDays).
			Str("path", path).
			Msg("wrote forecast")

		if err := r.Recorder.RecordForecast(out.f); err != nil {
			r.logger.Warn().Err(err).Str("symbol", out.f.Symbol).Msg("record forecast")
		}
	}
	return nil
}

func (r *Runner) recordRun(sum *model.RunSummary) {
	status := "OK"
	if !sum.OK() {
		status = "FAILED"
	}
	if err := r.Recorder.RecordRun(&recorder.RunEvent{
		Status:          status,
		IntradayRecords: sum.IntradayRecords,
		DailyRecords:    sum.DailyRecords,
		ForecastModel:   sum.ForecastModel,
		Files:           len(sum.Files),
		Error:           sum.Err,
	}); err != nil {
		r.logger.Warn().Err(err).Msg("record run")
	}
}
