// Package pipeline sequences one sales ETL run: schema setup, extraction,
// transformation, batch load and the optional analytics queries.
//
// Stages run strictly one after another, each consuming the complete output
// of the previous one. The first failing stage stops the run and is reported
// as a *StageError naming it. Analytics is the exception: its failure is
// recorded in the Result and logged, the load it follows stays committed.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"salesetl/internal/analytics"
	"salesetl/internal/config"
	"salesetl/internal/datasource/file"
	"salesetl/internal/datasource/httpds"
	"salesetl/internal/diag"
	"salesetl/internal/loader"
	"salesetl/internal/metrics"
	jsonparser "salesetl/internal/parser/json"
	"salesetl/internal/projector"
	"salesetl/internal/quality"
	"salesetl/internal/records"
	"salesetl/internal/schema"
	"salesetl/internal/storage"
	"salesetl/internal/transformer"
	"salesetl/internal/transformer/datestd"
)

// Stage names a pipeline step in errors, logs and metrics.
type Stage string

const (
	StageSchema    Stage = "schema"
	StageExtract   Stage = "extract"
	StageTransform Stage = "transform"
	StageLoad      Stage = "load"
	StageAnalytics Stage = "analytics"
)

// StageError wraps the error of the stage that stopped the run.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s failed: %v", e.Stage, e.Err) }

func (e *StageError) Unwrap() error { return e.Err }

// ErrEmptyTransform is returned when transformation leaves nothing to load.
var ErrEmptyTransform = errors.New("pipeline: transform produced no rows")

// Function variables used as test seams.
var (
	newRepositoryFn  = storage.New
	ensureDatabaseFn = storage.EnsureDatabase
	openSourceFn     = openSource
	decodeRecordsFn  = jsonparser.DecodeRecords
	newRunID         = uuid.NewString
)

// Result summarizes a run.
type Result struct {
	RunID     string
	Extracted int
	Quality   quality.Summary
	Load      loader.Report

	// Analytics is set when analytics ran and succeeded.
	Analytics *analytics.Report
	// AnalyticsErr is a failed analytics stage. It does not fail the run.
	AnalyticsErr error
}

// Runner executes runs for one configuration.
type Runner struct {
	Config config.Pipeline
	Sink   diag.Sink
	// Reference supplies date components missing from input dates. Zero
	// means the current date.
	Reference time.Time
}

// Run executes every stage in order. The returned Result is populated up to
// the stage that failed.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	cfg := r.Config
	res := Result{RunID: newRunID()}
	sink := diag.With(r.sink(), diag.Fields{"run_id": res.RunID, "job": cfg.Job})
	start := time.Now()

	sink.Record(diag.LevelInfo, "pipeline started", diag.Fields{
		"source":  sourceName(cfg.Source),
		"storage": cfg.Storage.Kind,
	})

	params := cfg.Storage.Params()
	var repo storage.Repository
	defer func() {
		if repo != nil {
			repo.Close()
			sink.Record(diag.LevelDebug, "storage connection closed", nil)
		}
	}()

	err := r.step(cfg.Job, StageSchema, sink, func() error {
		if err := ensureDatabaseFn(ctx, params); err != nil {
			return fmt.Errorf("ensure database: %w", err)
		}
		var err error
		if repo, err = newRepositoryFn(ctx, params); err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		return schema.Ensure(ctx, repo)
	})
	if err != nil {
		return res, err
	}

	var raw []records.RawRecord
	err = r.step(cfg.Job, StageExtract, sink, func() error {
		var err error
		raw, err = extract(ctx, cfg.Source)
		return err
	})
	if err != nil {
		return res, err
	}
	res.Extracted = len(raw)
	metrics.RecordRows(cfg.Job, "extracted", int64(len(raw)))
	sink.Record(diag.LevelInfo, "records extracted", diag.Fields{"count": len(raw)})

	var proj projector.Projection
	err = r.step(cfg.Job, StageTransform, sink, func() error {
		flat := transformer.Normalize(raw, sink)
		rows := transformer.Deriver{
			Dates: datestd.Standardizer{Sink: sink, Reference: r.Reference},
			Sink:  sink,
		}.Derive(flat)
		res.Quality = quality.Checker{Sink: sink}.Check(rows)
		for _, e := range res.Quality.Entries() {
			metrics.RecordDefects(cfg.Job, string(e.Category), e.Count)
		}
		proj = projector.Project(rows)
		if len(proj.Transactions) == 0 {
			return ErrEmptyTransform
		}
		sink.Record(diag.LevelInfo, "tables projected", diag.Fields{
			"customers":    len(proj.Customers),
			"products":     len(proj.Products),
			"transactions": len(proj.Transactions),
		})
		return nil
	})
	if err != nil {
		return res, err
	}

	err = r.step(cfg.Job, StageLoad, sink, func() error {
		l := loader.Loader{
			Repo:            repo,
			BatchSize:       cfg.Runtime.BatchSize,
			Sink:            sink,
			ClearBeforeLoad: cfg.Storage.ClearBeforeLoad,
			Transactional:   cfg.Storage.Transactional,
		}
		var err error
		res.Load, err = l.Load(ctx, proj)
		for _, t := range res.Load.Tables {
			metrics.RecordBatches(cfg.Job, t.Table, int64(t.Batches))
			metrics.RecordRows(cfg.Job, "loaded", t.Rows)
		}
		return err
	})
	if err != nil {
		return res, err
	}

	if cfg.Analytics.Enabled {
		rep, err := r.analyze(ctx, repo, sink)
		if err != nil {
			res.AnalyticsErr = &StageError{Stage: StageAnalytics, Err: err}
			sink.Record(diag.LevelWarn, "analytics failed, loaded data kept", diag.Fields{"error": err.Error()})
		} else {
			res.Analytics = &rep
		}
	}

	sink.Record(diag.LevelInfo, "pipeline completed", diag.Fields{
		"extracted": res.Extracted,
		"elapsed":   time.Since(start).Truncate(time.Millisecond).String(),
	})
	return res, nil
}

// Analyze connects to the configured store and runs the analytics queries
// over whatever it already holds.
func (r *Runner) Analyze(ctx context.Context) (analytics.Report, error) {
	sink := diag.With(r.sink(), diag.Fields{"job": r.Config.Job})
	repo, err := newRepositoryFn(ctx, r.Config.Storage.Params())
	if err != nil {
		return analytics.Report{}, &StageError{Stage: StageAnalytics, Err: fmt.Errorf("connect: %w", err)}
	}
	defer repo.Close()
	rep, err := r.analyze(ctx, repo, sink)
	if err != nil {
		return analytics.Report{}, &StageError{Stage: StageAnalytics, Err: err}
	}
	return rep, nil
}

func (r *Runner) analyze(ctx context.Context, repo storage.Repository, sink diag.Sink) (analytics.Report, error) {
	var rep analytics.Report
	a := r.Config.Analytics
	start := time.Now()
	err := func() error {
		run := analytics.Runner{Repo: repo, TopN: a.TopN, Parallelism: a.Parallelism, Sink: sink}
		var err error
		if rep, err = run.Run(ctx); err != nil {
			return err
		}
		if a.XLSXPath != "" {
			if err := analytics.WriteXLSX(a.XLSXPath, rep); err != nil {
				return err
			}
			sink.Record(diag.LevelInfo, "analytics workbook written", diag.Fields{"path": a.XLSXPath})
		}
		return nil
	}()
	metrics.RecordStep(r.Config.Job, string(StageAnalytics), err, time.Since(start))
	return rep, err
}

// step runs fn as stage, records its metrics and wraps its error.
func (r *Runner) step(job string, stage Stage, sink diag.Sink, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	metrics.RecordStep(job, string(stage), err, elapsed)
	if err != nil {
		sink.Record(diag.LevelError, "stage failed", diag.Fields{"stage": string(stage), "error": err.Error()})
		return &StageError{Stage: stage, Err: err}
	}
	sink.Record(diag.LevelDebug, "stage completed", diag.Fields{
		"stage":   string(stage),
		"elapsed": elapsed.Truncate(time.Microsecond).String(),
	})
	return nil
}

func (r *Runner) sink() diag.Sink {
	if r.Sink == nil {
		return diag.Discard
	}
	return r.Sink
}

func extract(ctx context.Context, src config.Source) ([]records.RawRecord, error) {
	rc, err := openSourceFn(ctx, src)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return decodeRecordsFn(rc, jsonparser.Options{MaxRecords: src.MaxRecords})
}

func sourceName(src config.Source) string {
	if src.Kind == "http" {
		return src.HTTP.URL
	}
	return src.File.Path
}

func openSource(ctx context.Context, src config.Source) (io.ReadCloser, error) {
	switch src.Kind {
	case "", "file":
		return file.NewLocal(src.File.Path).Open(ctx)
	case "http":
		return httpds.NewRemote(httpds.Config{
			URL:        src.HTTP.URL,
			Timeout:    src.HTTP.Timeout,
			MaxRetries: src.HTTP.MaxRetries,
		}).Open(ctx)
	default:
		return nil, fmt.Errorf("unsupported source.kind=%s", src.Kind)
	}
}
