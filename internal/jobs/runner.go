package jobs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"contact-radar/internal/calculator"
	"contact-radar/internal/duplicate"
	"contact-radar/internal/excel"
	"contact-radar/internal/metrics"
	"contact-radar/internal/models"
)

const (
	DuplicatesSheet = "Duplicates"
	NearestSheet    = "Nearest"

	progressEvery = 500
)

// Source supplies the directory snapshot incoming rows are compared against.
type Source interface {
	Contacts() []models.Contact
}

type Runner struct {
	store         *Store
	source        Source
	contactsSheet string
	outputDir     string
	logger        *zap.Logger
	metrics       *metrics.Metrics

	wg sync.WaitGroup
}

func NewRunner(store *Store, source Source, contactsSheet, outputDir string, logger *zap.Logger, m *metrics.Metrics) *Runner {
	return &Runner{
		store:         store,
		source:        source,
		contactsSheet: contactsSheet,
		outputDir:     outputDir,
		logger:        logger,
		metrics:       m,
	}
}

// Start registers a job and processes inputPath in the background.
func (r *Runner) Start(mode Mode, inputPath string) *Job {
	ctx, cancel := context.WithCancel(context.Background())
	job := newJob(mode)
	job.cancel = cancel
	r.store.add(job)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer cancel()
		r.process(ctx, job, inputPath)
		if r.metrics != nil {
			r.metrics.Jobs.WithLabelValues(string(mode), string(job.Status())).Inc()
		}
	}()
	return job
}

// Wait blocks until every started job has stopped.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) logf(job *Job, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	job.Log(msg)
	r.logger.Info(msg, zap.String("job_id", job.ID))
}

func (r *Runner) failf(job *Job, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	job.fail(StatusError, msg)
	r.logger.Error("job failed", zap.String("job_id", job.ID), zap.String("error", msg))
}

func (r *Runner) process(ctx context.Context, job *Job, inputPath string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.failf(job, "Panic: %v", rec)
		}
	}()

	r.logf(job, "Processing file: %s", filepath.Base(inputPath))

	f, err := excel.OpenFile(inputPath)
	if err != nil {
		r.failf(job, "could not open workbook: %v", err)
		return
	}
	incoming, rejected, err := excel.ReadContacts(f, r.contactsSheet)
	f.Close()
	if err != nil {
		r.failf(job, "%s sheet read error: %v", r.contactsSheet, err)
		return
	}
	existing := r.source.Contacts()
	r.logf(job, "%d incoming rows, %d directory contacts", len(incoming), len(existing))
	if len(rejected) > 0 {
		r.logf(job, "%d rows skipped: location out of range", len(rejected))
	}

	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		r.failf(job, "output dir: %v", err)
		return
	}
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	outputPath := filepath.Join(r.outputDir, fmt.Sprintf("%s_%s.xlsx", base, job.Mode))

	onProgress := func(current, total int) {
		job.SetProgress(current, total, "")
	}

	start := time.Now()
	var res *JobResult
	switch job.Mode {
	case ModeNearest:
		res, err = r.runNearest(ctx, incoming, existing, outputPath, onProgress)
	default:
		res, err = r.runDedupe(ctx, incoming, existing, outputPath, onProgress)
	}
	if errors.Is(err, context.Canceled) {
		job.fail(StatusCanceled, "canceled")
		r.logger.Info("job canceled", zap.String("job_id", job.ID))
		return
	}
	if err != nil {
		r.failf(job, "%s failed: %v", job.Mode, err)
		return
	}

	r.logf(job, "Calculation completed in %s", time.Since(start))
	res.Output = outputPath
	res.Filename = filepath.Base(outputPath)
	job.finish(res)
}

// forEachChunk splits n rows across the CPUs; fn must only write to its own index.
func forEachChunk(ctx context.Context, n int, onProgress func(current, total int), fn func(idx int) error) error {
	numCPU := runtime.NumCPU()
	if numCPU < 1 {
		numCPU = 1
	}
	chunkSize := (n + numCPU - 1) / numCPU

	g, ctx := errgroup.WithContext(ctx)
	var processed int64
	for i := 0; i < numCPU; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if start >= n {
			break
		}
		if end > n {
			end = n
		}

		g.Go(func() error {
			for idx := start; idx < end; idx++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := fn(idx); err != nil {
					return err
				}
				if count := atomic.AddInt64(&processed, 1); count%progressEvery == 0 {
					onProgress(int(count), n)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	onProgress(n, n)
	return nil
}

func (r *Runner) runDedupe(ctx context.Context, incoming, existing []models.Contact, outputPath string, onProgress func(int, int)) (*JobResult, error) {
	rows := make([]excel.DuplicateRow, len(incoming))
	err := forEachChunk(ctx, len(incoming), onProgress, func(idx int) error {
		in := incoming[idx]
		rows[idx] = excel.DuplicateRow{
			Row:      in.RowIndex,
			Incoming: in,
			Verdict:  duplicate.Find(in.Phone, in.Name, existing),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	dupes := 0
	for _, row := range rows {
		if row.Verdict.Found() {
			dupes++
		}
		if r.metrics != nil {
			r.metrics.ObserveDuplicate(string(row.Verdict.Reason))
		}
	}
	if err := excel.WriteDuplicates(outputPath, rows, DuplicatesSheet); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	return &JobResult{Mode: ModeDedupe, Rows: len(rows), Duplicates: dupes, Sheet: DuplicatesSheet}, nil
}

func (r *Runner) runNearest(ctx context.Context, incoming, existing []models.Contact, outputPath string, onProgress func(int, int)) (*JobResult, error) {
	rows := make([]excel.NearestRow, len(incoming))
	err := forEachChunk(ctx, len(incoming), onProgress, func(idx int) error {
		in := incoming[idx]
		rows[idx] = excel.NearestRow{Row: in.RowIndex, Incoming: in}
		if in.Loc == nil {
			return nil
		}
		ranked, err := calculator.RankNearest(*in.Loc, existing, 1)
		if err != nil {
			return err
		}
		if len(ranked) > 0 {
			rows[idx].Nearest = &ranked[0]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := excel.WriteNearest(outputPath, rows, NearestSheet); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	return &JobResult{Mode: ModeNearest, Rows: len(rows), Sheet: NearestSheet}, nil
}
