// Package dispatch polls the print queue and drives the thermal printer.
package dispatch

import (
	"context"
	"time"

	"tapneat/internal/core/domain"
	"tapneat/internal/core/ports"

	"github.com/rs/zerolog"
)

// Dispatcher moves claimed print jobs to the printer and reports the
// outcome back to the queue. Ticks run sequentially, so at most one batch
// is in flight at a time.
type Dispatcher struct {
	source     ports.JobSource
	renderer   ports.ReceiptRenderer
	transport  ports.PrinterTransport
	interval   time.Duration
	batchLimit int
	log        zerolog.Logger
}

// New creates a Dispatcher.
func New(source ports.JobSource, renderer ports.ReceiptRenderer, transport ports.PrinterTransport, interval time.Duration, batchLimit int, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		source:     source,
		renderer:   renderer,
		transport:  transport,
		interval:   interval,
		batchLimit: batchLimit,
		log:        log,
	}
}

// Run polls until ctx is cancelled. It never returns a non-cancellation
// error; claim and report failures are logged and retried on the next tick.
func (d *Dispatcher) Run(ctx context.Context) {
	d.log.Info().
		Dur("interval", d.interval).
		Int("batch_limit", d.batchLimit).
		Msg("dispatcher started")

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		d.tick(ctx)
		select {
		case <-ctx.Done():
			d.log.Info().Msg("dispatcher stopped")
			return
		case <-ticker.C:
		}
	}
}

// tick claims one batch and works through it job by job. A printer failure
// on one job does not stop the rest of the batch; each job's outcome is
// reported individually.
func (d *Dispatcher) tick(ctx context.Context) {
	jobs, err := d.source.Claim(ctx, d.batchLimit)
	if err != nil {
		if ctx.Err() == nil {
			d.log.Error().Err(err).Msg("claim failed")
		}
		return
	}
	if len(jobs) == 0 {
		return
	}
	d.log.Debug().Int("count", len(jobs)).Msg("claimed jobs")

	for _, job := range jobs {
		if ctx.Err() != nil {
			return
		}
		d.process(ctx, job)
	}
}

func (d *Dispatcher) process(ctx context.Context, job domain.PrintJob) {
	payload := d.renderer.Render(ctx, job)

	if err := d.transport.Send(ctx, payload); err != nil {
		d.log.Error().Err(err).Str("job_id", job.ID.String()).Msg("print failed")
		d.report(ctx, job, domain.PrintJobFailed, err.Error())
		return
	}

	d.log.Info().
		Str("job_id", job.ID.String()).
		Str("employee", job.EmployeeName).
		Str("meal", job.MealLabel).
		Msg("receipt printed")
	d.report(ctx, job, domain.PrintJobCompleted, "")
}

func (d *Dispatcher) report(ctx context.Context, job domain.PrintJob, status domain.PrintJobStatus, detail string) {
	if err := d.source.Report(ctx, job.ID, status, detail); err != nil {
		// The job stays in printing state server-side; operators resolve
		// stuck jobs from the queue endpoints.
		d.log.Error().Err(err).Str("job_id", job.ID.String()).Msg("status report failed")
	}
}
