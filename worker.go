package linesort

import (
	"context"
	"slices"

	"github.com/tamirms/linesort/internal/record"
	"golang.org/x/sync/errgroup"
)

// sortRuns runs the producer and the sort worker pool to completion.
// Workers start before the producer. Wait is the barrier: when sortRuns
// returns nil, every run has been persisted and registered in j.runs.
func (j *sortJob) sortRuns(ctx context.Context, p *producer) error {
	queue := make(chan run, j.queueCapacity)
	p.queue = queue

	g, gctx := errgroup.WithContext(ctx)
	for range j.workers {
		g.Go(func() error {
			return j.runWorker(gctx, queue)
		})
	}
	g.Go(func() error {
		return p.produce(gctx)
	})
	if err := g.Wait(); err != nil {
		return err
	}
	// The pool may drain the last run just as the caller cancels.
	return ctx.Err()
}

// runWorker sorts and persists runs until the queue is closed and empty.
// The first error cancels the group, which stops the producer and the
// other workers.
func (j *sortJob) runWorker(ctx context.Context, queue <-chan run) error {
	for r := range queue {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		slices.SortFunc(r.records, record.Compare)
		rf, err := writeRun(j.workDir, r.seq, r.records, j.opts)
		if err != nil {
			return err
		}
		j.runs.add(rf)
		j.logger.Debug("run persisted",
			"run", rf.seq,
			"records", rf.records,
			"bytes", rf.size,
			"compressed", rf.compressed)
	}
	return nil
}
