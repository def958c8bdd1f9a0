package linesort

import (
	"context"
	"errors"
	"fmt"
	"io"

	sorterrors "github.com/tamirms/linesort/errors"
	"github.com/tamirms/linesort/internal/record"
)

// contextCheckInterval is how often, in lines or records, the producer and the
// merge check for context cancellation. Pushing a run always checks.
const contextCheckInterval = 1 << 10

// run is an unsorted batch of records handed from the producer to a worker.
type run struct {
	seq     uint64
	records []record.Record
}

// producerStats are the producer's counters, valid after produce returns.
type producerStats struct {
	lines     int64
	records   int64
	malformed int64
	runs      int64
}

// producer streams the input and cuts it into size-bounded runs.
type producer struct {
	in          io.Reader
	queue       chan<- run
	maxRunSize  int64
	sizeFactor  int64
	readBufSize int
	digest      recordDigest
	stats       producerStats
	nextSeq     uint64
	pendingHint int
}

// produce reads the input to EOF, pushing every run into the queue. The queue
// is closed on return, whatever the outcome, so workers observe completion.
func (p *producer) produce(ctx context.Context) error {
	defer close(p.queue)

	lr := newLineReader(p.in, p.readBufSize)
	var (
		pending []record.Record
		size    int64
		scratch = make([]byte, 0, 128)
		counter int
	)
	for {
		line, err := lr.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: read input: %w", sorterrors.ErrRunIO, err)
		}
		p.stats.lines++

		counter++
		if counter >= contextCheckInterval {
			counter = 0
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		r, ok := record.Parse(line)
		if !ok {
			p.stats.malformed++
			continue
		}
		scratch = record.AppendFormat(scratch[:0], r)
		p.digest.add(scratch)
		p.stats.records++

		pending = append(pending, r)
		size += int64(len(line)) * p.sizeFactor
		if size >= p.maxRunSize {
			if err := p.push(ctx, pending); err != nil {
				return err
			}
			p.pendingHint = max(p.pendingHint, len(pending))
			pending = make([]record.Record, 0, p.pendingHint)
			size = 0
		}
	}
	if len(pending) > 0 {
		return p.push(ctx, pending)
	}
	return nil
}

// push blocks until a worker has room for the run or ctx is done.
func (p *producer) push(ctx context.Context, records []record.Record) error {
	select {
	case p.queue <- run{seq: p.nextSeq, records: records}:
		p.nextSeq++
		p.stats.runs++
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
