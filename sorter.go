package linesort

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	sorterrors "github.com/tamirms/linesort/errors"
)

// workDirPrefix names the per-sort directory that holds run files.
const workDirPrefix = "linesort-"

// Phase is a stage of a sort.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSorting
	PhaseBarrier
	PhaseMerging
	PhaseCleaningUp
	PhaseDone
	PhaseFailed
	PhaseCancelled
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSorting:
		return "sorting"
	case PhaseBarrier:
		return "barrier"
	case PhaseMerging:
		return "merging"
	case PhaseCleaningUp:
		return "cleaning-up"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	case PhaseCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Stats summarizes a completed sort.
type Stats struct {
	Lines         int64 // lines read from the input
	Records       int64 // lines that parsed as records
	Malformed     int64 // lines skipped
	Runs          int64
	RunBytes      int64 // uncompressed bytes written to run files
	OutputRecords int64
	SortDuration  time.Duration // run production and sorting, up to the barrier
	MergeDuration time.Duration
}

// Sorter performs external merge sorts with a fixed configuration.
// A Sorter holds no per-sort state and may be reused.
type Sorter struct {
	cfg  Config
	opts *sortOptions
}

// New validates cfg's limits and opts. Paths are validated by the operation
// that uses them.
func New(cfg Config, opts ...Option) (*Sorter, error) {
	o := defaultSortOptions()
	for _, opt := range opts {
		opt(o)
	}
	if err := errors.Join(cfg.validateLimits(), o.validate()); err != nil {
		return nil, err
	}
	if o.queueCapacity == 0 {
		o.queueCapacity = cfg.MaxParallelSorters * queueCapacityMultiplier
	}
	return &Sorter{cfg: cfg, opts: o}, nil
}

// Sort sorts Config.InputPath into Config.OutputPath.
func (s *Sorter) Sort(ctx context.Context) (Stats, error) {
	return s.SplitAndSortRuns(ctx, s.cfg.InputPath)
}

// SplitAndSortRuns runs the whole pipeline: it splits inputPath into sorted
// run files using the worker pool, merges them into Config.OutputPath, and
// deletes them.
//
// The output is removed if the merge fails. Run files are removed on every
// path. A failure to remove them after a successful merge is logged, not
// returned.
func (s *Sorter) SplitAndSortRuns(ctx context.Context, inputPath string) (Stats, error) {
	if err := errors.Join(validatePath("input", inputPath), validatePath("output", s.cfg.OutputPath)); err != nil {
		return Stats{}, err
	}

	in, err := os.Open(inputPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Stats{}, fmt.Errorf("%w: %s", sorterrors.ErrInputNotFound, inputPath)
		}
		return Stats{}, fmt.Errorf("%w: open input: %w", sorterrors.ErrRunIO, err)
	}
	defer in.Close()
	fadviseSequential(in)

	job, err := s.newJob()
	if err != nil {
		return Stats{}, err
	}
	logger := job.logger
	logger.Info("sort started",
		"input", inputPath,
		"output", s.cfg.OutputPath,
		"max_chunk_bytes", s.cfg.MaxChunkSizeBytes,
		"workers", job.workers,
		"queue_capacity", job.queueCapacity,
		"compress_runs", s.opts.compressRuns)

	var stats Stats
	s.setPhase(logger, PhaseSorting)
	sortStart := time.Now()
	p := &producer{
		in:          in,
		maxRunSize:  s.cfg.MaxChunkSizeBytes,
		sizeFactor:  int64(s.opts.sizeFactor),
		readBufSize: s.opts.readBufferSize,
	}
	err = job.sortRuns(ctx, p)
	stats.Lines = p.stats.lines
	stats.Records = p.stats.records
	stats.Malformed = p.stats.malformed
	stats.Runs = p.stats.runs
	stats.RunBytes = job.runs.totalBytes()
	stats.SortDuration = time.Since(sortStart)
	if err != nil {
		return stats, s.abort(job, err)
	}
	s.setPhase(logger, PhaseBarrier)
	logger.Info("runs persisted",
		"runs", stats.Runs,
		"records", stats.Records,
		"malformed", stats.Malformed,
		"run_bytes", stats.RunBytes,
		"elapsed", stats.SortDuration)

	s.setPhase(logger, PhaseMerging)
	mergeStart := time.Now()
	digest, err := mergeRunFiles(ctx, job.runs.sorted(), s.cfg.OutputPath, s.opts)
	stats.MergeDuration = time.Since(mergeStart)
	if err != nil {
		return stats, s.abort(job, err)
	}
	stats.OutputRecords = int64(digest.count)
	if !digest.equal(p.digest) {
		primaryErr := fmt.Errorf("%w: read %d records, wrote %d", sorterrors.ErrDigestMismatch, p.digest.count, digest.count)
		return stats, s.abort(job, errors.Join(primaryErr, removeIfExists(s.cfg.OutputPath)))
	}

	s.setPhase(logger, PhaseCleaningUp)
	if err := job.cleanup(); err != nil {
		logger.Warn("run file cleanup failed", "error", err)
	}
	s.setPhase(logger, PhaseDone)
	logger.Info("sort finished",
		"records", stats.OutputRecords,
		"sort_elapsed", stats.SortDuration,
		"merge_elapsed", stats.MergeDuration)
	return stats, nil
}

// MergeRuns k-way merges already sorted run files into outputPath, which is
// created or truncated. Malformed lines in the runs are skipped. The run
// files are left in place.
func (s *Sorter) MergeRuns(ctx context.Context, runFiles []string, outputPath string) error {
	if err := validatePath("output", outputPath); err != nil {
		return err
	}
	runs := make([]runFile, len(runFiles))
	for i, path := range runFiles {
		runs[i] = runFile{seq: uint64(i), path: path}
	}
	digest, err := mergeRunFiles(ctx, runs, outputPath, s.opts)
	if err != nil {
		return err
	}
	s.opts.logger.Info("runs merged", "runs", len(runs), "records", digest.count, "output", outputPath)
	return nil
}

// abort cleans up a failed or cancelled sort and reports the final phase.
func (s *Sorter) abort(job *sortJob, err error) error {
	s.setPhase(job.logger, PhaseCleaningUp)
	err = errors.Join(err, job.cleanup())
	final := PhaseFailed
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		final = PhaseCancelled
	}
	s.setPhase(job.logger, final)
	job.logger.Error("sort "+final.String(), "error", err)
	return err
}

func (s *Sorter) setPhase(logger *slog.Logger, p Phase) {
	logger.Debug("phase", "phase", p.String())
	if s.opts.phaseHook != nil {
		s.opts.phaseHook(p)
	}
}

// sortJob is the state of one SplitAndSortRuns call.
type sortJob struct {
	id            string
	workDir       string
	workers       int
	queueCapacity int
	opts          *sortOptions
	logger        *slog.Logger
	runs          runSet
}

// newJob creates the work directory that will hold the job's run files.
func (s *Sorter) newJob() (*sortJob, error) {
	id := uuid.NewString()
	parent := s.opts.tempDir
	if parent == "" {
		parent = os.TempDir()
	}
	workDir := filepath.Join(parent, workDirPrefix+id)
	if err := os.Mkdir(workDir, 0o700); err != nil {
		return nil, fmt.Errorf("%w: create work directory: %w", sorterrors.ErrRunIO, err)
	}
	return &sortJob{
		id:            id,
		workDir:       workDir,
		workers:       s.cfg.MaxParallelSorters,
		queueCapacity: s.opts.queueCapacity,
		opts:          s.opts,
		logger:        s.opts.logger.With("sort_id", id),
	}, nil
}

// cleanup removes every run file and the work directory. Idempotent: safe to
// call on error paths and after success.
func (j *sortJob) cleanup() error {
	var errs []error
	if err := j.runs.removeAll(); err != nil {
		errs = append(errs, err)
	}
	if j.workDir != "" {
		// Also catches run files whose worker failed before registering them.
		if err := os.RemoveAll(j.workDir); err != nil {
			errs = append(errs, fmt.Errorf("remove work directory: %w", err))
		}
		j.workDir = ""
	}
	return errors.Join(errs...)
}
