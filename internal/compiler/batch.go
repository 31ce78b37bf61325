package compiler

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/edquest/internal/ledger"
	"github.com/abhisek/edquest/internal/scenario"
)

// Job is one independent compile.
type Job struct {
	Ledger      *ledger.Ledger
	Description *scenario.Description

	// Shuffler, when set, overrides the compiler's shuffler for this job.
	// A seeded shuffler shared by concurrent jobs is not reproducible.
	Shuffler Shuffler
}

// SeededJobs sets a distinct seeded shuffler on every job, derived from
// seed and the job's position.
func SeededJobs(jobs []Job, seed uint64) {
	for i := range jobs {
		jobs[i].Shuffler = NewSeededShuffler(seed + uint64(i))
	}
}

// CompileAll compiles jobs concurrently, at most limit at a time (no limit
// when limit <= 0). Results are in job order. The first failure cancels
// the jobs that have not started yet.
func (c *Compiler) CompileAll(ctx context.Context, jobs []Job, limit int) ([]*Result, error) {
	results := make([]*Result, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			shuffle := job.Shuffler
			if shuffle == nil {
				shuffle = c.shuffle
			}
			res, err := c.compile(job.Ledger, job.Description, shuffle)
			if err != nil {
				return fmt.Errorf("job %d: %w", i+1, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
