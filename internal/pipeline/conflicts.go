package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"zapretctl/internal/process"
	"zapretctl/pkg/logging"
)

const probeConcurrency = 4

// ScanConflicts returns which of names are currently running, in the order
// given. Probe failures are skipped and returned together as a warning;
// the list of detected conflicts is still valid.
func ScanConflicts(ctx context.Context, runner process.Runner, names []string) ([]string, error) {
	running := make([]bool, len(names))

	var (
		mu   sync.Mutex
		errs *multierror.Error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(probeConcurrency)
	for i, name := range names {
		g.Go(func() error {
			ok, err := runner.IsRunning(gctx, name)
			if err != nil {
				mu.Lock()
				errs = multierror.Append(errs, fmt.Errorf("probe %s: %w", name, err))
				mu.Unlock()
				return nil
			}
			running[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, ErrCancelled
	}

	var found []string
	for i, name := range names {
		if running[i] {
			found = append(found, name)
		}
	}
	if err := errs.ErrorOrNil(); err != nil {
		logging.Warn(subsystem, "Some conflict probes failed: %v", err)
		return found, err
	}
	return found, nil
}

// MissingBinaries returns the names `which` cannot resolve, in input order.
func MissingBinaries(ctx context.Context, runner process.Runner, names []string) []string {
	present := make([]bool, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(probeConcurrency)
	for i, name := range names {
		g.Go(func() error {
			present[i] = runner.LookPath(gctx, name)
			return nil
		})
	}
	_ = g.Wait()

	var missing []string
	for i, name := range names {
		if !present[i] {
			missing = append(missing, name)
		}
	}
	return missing
}
