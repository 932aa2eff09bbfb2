package usecase

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/jasonalt/ghrelease/internal/release/entity"
)

// Policy decides what an upload batch does after a failed item.
type Policy string

const (
	// PolicyFailFast stops at the first failure; later items are not attempted.
	PolicyFailFast Policy = "fail-fast"
	// PolicyCollectAll attempts every item and returns all failures together.
	PolicyCollectAll Policy = "collect-all"
)

type BatchOptions struct {
	Policy Policy
	// Jobs bounds concurrent uploads. Values below 1 mean 1.
	Jobs int
}

// UploadBatch resolves tag once and uploads every path to it. Results of
// attempted items are passed to report and returned in input order.
func (u *ReleaseUsecase) UploadBatch(
	ctx context.Context,
	tag string,
	paths []string,
	opts BatchOptions,
	report Reporter,
) ([]entity.UploadResult, error) {
	if len(paths) == 0 {
		return nil, ErrNoPackages
	}
	if err := checkDistinctNames(paths); err != nil {
		return nil, err
	}

	release, err := u.Release(ctx, tag)
	if err != nil {
		return nil, err
	}

	jobs := opts.Jobs
	if jobs < 1 {
		jobs = 1
	}
	failFast := opts.Policy != PolicyCollectAll
	log.Printf("[UploadBatch] uploading %d packages to %s (policy %s, jobs %d)", len(paths), tag, opts.Policy, jobs)

	var (
		results   = make([]entity.UploadResult, len(paths))
		attempted = make([]bool, len(paths))
		done      = make([]chan struct{}, len(paths))
	)
	for i := range done {
		done[i] = make(chan struct{})
	}

	reported := make(chan struct{})
	go func() {
		defer close(reported)
		for i := range paths {
			<-done[i]
			if attempted[i] && report != nil {
				report(results[i])
			}
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			defer close(done[i])
			if gctx.Err() != nil {
				return nil
			}
			result, err := u.Upload(gctx, release, path)
			results[i] = result
			attempted[i] = true
			if err != nil && failFast {
				return err
			}
			return nil
		})
	}
	firstErr := g.Wait()
	<-reported

	var out []entity.UploadResult
	var errs *multierror.Error
	for i := range paths {
		if !attempted[i] {
			continue
		}
		out = append(out, results[i])
		if results[i].Err != nil {
			errs = multierror.Append(errs, results[i].Err)
		}
	}

	if failFast {
		if firstErr != nil {
			return out, firstErr
		}
		if len(out) < len(paths) {
			return out, ctx.Err()
		}
		return out, nil
	}
	if len(out) < len(paths) && ctx.Err() != nil {
		errs = multierror.Append(errs, ctx.Err())
	}
	return out, errs.ErrorOrNil()
}

func checkDistinctNames(paths []string) error {
	seen := make(map[string]string, len(paths))
	for _, p := range paths {
		name := filepath.Base(p)
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("%w: %s (%s, %s)", ErrDuplicateAsset, name, prev, p)
		}
		seen[name] = p
	}
	return nil
}
