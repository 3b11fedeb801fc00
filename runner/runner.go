package runner

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/gillesdemey/go-deid/internal/errors"
	"github.com/gillesdemey/go-deid/internal/log"
)

// Job processes one image.
type Job interface {
	Process(ctx context.Context, path string) error
}

// JobFunc adapts a function to Job.
type JobFunc func(ctx context.Context, path string) error

func (f JobFunc) Process(ctx context.Context, path string) error { return f(ctx, path) }

// FatalError stops the whole batch. Any other error only fails its image.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string { return e.Err.Error() }

func (e *FatalError) Unwrap() error { return e.Err }

// Fatal marks err as fatal to the batch.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{Err: err}
}

type Options struct {
	// Workers bounds the images processed at once. Values below 1 mean 1.
	Workers int
	Logger  *logrus.Entry
}

// Run processes every file with job. Image failures are logged and returned
// together as a *errors.MultiError once all images are done. A fatal error
// or a cancelled ctx stops images not yet started and is returned instead.
func Run(ctx context.Context, files []string, job Job, opts Options) error {
	logger := log.OrDiscard(opts.Logger)
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var (
		mu   sync.Mutex
		errs = &errors.MultiError{}
	)
	for _, path := range files {
		if gctx.Err() != nil {
			break
		}
		path := path
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			err := job.Process(gctx, path)
			if err == nil {
				return nil
			}
			var fatal *FatalError
			if errors.As(err, &fatal) {
				return errors.WithStackTraceAndPrefix(fatal.Err, "%s", path)
			}
			logger.WithField("file", path).Warnf("Cannot process image: %v", err)
			mu.Lock()
			errs = errs.Append(errors.WithStackTraceAndPrefix(err, "%s", path))
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return errors.WithStackTrace(err)
	}
	return errs.ErrorOrNil()
}
