package archive

import (
	"context"
	"log/slog"
	"sync"
)

type job struct {
	ctx  context.Context
	run  func(ctx context.Context) error
	done chan error
}

// Writer owns the store: every read-modify-write runs on its single
// goroutine, one at a time, so concurrent requests cannot interleave
// their load and save.
type Writer struct {
	store  Store
	jobs   chan job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewWriter(store Store) *Writer {
	ctx, cancel := context.WithCancel(context.Background())

	return &Writer{
		store:  store,
		jobs:   make(chan job),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (w *Writer) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		for {
			select {
			case <-w.ctx.Done():
				return
			case j := <-w.jobs:
				j.done <- j.run(j.ctx)
			}
		}
	}()
}

// Stop waits for the job in flight, if any, and rejects later submissions.
func (w *Writer) Stop() {
	w.cancel()
	w.wg.Wait()
}

// Merge adds every candidate whose id is not archived yet and persists the
// result. Existing records are never modified. It returns how many records
// were added.
func (w *Writer) Merge(ctx context.Context, candidates Records) (int, error) {
	added := 0

	err := w.submit(ctx, func(ctx context.Context) error {
		records, err := w.store.Load(ctx)
		if err != nil {
			return err
		}

		fresh := Records{}
		for id, record := range candidates {
			if _, seen := records[id]; seen {
				continue
			}
			records[id] = record
			fresh[id] = record
		}

		if appender, ok := w.store.(Appender); ok {
			err = appender.Add(ctx, fresh)
		} else {
			err = w.store.Save(ctx, records)
		}
		if err != nil {
			return err
		}

		added = len(fresh)
		slog.Debug("Archive merged", "candidates", len(candidates), "added", added, "total", len(records))
		return nil
	})
	if err != nil {
		return 0, err
	}

	return added, nil
}

func (w *Writer) Count(ctx context.Context) (int, error) {
	count := 0

	err := w.submit(ctx, func(ctx context.Context) error {
		records, err := w.store.Load(ctx)
		if err != nil {
			return err
		}
		count = len(records)
		return nil
	})

	return count, err
}

func (w *Writer) submit(ctx context.Context, run func(ctx context.Context) error) error {
	j := job{ctx: ctx, run: run, done: make(chan error, 1)}

	select {
	case w.jobs <- j:
	case <-ctx.Done():
		return ctx.Err()
	case <-w.ctx.Done():
		return ErrStopped
	}

	// The job is running; wait for it so its captured results are complete.
	return <-j.done
}
