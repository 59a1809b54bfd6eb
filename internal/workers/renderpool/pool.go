package renderpool

import (
	"context"
	"log/slog"
	"sync"
)

// Task renders the item at index i. Callers write results into their own slice at i, so
// output order never depends on scheduling.
type Task func(ctx context.Context, i int)

// Run fans n indexed tasks out to at most concurrency workers and blocks until they are
// done. A panicking task is logged to log and skipped; the remaining tasks still run. The
// returned error is the context's, if it was cancelled before every task was dispatched.
func Run(ctx context.Context, log *slog.Logger, n, concurrency int, task Task) error {
	if n <= 0 {
		return nil
	}
	if log == nil {
		log = slog.Default()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > n {
		concurrency = n
	}
	jobsCh := make(chan int, concurrency)

	// dispatcher; stopped is only read after every worker has drained jobsCh
	var stopped error
	go func() {
		defer close(jobsCh)
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				stopped = err
				return
			}
			select {
			case <-ctx.Done():
				stopped = ctx.Err()
				return
			case jobsCh <- i:
			}
		}
	}()

	// workers
	var wg sync.WaitGroup
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			for i := range jobsCh {
				runOne(ctx, log, idx, i, task)
			}
		}(w)
	}
	wg.Wait()
	return stopped
}

func runOne(ctx context.Context, log *slog.Logger, worker, i int, task Task) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("render task panicked", "worker", worker, "index", i, "panic", r)
		}
	}()
	task(ctx, i)
}
