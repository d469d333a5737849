package async

import (
	"context"
	"sync"
)

type Iteratee[T any] func(context.Context, T)

// EachLimit runs fn for every element of collection with at most
// concurrency invocations in flight, and returns once all of them
// finished. Failures are the iteratee's to handle: elements are
// independent of one another, one failing must not stop the rest.
func EachLimit[T any](ctx context.Context, collection []T, concurrency int, fn Iteratee[T]) {
	if concurrency < 1 {
		concurrency = 1
	}

	semaphore := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for _, item := range collection {
		semaphore <- struct{}{}
		wg.Add(1)

		go func(item T) {
			defer func() {
				<-semaphore
				wg.Done()
			}()
			fn(ctx, item)
		}(item)
	}

	wg.Wait()
}
