package stream

// unbounded returns a channel pair backed by a growable queue. Sends on the
// returned in channel never block the producer and receives on the out
// channel never block waiting for the producer, which keeps the worker's
// handoff independent of the pending-list lock. Closing in flushes whatever
// is buffered and then closes out.
func unbounded[T any]() (chan<- T, <-chan T) {
	in := make(chan T, 16)
	out := make(chan T, 16)

	go func() {
		defer close(out)
		var queue []T
		for {
			var next T
			var downstream chan T
			if len(queue) > 0 {
				next = queue[0]
				downstream = out
			}
			select {
			case v, ok := <-in:
				if !ok {
					for _, item := range queue {
						out <- item
					}
					return
				}
				queue = append(queue, v)
			case downstream <- next:
				queue = queue[1:]
			}
		}
	}()

	return in, out
}
