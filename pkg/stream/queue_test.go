package stream

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnboundedNeverBlocksProducer(t *testing.T) {
	in, out := unbounded[int]()

	// Far more than the channel buffers hold; must not block without a
	// consumer.
	const n = 10000
	for i := 0; i < n; i++ {
		in <- i
	}

	for i := 0; i < n; i++ {
		require.Equal(t, i, <-out)
	}
}

func TestUnboundedCloseFlushes(t *testing.T) {
	in, out := unbounded[string]()
	in <- "a"
	in <- "b"
	in <- "c"
	close(in)

	var got []string
	for v := range out {
		got = append(got, v)
	}
	require.Equal(t, []string{"a", "b", "c"}, got)
}
