package dataflow_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/idpel_checker/pkg/dataflow"
)

func TestMapForEach(t *testing.T) {
	ctx := context.Background()

	source := dataflow.From(ctx, "a", "b", "c")
	upper := dataflow.Map(ctx, source, func(msg interface{}) (interface{}, error) {
		return strings.ToUpper(msg.(string)), nil
	}, dataflow.WithWorkers(2))

	var got []string
	err := dataflow.ForEach(ctx, upper, func(msg interface{}) error {
		got = append(got, msg.(string))
		return nil
	})
	require.NoError(t, err)

	sort.Strings(got)
	assert.Equal(t, []string{"A", "B", "C"}, got)
}

func TestMap_ErrorsTravelDownstream(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("cannot parse")

	source := dataflow.From(ctx, 1, 2, 3)
	parsed := dataflow.Map(ctx, source, func(msg interface{}) (interface{}, error) {
		if msg.(int) == 2 {
			return nil, boom
		}
		return msg.(int) * 10, nil
	})
	doubled := dataflow.Map(ctx, parsed, func(msg interface{}) (interface{}, error) {
		return msg.(int) * 2, nil
	})

	values, err := dataflow.Collect(ctx, doubled)
	assert.ErrorIs(t, err, boom)
	assert.ElementsMatch(t, []interface{}{20, 60}, values)
}

func TestMap_RunsConcurrently(t *testing.T) {
	ctx := context.Background()

	var running, peak int32
	source := dataflow.From(ctx, 1, 2)
	out := dataflow.Map(ctx, source, func(msg interface{}) (interface{}, error) {
		n := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(50 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return msg, nil
	}, dataflow.WithWorkers(2), dataflow.WithBufferSize(2))

	values, err := dataflow.Collect(ctx, out)
	require.NoError(t, err)
	assert.Len(t, values, 2)
	assert.Equal(t, int32(2), atomic.LoadInt32(&peak))
}

func TestForEach_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := dataflow.ForEach(ctx, make(chan interface{}), func(interface{}) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
