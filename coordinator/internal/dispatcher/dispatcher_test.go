package dispatcher

import (
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"testing"
	"time"

	"modfact/coordinator/internal/aggregate"
	"modfact/coordinator/internal/partition"
	"modfact/pkg/modmath"
	"modfact/pkg/tcp"
	"modfact/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error) {
	args := m.Called(host)
	addrs, _ := args.Get(0).([]net.IPAddr)
	return addrs, args.Error(1)
}

type behavior int

const (
	honest behavior = iota
	shortResponse
	silent
)

// startWorker levanta un worker de prueba en loopback y devuelve su endpoint.
func startWorker(t *testing.T, b behavior) types.Endpoint {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(conn net.Conn) {
				defer conn.Close()
				task, err := tcp.ReadTask(conn)
				if err != nil {
					return
				}
				v := modmath.RangeProduct(task.Range.Begin, task.Range.End, task.Modulus)
				switch b {
				case honest:
					_ = tcp.WriteResult(conn, v)
				case shortResponse:
					buf := tcp.EncodeResult(v)
					_, _ = conn.Write(buf[:4])
				case silent:
					_, _ = io.Copy(io.Discard, conn)
				}
			}(conn)
		}
	}()

	return endpointOf(t, ln.Addr())
}

func endpointOf(t *testing.T, addr net.Addr) types.Endpoint {
	t.Helper()
	host, port, err := net.SplitHostPort(addr.String())
	require.NoError(t, err)
	p, err := strconv.Atoi(port)
	require.NoError(t, err)
	return types.Endpoint{Host: host, Port: p}
}

// refusedEndpoint devuelve un puerto local en el que nadie escucha.
func refusedEndpoint(t *testing.T) types.Endpoint {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ep := endpointOf(t, ln.Addr())
	require.NoError(t, ln.Close())
	return ep
}

func buildTasks(t *testing.T, k uint64, n int, m uint64) []types.Task {
	t.Helper()
	ranges, err := partition.Partition(k, n)
	require.NoError(t, err)
	tasks := make([]types.Task, n)
	for i, r := range ranges {
		tasks[i] = types.Task{Range: r, Modulus: m}
	}
	return tasks
}

func newTestDispatcher(r Resolver) *Dispatcher {
	return New(Config{DialTimeout: time.Second, IOTimeout: 2 * time.Second, Resolver: r, Out: io.Discard})
}

func TestDispatchAllSucceed(t *testing.T) {
	const m = 1000000007
	endpoints := []types.Endpoint{startWorker(t, honest), startWorker(t, honest), startWorker(t, honest)}
	tasks := buildTasks(t, 10, 3, m)

	results, err := newTestDispatcher(nil).Dispatch(context.Background(), endpoints, tasks)
	require.NoError(t, err)
	require.Len(t, results, 3)

	want := []uint64{24, 210, 720}
	for i, r := range results {
		assert.True(t, r.OK, "endpoint %d: %v", i, r.Err)
		assert.Equal(t, endpoints[i], r.Endpoint)
		assert.Equal(t, want[i], r.Value)
	}

	out := aggregate.Aggregate(results, m)
	assert.Equal(t, uint64(3628800), out.Product)
	assert.Equal(t, 3, out.Succeeded)
}

func TestDispatchRefusedConnection(t *testing.T) {
	const m = 1000000007
	endpoints := []types.Endpoint{startWorker(t, honest), refusedEndpoint(t), startWorker(t, honest)}

	results, err := newTestDispatcher(nil).Dispatch(context.Background(), endpoints, buildTasks(t, 10, 3, m))
	require.NoError(t, err)

	assert.True(t, results[0].OK)
	assert.False(t, results[1].OK)
	assert.ErrorIs(t, results[1].Err, ErrDial)
	assert.True(t, results[2].OK)

	out := aggregate.Aggregate(results, m)
	assert.Equal(t, 2, out.Succeeded)
	assert.Equal(t, 3, out.Total)
	assert.Equal(t, uint64(24*720), out.Product)
}

func TestDispatchShortResponse(t *testing.T) {
	endpoints := []types.Endpoint{startWorker(t, honest), startWorker(t, shortResponse)}

	results, err := newTestDispatcher(nil).Dispatch(context.Background(), endpoints, buildTasks(t, 10, 2, 97))
	require.NoError(t, err)

	assert.True(t, results[0].OK)
	assert.Equal(t, modmath.RangeProduct(1, 5, 97), results[0].Value)
	assert.False(t, results[1].OK)
	assert.ErrorIs(t, results[1].Err, ErrReceive)
	assert.ErrorIs(t, results[1].Err, tcp.ErrMalformedMessage)
}

func TestDispatchHungEndpointTimesOut(t *testing.T) {
	endpoints := []types.Endpoint{startWorker(t, silent), startWorker(t, honest)}
	d := New(Config{DialTimeout: time.Second, IOTimeout: 200 * time.Millisecond, Out: io.Discard})

	start := time.Now()
	results, err := d.Dispatch(context.Background(), endpoints, buildTasks(t, 4, 2, 97))
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.False(t, results[0].OK)
	assert.ErrorIs(t, results[0].Err, ErrReceive)
	assert.True(t, results[1].OK)
}

func TestDispatchContextCancelUnblocks(t *testing.T) {
	endpoints := []types.Endpoint{startWorker(t, silent)}
	d := New(Config{IOTimeout: -1, Out: io.Discard})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	results, err := d.Dispatch(ctx, endpoints, buildTasks(t, 3, 1, 97))
	require.NoError(t, err)
	assert.False(t, results[0].OK)
}

func TestDispatchResolution(t *testing.T) {
	worker := startWorker(t, honest)

	r := new(mockResolver)
	r.On("LookupIPAddr", "worker-a").Return([]net.IPAddr{{IP: net.ParseIP("::1")}, {IP: net.ParseIP("127.0.0.1")}}, nil).Once()
	r.On("LookupIPAddr", "nowhere").Return(nil, errors.New("no such host")).Once()

	endpoints := []types.Endpoint{
		{Host: "worker-a", Port: worker.Port},
		{Host: "nowhere", Port: worker.Port},
		worker,
	}
	results, err := newTestDispatcher(r).Dispatch(context.Background(), endpoints, buildTasks(t, 9, 3, 1000))
	require.NoError(t, err)

	assert.True(t, results[0].OK, "%v", results[0].Err)
	assert.Equal(t, uint64(6), results[0].Value)
	assert.False(t, results[1].OK)
	assert.ErrorIs(t, results[1].Err, ErrResolve)
	assert.True(t, results[2].OK)
	assert.Equal(t, uint64(7*8*9), results[2].Value)

	// las IP literales no pasan por el resolver
	r.AssertExpectations(t)
}

func TestDispatchDuplicateEndpointsAreIndependent(t *testing.T) {
	worker := startWorker(t, honest)
	endpoints := []types.Endpoint{worker, worker, worker, worker}

	results, err := newTestDispatcher(nil).Dispatch(context.Background(), endpoints, buildTasks(t, 12, 4, 1000000007))
	require.NoError(t, err)
	out := aggregate.Aggregate(results, 1000000007)
	assert.Equal(t, 4, out.Succeeded)
	assert.Equal(t, modmath.Factorial(12, 1000000007), out.Product)
}

func TestDispatchIsIdempotent(t *testing.T) {
	const m = 1000003
	endpoints := []types.Endpoint{startWorker(t, honest), startWorker(t, honest), refusedEndpoint(t)}
	tasks := buildTasks(t, 1000, 3, m)
	d := newTestDispatcher(nil)

	first, err := d.Dispatch(context.Background(), endpoints, tasks)
	require.NoError(t, err)
	second, err := d.Dispatch(context.Background(), endpoints, tasks)
	require.NoError(t, err)

	assert.Equal(t, aggregate.Aggregate(first, m), aggregate.Aggregate(second, m))
}

func TestDispatchLengthMismatch(t *testing.T) {
	_, err := newTestDispatcher(nil).Dispatch(context.Background(), []types.Endpoint{{Host: "x", Port: 1}}, nil)
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
}
