package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"sync"
	"time"

	"modfact/pkg/styles"
	"modfact/pkg/tcp"
	"modfact/pkg/types"
)

const (
	DefaultDialTimeout = 5 * time.Second
	DefaultIOTimeout   = time.Minute
)

// Etapas en las que puede fallar un endpoint. Se combinan con la causa real.
var (
	ErrResolve = errors.New("resolve failed")
	ErrDial    = errors.New("connect failed")
	ErrSend    = errors.New("send failed")
	ErrReceive = errors.New("receive failed")
)

// Resolver resuelve nombres de host. *net.Resolver lo implementa.
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

type Config struct {
	// DialTimeout acota la conexión; 0 usa DefaultDialTimeout.
	DialTimeout time.Duration
	// IOTimeout acota el envío y la recepción; 0 usa DefaultIOTimeout, negativo lo desactiva.
	IOTimeout time.Duration
	Resolver  Resolver
	// Out recibe las líneas de progreso; nil usa stdout.
	Out io.Writer
}

type Dispatcher struct {
	resolver  Resolver
	dialer    *net.Dialer
	ioTimeout time.Duration
	out       io.Writer
	outMu     sync.Mutex
}

func New(cfg Config) *Dispatcher {
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = DefaultDialTimeout
	}
	if cfg.IOTimeout == 0 {
		cfg.IOTimeout = DefaultIOTimeout
	}
	if cfg.Resolver == nil {
		cfg.Resolver = net.DefaultResolver
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	return &Dispatcher{
		resolver:  cfg.Resolver,
		dialer:    &net.Dialer{Timeout: cfg.DialTimeout},
		ioTimeout: cfg.IOTimeout,
		out:       cfg.Out,
	}
}

// Dispatch envía tasks[i] a endpoints[i] en paralelo y espera a que terminen todos.
// El fallo de un endpoint no cancela a los demás; results[i] siempre corresponde a endpoints[i].
// Solo devuelve error si los slices tienen distinto largo.
func (d *Dispatcher) Dispatch(ctx context.Context, endpoints []types.Endpoint, tasks []types.Task) ([]types.TaskResult, error) {
	if len(endpoints) != len(tasks) {
		return nil, fmt.Errorf("%w: %d endpoints but %d tasks", types.ErrInvalidArgument, len(endpoints), len(tasks))
	}

	results := make([]types.TaskResult, len(endpoints))
	var wg sync.WaitGroup
	for i := range endpoints {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ep := endpoints[i]
			d.logf(styles.Info, "[DISPATCH] Server %s started (range %s)", ep, tasks[i].Range)

			value, err := d.process(ctx, ep, tasks[i])
			if err != nil {
				d.logf(styles.Error, "[DISPATCH] Server %s failed: %v", ep, err)
				results[i] = types.TaskResult{Endpoint: ep, Err: err}
				return
			}
			d.logf(styles.Success, "[DISPATCH] Server %s completed with result: %d", ep, value)
			results[i] = types.TaskResult{Endpoint: ep, Value: value, OK: true}
		}(i)
	}
	wg.Wait()
	return results, nil
}

func (d *Dispatcher) process(ctx context.Context, ep types.Endpoint, task types.Task) (uint64, error) {
	ip, err := d.resolve(ctx, ep.Host)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrResolve, ep.Host, err)
	}

	conn, err := d.dialer.DialContext(ctx, "tcp", net.JoinHostPort(ip, strconv.Itoa(ep.Port)))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDial, err)
	}
	defer conn.Close()

	// cancelar el contexto desbloquea una lectura o escritura pendiente
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if d.ioTimeout > 0 {
		if err := conn.SetDeadline(time.Now().Add(d.ioTimeout)); err != nil {
			return 0, fmt.Errorf("%w: %w", ErrSend, err)
		}
	}

	d.logf(styles.Default, "[DISPATCH] Connected to %s, sending task...", ep)
	if err := tcp.WriteTask(conn, task); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSend, err)
	}

	value, err := tcp.ReadResult(conn)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrReceive, err)
	}
	return value, nil
}

func (d *Dispatcher) resolve(ctx context.Context, host string) (string, error) {
	if ip := net.ParseIP(host); ip != nil {
		return ip.String(), nil
	}
	addrs, err := d.resolver.LookupIPAddr(ctx, host)
	if err != nil {
		return "", err
	}
	if len(addrs) == 0 {
		return "", errors.New("no addresses")
	}
	// como gethostbyname: preferir IPv4
	for _, a := range addrs {
		if a.IP.To4() != nil {
			return a.IP.String(), nil
		}
	}
	return addrs[0].IP.String(), nil
}

func (d *Dispatcher) logf(style, format string, a ...interface{}) {
	d.outMu.Lock()
	defer d.outMu.Unlock()
	styles.FprintFS(d.out, style, format, a...)
}
