package server

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"modfact/pkg/styles"
	"modfact/pkg/tcp"
	"modfact/pkg/types"
	"modfact/worker-node/internal/engine"
)

type Config struct {
	// Threads es la cantidad de goroutines por tarea.
	Threads int
	// ReadTimeout acota la espera de los 24 bytes de la petición; 0 no pone límite.
	ReadTimeout time.Duration
	// Quiet desactiva las líneas de progreso por conexión.
	Quiet bool
}

// Stats son contadores acumulados del proceso; no afectan el cálculo.
type Stats struct {
	State   types.WorkerState
	Served  uint64
	Failed  uint64
	Active  map[types.WorkerState]int
	Started time.Time
}

// Server atiende una tarea por conexión: lee 24 bytes, calcula, escribe 8 bytes y cierra.
type Server struct {
	cfg      Config
	listener net.Listener
	conns    map[net.Conn]types.WorkerState
	closing  bool
	mu       sync.RWMutex
	wg       sync.WaitGroup
	served   atomic.Uint64
	failed   atomic.Uint64
	started  time.Time
}

func NewServer(cfg Config) *Server {
	if cfg.Threads < 1 {
		cfg.Threads = 1
	}
	return &Server{
		cfg:     cfg,
		conns:   make(map[net.Conn]types.WorkerState),
		started: time.Now(),
	}
}

// Listen abre el puerto TCP sin empezar a aceptar.
func (s *Server) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("error al iniciar listener TCP: %w", err)
	}
	s.listener = ln
	s.logf(styles.Default, "[WORKER] Escuchando en %s", ln.Addr())
	return nil
}

// Addr devuelve la dirección real del listener (útil con puerto 0).
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve acepta conexiones hasta que se llama a Close.
func (s *Server) Serve() error {
	if s.listener == nil {
		return errors.New("server: Listen must be called before Serve")
	}
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.logf(styles.Error, "[WORKER] Error al aceptar conexión: %v", err)
			continue
		}
		// Add bajo mu para no competir con el Wait de Close
		s.mu.Lock()
		if s.closing {
			s.mu.Unlock()
			conn.Close()
			return nil
		}
		s.wg.Add(1)
		s.mu.Unlock()
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

// Close deja de aceptar conexiones y espera a las que están en curso.
func (s *Server) Close() error {
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()

	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}
	s.wg.Wait()
	return err
}

func (s *Server) handleConnection(conn net.Conn) {
	s.setState(conn, types.StReading)
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	if s.cfg.ReadTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	}
	task, err := tcp.ReadTask(conn)
	if err != nil {
		// petición incompleta: cerrar sin responder
		s.failed.Add(1)
		s.logf(styles.Error, "[WORKER] %s: petición inválida: %v", conn.RemoteAddr(), err)
		return
	}
	_ = conn.SetReadDeadline(time.Time{})
	if task.Modulus == 0 {
		// mismo aviso que una lectura corta: cerrar sin responder
		s.failed.Add(1)
		s.logf(styles.Error, "[WORKER] %s: módulo 0 rechazado", conn.RemoteAddr())
		return
	}

	s.setState(conn, types.StComputing)
	s.logf(styles.Info, "[WORKER] %s: calculando %s mod %d", conn.RemoteAddr(), task.Range, task.Modulus)
	result := engine.PartialProduct(task, s.cfg.Threads)

	s.setState(conn, types.StWriting)
	if err := tcp.WriteResult(conn, result); err != nil {
		s.failed.Add(1)
		s.logf(styles.Error, "[WORKER] %s: error enviando resultado: %v", conn.RemoteAddr(), err)
		return
	}
	s.served.Add(1)
	s.logf(styles.Success, "[WORKER] %s: resultado %d", conn.RemoteAddr(), result)
}

func (s *Server) setState(conn net.Conn, st types.WorkerState) {
	s.mu.Lock()
	s.conns[conn] = st
	s.mu.Unlock()
}

// Stats devuelve una copia de los contadores y de las conexiones activas por estado.
func (s *Server) Stats() Stats {
	active := make(map[types.WorkerState]int)
	state := types.StListening
	s.mu.RLock()
	for _, st := range s.conns {
		active[st]++
	}
	if s.closing {
		state = types.StClosed
	}
	s.mu.RUnlock()
	return Stats{
		State:   state,
		Served:  s.served.Load(),
		Failed:  s.failed.Load(),
		Active:  active,
		Started: s.started,
	}
}

func (s *Server) logf(style, format string, a ...interface{}) {
	if s.cfg.Quiet {
		return
	}
	styles.PrintFS(style, format, a...)
}
