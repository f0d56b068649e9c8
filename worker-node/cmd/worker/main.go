package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"modfact/pkg/styles"
	"modfact/worker-node/internal/monitoring"
	"modfact/worker-node/internal/server"

	"github.com/gin-gonic/gin"
)

func main() {
	port := flag.Int("port", 0, "TCP port to accept tasks on")
	tnum := flag.Int("tnum", 1, "goroutines per task")
	httpAddr := flag.String("http", os.Getenv("WORKER_HTTP_ADDR"), "listen address for /health and /monitoring (empty disables)")
	readTimeout := flag.Duration("read-timeout", 30*time.Second, "max wait for a complete request (0 disables)")
	flag.Parse()

	if *port <= 0 || *port > 65535 || *tnum < 1 {
		styles.PrintFS(styles.Error, "Using: %s --port 20001 --tnum 4", os.Args[0])
		os.Exit(1)
	}

	srv := server.NewServer(server.Config{Threads: *tnum, ReadTimeout: *readTimeout})
	if err := srv.Listen(fmt.Sprintf(":%d", *port)); err != nil {
		styles.PrintFS(styles.Error, "[WORKER] %v", err)
		os.Exit(1)
	}

	var httpSrv *http.Server
	if *httpAddr != "" {
		if os.Getenv("GIN_MODE") == "" {
			gin.SetMode(gin.ReleaseMode)
		}
		httpSrv = &http.Server{Addr: *httpAddr, Handler: monitoring.NewRouter(srv)}
		go func() {
			log.Print(styles.SprintfS(styles.Info, "[HTTP] Escuchando en %s", *httpAddr))
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Print(styles.SprintfS(styles.Error, "[HTTP] Error: %v", err))
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		<-ctx.Done()
		styles.PrintFS(styles.Info, "[WORKER] Apagando...")
		if httpSrv != nil {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = httpSrv.Shutdown(sctx)
		}
		_ = srv.Close()
	}()

	if err := srv.Serve(); err != nil {
		styles.PrintFS(styles.Error, "[WORKER] %v", err)
		os.Exit(1)
	}
	// Serve vuelve apenas se cierra el listener; esperar a las tareas en curso
	<-closed
}
