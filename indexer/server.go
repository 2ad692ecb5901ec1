/*
File Name:  server.go
Copyright:  2021 Peernet s.r.o.
Author:     Peter Kleissner

IndexingServer wiring: the libp2p host + Kademlia DHT, the swarm worker, and
the HTTP front-end, connected by the unbuffered SwarmRequest channel (a send
waits until the swarm worker receives it). Mirrors the teacher's Init/Connect split (Peernet.go) and
delia-server/src/main.rs's two-task JoinSet, adapted to Go's net/http
graceful-shutdown idiom (Exit.go's exit-code convention has no HTTP
equivalent here; SIGINT simply stops both tasks).
*/

package indexer

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/libp2p/go-libp2p"
	"github.com/libp2p/go-libp2p/core/crypto"

	delpeer "github.com/polkastorage/delia/peer"
)

// shutdownTimeout bounds how long Run waits for in-flight HTTP requests to
// finish once the caller's context is cancelled.
const shutdownTimeout = 5 * time.Second

// Config configures a Server.
type Config struct {
	ListenAddress  string // host:port for the HTTP API, e.g. "0.0.0.0:50000"
	ServeDirectory string // static file fallback root
	Bootnodes      []delpeer.Multiaddr
	Logger         *log.Logger
}

// Server is the indexing server: an HTTP API backed by a Kademlia swarm
// worker. Unlike EdgeResolver, it lives for the process lifetime.
type Server struct {
	cfg      Config
	logger   *log.Logger
	requests chan SwarmRequest
	http     *http.Server
}

// New builds a Server. It generates a fresh libp2p identity, creates the
// libp2p host, bootstraps the DHT and starts the swarm worker; the HTTP API
// does not listen until Run is called.
func New(ctx context.Context, cfg Config) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	priv, _, err := crypto.GenerateEd25519Key(nil)
	if err != nil {
		return nil, fmt.Errorf("indexer: generating identity: %w", err)
	}

	h, err := libp2p.New(libp2p.Identity(priv))
	if err != nil {
		return nil, fmt.Errorf("indexer: creating libp2p host: %w", err)
	}

	logger.Printf("indexer: local peer id: %s", h.ID())

	d, err := NewDHT(ctx, h, cfg.Bootnodes, logger)
	if err != nil {
		h.Close()
		return nil, err
	}

	requests := make(chan SwarmRequest)
	worker := NewSwarmWorker(d, requests, logger)
	go worker.Run(ctx)

	router := NewRouter(HTTPConfig{ServeDirectory: cfg.ServeDirectory}, requests, logger)

	return &Server{
		cfg:      cfg,
		logger:   logger,
		requests: requests,
		http: &http.Server{
			Addr:    cfg.ListenAddress,
			Handler: router,
		},
	}, nil
}

// Run starts the HTTP listener and blocks until ctx is cancelled, at which
// point it shuts the HTTP server down gracefully and returns. A non-nil
// return reports an HTTP listen failure or a failed graceful shutdown.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("indexer: listening on http://%s", s.cfg.ListenAddress)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("indexer: http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		s.logger.Printf("indexer: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("indexer: http shutdown: %w", err)
		}
		return nil
	}
}
