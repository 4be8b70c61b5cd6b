// Copyright 2018 The ACH Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupServer(addr string) *Server {
	timeout, _ := time.ParseDuration("45s")
	s := &Server{
		checks: make(map[string]func() error),
	}
	s.svc = &http.Server{
		Addr:         addr,
		Handler:      s.handler(),
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
		IdleTimeout:  timeout,
	}
	return s
}

// Server represents a holder around a net/http Server which
// is used for admin endpoints. (i.e. metrics, liveness)
type Server struct {
	svc *http.Server

	mu     sync.RWMutex
	checks map[string]func() error
}

func (s *Server) BindAddress() string {
	return s.svc.Addr
}

// AddLivenessCheck registers f to be called on GET /live.
// Registering the same name twice replaces the earlier check.
func (s *Server) AddLivenessCheck(name string, f func() error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks[name] = f
}

// Listen brings up the admin HTTP service. This call blocks.
func (s *Server) Listen() error {
	if s == nil || s.svc == nil {
		return nil
	}
	return s.svc.ListenAndServe()
}

// Shutdown unbinds the HTTP server.
func (s *Server) Shutdown() {
	if s == nil || s.svc == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.svc.Shutdown(ctx)
}

func (s *Server) handler() http.Handler {
	r := mux.NewRouter()

	// prometheus metrics
	r.Methods("GET").Path("/metrics").Handler(promhttp.Handler())

	r.Methods("GET").Path("/live").HandlerFunc(s.liveHandler)

	addPprofRoutes(r)

	return r
}

// liveHandler runs every liveness check. Any failure returns
// "503 Service Unavailable" with each check's result.
func (s *Server) liveHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	results := make(map[string]string, len(s.checks))
	healthy := true
	for name, check := range s.checks {
		if err := check(); err != nil {
			results[name] = err.Error()
			healthy = false
		} else {
			results[name] = "good"
		}
	}
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(results)
}
