// Copyright 2018 The ACH Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/techflow/beta/admin"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/metrics/prometheus"
	"github.com/gorilla/mux"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

var (
	httpAddr  = flag.String("http.addr", ":8080", "HTTP listen address")
	adminAddr = flag.String("admin.addr", ":9090", "Admin HTTP listen address")

	logger log.Logger

	// Metrics
	signupsCreated = prometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Name: "beta_signups_created",
		Help: "Count of beta signups stored",
	}, []string{"channel"})
	signupValidationFailures = prometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Name: "beta_signup_validation_failures",
		Help: "Count of beta signups rejected by validation",
	}, []string{"channel"})

	internalServerErrors = prometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Name: "http_internal_server_errors",
		Help: "Count of how many 5xx errors we send out",
	}, nil)
)

const Version = "0.1.0-dev"

func main() {
	flag.Parse()

	// Setup logging, default to stdout
	logger = log.NewLogfmtLogger(os.Stderr)
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	logger = log.With(logger, "caller", log.DefaultCaller)
	logger.Log("startup", fmt.Sprintf("Starting beta signup server version %s", Version))

	// Listen for application termination.
	errs := make(chan error)
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		errs <- fmt.Errorf("%s", <-c)
	}()

	repo, err := setupStorage(logger)
	if err != nil {
		logger.Log("storage", err)
		os.Exit(1)
	}
	defer repo.close()

	router := mux.NewRouter()
	addSignupRoutes(router, logger, repo)
	handler := withCORS(router, corsAllowedOrigins())

	serve := &http.Server{
		Addr:    *httpAddr,
		Handler: handler,
		TLSConfig: &tls.Config{
			InsecureSkipVerify: false,
			MinVersion:         tls.VersionTLS12,
		},
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	shutdownServer := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := serve.Shutdown(ctx); err != nil {
			logger.Log("shutdown", err)
		}
	}

	if err := admin.Init(); err != nil {
		logger.Log("admin", err)
	}
	adminServer := admin.SetupServer(*adminAddr)
	adminServer.AddLivenessCheck("storage", repo.ping)
	go func() {
		logger.Log("admin", fmt.Sprintf("Starting admin service on %s", adminServer.BindAddress()))
		if err := adminServer.Listen(); err != nil {
			logger.Log("admin", "shutting down", "error", err)
		}
	}()

	go func() {
		logger.Log("transport", "HTTP", "addr", *httpAddr)
		errs <- serve.ListenAndServe()
	}()

	if err := <-errs; err != nil {
		adminServer.Shutdown()
		shutdownServer()
		logger.Log("exit", err)
	}
}

// setupStorage picks the repository backing signups and users.
// BUNTDB_PATH selects BuntDB, otherwise records live in a map.
func setupStorage(logger log.Logger) (repository, error) {
	path := getBuntdbPath()
	if path == "" {
		logger.Log("storage", "using in-memory repository")
		return newMemoryRepository(), nil
	}
	logger.Log("storage", fmt.Sprintf("using buntdb repository at %s", path))
	return newBuntdbRepository(path)
}
