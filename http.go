// Copyright 2018 The ACH Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/go-kit/kit/log"
	"github.com/rs/cors"
)

const (
	// maxReadBytes is the number of bytes to read
	// from a request body. It's intended to be used
	// with an io.LimitReader
	maxReadBytes = 1 * 1024 * 1024
)

// response is the envelope every JSON route answers with.
type response struct {
	Success bool         `json:"success"`
	Data    interface{}  `json:"data,omitempty"`
	Error   string       `json:"error,omitempty"`
	Details []FieldError `json:"details,omitempty"`
}

// read consumes an io.Reader (wrapping with io.LimitReader)
// and returns either the resulting bytes or a non-nil error.
func read(r io.Reader) ([]byte, error) {
	r = io.LimitReader(r, maxReadBytes)
	return io.ReadAll(r)
}

func writeJSON(w http.ResponseWriter, status int, body response) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(body)
}

// encodeValidationError JSON encodes the field errors of err
//
// The HTTP status of "400 Bad Request" is written to the
// response.
func encodeValidationError(w http.ResponseWriter, err *ValidationError) {
	if err == nil {
		return
	}
	writeJSON(w, http.StatusBadRequest, response{
		Success: false,
		Error:   "Validation failed",
		Details: err.Errors,
	})
}

// internalError logs err and answers with a generic 500. Nothing
// from err is sent back to the client.
func internalError(logger log.Logger, w http.ResponseWriter, err error, component string) {
	internalServerErrors.Add(1)
	logger.Log(component, err)
	writeJSON(w, http.StatusInternalServerError, response{
		Success: false,
		Error:   "Internal server error",
	})
}

// corsAllowedOrigins reads CORS_ALLOWED_ORIGINS as a comma separated list.
func corsAllowedOrigins() []string {
	return splitOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"))
}

func splitOrigins(v string) []string {
	var out []string
	for _, o := range strings.Split(v, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// withCORS lets the static landing page call our JSON API from
// another origin. With no origins configured h is returned as-is.
func withCORS(h http.Handler, origins []string) http.Handler {
	if len(origins) == 0 {
		return h
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(h)
}
