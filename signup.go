// Copyright 2018 The ACH Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// signupFormName is the form-name the landing page posts its
// hidden capture form under.
const signupFormName = "beta-signup"

// BetaSignup is a stored request for early access.
type BetaSignup struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Organization string    `json:"organization"`
	Message      *string   `json:"message"`
	CreatedAt    time.Time `json:"createdAt"`
}

type signupRepository interface {
	// createSignup stores a validated signup under a fresh ID.
	createSignup(in signupInput) (*BetaSignup, error)

	// listSignups returns every stored signup. Callers shouldn't
	// depend on the ordering.
	listSignups() ([]*BetaSignup, error)
}

// newBetaSignup builds the record for in. An absent or empty message
// is stored as null.
func newBetaSignup(in signupInput, now time.Time) *BetaSignup {
	var msg *string
	if in.Message != nil && *in.Message != "" {
		m := *in.Message
		msg = &m
	}
	return &BetaSignup{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		Organization: in.Organization,
		Message:      msg,
		CreatedAt:    now,
	}
}

func addSignupRoutes(router *mux.Router, logger log.Logger, repo signupRepository) {
	router.Methods("POST").Path("/api/beta-signup").HandlerFunc(createSignupRoute(logger, repo))
	router.Methods("GET").Path("/api/beta-signups").HandlerFunc(listSignupsRoute(logger, repo))

	// The landing page also posts its form URL-encoded to "/".
	router.Methods("POST").Path("/").HandlerFunc(signupFormRoute(logger, repo))
}

func createSignupRoute(logger log.Logger, repo signupRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var bs []byte
		if r.Body != nil {
			var err error
			if bs, err = read(r.Body); err != nil {
				internalError(logger, w, err, "signup")
				return
			}
		}

		payload, err := decodePayload(bs)
		if err != nil {
			signupError(logger, w, err, "api")
			return
		}
		in, err := parseSignup(payload)
		if err != nil {
			signupError(logger, w, err, "api")
			return
		}
		signup, err := repo.createSignup(*in)
		if err != nil {
			internalError(logger, w, err, "signup")
			return
		}
		signupsCreated.With("channel", "api").Add(1)
		writeJSON(w, http.StatusCreated, response{Success: true, Data: signup})
	}
}

// signupError answers a rejected signup. Validation problems are sent
// back itemized, anything else is an internal error.
func signupError(logger log.Logger, w http.ResponseWriter, err error, channel string) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		signupValidationFailures.With("channel", channel).Add(1)
		encodeValidationError(w, verr)
		return
	}
	internalError(logger, w, err, "signup-"+channel)
}

func listSignupsRoute(logger log.Logger, repo signupRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		signups, err := repo.listSignups()
		if err != nil {
			internalError(logger, w, err, "signups")
			return
		}
		if signups == nil {
			signups = []*BetaSignup{}
		}
		writeJSON(w, http.StatusOK, response{Success: true, Data: signups})
	}
}

// signupFormRoute accepts the landing page's URL-encoded form. Only the
// status code matters to the page, so successes have no body.
func signupFormRoute(logger log.Logger, repo signupRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxReadBytes)
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if name := r.PostForm.Get("form-name"); name != "" && name != signupFormName {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		payload := make(map[string]interface{})
		for _, key := range []string{"name", "email", "organization", "message"} {
			if _, ok := r.PostForm[key]; ok {
				payload[key] = r.PostForm.Get(key)
			}
		}

		in, err := parseSignup(payload)
		if err != nil {
			signupError(logger, w, err, "form")
			return
		}
		if _, err := repo.createSignup(*in); err != nil {
			internalError(logger, w, err, "signup-form")
			return
		}
		signupsCreated.With("channel", "form").Add(1)
		w.WriteHeader(http.StatusOK)
	}
}

// decodePayload turns a request body into the untyped object parseSignup
// expects. An empty body decodes as an empty object.
func decodePayload(bs []byte) (map[string]interface{}, error) {
	if len(bytes.TrimSpace(bs)) == 0 {
		return map[string]interface{}{}, nil
	}
	var v interface{}
	if err := json.Unmarshal(bs, &v); err != nil {
		verr := &ValidationError{}
		verr.add("invalid_json", "", "Malformed JSON body")
		return nil, verr
	}
	obj, ok := v.(map[string]interface{})
	if !ok {
		verr := &ValidationError{}
		verr.add("invalid_type", "", fmt.Sprintf("Expected object, received %s", typeName(v)))
		return nil, verr
	}
	return obj, nil
}
