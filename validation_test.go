// Copyright 2018 The ACH Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidation__parseSignup(t *testing.T) {
	cases := []struct {
		payload map[string]interface{}
		valid   bool
	}{
		{map[string]interface{}{}, false},
		{map[string]interface{}{"name": "Alice", "email": "alice@example.com", "organization": "Acme"}, true},
		{map[string]interface{}{"name": "Alice", "email": "alice@example.com", "organization": "Acme", "message": "Interested"}, true},
		{map[string]interface{}{"name": "Alice", "email": "alice@example.com", "organization": "Acme", "message": nil}, true},
		{map[string]interface{}{"name": "Alice", "email": "alice@example.com"}, false},
		{map[string]interface{}{"email": "alice@example.com", "organization": "Acme"}, false},
		{map[string]interface{}{"name": "Alice", "organization": "Acme"}, false},
		{map[string]interface{}{"name": "", "email": "alice@example.com", "organization": "Acme"}, false},
		{map[string]interface{}{"name": "Alice", "email": "alice@example.com", "organization": ""}, false},
		{map[string]interface{}{"name": "Alice", "email": "bad-email", "organization": "Acme"}, false},
		{map[string]interface{}{"name": 12.0, "email": "alice@example.com", "organization": "Acme"}, false},
		{map[string]interface{}{"name": "Alice", "email": "alice@example.com", "organization": "Acme", "message": true}, false},
	}
	for i := range cases {
		in, err := parseSignup(cases[i].payload)
		if cases[i].valid && err == nil && in != nil {
			continue // valid
		}
		if !cases[i].valid && err != nil && in == nil {
			continue // known bad
		}
		t.Errorf("payload=%v, err=%v", cases[i].payload, err)
	}
}

func TestValidation__details(t *testing.T) {
	_, err := parseSignup(map[string]interface{}{
		"name":         "",
		"email":        "bad-email",
		"organization": "Acme",
	})
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Errors, 2)

	require.Equal(t, []string{"name"}, verr.Errors[0].Path)
	require.Equal(t, "Name is required", verr.Errors[0].Message)
	require.Equal(t, []string{"email"}, verr.Errors[1].Path)
	require.Equal(t, "Please enter a valid email address", verr.Errors[1].Message)
	require.Contains(t, verr.Error(), "email: Please enter a valid email address")
}

func TestValidation__missingReportedOnce(t *testing.T) {
	_, err := parseSignup(map[string]interface{}{"email": "alice@example.com"})

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Errors, 2)
	for _, fe := range verr.Errors {
		require.Equal(t, "invalid_type", fe.Code)
		require.Equal(t, "Required", fe.Message)
	}
}

func TestValidation__message(t *testing.T) {
	in, err := parseSignup(map[string]interface{}{
		"name":         "Alice",
		"email":        "alice@example.com",
		"organization": "Acme",
	})
	require.NoError(t, err)
	require.Nil(t, in.Message)

	in, err = parseSignup(map[string]interface{}{
		"name":         "Alice",
		"email":        "alice@example.com",
		"organization": "Acme",
		"message":      "Interested",
	})
	require.NoError(t, err)
	require.NotNil(t, in.Message)
	require.Equal(t, "Interested", *in.Message)
}

func TestValidation__decodePayload(t *testing.T) {
	payload, err := decodePayload(nil)
	require.NoError(t, err)
	require.Empty(t, payload)

	_, err = decodePayload([]byte(`{"name":`))
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, "invalid_json", verr.Errors[0].Code)

	_, err = decodePayload([]byte(`[1, 2]`))
	require.True(t, errors.As(err, &verr))
	require.Equal(t, "Expected object, received array", verr.Errors[0].Message)
	require.Equal(t, []string{}, verr.Errors[0].Path)
}
