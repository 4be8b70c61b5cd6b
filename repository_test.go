// Copyright 2018 The ACH Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// eachRepository runs fn against every repository implementation.
func eachRepository(t *testing.T, fn func(t *testing.T, repo repository)) {
	t.Helper()

	t.Run("memory", func(t *testing.T) {
		fn(t, newMemoryRepository())
	})
	t.Run("buntdb", func(t *testing.T) {
		repo, err := newBuntdbRepository(":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { repo.close() })
		fn(t, repo)
	})
}

func testSignupInput(msg *string) signupInput {
	return signupInput{
		Name:         "Alice",
		Email:        "alice@example.com",
		Organization: "Acme",
		Message:      msg,
	}
}

func TestRepository__createSignup(t *testing.T) {
	eachRepository(t, func(t *testing.T, repo repository) {
		start := time.Now()

		seen := make(map[string]bool)
		var last time.Time
		for i := 0; i < 25; i++ {
			s, err := repo.createSignup(testSignupInput(nil))
			require.NoError(t, err)
			require.NotEmpty(t, s.ID)
			require.False(t, seen[s.ID], "duplicate id %s", s.ID)
			seen[s.ID] = true

			require.False(t, s.CreatedAt.Before(start))
			require.False(t, s.CreatedAt.Before(last))
			last = s.CreatedAt
		}
	})
}

func TestRepository__signupMessage(t *testing.T) {
	eachRepository(t, func(t *testing.T, repo repository) {
		msg := "Interested"
		s, err := repo.createSignup(testSignupInput(&msg))
		require.NoError(t, err)
		require.NotNil(t, s.Message)
		require.Equal(t, "Interested", *s.Message)

		empty := ""
		s, err = repo.createSignup(testSignupInput(&empty))
		require.NoError(t, err)
		require.Nil(t, s.Message)

		s, err = repo.createSignup(testSignupInput(nil))
		require.NoError(t, err)
		require.Nil(t, s.Message)
	})
}

func TestRepository__listSignups(t *testing.T) {
	eachRepository(t, func(t *testing.T, repo repository) {
		signups, err := repo.listSignups()
		require.NoError(t, err)
		require.Empty(t, signups)

		created := make(map[string]*BetaSignup)
		for i := 0; i < 10; i++ {
			s, err := repo.createSignup(testSignupInput(nil))
			require.NoError(t, err)
			created[s.ID] = s
		}

		signups, err = repo.listSignups()
		require.NoError(t, err)
		require.Len(t, signups, 10)
		for _, s := range signups {
			c, exists := created[s.ID]
			require.True(t, exists, "unknown signup %s", s.ID)
			require.Equal(t, c.Email, s.Email)
			require.True(t, c.CreatedAt.Equal(s.CreatedAt))
		}
	})
}

func TestRepository__listSignupsIsSnapshot(t *testing.T) {
	repo := newMemoryRepository()
	msg := "hello"
	_, err := repo.createSignup(testSignupInput(&msg))
	require.NoError(t, err)

	signups, err := repo.listSignups()
	require.NoError(t, err)
	signups[0].Name = "Mallory"
	*signups[0].Message = "changed"

	signups, err = repo.listSignups()
	require.NoError(t, err)
	require.Equal(t, "Alice", signups[0].Name)
	require.Equal(t, "hello", *signups[0].Message)
}

func TestRepository__ping(t *testing.T) {
	eachRepository(t, func(t *testing.T, repo repository) {
		require.NoError(t, repo.ping())
	})
}

func TestRepository__getBuntdbPath(t *testing.T) {
	defer os.Unsetenv("BUNTDB_PATH")

	cases := []struct {
		input, expected string
	}{
		{"", ""},
		{":memory:", ":memory:"},
		{"signups.db", "signups.db"},
		{"../../etc/signups.db", ""},
	}
	for i := range cases {
		os.Setenv("BUNTDB_PATH", cases[i].input)
		if res := getBuntdbPath(); res != cases[i].expected {
			t.Errorf("input=%q got %q", cases[i].input, res)
		}
	}
}
