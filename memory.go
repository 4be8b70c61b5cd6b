// Copyright 2018 The ACH Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"sync"
	"time"
)

// memoryRepository keeps signups and users in maps for the life of
// the process.
type memoryRepository struct {
	mu sync.RWMutex

	signups     map[string]*BetaSignup
	signupOrder []string // insertion order of signups

	users map[string]*User
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		signups: make(map[string]*BetaSignup),
		users:   make(map[string]*User),
	}
}

func (r *memoryRepository) createSignup(in signupInput) (*BetaSignup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := newBetaSignup(in, time.Now())
	r.signups[s.ID] = s
	r.signupOrder = append(r.signupOrder, s.ID)
	return copySignup(s), nil
}

func (r *memoryRepository) listSignups() ([]*BetaSignup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*BetaSignup, 0, len(r.signupOrder))
	for _, id := range r.signupOrder {
		out = append(out, copySignup(r.signups[id]))
	}
	return out, nil
}

func (r *memoryRepository) getUser(id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *memoryRepository) getUserByUsername(username string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memoryRepository) createUser(in userInput) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := newUser(in)
	r.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (r *memoryRepository) listUsers() ([]*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*User, 0, len(r.users))
	for _, u := range r.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memoryRepository) ping() error {
	return nil
}

func (r *memoryRepository) close() error {
	return nil
}

// copySignup returns a copy of s so callers can't modify stored records.
func copySignup(s *BetaSignup) *BetaSignup {
	cp := *s
	if s.Message != nil {
		m := *s.Message
		cp.Message = &m
	}
	return &cp
}
