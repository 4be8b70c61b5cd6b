// Copyright 2018 The ACH Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/techflow/beta/pkg/buntdbclient"
)

const (
	signupKeyPrefix = "signup:"
	userKeyPrefix   = "user:"

	signupsByCreatedAt = "signups_created_at"
)

// buntdbRepository keeps signups and users in BuntDB, each as a JSON
// document under "signup:<id>" or "user:<id>".
type buntdbRepository struct {
	client *buntdbclient.Client
}

func newBuntdbRepository(path string) (*buntdbRepository, error) {
	client, err := buntdbclient.New(path)
	if err != nil {
		return nil, fmt.Errorf("problem opening buntdb at %s: %v", path, err)
	}
	if err := client.CreateJSONIndex(signupsByCreatedAt, signupKeyPrefix+"*", "createdAt"); err != nil {
		client.Close()
		return nil, err
	}
	return &buntdbRepository{client: client}, nil
}

func (r *buntdbRepository) createSignup(in signupInput) (*BetaSignup, error) {
	s := newBetaSignup(in, time.Now())
	if err := r.client.Set(signupKeyPrefix+s.ID, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *buntdbRepository) listSignups() ([]*BetaSignup, error) {
	out := make([]*BetaSignup, 0)
	err := r.client.ScanIndex(signupsByCreatedAt, func(key string, value []byte) error {
		var s BetaSignup
		if err := json.Unmarshal(value, &s); err != nil {
			return fmt.Errorf("problem decoding %s: %v", key, err)
		}
		out = append(out, &s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *buntdbRepository) getUser(id string) (*User, error) {
	var u User
	if err := r.client.Get(userKeyPrefix+id, &u); err != nil {
		if errors.Is(err, buntdbclient.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *buntdbRepository) getUserByUsername(username string) (*User, error) {
	var found *User
	err := r.client.Scan(userKeyPrefix+"*", func(key string, value []byte) error {
		var u User
		if err := json.Unmarshal(value, &u); err != nil {
			return fmt.Errorf("problem decoding %s: %v", key, err)
		}
		if u.Username == username {
			found = &u
			return errStopScan
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopScan) {
		return nil, err
	}
	return found, nil
}

// errStopScan ends a Scan early once we've found what we need.
var errStopScan = errors.New("stop scan")

func (r *buntdbRepository) createUser(in userInput) (*User, error) {
	u := newUser(in)
	if err := r.client.Set(userKeyPrefix+u.ID, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *buntdbRepository) listUsers() ([]*User, error) {
	out := make([]*User, 0)
	err := r.client.Scan(userKeyPrefix+"*", func(key string, value []byte) error {
		var u User
		if err := json.Unmarshal(value, &u); err != nil {
			return fmt.Errorf("problem decoding %s: %v", key, err)
		}
		out = append(out, &u)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *buntdbRepository) ping() error {
	return r.client.Ping()
}

func (r *buntdbRepository) close() error {
	return r.client.Close()
}
