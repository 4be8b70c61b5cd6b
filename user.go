// Copyright 2018 The ACH Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"github.com/google/uuid"
)

// User is an account record. Nothing routes to users yet, they're kept
// alongside signups for when the landing page grows a login.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type userInput struct {
	Username string
	Password string
}

func newUser(in userInput) *User {
	return &User{
		ID:       uuid.NewString(),
		Username: in.Username,
		Password: in.Password,
	}
}

type userRepository interface {
	// getUser returns nil (and no error) when id is unknown.
	getUser(id string) (*User, error)

	// getUserByUsername scans every user for an exact username match.
	// A nil User (and no error) is returned when nothing matches.
	getUserByUsername(username string) (*User, error)

	createUser(in userInput) (*User, error)

	listUsers() ([]*User, error)
}
