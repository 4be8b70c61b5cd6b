// Copyright 2018 The ACH Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"strings"
)

// repository is the storage handed to our routes. It's created once in
// main and passed down, there's no package level store.
type repository interface {
	signupRepository
	userRepository

	// ping reports if the underlying storage is usable.
	ping() error

	close() error
}

// getBuntdbPath reads BUNTDB_PATH. An empty path means records are
// kept in a plain map instead.
func getBuntdbPath() string {
	path := os.Getenv("BUNTDB_PATH")
	if strings.Contains(path, "..") {
		// don't filepath.Abs to avoid full-fs reads
		return ""
	}
	return path
}
