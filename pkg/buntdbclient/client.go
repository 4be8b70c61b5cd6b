// Copyright 2018 The ACH Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

// buntdbclient stores JSON encoded records in BuntDB
// (https://github.com/tidwall/buntdb).
//
// Opening the path ":memory:" keeps every record in process memory.
package buntdbclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/buntdb"
)

var (
	// DefaultTTL is the value used as TTL on buntdb.SetOptions.
	// Zero means records never expire.
	DefaultTTL time.Duration = 0

	// ErrNotFound is returned by Get when no record exists for a key.
	ErrNotFound = errors.New("not found")
)

func New(path string) (*Client, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, err
	}
	return &Client{
		db: db,
	}, nil
}

type Client struct {
	db *buntdb.DB
}

func (c *Client) Close() error {
	return c.db.Close()
}

// Ping checks the database can still be read from.
func (c *Client) Ping() error {
	return c.db.View(func(tx *buntdb.Tx) error {
		_, err := tx.Len()
		return err
	})
}

// CreateJSONIndex orders keys matching pattern by the JSON value at path.
func (c *Client) CreateJSONIndex(name, pattern, path string) error {
	if err := c.db.CreateIndex(name, pattern, buntdb.IndexJSON(path)); err != nil {
		return fmt.Errorf("problem creating index %s: %v", name, err)
	}
	return nil
}

// Get decodes the record stored under key into v.
func (c *Client) Get(key string, v interface{}) error {
	var raw string
	err := c.db.View(func(tx *buntdb.Tx) error {
		val, err := tx.Get(key)
		if err != nil {
			return err
		}
		raw = val
		return nil
	})
	if err != nil {
		if errors.Is(err, buntdb.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("problem reading %s: %v", key, err)
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("problem decoding %s: %v", key, err)
	}
	return nil
}

// Set JSON encodes v and stores it under key, replacing any existing value.
func (c *Client) Set(key string, v interface{}) error {
	bs, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("problem encoding %s: %v", key, err)
	}
	err = c.db.Update(func(tx *buntdb.Tx) error {
		var opts *buntdb.SetOptions
		if DefaultTTL > 0 {
			opts = &buntdb.SetOptions{
				Expires: true,
				TTL:     DefaultTTL,
			}
		}
		_, _, err := tx.Set(key, string(bs), opts)
		return err
	})
	if err != nil {
		return fmt.Errorf("problem updating %s: %v", key, err)
	}
	return nil
}

// Scan calls fn for every key matching pattern (i.e. "user:*") in key order.
// A non-nil error from fn stops the scan and is returned.
func (c *Client) Scan(pattern string, fn func(key string, value []byte) error) error {
	return c.iterate(fn, func(tx *buntdb.Tx, it func(k, v string) bool) error {
		return tx.AscendKeys(pattern, it)
	})
}

// ScanIndex is like Scan but walks an index created with CreateJSONIndex.
func (c *Client) ScanIndex(index string, fn func(key string, value []byte) error) error {
	return c.iterate(fn, func(tx *buntdb.Tx, it func(k, v string) bool) error {
		return tx.Ascend(index, it)
	})
}

func (c *Client) iterate(fn func(key string, value []byte) error, walk func(*buntdb.Tx, func(k, v string) bool) error) error {
	var fnErr error
	err := c.db.View(func(tx *buntdb.Tx) error {
		return walk(tx, func(k, v string) bool {
			fnErr = fn(k, []byte(v))
			return fnErr == nil
		})
	})
	if fnErr != nil {
		return fnErr
	}
	return err
}
