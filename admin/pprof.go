// Copyright 2018 The ACH Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package admin

import (
	"fmt"
	"net/http/pprof"
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/gorilla/mux"
)

// pprofProfiles lists the pprof profiles the admin server can serve
// and whether each one is on by default. Profiles stay off the public
// listener since dumps can include signup names and email addresses.
//
// Set PPROF_<NAME>=yes|no (i.e. PPROF_TRACE=yes) to override a default.
var pprofProfiles = map[string]bool{
	"allocs":       true,
	"block":        true,
	"cmdline":      true,
	"goroutine":    true,
	"heap":         true,
	"mutex":        true,
	"profile":      true,
	"threadcreate": false,
	"trace":        false,
}

// Init turns on runtime sampling for the block and mutex profiles
// unless they've been disabled.
func Init() error {
	if pprofProfileEnabled("block", pprofProfiles["block"]) {
		runtime.SetBlockProfileRate(1)
	}
	if pprofProfileEnabled("mutex", pprofProfiles["mutex"]) {
		runtime.SetMutexProfileFraction(1)
	}
	return nil
}

// pprofProfileEnabled reads PPROF_$NAME. "yes" returns true and "no"
// returns false (ignoring case), anything else returns zero.
func pprofProfileEnabled(name string, zero bool) bool {
	v := os.Getenv(fmt.Sprintf("PPROF_%s", strings.ToUpper(name)))
	switch strings.ToLower(v) {
	case "yes":
		return true
	case "no":
		return false
	}
	return zero
}

// addPprofRoutes registers the index and every enabled profile.
func addPprofRoutes(r *mux.Router) {
	r.HandleFunc("/debug/pprof/", pprof.Index)

	names := make([]string, 0, len(pprofProfiles))
	for name := range pprofProfiles {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if pprofProfileEnabled(name, pprofProfiles[name]) {
			r.Handle(fmt.Sprintf("/debug/pprof/%s", name), pprof.Handler(name))
		}
	}
}
