/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"net/http"
	"net/http/pprof"

	"github.com/julienschmidt/httprouter"
)

var profiles = []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"}

func registerProfileHandlers(mux *httprouter.Router) {
	for _, name := range profiles {
		mux.Handler(http.MethodGet, "/pprof/"+name, pprof.Handler(name))
	}

	mux.HandlerFunc(http.MethodGet, "/pprof/cmdline", pprof.Cmdline)
	mux.HandlerFunc(http.MethodGet, "/pprof/profile", pprof.Profile)
	mux.HandlerFunc(http.MethodGet, "/pprof/symbol", pprof.Symbol)
	mux.HandlerFunc(http.MethodGet, "/pprof/trace", pprof.Trace)
}
