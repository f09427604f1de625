// Package handler implements the JSON HTTP API. Handlers are constructed
// against an App holding the shared services and are registered by the
// composition root.
package handler

import (
	"net/http"
	"strconv"

	"askpalestine/internal/interactions"
	"askpalestine/internal/lifecycle"
)

// App bundles the services handlers need.
type App struct {
	lifecycle    *lifecycle.Manager
	forwarder    *interactions.Forwarder
	defaultLimit int
}

// NewApp creates the handler App. defaultLimit is the search result count
// used when the client does not ask for one.
func NewApp(lc *lifecycle.Manager, fw *interactions.Forwarder, defaultLimit int) *App {
	if defaultLimit <= 0 {
		defaultLimit = 5
	}
	return &App{
		lifecycle:    lc,
		forwarder:    fw,
		defaultLimit: defaultLimit,
	}
}

// queryInt reads an integer query parameter, falling back to def when the
// parameter is absent or malformed.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
