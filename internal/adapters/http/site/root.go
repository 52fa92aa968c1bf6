// Package site serves the embedded bonus board web UI.
package site

import (
	"context"
	"net/http"
)

// Register attaches the UI at / to mux. API routes registered on the same
// mux take precedence because their patterns are more specific.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("/", http.FileServer(FS()))
}
