package kiosk

import (
	_ "embed"
	"net/http"
)

//go:embed static/index.html
var indexHTML []byte

// PageHandler serves the kiosk page.
func PageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(indexHTML)
	}
}
