// Package httpx holds the small amount of transport plumbing shared by
// both services: coordinator and participant alike serve plain HTTP/2
// with prior knowledge (h2c) so the outbound Client in
// internal/coordinator can multiplex requests to a participant over one
// connection instead of one per request, while still accepting an
// ordinary HTTP/1.1 request from curl or a browser.
package httpx

import (
	"net/http"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// H2C wraps h so it accepts both HTTP/1.1 and h2c prior-knowledge
// connections on the same listener.
func H2C(h http.Handler) http.Handler {
	return h2c.NewHandler(h, &http2.Server{})
}
