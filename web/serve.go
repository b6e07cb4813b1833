// Package web serves HTTP traffic in a sensibly default way.
package web

import (
	"net/http"
	"os"
	"strconv"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// Opts configures ListenAndServe.
type Opts struct {
	// Addr is the address to listen on.
	// If not passed, looks for the PORT env var or defaults to port 8080.
	Addr string

	// ServeAll hosts the server on all addresses (vs localhost) if Addr is
	// unspecified.
	ServeAll bool

	// Handler is the handler to serve.
	// If nil, uses [http.DefaultServeMux].
	Handler http.Handler
}

// ListenAndServe serves HTTP traffic on the configured address with H2C
// support, useful behind hosting providers that speak unencrypted HTTP/2.
func ListenAndServe(opts *Opts) error {
	if opts == nil {
		opts = &Opts{}
	}

	addr := opts.Addr
	if addr == "" {
		port, _ := strconv.Atoi(os.Getenv("PORT"))
		if port <= 0 {
			port = 8080
		}

		host := "localhost"
		if opts.ServeAll {
			host = ""
		}

		addr = host + ":" + strconv.Itoa(port)
	}

	handler := opts.Handler
	if handler == nil {
		handler = http.DefaultServeMux
	}

	h2s := &http2.Server{}
	s := http.Server{Addr: addr, Handler: h2c.NewHandler(handler, h2s)}
	return s.ListenAndServe()
}
