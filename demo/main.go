// Command demo runs a collaborative editing server: one WebSocket endpoint
// per document, rooms created on first join and dropped a minute after the
// last client leaves.
package main

import (
	"log"
	"net/http"
	"time"

	"github.com/penmux/penmux/room"
	"github.com/penmux/penmux/sock"
	"github.com/penmux/penmux/web"
)

func main() {
	reg := room.NewRegistry(room.Config{
		ShutdownDelay: time.Minute,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/doc/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		sock.Handler(sock.Opts{SkipOriginVerify: true}, func(t sock.Transport) error {
			return reg.Join(t, id)
		})(w, r)
	})

	log.Printf("serving")
	log.Fatal(web.ListenAndServe(&web.Opts{Handler: mux, ServeAll: true}))
}
