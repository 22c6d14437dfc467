// Command participant runs the atomic-commit participant service
// described in spec §2 and §6.3: it votes on prepare/can_commit
// requests, durably records every state-changing event in its WAL, and
// applies committed operations to its in-memory key/value store. On
// startup it replays its WAL to reconstruct prior state.
package main

import (
	"flag"
	"log"
	"net/http"

	"github.com/oltplab/atomic-commit/internal/configs"
	"github.com/oltplab/atomic-commit/internal/httpx"
	"github.com/oltplab/atomic-commit/internal/participant"
)

func main() {
	var (
		id      = flag.String("id", "", "participant identifier")
		addr    = flag.String("addr", "127.0.0.1:8001", "listen address")
		walPath = flag.String("wal", "", "path to the write-ahead log file; empty disables durability")
		pretty  = flag.Bool("pretty", false, "pretty-print JSON responses")
		debug   = flag.Bool("debug", false, "enable debug/trace logging")
	)
	flag.Parse()

	configs.ShowDebugInfo = *debug
	configs.ShowTestInfo = *debug
	configs.ShowWarnings = true

	mgr, err := participant.NewManager(*walPath)
	if err != nil {
		log.Fatalf("replaying WAL: %v", err)
	}
	defer mgr.Close()

	srv := participant.NewServer(mgr)
	srv.Pretty = *pretty
	mux := http.NewServeMux()
	srv.Routes(mux)

	log.Printf("participant %q listening on %s, wal=%q", *id, *addr, *walPath)
	log.Fatal(http.ListenAndServe(*addr, httpx.H2C(mux)))
}
