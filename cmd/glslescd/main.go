// Command glslescd runs the compile service of internal/devserver: a
// WebSocket endpoint accepting {kind, source} requests and replying with
// {ok, il, diagnostics, sessionID} (SPEC_FULL.md Domain Stack item 3).
package main

import (
	"flag"
	"log"
	"net/http"

	"github.com/hmwill/glslesc/internal/devserver"
	"github.com/hmwill/glslesc/internal/ilcache"
)

func main() {
	addr := flag.String("addr", ":8765", "address to listen on")
	dbPath := flag.String("cache", ":memory:", "path to the IL cache database (\":memory:\" for a process-private cache)")
	flag.Parse()

	cache, err := ilcache.Open(*dbPath)
	if err != nil {
		log.Fatalf("glslescd: %v", err)
	}
	defer cache.Close()

	srv := devserver.New(cache)
	http.HandleFunc("/compile", srv.Handler)

	log.Printf("glslescd: listening on %s", *addr)
	if err := http.ListenAndServe(*addr, nil); err != nil {
		log.Fatalf("glslescd: %v", err)
	}
}
