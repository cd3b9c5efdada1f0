// Package devserver exposes pkg/shaderc's compiler over a WebSocket, so a
// shader-authoring tool can get IL text and diagnostics back for a source
// edit without shelling out to cmd/glslescc per keystroke (SPEC_FULL.md
// Domain Stack item 3). Each connection is independent: a client sends one
// compile request JSON object and gets one response back, and may send as
// many requests as it likes over the same connection.
package devserver

import (
	"context"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/hmwill/glslesc/internal/ilcache"
	"github.com/hmwill/glslesc/pkg/shaderc"
)

// Request is the JSON shape a client sends: which pipeline stage to compile
// for, and the shader source text.
type Request struct {
	Kind   string `json:"kind"` // "vertex" or "fragment"
	Source string `json:"source"`
}

// Response is the JSON shape sent back for each Request.
type Response struct {
	OK          bool     `json:"ok"`
	IL          string   `json:"il,omitempty"`
	Diagnostics []string `json:"diagnostics,omitempty"`
	SessionID   string   `json:"sessionID"`
}

// Server upgrades incoming HTTP connections to WebSocket and services
// compile requests against a shared IL cache.
type Server struct {
	Cache    *ilcache.Cache
	upgrader websocket.Upgrader
}

// New builds a Server backed by cache. A nil cache is not valid; callers
// with no interest in cross-request caching should still pass an
// ilcache.Open(":memory:") instance, giving the server a private cache
// (shared by all of its requests) that dies with the process.
func New(cache *ilcache.Cache) *Server {
	return &Server{
		Cache: cache,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler is the http.HandlerFunc to register on the compile endpoint.
func (s *Server) Handler(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for {
		var req Request
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		resp := s.compile(r.Context(), req)
		if err := conn.WriteJSON(resp); err != nil {
			return
		}
	}
}

func (s *Server) compile(ctx context.Context, req Request) Response {
	kind := shaderc.Fragment
	if req.Kind == "vertex" {
		kind = shaderc.Vertex
	}

	c := shaderc.NewCompiler()
	shader := shaderc.NewShader(kind, req.Source)

	ok, err := shaderc.CompileShaderCached(ctx, c, s.Cache, shader)
	if err != nil {
		log.Printf("devserver: compile error (session %s): %v", c.SessionID(), err)
		return Response{OK: false, Diagnostics: []string{err.Error()}, SessionID: c.SessionID().String()}
	}

	return Response{
		OK:          ok,
		IL:          shader.IL,
		Diagnostics: diagnosticLines(shader.Log.String()),
		SessionID:   c.SessionID().String(),
	}
}

// diagnosticLines splits a diag.Log's String() rendering (one diagnostic per
// line) into a JSON-friendly slice, dropping the trailing empty line a
// final "\n" would otherwise produce.
func diagnosticLines(s string) []string {
	if s == "" {
		return nil
	}
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			if i > start {
				lines = append(lines, s[start:i])
			}
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
