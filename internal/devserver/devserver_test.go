package devserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/hmwill/glslesc/internal/ilcache"
)

func newTestServer(t *testing.T) (*httptest.Server, func()) {
	t.Helper()
	cache, err := ilcache.Open(":memory:")
	if err != nil {
		t.Fatalf("ilcache.Open: %v", err)
	}
	srv := New(cache)
	ts := httptest.NewServer(http.HandlerFunc(srv.Handler))
	return ts, func() {
		ts.Close()
		cache.Close()
	}
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func TestServer_CompilesValidFragmentShader(t *testing.T) {
	ts, cleanup := newTestServer(t)
	defer cleanup()

	conn := dial(t, ts)
	defer conn.Close()

	req := Request{Kind: "fragment", Source: `void main() { gl_FragColor = vec4(0.0); }`}
	if err := conn.WriteJSON(req); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var resp Response
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if !resp.OK {
		t.Fatalf("expected ok=true, diagnostics: %v", resp.Diagnostics)
	}
	if resp.SessionID == "" {
		t.Errorf("expected a non-empty session ID")
	}
	if !strings.Contains(resp.IL, "IL Output") {
		t.Errorf("expected the IL banner, got:\n%s", resp.IL)
	}
}

func TestServer_ReportsDiagnosticsOnFailure(t *testing.T) {
	ts, cleanup := newTestServer(t)
	defer cleanup()

	conn := dial(t, ts)
	defer conn.Close()

	req := Request{Kind: "fragment", Source: `void notMain() {}`}
	if err := conn.WriteJSON(req); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var resp Response
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if resp.OK {
		t.Fatalf("expected ok=false for a shader with no main()")
	}
	if resp.IL != "" {
		t.Errorf("expected no IL on failure, got:\n%s", resp.IL)
	}
	found := false
	for _, d := range resp.Diagnostics {
		if strings.Contains(d, "S0029") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected S0029 among diagnostics, got: %v", resp.Diagnostics)
	}
}

func TestServer_ServesMultipleRequestsPerConnection(t *testing.T) {
	ts, cleanup := newTestServer(t)
	defer cleanup()

	conn := dial(t, ts)
	defer conn.Close()

	src := `void main() { gl_FragColor = vec4(0.0); }`
	for i := 0; i < 2; i++ {
		if err := conn.WriteJSON(Request{Kind: "fragment", Source: src}); err != nil {
			t.Fatalf("WriteJSON #%d: %v", i, err)
		}
		var resp Response
		if err := conn.ReadJSON(&resp); err != nil {
			t.Fatalf("ReadJSON #%d: %v", i, err)
		}
		if !resp.OK {
			t.Fatalf("request #%d: expected ok=true, diagnostics: %v", i, resp.Diagnostics)
		}
	}
}
