package middleware

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	internaljwt "chat-app-agent/internal/jwt"

	"github.com/rs/zerolog"
)

type hijackableRecorder struct {
	http.ResponseWriter
	hijacked bool
	err      error
}

func (h *hijackableRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h.hijacked = true
	return nil, nil, h.err
}

func TestLoggingMiddlewarePreservesHijacker(t *testing.T) {
	expectedErr := errors.New("hijack invoked")
	recorder := &hijackableRecorder{
		ResponseWriter: httptest.NewRecorder(),
		err:            expectedErr,
	}

	handlerCalled := false
	handler := Logging(zerolog.Nop())(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		hj, ok := w.(http.Hijacker)
		if !ok {
			t.Fatalf("response writer should implement http.Hijacker")
		}
		if _, _, err := hj.Hijack(); !errors.Is(err, expectedErr) {
			t.Fatalf("unexpected hijack error: %v", err)
		}
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	handler(recorder, req)

	if !handlerCalled {
		t.Fatal("inner handler was not invoked")
	}
	if !recorder.hijacked {
		t.Fatal("underlying Hijack was not called")
	}
}

func TestLoggingWritesStructuredLine(t *testing.T) {
	var buf bytes.Buffer
	handler := Logging(zerolog.New(&buf))(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/agent/v1/rooms?x=1", nil)
	req.Header.Set("X-Request-ID", "req-1")
	res := httptest.NewRecorder()
	handler(res, req)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not json: %v (%q)", err, buf.String())
	}
	if line["status"] != float64(http.StatusTeapot) || line["request_id"] != "req-1" || line["uri"] != "/api/agent/v1/rooms?x=1" {
		t.Fatalf("unexpected log line %v", line)
	}
	if res.Header().Get("X-Request-ID") != "req-1" {
		t.Fatal("request id not echoed")
	}
}

func TestCORSPreflight(t *testing.T) {
	handler := CORS(DefaultCORSConfig("http://localhost:3000"))(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight reached the handler")
	})

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	res := httptest.NewRecorder()
	handler(res, req)
	if res.Code != http.StatusOK || res.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Fatalf("unexpected preflight response %d %v", res.Code, res.Header())
	}

	req = httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	res = httptest.NewRecorder()
	handler(res, req)
	if res.Code != http.StatusForbidden {
		t.Fatalf("expected forbidden for unknown origin, got %d", res.Code)
	}
}

func TestValidateJWT(t *testing.T) {
	signer, err := internaljwt.NewSigner("test-secret")
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}
	token, _ := signer.CreateToken("me@x.io", 0)

	calls := 0
	handler := ValidateJWT(signer)(func(w http.ResponseWriter, r *http.Request) { calls++ })

	for _, header := range []string{"", "Bearer nope", "Token " + token.AccessToken} {
		req := httptest.NewRequest(http.MethodPut, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		res := httptest.NewRecorder()
		handler(res, req)
		if res.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, res.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPut, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	handler(httptest.NewRecorder(), req)
	if calls != 1 {
		t.Fatalf("expected handler to run once, ran %d times", calls)
	}

	open := ValidateJWT(nil)(func(w http.ResponseWriter, r *http.Request) { calls++ })
	open(httptest.NewRecorder(), httptest.NewRequest(http.MethodPut, "/", nil))
	if calls != 2 {
		t.Fatal("nil signer should leave the route open")
	}
}

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.HandlerFunc) http.HandlerFunc {
			return func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next(w, r)
			}
		}
	}
	h := Chain(func(http.ResponseWriter, *http.Request) { order = append(order, "handler") }, mw("outer"), mw("inner"))
	h(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	want := []string{"outer", "inner", "handler"}
	if len(order) != len(want) {
		t.Fatalf("unexpected order %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("unexpected order %v", order)
		}
	}
}
