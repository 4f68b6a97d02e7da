package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"golang.org/x/time/rate"

	"github.com/yndnr/idmesh-go/internal/telemetry/logger"
	"github.com/yndnr/idmesh-go/internal/telemetry/metric"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func hit(h http.Handler, remoteAddr string) int {
	req := httptest.NewRequest("GET", "/test", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestRequestID(t *testing.T) {
	var seenHeader string
	handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetRequestIDFromContext(r.Context()) == "" {
			t.Error("expected request ID in context")
		}
		seenHeader = r.Header.Get("X-Request-ID")
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("generates request ID when not provided", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		requestID := rec.Header().Get("X-Request-ID")
		if !strings.HasPrefix(requestID, "req-") {
			t.Errorf("expected request ID to start with 'req-', got %s", requestID)
		}
		if len(requestID) != len("req-")+26 {
			t.Errorf("expected a ULID suffix, got %s", requestID)
		}
		if seenHeader != requestID {
			t.Errorf("handler saw %q, response carries %q", seenHeader, requestID)
		}
	})

	t.Run("preserves existing request ID", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("X-Request-ID", "existing-id-123")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get("X-Request-ID"); got != "existing-id-123" {
			t.Errorf("expected 'existing-id-123', got %s", got)
		}
	})
}

func TestChain(t *testing.T) {
	var order []int
	step := func(n int) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, n)
				next.ServeHTTP(w, r)
			})
		}
	}

	handler := Chain(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		order = append(order, 4)
		w.WriteHeader(http.StatusOK)
	}), step(1), step(2), step(3))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/test", nil))

	expected := []int{1, 2, 3, 4}
	if len(order) != len(expected) {
		t.Fatalf("expected %d calls, got %d", len(expected), len(order))
	}
	for i, v := range expected {
		if order[i] != v {
			t.Errorf("expected order[%d] = %d, got %d", i, v, order[i])
		}
	}
}

func TestNetworkACL(t *testing.T) {
	tests := []struct {
		name       string
		allowList  []string
		remoteAddr string
		want       int
	}{
		{"allows all when allowlist is empty", nil, "192.168.1.100:12345", http.StatusOK},
		{"allows matching single IP", []string{"192.168.1.100"}, "192.168.1.100:12345", http.StatusOK},
		{"allows matching CIDR", []string{"10.0.0.0/8"}, "10.1.2.3:12345", http.StatusOK},
		{"denies non-matching IP", []string{"192.168.1.0/24"}, "10.0.0.1:12345", http.StatusForbidden},
		{"supports IPv6", []string{"2001:db8::/32"}, "[2001:db8::1]:12345", http.StatusOK},
		{"skips invalid entries", []string{"lan", "10.0.0.1"}, "10.0.0.1:1", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NetworkACL(tt.allowList, logger.Discard())(okHandler())
			if got := hit(handler, tt.remoteAddr); got != tt.want {
				t.Errorf("expected status %d, got %d", tt.want, got)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	t.Run("limits requests from same IP", func(t *testing.T) {
		handler := RateLimit(rate.Limit(1), 2)(okHandler())

		for i := 0; i < 2; i++ {
			if got := hit(handler, "10.0.0.99:12345"); got != http.StatusOK {
				t.Errorf("request %d: expected status 200, got %d", i+1, got)
			}
		}
		if got := hit(handler, "10.0.0.99:12345"); got != http.StatusTooManyRequests {
			t.Errorf("expected status 429, got %d", got)
		}
	})

	t.Run("different IPs have separate limits", func(t *testing.T) {
		handler := RateLimit(rate.Limit(1), 1)(okHandler())

		if got := hit(handler, "192.168.100.1:12345"); got != http.StatusOK {
			t.Errorf("first IP: expected status 200, got %d", got)
		}
		if got := hit(handler, "192.168.100.2:12345"); got != http.StatusOK {
			t.Errorf("second IP: expected status 200, got %d", got)
		}
	})

	t.Run("tokens refill over time", func(t *testing.T) {
		handler := RateLimit(rate.Limit(10), 1)(okHandler())

		hit(handler, "10.0.0.88:12345")
		if got := hit(handler, "10.0.0.88:12345"); got != http.StatusTooManyRequests {
			t.Errorf("expected status 429, got %d", got)
		}

		time.Sleep(200 * time.Millisecond)

		if got := hit(handler, "10.0.0.88:12345"); got != http.StatusOK {
			t.Errorf("after refill: expected status 200, got %d", got)
		}
	})

	t.Run("concurrent requests", func(t *testing.T) {
		handler := RateLimit(rate.Limit(1), 50)(okHandler())

		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			accepted int
		)
		for i := 0; i < 200; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if hit(handler, "192.168.1.1:12345") == http.StatusOK {
					mu.Lock()
					accepted++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		if accepted < 50 || accepted > 51 {
			t.Errorf("expected about the burst of 50 accepted, got %d", accepted)
		}
	})
}

func TestRecover(t *testing.T) {
	t.Run("recovers from panic", func(t *testing.T) {
		handler := Recover(logger.Discard())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("test panic")
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/test", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected status 500, got %d", rec.Code)
		}
		if code := rec.Header().Get("X-Error-Code"); code != "IDM-SYS-5000" {
			t.Errorf("expected IDM-SYS-5000, got %s", code)
		}
	})

	t.Run("passes through normal requests", func(t *testing.T) {
		if got := hit(Recover(logger.Discard())(okHandler()), "10.0.0.1:1"); got != http.StatusOK {
			t.Errorf("expected status 200, got %d", got)
		}
	})
}

func TestAudit(t *testing.T) {
	reg := metric.NewRegistry()
	handler := Chain(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}), RequestID(), Audit(logger.Discard(), reg, "POST /accounts"))

	for i := 0; i < 3; i++ {
		hit(handler, "10.0.0.1:1")
	}

	if got := testutil.ToFloat64(reg.RequestsTotal.WithLabelValues("POST /accounts", "202")); got != 3 {
		t.Errorf("expected 3 requests counted, got %v", got)
	}
	if got := testutil.CollectAndCount(reg.RequestDuration); got != 1 {
		t.Errorf("expected one duration series, got %d", got)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"extracts from X-Forwarded-For", map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"}, "10.0.0.1"},
		{"extracts from X-Real-IP", map[string]string{"X-Real-IP": "10.0.0.1"}, "10.0.0.1"},
		{"falls back to RemoteAddr", nil, "192.168.1.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/test", nil)
			req.RemoteAddr = "192.168.1.1:12345"
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if ip := getClientIP(req); ip != tt.want {
				t.Errorf("expected '%s', got '%s'", tt.want, ip)
			}
		})
	}
}
