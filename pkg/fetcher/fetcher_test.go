package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "codehub-test" {
			t.Errorf("User-Agent = %q, want codehub-test", got)
		}
		fmt.Fprint(w, `{"websites":[{"title":"Two Sum"}]}`)
	}))
	defer srv.Close()

	f := NewFetcher(WithUserAgent("codehub-test"))

	var body struct {
		Websites []struct {
			Title string `json:"title"`
		} `json:"websites"`
	}
	if err := f.GetJSON(context.Background(), srv.URL, &body); err != nil {
		t.Fatalf("GetJSON() failed: %v", err)
	}
	if len(body.Websites) != 1 || body.Websites[0].Title != "Two Sum" {
		t.Errorf("GetJSON() = %+v, want one website titled Two Sum", body)
	}
}

func TestGetJSON_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, `<html><head><title>502 Bad Gateway</title></head><body></body></html>`)
	}))
	defer srv.Close()

	err := NewFetcher().GetJSON(context.Background(), srv.URL, &struct{}{})

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("GetJSON() = %v, want *StatusError", err)
	}
	if statusErr.StatusCode != http.StatusBadGateway {
		t.Errorf("status code = %d, want 502", statusErr.StatusCode)
	}
	if statusErr.Title != "502 Bad Gateway" {
		t.Errorf("title = %q, want %q", statusErr.Title, "502 Bad Gateway")
	}
	if ErrorType(err) != "http_error" {
		t.Errorf("ErrorType() = %q, want http_error", ErrorType(err))
	}
}

func TestGetJSON_HTMLInsteadOfJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<!DOCTYPE html><html><head><title>Service Suspended</title></head></html>`)
	}))
	defer srv.Close()

	err := NewFetcher().GetJSON(context.Background(), srv.URL, &struct{}{})

	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("GetJSON() = %v, want *DecodeError", err)
	}
	if decodeErr.Title != "Service Suspended" {
		t.Errorf("title = %q, want %q", decodeErr.Title, "Service Suspended")
	}
	if ErrorType(err) != "parse_error" {
		t.Errorf("ErrorType() = %q, want parse_error", ErrorType(err))
	}
}

func TestGetBytes_ContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewFetcher().GetBytes(ctx, srv.URL)
	if err == nil {
		t.Fatal("GetBytes() succeeded, want deadline error")
	}
	if ErrorType(err) != "timeout" {
		t.Errorf("ErrorType() = %q, want timeout", ErrorType(err))
	}
}

func TestWithRateLimit(t *testing.T) {
	f := NewFetcher(WithRateLimit(0.5))
	if f.limiter.Burst() != 1 {
		t.Errorf("burst = %d, want 1", f.limiter.Burst())
	}

	unlimited := NewFetcher(WithRateLimit(0))
	if unlimited.limiter.Limit() != rate.Inf {
		t.Errorf("limit = %v, want rate.Inf", unlimited.limiter.Limit())
	}
}

func TestErrorType(t *testing.T) {
	if got := ErrorType(nil); got != "" {
		t.Errorf("ErrorType(nil) = %q, want empty", got)
	}
	if got := ErrorType(errors.New("connection refused")); got != "network_error" {
		t.Errorf("ErrorType(plain) = %q, want network_error", got)
	}
}
