package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestCredentialProvider_FetchesAndCachesToken(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "token-1",
			"expires_in":   3600,
		})
	}))
	defer srv.Close()

	p := Credential(srv.URL, "client-1", "alice", "s3cret")

	token, err := p.GetAccessToken(context.Background())
	if err != nil {
		t.Fatalf("GetAccessToken() error = %v", err)
	}
	if token != "token-1" {
		t.Errorf("GetAccessToken() = %q, want %q", token, "token-1")
	}

	if _, err := p.GetAccessToken(context.Background()); err != nil {
		t.Fatalf("second GetAccessToken() error = %v", err)
	}
	if requests.Load() != 1 {
		t.Errorf("requests to token endpoint = %d, want 1 (should be cached)", requests.Load())
	}
}

func TestCredentialProvider_RefreshesNearExpiry(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := requests.Add(1)
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": itoa(int64(n)),
			"expires_in":   1,
		})
	}))
	defer srv.Close()

	p := Credential(srv.URL, "client-1", "alice", "s3cret", WithRefreshThreshold(time.Hour))

	first, err := p.GetAccessToken(context.Background())
	if err != nil {
		t.Fatalf("GetAccessToken() error = %v", err)
	}

	second, err := p.GetAccessToken(context.Background())
	if err != nil {
		t.Fatalf("second GetAccessToken() error = %v", err)
	}
	if first == second {
		t.Error("GetAccessToken() reused a token that was within the refresh threshold")
	}
	if requests.Load() != 2 {
		t.Errorf("requests to token endpoint = %d, want 2", requests.Load())
	}
}

func TestCredentialProvider_NonOKStatusFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := Credential(srv.URL, "client-1", "alice", "wrong")

	if _, err := p.GetAccessToken(context.Background()); err == nil {
		t.Fatal("GetAccessToken() expected an error for a 401 response")
	}
}
