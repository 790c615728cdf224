package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func tokenServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	// Simple OAuth2 token endpoint returning a numbered token
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"token%d","token_type":"bearer","expires_in":3600}`, n)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestGetTokenIsCached(t *testing.T) {
	var calls atomic.Int32
	server := tokenServer(t, &calls)
	client := NewClientCred(Conf{ClientID: "id", ClientSecret: "secret", TokenURL: server.URL})

	for i := 0; i < 3; i++ {
		token, err := client.GetToken(context.Background())
		if err != nil {
			t.Fatalf("GetToken returned error: %v", err)
		}
		if token != "token1" {
			t.Fatalf("unexpected token %s", token)
		}
	}
	if calls.Load() != 1 {
		t.Fatalf("expected one token request, got %d", calls.Load())
	}
}

func TestForceRefresh(t *testing.T) {
	var calls atomic.Int32
	server := tokenServer(t, &calls)
	client := NewClientCred(Conf{ClientID: "id", ClientSecret: "secret", TokenURL: server.URL})

	if _, err := client.GetToken(context.Background()); err != nil {
		t.Fatalf("GetToken returned error: %v", err)
	}
	token, err := client.ForceRefresh(context.Background())
	if err != nil {
		t.Fatalf("ForceRefresh returned error: %v", err)
	}
	if token != "token2" {
		t.Fatalf("unexpected token %s", token)
	}
}

func TestGetTokenError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer server.Close()
	client := NewClientCred(Conf{ClientID: "id", ClientSecret: "bad", TokenURL: server.URL})
	if _, err := client.GetToken(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestEnabled(t *testing.T) {
	if (Conf{}).Enabled() {
		t.Fatalf("empty conf should be disabled")
	}
	if !(Conf{TokenURL: "http://x"}).Enabled() {
		t.Fatalf("conf with token url should be enabled")
	}
}
