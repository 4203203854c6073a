package graph_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"drivesort/internal/services/graph"
)

func newTokenManager(t *testing.T, authority string) (*graph.TokenManager, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tokens.json")
	manager, err := graph.NewTokenManager(path, "client-1", "common", []string{"Files.ReadWrite"},
		graph.WithAuthority(authority))
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	return manager, path
}

func TestAccessTokenWithoutLoginFails(t *testing.T) {
	manager, _ := newTokenManager(t, "http://127.0.0.1:0")

	_, err := manager.AccessToken(context.Background())
	if !errors.Is(err, graph.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestStorePersistsWithOwnerOnlyMode(t *testing.T) {
	manager, path := newTokenManager(t, "http://127.0.0.1:0")

	err := manager.Store(graph.TokenGrant{
		AccessToken:  "at-1",
		RefreshToken: "rt-1",
		ExpiresIn:    3600,
	})
	if err != nil {
		t.Fatalf("Store: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat token store: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("token store mode %o, want 600", perm)
	}
	if !manager.Linked() {
		t.Fatal("manager should report linked after Store")
	}

	token, err := manager.AccessToken(context.Background())
	if err != nil {
		t.Fatalf("AccessToken: %v", err)
	}
	if token != "at-1" {
		t.Fatalf("unexpected token: %q", token)
	}
}

func TestAccessTokenRefreshesExpired(t *testing.T) {
	var grantType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		grantType = r.FormValue("grant_type")
		fmt.Fprint(w, `{"access_token":"at-2","refresh_token":"rt-2","expires_in":3600}`)
	}))
	t.Cleanup(server.Close)

	manager, path := newTokenManager(t, server.URL)
	if err := manager.Store(graph.TokenGrant{AccessToken: "at-1", RefreshToken: "rt-1", ExpiresIn: 1}); err != nil {
		t.Fatalf("Store: %v", err)
	}

	// The stored token is inside the refresh leeway, so the next call must
	// hit the token endpoint.
	token, err := manager.AccessToken(context.Background())
	if err != nil {
		t.Fatalf("AccessToken: %v", err)
	}
	if token != "at-2" {
		t.Fatalf("expected refreshed token, got %q", token)
	}
	if grantType != "refresh_token" {
		t.Fatalf("unexpected grant type: %q", grantType)
	}

	// The refreshed state survives a reload from disk.
	reloaded, err := graph.NewTokenManager(path, "client-1", "common", []string{"Files.ReadWrite"},
		graph.WithAuthority(server.URL))
	if err != nil {
		t.Fatalf("NewTokenManager reload: %v", err)
	}
	token, err = reloaded.AccessToken(context.Background())
	if err != nil {
		t.Fatalf("AccessToken after reload: %v", err)
	}
	if token != "at-2" {
		t.Fatalf("reloaded token %q", token)
	}
}

func TestPollDeviceCodeStopsOnDeniedGrant(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":"access_denied","error_description":"user declined"}`)
	}))
	t.Cleanup(server.Close)

	manager, _ := newTokenManager(t, server.URL)
	code := &graph.DeviceCode{
		DeviceCode: "dc-1",
		Interval:   1,
		ExpiresIn:  60,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := manager.PollDeviceCode(ctx, code); err == nil {
		t.Fatal("expected denial error")
	}
}
