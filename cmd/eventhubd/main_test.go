package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/example/eventhub/internal/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Defaults()
	cfg.DatabaseDSN = "file:" + filepath.Join(t.TempDir(), "gateway.db") + "?_pragma=foreign_keys(1)"
	cfg.JWTSecret = "test-secret"
	cfg.OAuthClientIDs = map[string]string{"github": "gh-client"}
	return cfg
}

func TestNewGatewayServer_ServesAuthAndEvents(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	gs, err := newGatewayServer(context.Background(), testConfig(t), logger)
	if err != nil {
		t.Fatalf("newGatewayServer() error = %v", err)
	}
	server := httptest.NewServer(gs.handler)
	t.Cleanup(func() {
		server.Close()
		if err := gs.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})

	body := strings.NewReader(`{"email":"ada@example.com","password":"secret1"}`)
	resp, err := http.Post(server.URL+"/auth/signup", "application/json", body)
	if err != nil {
		t.Fatalf("signup request error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	var session struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if session.AccessToken == "" {
		t.Fatal("expected an access token")
	}

	req, _ := http.NewRequest(http.MethodGet, server.URL+"/events", nil)
	req.Header.Set("Authorization", "Bearer "+session.AccessToken)
	listResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("list request error = %v", err)
	}
	defer listResp.Body.Close()
	if listResp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d, want %d", listResp.StatusCode, http.StatusOK)
	}

	if !strings.Contains(logs.String(), "/auth/signup") {
		t.Errorf("expected request log for signup, got %q", logs.String())
	}
}

func TestNewGatewayServer_MissingDSN(t *testing.T) {
	cfg := testConfig(t)
	cfg.DatabaseDSN = " "

	_, err := newGatewayServer(context.Background(), cfg, slog.New(slog.DiscardHandler))
	if err == nil || !strings.Contains(err.Error(), "open storage") {
		t.Fatalf("error = %v, want open storage failure", err)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	cfg := testConfig(t)
	cfg.HTTPPort = freePort(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg, slog.New(slog.DiscardHandler)) }()

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run() error = %v", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("run() did not return after cancellation")
	}
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}
