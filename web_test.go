package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Seednode/knockbox/cards"
	"github.com/Seednode/knockbox/session"
)

func newTestStatus(t *testing.T, board *statusBoard, profile bool) *httptest.Server {
	t.Helper()

	cfg := validConfig()
	cfg.profile = profile

	errs := make(chan error, 8)
	t.Cleanup(func() {
		select {
		case err := <-errs:
			t.Errorf("handler error: %v", err)
		default:
		}
	})

	srv := httptest.NewServer(newRouter(cfg, board, errs))
	t.Cleanup(srv.Close)

	return srv
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read %s: %v", url, err)
	}

	return resp, body
}

func TestHealthAndVersion(t *testing.T) {
	srv := newTestStatus(t, &statusBoard{}, false)

	resp, body := get(t, srv.URL+"/healthz")
	if resp.StatusCode != http.StatusOK || string(body) != "Ok\n" {
		t.Errorf("/healthz = %d %q", resp.StatusCode, body)
	}
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}

	_, body = get(t, srv.URL+"/version")
	if string(body) != "knockbox v"+releaseVersion+"\n" {
		t.Errorf("/version = %q", body)
	}
}

func TestStateAndBoard(t *testing.T) {
	board := &statusBoard{}
	srv := newTestStatus(t, board, false)

	_, body := get(t, srv.URL+"/board")
	if !strings.Contains(string(body), "Waiting") {
		t.Errorf("/board before any state = %q", body)
	}

	board.publish(&status{
		Player:    "player1",
		Joined:    true,
		Connected: true,
		State: session.State{
			DeckSize: 31,
			Turn:     "player1",
			Hand:     []cards.Token{"Hearts A", "Spades 10"},
			Scores:   map[string]int{"player1": 12},
		},
		Board: "Current Turn: player1",
	})

	resp, body := get(t, srv.URL+"/state")
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}

	var got status
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decode /state: %v", err)
	}
	if got.Player != "player1" || !got.Joined || got.State.DeckSize != 31 || len(got.State.Hand) != 2 {
		t.Errorf("/state = %+v", got)
	}
	if got.Board != "" {
		t.Error("board text leaked into /state")
	}

	_, body = get(t, srv.URL+"/board")
	if string(body) != "Current Turn: player1\n" {
		t.Errorf("/board = %q", body)
	}
}

func TestQRCode(t *testing.T) {
	srv := newTestStatus(t, &statusBoard{}, false)

	resp, body := get(t, srv.URL+"/qr")
	if resp.Header.Get("Content-Type") != "image/png" {
		t.Errorf("content type = %q", resp.Header.Get("Content-Type"))
	}
	if !bytes.HasPrefix(body, []byte("\x89PNG")) {
		t.Error("/qr did not return a png")
	}

	var out bytes.Buffer
	if err := printQR(validConfig(), &out); err != nil {
		t.Fatalf("printQR: %v", err)
	}
	if !strings.Contains(out.String(), "ws://localhost:5000/ws") {
		t.Error("terminal qr code missing the join url")
	}
}

func TestProfileRoutesOnlyWhenEnabled(t *testing.T) {
	off := newTestStatus(t, &statusBoard{}, false)
	if resp, _ := get(t, off.URL+"/pprof/heap"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("pprof without --profile = %d, want 404", resp.StatusCode)
	}

	on := newTestStatus(t, &statusBoard{}, true)
	if resp, _ := get(t, on.URL+"/pprof/heap"); resp.StatusCode != http.StatusOK {
		t.Errorf("pprof with --profile = %d, want 200", resp.StatusCode)
	}
}

func freePort(t *testing.T) int {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := l.Addr().(*net.TCPAddr).Port
	_ = l.Close()

	return port
}

func TestServeStatusShutsDown(t *testing.T) {
	cfg := validConfig()
	cfg.statusPort = freePort(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ServeStatus(ctx, cfg, &statusBoard{}) }()

	url := fmt.Sprintf("http://127.0.0.1:%d/healthz", cfg.statusPort)
	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err := http.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("status server never came up: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ServeStatus = %v, want nil", err)
		}
	case <-time.After(6 * time.Second):
		t.Fatal("ServeStatus did not return after cancel")
	}
}

func TestServeStatusReportsBindFailure(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()

	cfg := validConfig()
	cfg.statusPort = l.Addr().(*net.TCPAddr).Port

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := ServeStatus(ctx, cfg, &statusBoard{}); err == nil {
		t.Error("ServeStatus on a taken port = nil, want error")
	}
}
