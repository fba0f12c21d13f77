package websocket

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialHub(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/discovery"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubPushDeliversFrameToSubscriber(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dialHub(t, srv)

	// Give readPump/writePump a moment to register the subscriber
	// before pushing, since registration happens inside ServeHTTP on
	// the server goroutine handling the upgrade.
	deadline := time.Now().Add(time.Second)
	for hub.Subscribers() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if hub.Subscribers() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", hub.Subscribers())
	}

	want := ProgressFrame{SessionID: "sess-1", DeviceID: "dev-1", CurrentModule: "core", Status: "running", Progress: 20}
	hub.Push(want)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got ProgressFrame
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if got != want {
		t.Fatalf("frame mismatch: got %+v, want %+v", got, want)
	}
}

func TestHubPushToNoSubscribersDoesNotBlock(t *testing.T) {
	hub := NewHub()
	done := make(chan struct{})
	go func() {
		hub.Push(ProgressFrame{SessionID: "sess-1", Status: "running"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Push blocked with no subscribers")
	}
}

func TestHubRemovesSubscriberOnDisconnect(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dialHub(t, srv)

	deadline := time.Now().Add(time.Second)
	for hub.Subscribers() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	conn.Close()

	deadline = time.Now().Add(time.Second)
	for hub.Subscribers() != 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if hub.Subscribers() != 0 {
		t.Fatalf("expected subscriber removed after disconnect, got %d", hub.Subscribers())
	}
}
