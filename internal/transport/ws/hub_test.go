package ws

import "testing"

func TestUnregisterReportsSupersededConnection(t *testing.T) {
	hub := NewHub()
	first := &Connection{MatchID: "m1", PlayerID: "p1", Send: make(chan []byte, 1)}
	second := &Connection{MatchID: "m1", PlayerID: "p1", Send: make(chan []byte, 1)}

	hub.Register(first)
	hub.Register(second)

	// registering second closed first's send channel
	if _, ok := <-first.Send; ok {
		t.Fatal("superseded connection's send channel still open")
	}
	if hub.Unregister(first) {
		t.Fatal("superseded connection reported as current")
	}
	if !hub.Unregister(second) {
		t.Fatal("current connection not reported as current")
	}
	if hub.Unregister(second) {
		t.Fatal("repeated unregister reported as current")
	}
}
