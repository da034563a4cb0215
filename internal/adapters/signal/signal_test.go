package signal

import (
	"testing"
	"time"
)

func TestKeepaliveIntervals(t *testing.T) {
	ctl := &SignalWSController{}
	if got := ctl.pingPeriod(); got != 54*time.Second {
		t.Fatalf("expected 54s default ping period, got %v", got)
	}
	if got := ctl.pongWait(); got != 60*time.Second {
		t.Fatalf("expected 60s pong wait, got %v", got)
	}

	ctl.PingPeriod = 9 * time.Second
	if got := ctl.pingPeriod(); got != 9*time.Second {
		t.Fatalf("expected the configured ping period, got %v", got)
	}
	if got := ctl.pongWait(); got <= ctl.pingPeriod() {
		t.Fatalf("pong wait %v must exceed the ping period", got)
	}
}
