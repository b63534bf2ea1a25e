package bus

import (
	"fmt"
	"testing"
	"time"
)

func TestDedupeCache_Seen(t *testing.T) {
	d := NewDedupeCache(time.Minute, 10)

	if d.Seen("a") {
		t.Error("first sighting should not be seen")
	}
	if !d.Seen("a") {
		t.Error("second sighting should be seen")
	}
	if d.Seen("b") {
		t.Error("different id should not be seen")
	}
	if d.Seen("") {
		t.Error("empty id is never deduplicated")
	}
}

func TestDedupeCache_Expiry(t *testing.T) {
	d := NewDedupeCache(10*time.Millisecond, 10)
	d.Seen("a")
	time.Sleep(20 * time.Millisecond)
	if d.Seen("a") {
		t.Error("expired entry should not be seen")
	}
}

func TestDedupeCache_Cap(t *testing.T) {
	d := NewDedupeCache(time.Hour, 3)
	for i := 0; i < 5; i++ {
		d.Seen(fmt.Sprintf("id-%d", i))
	}
	if len(d.entries) > 3 {
		t.Errorf("cache grew past cap: %d entries", len(d.entries))
	}
	// The newest entry must survive eviction.
	if !d.Seen("id-4") {
		t.Error("most recent id evicted")
	}
}

func TestStreamName(t *testing.T) {
	if got := StreamName("signal.messages"); got != "SIGNAL_MESSAGES" {
		t.Errorf("StreamName = %q", got)
	}
}
