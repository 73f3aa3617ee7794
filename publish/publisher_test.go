package publish

import (
	"testing"
	"time"

	"github.com/yatesdr/gos7link/config"
)

func TestNewRejectsInvalidTagAddress(t *testing.T) {
	cfg := config.PublishConfig{Tags: []config.TagConfig{{Name: "bad", Address: "NOT-AN-ADDRESS"}}}
	if _, err := New(cfg, nil); err == nil {
		t.Fatal("expected error for invalid tag address")
	}
}

func TestNewParsesValidTags(t *testing.T) {
	cfg := config.PublishConfig{Tags: []config.TagConfig{
		{Name: "temperature", Address: "DB1.DBW0", Size: 2},
		{Name: "running", Address: "M0.0", Size: 1},
	}}
	p, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(p.tags) != 2 {
		t.Fatalf("expected 2 parsed tags, got %d", len(p.tags))
	}
	if p.tags[0].Name != "temperature" || p.tags[0].Address.Start != 0 {
		t.Fatalf("unexpected first tag: %+v", p.tags[0])
	}
}

// TestChangeDetection exercises publishIfChanged's cache-comparison logic
// directly, without a live broker connection (mqtt is nil, so the publish
// call is skipped, but the cache update still happens and is observable).
func TestChangeDetection(t *testing.T) {
	p := &Publisher{
		cfg:        config.PublishConfig{Topic: "s7/tags"},
		lastValues: make(map[string]string),
	}

	p.publishIfChanged("temp", []byte{0x00, 0x01})
	if v, ok := p.lastValues["temp"]; !ok || v == "" {
		t.Fatalf("expected cache entry after first publish, got %q, %v", v, ok)
	}
	first := p.lastValues["temp"]

	// Same bytes again: cache entry must not be recomputed to a different value.
	p.publishIfChanged("temp", []byte{0x00, 0x01})
	if p.lastValues["temp"] != first {
		t.Fatalf("cache value changed on identical read: %q vs %q", p.lastValues["temp"], first)
	}

	// Different bytes: cache entry must change.
	p.publishIfChanged("temp", []byte{0x00, 0x02})
	if p.lastValues["temp"] == first {
		t.Fatal("expected cache value to change after a differing read")
	}
}

func TestPollRateDefaultsWhenZero(t *testing.T) {
	p := &Publisher{cfg: config.PublishConfig{PollRate: 0}}
	rate := p.cfg.PollRate
	if rate <= 0 {
		rate = time.Second
	}
	if rate != time.Second {
		t.Fatalf("expected default poll rate of 1s, got %v", rate)
	}
}
