package chart

import (
	"bytes"
	"testing"
	"time"

	"weekly-digest-bot/internal/types"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G'}

func sampleCounts() []types.DayCount {
	return []types.DayCount{
		{Day: "2026-08-24", Count: 14},
		{Day: "2026-08-25", Count: 3},
		{Day: "2026-08-26", Count: 27},
	}
}

func TestRenderActivity(t *testing.T) {
	data, err := RenderActivity(sampleCounts())
	if err != nil {
		t.Fatalf("RenderActivity failed: %v", err)
	}
	if !bytes.HasPrefix(data, pngHeader) {
		t.Error("rendered chart is not a PNG")
	}
}

func TestRenderActivityEmpty(t *testing.T) {
	if _, err := RenderActivity(nil); err == nil {
		t.Error("expected an error for empty counts")
	}
}

func TestRenderActivityCached(t *testing.T) {
	calls := 0
	load := func() ([]byte, error) {
		calls++
		return RenderActivity(sampleCounts())
	}

	first, err := RenderActivityCached("activity-7d", time.Minute, load)
	if err != nil {
		t.Fatalf("first render failed: %v", err)
	}
	second, err := RenderActivityCached("activity-7d", time.Minute, load)
	if err != nil {
		t.Fatalf("second render failed: %v", err)
	}

	if calls != 1 {
		t.Errorf("loader ran %d times, expected the cache to serve the second call", calls)
	}
	if !bytes.Equal(first, second) {
		t.Error("cached bytes differ from the rendered ones")
	}
}
