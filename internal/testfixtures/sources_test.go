package testfixtures

import (
	"testing"
	"time"
)

func TestClock(t *testing.T) {
	t.Parallel()

	t.Run("defaults to the reference time", func(t *testing.T) {
		t.Parallel()
		clock := NewClock(time.Time{})
		if !clock.Now().Equal(ReferenceTime()) {
			t.Fatalf("expected ReferenceTime, got %v", clock.Now())
		}
	})

	t.Run("frozen clock only moves when told", func(t *testing.T) {
		t.Parallel()
		start := time.Date(2025, time.March, 14, 9, 26, 0, 0, time.UTC)
		clock := NewClock(start)
		now := clock.NowFunc()

		if !now().Equal(start) || !now().Equal(start) {
			t.Fatalf("frozen clock moved")
		}
		if got := clock.Advance(90 * time.Minute); !got.Equal(start.Add(90 * time.Minute)) {
			t.Fatalf("advance returned %v", got)
		}
		clock.Set(start)
		if !now().Equal(start) {
			t.Fatalf("set did not apply")
		}
	})

	t.Run("stepping clock increases on every read", func(t *testing.T) {
		t.Parallel()
		start := ReferenceTime()
		clock := NewSteppingClock(start, time.Second)

		first := clock.Now()
		second := clock.Now()
		if !first.Equal(start) || !second.Equal(start.Add(time.Second)) {
			t.Fatalf("unexpected sequence %v, %v", first, second)
		}
	})
}

func TestIDGenerator(t *testing.T) {
	t.Parallel()

	gen := NewIDGenerator("entity")
	first := gen.Next()
	second := gen.NextFunc()()

	if first != "entity-1" || second != "entity-2" {
		t.Fatalf("unexpected identifiers: %q, %q", first, second)
	}
	if issued := gen.Issued(); len(issued) != 2 || issued[1] != "entity-2" {
		t.Fatalf("unexpected issued list: %v", issued)
	}
	if got := NewIDGenerator("").Next(); got != "id-1" {
		t.Fatalf("expected default prefix, got %q", got)
	}
}
