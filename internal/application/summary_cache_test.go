package application

import (
	"testing"
	"time"
)

func TestSummaryCacheStoresAndReturnsCopies(t *testing.T) {
	current := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	cache := newSummaryCache(time.Minute, 4, func() time.Time { return current })

	average := 4.5
	original := RatingSummary{Average: &average, Reviews: []Review{{UserID: "user-1", ReviewerName: "Ada"}}}
	cache.Store("event-1|user-1", original)

	original.Reviews[0].ReviewerName = "mutated"
	average = 1

	cached, ok := cache.Get("event-1|user-1")
	if !ok {
		t.Fatalf("expected cache hit")
	}
	if cached.Reviews[0].ReviewerName != "Ada" || *cached.Average != 4.5 {
		t.Fatalf("expected cached summary to remain unchanged, got %+v", cached)
	}

	cached.Reviews[0].ReviewerName = "changed"
	again, _ := cache.Get("event-1|user-1")
	if again.Reviews[0].ReviewerName != "Ada" {
		t.Fatalf("expected cache to return independent copy, got %s", again.Reviews[0].ReviewerName)
	}
}

func TestSummaryCacheExpiresEntries(t *testing.T) {
	current := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	cache := newSummaryCache(time.Second, 4, func() time.Time { return current })

	cache.Store("key", RatingSummary{})
	if _, ok := cache.Get("key"); !ok {
		t.Fatalf("expected cache hit before expiry")
	}

	current = current.Add(2 * time.Second)
	if _, ok := cache.Get("key"); ok {
		t.Fatalf("expected cache entry to expire")
	}
}

func TestSummaryCacheEvictsOldestWhenFull(t *testing.T) {
	current := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	cache := newSummaryCache(time.Minute, 2, func() time.Time { return current })

	cache.Store("first", RatingSummary{})
	current = current.Add(time.Second)
	cache.Store("second", RatingSummary{})
	current = current.Add(time.Second)
	cache.Store("third", RatingSummary{})

	if _, ok := cache.Get("first"); ok {
		t.Fatalf("expected the oldest entry to be evicted")
	}
	if _, ok := cache.Get("third"); !ok {
		t.Fatalf("expected the newest entry to be cached")
	}
}

func TestSummaryCacheInvalidatePrefix(t *testing.T) {
	cache := newSummaryCache(time.Minute, 4, time.Now)
	cache.Store("event-1|user-1", RatingSummary{})
	cache.Store("event-1|user-2", RatingSummary{})
	cache.Store("event-2|user-1", RatingSummary{})

	cache.InvalidatePrefix("event-1|")
	if _, ok := cache.Get("event-1|user-2"); ok {
		t.Fatalf("expected event-1 entries to be dropped")
	}
	if _, ok := cache.Get("event-2|user-1"); !ok {
		t.Fatalf("expected other events to stay cached")
	}
}
