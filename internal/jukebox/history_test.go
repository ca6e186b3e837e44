package jukebox

import (
	"fmt"
	"testing"

	"github.com/jhifarskiy/eatune/internal/models"
)

func entry(id string) models.QueueEntry {
	return models.QueueEntry{Track: models.Track{ID: id}}
}

func TestHistoryOrderAndEviction(t *testing.T) {
	h := newHistoryLog(3)

	for i := 0; i < 5; i++ {
		h.push(entry(fmt.Sprintf("t%d", i)))
	}

	if h.len() != 3 {
		t.Fatalf("len = %d, want 3", h.len())
	}

	// Newest first; t0 and t1 were evicted.
	got := h.list()
	want := []string{"t4", "t3", "t2"}
	for i, e := range got {
		if e.ID != want[i] {
			t.Errorf("history[%d] = %s, want %s", i, e.ID, want[i])
		}
	}
}

func TestHistoryPop(t *testing.T) {
	h := newHistoryLog(3)

	if _, ok := h.pop(); ok {
		t.Fatal("pop on empty history should report false")
	}

	h.push(entry("t0"))
	h.push(entry("t1"))

	e, ok := h.pop()
	if !ok || e.ID != "t1" {
		t.Fatalf("pop = %v/%v, want t1", e.ID, ok)
	}
	if h.len() != 1 {
		t.Fatalf("len = %d after pop, want 1", h.len())
	}
}
