package jukebox

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jhifarskiy/eatune/internal/catalog"
	"github.com/jhifarskiy/eatune/internal/models"
)

// makeCatalog builds an unshuffled catalog of n tracks with ids
// "t00".."tNN" so tests can predict background fill order.
func makeCatalog(n int) *catalog.Cache {
	tracks := make([]models.Track, n)
	for i := range tracks {
		tracks[i] = models.Track{
			ID:       fmt.Sprintf("t%02d", i),
			Title:    fmt.Sprintf("Track %d", i),
			Artist:   "Test Artist",
			Duration: "3:00",
			Genre:    "Pop",
		}
	}
	return catalog.NewCache(tracks)
}

// recordingNotifier captures every snapshot broadcast in order.
type recordingNotifier struct {
	venues    []string
	snapshots [][]models.QueueEntry
}

func (r *recordingNotifier) QueueUpdated(venueID string, queue []models.QueueEntry) {
	r.venues = append(r.venues, venueID)
	r.snapshots = append(r.snapshots, queue)
}

func newTestService(catalogSize int) (*Service, *MockClock, *recordingNotifier) {
	clock := &MockClock{MockTime: time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)}
	rec := &recordingNotifier{}
	svc := New(makeCatalog(catalogSize), rec, Options{
		TrackCooldown:       15 * time.Minute,
		UserCooldown:        5 * time.Minute,
		HistoryMaxSize:      30,
		BackgroundQueueSize: 4,
		SweepInterval:       5 * time.Minute,
		Clock:               clock,
	})
	return svc, clock, rec
}

func ids(entries []models.QueueEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestConnectFillsBackgroundQueue(t *testing.T) {
	svc, _, _ := newTestService(5)

	queue := svc.Connect("bar-1")

	if len(queue) != 4 {
		t.Fatalf("expected 4 background tracks after first connect, got %d", len(queue))
	}
	for i, e := range queue {
		if !e.IsBackgroundTrack {
			t.Errorf("entry %d should be background", i)
		}
		if e.RequestedBy != "" {
			t.Errorf("background entry %d has a requester: %q", i, e.RequestedBy)
		}
	}

	want := []string{"t00", "t01", "t02", "t03"}
	for i, id := range ids(queue) {
		if id != want[i] {
			t.Errorf("queue[%d] = %s, want %s", i, id, want[i])
		}
	}
}

func TestConnectSmallCatalogDoesNotLoop(t *testing.T) {
	svc, _, _ := newTestService(2)

	queue := svc.Connect("bar-1")

	// Catalog smaller than the fill target: the walk must stop after
	// one full cycle instead of spinning forever.
	if len(queue) != 2 {
		t.Fatalf("expected 2 tracks from a 2-track catalog, got %d", len(queue))
	}
}

func TestEnqueueStripsFillerButKeepsNowPlaying(t *testing.T) {
	svc, _, _ := newTestService(5)

	svc.Connect("bar-1") // queue: t00..t03, all background

	if err := svc.Enqueue("bar-1", "t02", "device-x"); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	queue, _ := svc.Queue("bar-1")
	got := ids(queue)
	if len(got) != 2 || got[0] != "t00" || got[1] != "t02" {
		t.Fatalf("queue = %v, want [t00 t02]", got)
	}
	if !queue[0].IsBackgroundTrack {
		t.Error("now-playing filler should survive a patron order")
	}
	if queue[1].IsBackgroundTrack || queue[1].RequestedBy != "device-x" {
		t.Errorf("patron entry wrong: %+v", queue[1])
	}
}

func TestAdvanceKeepsUserContentUnmixed(t *testing.T) {
	svc, _, _ := newTestService(5)

	svc.Connect("bar-1")
	svc.Enqueue("bar-1", "t02", "device-x") // [t00(bg) t02(user)]

	next, err := svc.Advance("bar-1")
	if err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	if next == nil || next.ID != "t02" {
		t.Fatalf("expected t02 now playing, got %+v", next)
	}

	// t02 is a patron request, so no filler may be added around it.
	queue, _ := svc.Queue("bar-1")
	if len(queue) != 1 {
		t.Fatalf("filler mixed into user content: %v", ids(queue))
	}

	history, _ := svc.History("bar-1")
	if len(history) != 1 || history[0].ID != "t00" {
		t.Fatalf("history = %v, want [t00]", ids(history))
	}
}

func TestAdvanceRefillsWhenUserContentDrains(t *testing.T) {
	svc, _, _ := newTestService(5)

	svc.Connect("bar-1")
	svc.Enqueue("bar-1", "t02", "device-x")
	svc.Advance("bar-1") // t00 finished, t02 playing
	svc.Advance("bar-1") // t02 finished, queue drained -> refill

	queue, _ := svc.Queue("bar-1")
	got := ids(queue)

	// t00 and t02 are on cooldown; only t01, t03, t04 are eligible.
	want := map[string]bool{"t01": true, "t03": true, "t04": true}
	if len(got) != 3 {
		t.Fatalf("queue = %v, want the 3 non-cooldown tracks", got)
	}
	for _, id := range got {
		if !want[id] {
			t.Errorf("track %s should be on cooldown or was never eligible", id)
		}
	}
}

func TestEnqueueTrackCooldownAfterAdvance(t *testing.T) {
	svc, clock, _ := newTestService(5)

	svc.Connect("bar-1")
	svc.Advance("bar-1") // t00 finished, cooldown starts

	err := svc.Enqueue("bar-1", "t00", "device-x")
	var cdErr *CooldownError
	if !errors.As(err, &cdErr) || cdErr.Kind != CooldownTrack {
		t.Fatalf("expected track cooldown error, got %v", err)
	}
	if cdErr.SecondsRemaining != 15*60 {
		t.Errorf("SecondsRemaining = %d, want %d", cdErr.SecondsRemaining, 15*60)
	}

	// Still cooling at 14:59
	clock.Advance(14*time.Minute + 59*time.Second)
	if err := svc.Enqueue("bar-1", "t00", "device-x"); err == nil {
		t.Fatal("enqueue should still be blocked one second before expiry")
	}

	// Eligible again at 15:01
	clock.Advance(2 * time.Second)
	if err := svc.Enqueue("bar-1", "t00", "device-x"); err != nil {
		t.Fatalf("enqueue should succeed after cooldown expiry: %v", err)
	}
}

func TestEnqueueRequesterCooldownWindow(t *testing.T) {
	svc, clock, _ := newTestService(5)

	if err := svc.Enqueue("bar-1", "t00", "device-x"); err != nil {
		t.Fatalf("first enqueue failed: %v", err)
	}

	err := svc.Enqueue("bar-1", "t01", "device-x")
	var cdErr *CooldownError
	if !errors.As(err, &cdErr) || cdErr.Kind != CooldownUser {
		t.Fatalf("expected user cooldown error, got %v", err)
	}

	// A different device is not affected.
	if err := svc.Enqueue("bar-1", "t01", "device-y"); err != nil {
		t.Fatalf("other device should not share the cooldown: %v", err)
	}

	// Same venue+device pair is free again after the window.
	clock.Advance(5*time.Minute + time.Second)
	if err := svc.Enqueue("bar-1", "t02", "device-x"); err != nil {
		t.Fatalf("enqueue should succeed after user cooldown: %v", err)
	}
}

func TestRequesterCooldownScopedPerVenue(t *testing.T) {
	svc, _, _ := newTestService(5)

	svc.Enqueue("bar-1", "t00", "device-x")

	if err := svc.Enqueue("bar-2", "t00", "device-x"); err != nil {
		t.Fatalf("cooldowns must not leak across venues: %v", err)
	}
}

func TestEnqueueFailureOrderIsDeterministic(t *testing.T) {
	svc, _, _ := newTestService(5)

	// Put t00 on track cooldown AND device-x on requester cooldown.
	svc.Connect("bar-1")
	svc.Advance("bar-1")                    // t00 track cooldown
	svc.Enqueue("bar-1", "t01", "device-x") // device-x requester cooldown

	// Both rules are violated; the requester cooldown must win because
	// it is checked first.
	err := svc.Enqueue("bar-1", "t00", "device-x")
	var cdErr *CooldownError
	if !errors.As(err, &cdErr) {
		t.Fatalf("expected cooldown error, got %v", err)
	}
	if cdErr.Kind != CooldownUser {
		t.Errorf("first-checked failure should be the user cooldown, got %s", cdErr.Kind)
	}
}

func TestEnqueueDuplicate(t *testing.T) {
	svc, _, _ := newTestService(5)

	if err := svc.Enqueue("bar-1", "t00", "device-x"); err != nil {
		t.Fatalf("first enqueue failed: %v", err)
	}
	if err := svc.Enqueue("bar-1", "t00", "device-y"); !errors.Is(err, ErrDuplicateInQueue) {
		t.Fatalf("expected ErrDuplicateInQueue, got %v", err)
	}
}

func TestEnqueueUnknownTrack(t *testing.T) {
	svc, _, _ := newTestService(5)

	if err := svc.Enqueue("bar-1", "no-such-id", "device-x"); !errors.Is(err, ErrTrackNotFound) {
		t.Fatalf("expected ErrTrackNotFound, got %v", err)
	}
}

func TestAtMostOneUserEntryPerTrack(t *testing.T) {
	svc, clock, _ := newTestService(10)

	// Hammer the queue from several devices and verify the invariant
	// after every accepted mutation.
	devices := []string{"a", "b", "c", "d"}
	for round := 0; round < 20; round++ {
		for i, dev := range devices {
			trackID := fmt.Sprintf("t%02d", (round+i)%10)
			svc.Enqueue("bar-1", trackID, dev)
		}
		clock.Advance(6 * time.Minute)

		queue, _ := svc.Queue("bar-1")
		seen := make(map[string]int)
		for _, e := range queue {
			if !e.IsBackgroundTrack {
				seen[e.ID]++
			}
		}
		for id, n := range seen {
			if n > 1 {
				t.Fatalf("round %d: track %s queued %d times", round, id, n)
			}
		}
	}
}

func TestHistoryNeverExceedsCap(t *testing.T) {
	svc, clock, _ := newTestService(40)

	svc.Connect("bar-1")

	for i := 0; i < 1000; i++ {
		svc.Advance("bar-1")
		// Let cooldowns expire gradually so the filler keeps feeding
		// the queue and history keeps growing.
		clock.Advance(time.Minute)

		history, err := svc.History("bar-1")
		if err != nil {
			t.Fatalf("history read failed: %v", err)
		}
		if len(history) > 30 {
			t.Fatalf("iteration %d: history grew to %d entries", i, len(history))
		}
	}
}

func TestRewindEmptyHistory(t *testing.T) {
	svc, _, _ := newTestService(5)

	svc.Connect("bar-1")
	if _, err := svc.Rewind("bar-1"); !errors.Is(err, ErrEmptyHistory) {
		t.Fatalf("expected ErrEmptyHistory, got %v", err)
	}
}

func TestRewindRestoresFinishedTrack(t *testing.T) {
	// Catalog of exactly 4: everything is queued or cooling down, so
	// the fill during Advance adds nothing and the round-trip is exact.
	svc, _, _ := newTestService(4)

	svc.Connect("bar-1") // [t00 t01 t02 t03]
	before, _ := svc.Queue("bar-1")

	svc.Advance("bar-1") // t00 -> history

	current, err := svc.Rewind("bar-1")
	if err != nil {
		t.Fatalf("rewind failed: %v", err)
	}
	if current.ID != "t00" {
		t.Fatalf("rewind restored %s, want t00", current.ID)
	}

	after, _ := svc.Queue("bar-1")
	if after[0].ID != "t00" || after[1].ID != "t01" {
		t.Fatalf("queue after rewind = %v, want t00 first and t01 second", ids(after))
	}

	// Round-trip: advance then rewind restores the pre-advance order.
	if fmt.Sprint(ids(before)) != fmt.Sprint(ids(after)) {
		t.Fatalf("round-trip mismatch: before=%v after=%v", ids(before), ids(after))
	}

	history, _ := svc.History("bar-1")
	if len(history) != 0 {
		t.Fatalf("history should be empty after rewind, got %v", ids(history))
	}
}

func TestReadOpsOnUnknownVenue(t *testing.T) {
	svc, _, _ := newTestService(5)

	if _, err := svc.Queue("nowhere"); !errors.Is(err, ErrUnknownVenue) {
		t.Errorf("Queue: expected ErrUnknownVenue, got %v", err)
	}
	if _, err := svc.History("nowhere"); !errors.Is(err, ErrUnknownVenue) {
		t.Errorf("History: expected ErrUnknownVenue, got %v", err)
	}
	if _, err := svc.Advance("nowhere"); !errors.Is(err, ErrUnknownVenue) {
		t.Errorf("Advance: expected ErrUnknownVenue, got %v", err)
	}
	if _, err := svc.Rewind("nowhere"); !errors.Is(err, ErrUnknownVenue) {
		t.Errorf("Rewind: expected ErrUnknownVenue, got %v", err)
	}

	// Enqueue is read-through: first contact creates the venue.
	if err := svc.Enqueue("nowhere", "t00", "device-x"); err != nil {
		t.Errorf("Enqueue should auto-create the venue: %v", err)
	}
}

func TestEnqueueNextInsertsAfterNowPlaying(t *testing.T) {
	svc, _, _ := newTestService(5)

	svc.Connect("bar-1") // [t00 t01 t02 t03]

	if err := svc.EnqueueNext("bar-1", "t04"); err != nil {
		t.Fatalf("admin insert failed: %v", err)
	}

	queue, _ := svc.Queue("bar-1")
	got := ids(queue)
	if got[0] != "t00" || got[1] != "t04" {
		t.Fatalf("queue = %v, want t04 right after the playing entry", got)
	}
	if queue[1].RequestedBy != "admin" {
		t.Errorf("admin entry requester = %q", queue[1].RequestedBy)
	}
}

func TestRemoveProtectsNowPlaying(t *testing.T) {
	svc, _, _ := newTestService(5)

	svc.Connect("bar-1") // [t00 t01 t02 t03]

	if err := svc.Remove("bar-1", "t00"); !errors.Is(err, ErrCannotRemove) {
		t.Fatalf("removing the playing entry must fail, got %v", err)
	}
	if err := svc.Remove("bar-1", "t02"); err != nil {
		t.Fatalf("removing an upcoming entry failed: %v", err)
	}

	queue, _ := svc.Queue("bar-1")
	for _, e := range queue {
		if e.ID == "t02" {
			t.Fatal("t02 still in queue after removal")
		}
	}
}

func TestSnapshotsArriveInMutationOrder(t *testing.T) {
	svc, _, rec := newTestService(5)

	svc.Connect("bar-1")
	svc.Enqueue("bar-1", "t02", "device-x")
	svc.Advance("bar-1")
	svc.Rewind("bar-1")

	if len(rec.snapshots) != 4 {
		t.Fatalf("expected 4 snapshots, got %d", len(rec.snapshots))
	}

	// The last snapshot must match the current queue exactly.
	queue, _ := svc.Queue("bar-1")
	last := rec.snapshots[len(rec.snapshots)-1]
	if fmt.Sprint(ids(last)) != fmt.Sprint(ids(queue)) {
		t.Fatalf("final snapshot %v != queue %v", ids(last), ids(queue))
	}
}

func TestVenuesAreIndependent(t *testing.T) {
	svc, _, _ := newTestService(5)

	svc.Connect("bar-1")
	svc.Connect("bar-2")

	svc.Enqueue("bar-1", "t02", "device-x")
	svc.Advance("bar-1")

	// bar-2 must still have its untouched background fill.
	queue, _ := svc.Queue("bar-2")
	if len(queue) != 4 {
		t.Fatalf("bar-2 queue = %v, want 4 background tracks", ids(queue))
	}

	// t00 finished at bar-1 only; it is immediately orderable at bar-2.
	if err := svc.Enqueue("bar-2", "t00", "device-y"); err != nil {
		t.Fatalf("track cooldown leaked across venues: %v", err)
	}
}

func TestBackgroundFillSkipsQueuedAndCooldownTracks(t *testing.T) {
	svc, _, _ := newTestService(6)

	svc.Connect("bar-1")      // [t00 t01 t02 t03]
	svc.Advance("bar-1")      // t00 on cooldown, fill adds t04 -> [t01 t02 t03 t04]

	queue, _ := svc.Queue("bar-1")
	got := ids(queue)
	want := []string{"t01", "t02", "t03", "t04"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("queue = %v, want %v", got, want)
	}

	if len(queue) > 4 {
		t.Fatalf("fill exceeded target size: %d", len(queue))
	}
}
