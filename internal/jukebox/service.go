package jukebox

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/jhifarskiy/eatune/internal/catalog"
	"github.com/jhifarskiy/eatune/internal/config"
	"github.com/jhifarskiy/eatune/internal/models"
)

// Notifier receives a fresh queue snapshot after every mutation. The
// websocket hub implements it; tests pass nil or a recorder.
type Notifier interface {
	QueueUpdated(venueID string, queue []models.QueueEntry)
}

// Options carries the tunables of the queue engine.
type Options struct {
	TrackCooldown       time.Duration
	UserCooldown        time.Duration
	HistoryMaxSize      int
	BackgroundQueueSize int
	SweepInterval       time.Duration
	Clock               Clock
}

// OptionsFromConfig maps the config section onto engine options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		TrackCooldown:       time.Duration(cfg.Jukebox.TrackCooldownMinutes) * time.Minute,
		UserCooldown:        time.Duration(cfg.Jukebox.UserCooldownMinutes) * time.Minute,
		HistoryMaxSize:      cfg.Jukebox.HistoryMaxSize,
		BackgroundQueueSize: cfg.Jukebox.BackgroundQueueSize,
		SweepInterval:       time.Duration(cfg.Jukebox.SweepIntervalMinutes) * time.Minute,
		Clock:               RealClock{},
	}
}

// Service is the per-venue queue engine. It owns every venueState and
// the requester cooldown table; handlers get a *Service and never touch
// venue internals directly.
//
// Locking: s.mu only guards the venues map. Each venueState has its own
// mutex and all queue mutations for a venue, including the snapshot
// push to subscribers, happen under it, so subscribers observe
// mutations in exactly the order the engine accepted them.
type Service struct {
	catalog  *catalog.Cache
	notifier Notifier
	opts     Options
	clock    Clock

	userCooldowns *requesterCooldowns

	mu     sync.Mutex
	venues map[string]*venueState
}

func New(cache *catalog.Cache, notifier Notifier, opts Options) *Service {
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	return &Service{
		catalog:       cache,
		notifier:      notifier,
		opts:          opts,
		clock:         opts.Clock,
		userCooldowns: newRequesterCooldowns(opts.UserCooldown, opts.Clock),
		venues:        make(map[string]*venueState),
	}
}

// SetNotifier wires the fanout hub after construction. The hub needs
// the service for subscriber connects and the service needs the hub for
// broadcasts, so one side has to be attached late.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// venue returns existing state without creating it.
func (s *Service) venue(id string) (*venueState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.venues[id]
	return v, ok
}

// ensureVenue creates state on first contact. Venues live for the rest
// of the process once created.
func (s *Service) ensureVenue(id string) *venueState {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.venues[id]
	if !ok {
		v = newVenueState(id, s.opts.HistoryMaxSize)
		s.venues[id] = v
		activeVenues.Set(float64(len(s.venues)))
		slog.Info("venue created", "venue", id)
	}
	return v
}

// Enqueue handles a patron track order. Preconditions are checked in a
// fixed order so a request that trips several rules always reports the
// same failure: requester cooldown, track cooldown, duplicate, unknown
// track.
func (s *Service) Enqueue(venueID, trackID, deviceID string) error {
	v := s.ensureVenue(venueID)
	v.mu.Lock()
	defer v.mu.Unlock()

	now := s.clock.Now()

	// 1. Requester cooldown
	if left := s.userCooldowns.remaining(venueID, deviceID); left > 0 {
		enqueueTotal.WithLabelValues("user_cooldown").Inc()
		return &CooldownError{Kind: CooldownUser, SecondsRemaining: ceilSeconds(left)}
	}

	// 2. Track cooldown (set when the track last finished playing)
	if left := v.trackCooldownRemaining(trackID, now); left > 0 {
		enqueueTotal.WithLabelValues("track_cooldown").Inc()
		return &CooldownError{Kind: CooldownTrack, SecondsRemaining: ceilSeconds(left)}
	}

	// 3. At most one pending request per track
	for _, e := range v.queue {
		if e.ID == trackID && !e.IsBackgroundTrack {
			enqueueTotal.WithLabelValues("duplicate").Inc()
			return ErrDuplicateInQueue
		}
	}

	// 4. Catalog lookup
	track, ok := s.catalog.ByID(trackID)
	if !ok {
		enqueueTotal.WithLabelValues("not_found").Inc()
		return ErrTrackNotFound
	}

	// A patron order flushes pending filler, but whatever is playing
	// right now is never evicted.
	var playing *models.QueueEntry
	rest := v.queue
	if len(rest) > 0 {
		head := rest[0]
		playing = &head
		rest = rest[1:]
	}

	newQueue := make([]models.QueueEntry, 0, len(rest)+2)
	if playing != nil {
		newQueue = append(newQueue, *playing)
	}
	for _, e := range rest {
		if !e.IsBackgroundTrack {
			newQueue = append(newQueue, e)
		}
	}
	newQueue = append(newQueue, models.QueueEntry{Track: track, RequestedBy: deviceID})
	v.queue = newQueue

	s.userCooldowns.mark(venueID, deviceID)
	enqueueTotal.WithLabelValues("accepted").Inc()

	s.notifyLocked(v)
	return nil
}

// EnqueueNext is the staff shortcut: the track jumps to the slot right
// after the playing entry, skipping all cooldown bookkeeping.
func (s *Service) EnqueueNext(venueID, trackID string) error {
	v, ok := s.venue(venueID)
	if !ok {
		return ErrUnknownVenue
	}

	track, found := s.catalog.ByID(trackID)
	if !found {
		return ErrTrackNotFound
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	entry := models.QueueEntry{Track: track, RequestedBy: "admin"}
	if len(v.queue) < 2 {
		v.queue = append(v.queue, entry)
	} else {
		v.queue = append(v.queue[:1], append([]models.QueueEntry{entry}, v.queue[1:]...)...)
	}

	s.notifyLocked(v)
	return nil
}

// Remove deletes an upcoming entry. The playing entry (index 0) cannot
// be removed; skip it with Advance instead.
func (s *Service) Remove(venueID, trackID string) error {
	v, ok := s.venue(venueID)
	if !ok {
		return ErrUnknownVenue
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	for i, e := range v.queue {
		if e.ID == trackID {
			if i == 0 {
				return ErrCannotRemove
			}
			v.queue = append(v.queue[:i], v.queue[i+1:]...)
			s.notifyLocked(v)
			return nil
		}
	}
	return ErrCannotRemove
}

// Advance marks the playing entry as finished: it goes on cooldown,
// moves into history, and filler is topped up if no patron requests
// remain. Returns the new head, or nil when the queue drained.
func (s *Service) Advance(venueID string) (*models.QueueEntry, error) {
	v, ok := s.venue(venueID)
	if !ok {
		return nil, ErrUnknownVenue
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	now := s.clock.Now()

	if len(v.queue) > 0 {
		finished := v.queue[0]
		v.queue = v.queue[1:]
		v.trackCooldowns[finished.ID] = now.Add(s.opts.TrackCooldown)
		v.history.push(finished)
		tracksPlayed.Inc()
	}

	v.fillBackground(s.catalog, now, s.opts.BackgroundQueueSize)
	s.notifyLocked(v)

	if len(v.queue) == 0 {
		return nil, nil
	}
	head := v.queue[0]
	return &head, nil
}

// Rewind puts the most recently finished entry back at the front of the
// queue. The entry that was playing is not lost; it shifts to index 1.
func (s *Service) Rewind(venueID string) (*models.QueueEntry, error) {
	v, ok := s.venue(venueID)
	if !ok {
		return nil, ErrUnknownVenue
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	replay, ok := v.history.pop()
	if !ok {
		return nil, ErrEmptyHistory
	}

	v.queue = append([]models.QueueEntry{replay}, v.queue...)
	s.notifyLocked(v)

	head := v.queue[0]
	return &head, nil
}

// Queue returns a copy of the venue's current queue.
func (s *Service) Queue(venueID string) ([]models.QueueEntry, error) {
	v, ok := s.venue(venueID)
	if !ok {
		return nil, ErrUnknownVenue
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshot(), nil
}

// History returns finished entries, newest first, capped at the
// configured history size.
func (s *Service) History(venueID string) ([]models.QueueEntry, error) {
	v, ok := s.venue(venueID)
	if !ok {
		return nil, ErrUnknownVenue
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.history.list(), nil
}

// Connect registers first contact from a subscriber: venue state is
// created if needed, filler is topped up, and everyone (including the
// new subscriber, once the hub registered it) gets a snapshot.
func (s *Service) Connect(venueID string) []models.QueueEntry {
	v := s.ensureVenue(venueID)
	v.mu.Lock()
	defer v.mu.Unlock()

	v.fillBackground(s.catalog, s.clock.Now(), s.opts.BackgroundQueueSize)
	s.notifyLocked(v)
	return v.snapshot()
}

// StartSweeper launches the periodic requester-cooldown sweep. It stops
// when the context is cancelled.
func (s *Service) StartSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.opts.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.userCooldowns.sweep()
			}
		}
	}()
}

// notifyLocked pushes the current snapshot to subscribers. Called with
// the venue lock held so snapshots go out in mutation order.
func (s *Service) notifyLocked(v *venueState) {
	if s.notifier == nil {
		return
	}
	s.notifier.QueueUpdated(v.id, v.snapshot())
}

func ceilSeconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}
