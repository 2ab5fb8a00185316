// Package records holds the consolidated submission set and its statistics,
// and signals readers when a stage finishes loading.
package records

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dtnitsch/codehub/models"
)

// Stage names a completed loading step.
type Stage string

const (
	StageImages Stage = "images"
	StageStats  Stage = "stats"
)

// Event is broadcast after a stage completes.
type Event struct {
	Stage Stage     `json:"stage"`
	At    time.Time `json:"at"`
	Total int       `json:"total_submissions"`
}

// Notifier forwards events outside the process.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// Store owns the submissions, image mapping and stats. Readers receive
// copies; the pipeline replaces content wholesale through Swap.
type Store struct {
	mu           sync.RWMutex
	submissions  []models.Submission
	imageMapping models.ImageMapping
	stats        models.Stats

	subMu     sync.Mutex
	subs      map[int]chan Event
	nextSub   int
	notifiers []Notifier
	logger    *slog.Logger
}

func NewStore(logger *slog.Logger, notifiers ...Notifier) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		submissions:  []models.Submission{},
		imageMapping: models.ImageMapping{},
		stats:        models.EmptyStats(),
		subs:         make(map[int]chan Event),
		notifiers:    notifiers,
		logger:       logger,
	}
}

func (s *Store) Submissions() []models.Submission {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Submission, len(s.submissions))
	copy(out, s.submissions)
	return out
}

func (s *Store) ImageMapping() models.ImageMapping {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(models.ImageMapping, len(s.imageMapping))
	for k, v := range s.imageMapping {
		out[k] = v
	}
	return out
}

func (s *Store) Stats() models.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyStats(s.stats)
}

// Snapshot returns the persistable state. Submissions and stats are read
// under one lock so they always come from the same Swap.
func (s *Store) Snapshot() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subs := make([]models.Submission, len(s.submissions))
	copy(subs, s.submissions)
	return models.Snapshot{
		Submissions: subs,
		Stats:       copyStats(s.stats),
	}
}

// Swap replaces the submission set and stats in one step and broadcasts
// StageStats. The previous content is discarded.
func (s *Store) Swap(ctx context.Context, subs []models.Submission, stats models.Stats) {
	s.mu.Lock()
	s.submissions = subs
	s.stats = stats
	s.mu.Unlock()

	s.broadcast(ctx, Event{Stage: StageStats, At: time.Now(), Total: stats.TotalSubmissions})
}

// SetImageMapping installs the language icon mapping and broadcasts StageImages.
func (s *Store) SetImageMapping(ctx context.Context, m models.ImageMapping) {
	s.mu.Lock()
	s.imageMapping = m
	total := s.stats.TotalSubmissions
	s.mu.Unlock()

	s.broadcast(ctx, Event{Stage: StageImages, At: time.Now(), Total: total})
}

// Subscribe returns a channel of events and a cancel func. Slow subscribers
// miss events rather than block the pipeline.
func (s *Store) Subscribe() (<-chan Event, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan Event, 4)
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

func (s *Store) broadcast(ctx context.Context, ev Event) {
	s.subMu.Lock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			s.logger.Warn("dropping event for slow subscriber", "stage", ev.Stage)
		}
	}
	s.subMu.Unlock()

	for _, n := range s.notifiers {
		if err := n.Notify(ctx, ev); err != nil {
			s.logger.Warn("failed to forward data update", "stage", ev.Stage, "error", err)
		}
	}
}

func copyStats(in models.Stats) models.Stats {
	out := in
	out.TopLanguages = append([]models.RankedCount{}, in.TopLanguages...)
	out.TopSubmissions = append([]models.RankedCount{}, in.TopSubmissions...)
	out.SubmissionsPerLevel = make(map[string]int, len(in.SubmissionsPerLevel))
	for k, v := range in.SubmissionsPerLevel {
		out.SubmissionsPerLevel[k] = v
	}
	return out
}
