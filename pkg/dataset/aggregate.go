package dataset

import (
	"context"

	"github.com/dtnitsch/codehub/models"
	"github.com/dtnitsch/codehub/pkg/caching"
	"github.com/dtnitsch/codehub/pkg/classifier"
	"github.com/dtnitsch/codehub/pkg/mapreduce"
	"golang.org/x/sync/errgroup"
)

const (
	TopLanguageCount   = 5
	TopSubmissionCount = 2
)

// State tracks an aggregation run.
type State int

const (
	StateNotStarted State = iota
	StateFetching
	StateAggregating
	StatePersisting
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateFetching:
		return "fetching"
	case StateAggregating:
		return "aggregating"
	case StatePersisting:
		return "persisting"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "not_started"
	}
}

// State reports the state of the latest aggregation run.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

// ComputeStats loads the consolidated snapshot from cache, or fetches every
// page, aggregates and persists it. On any page failure the record store is
// left untouched and an *AggregationError is returned.
func (m *Manager) ComputeStats(ctx context.Context) (models.Stats, error) {
	var snap models.Snapshot
	if m.loadCached(ctx, SnapshotKey, caching.KindSnapshot, &snap) {
		if snap.Consistent() {
			m.store.Swap(ctx, snap.Submissions, snap.Stats)
			m.setState(StateDone)
			m.logger.Info("Stats loaded from cache", "total_submissions", snap.Stats.TotalSubmissions)
			return m.store.Stats(), nil
		}
		m.logger.Warn("discarding inconsistent snapshot", "key", SnapshotKey,
			"total", snap.Stats.TotalSubmissions, "submissions", len(snap.Submissions))
	}

	m.setState(StateFetching)
	m.logger.Info("Starting concurrent fetch phase", "pages", m.cfg.Pages, "concurrency", m.cfg.Concurrency)

	pages, err := m.fetchAll(ctx)
	if err != nil {
		m.setState(StateFailed)
		return models.Stats{}, err
	}

	m.setState(StateAggregating)
	all := Consolidate(pages)
	classifier.ClassifyAll(all)
	stats := Aggregate(all)
	m.store.Swap(ctx, all, stats)
	m.logger.Info("Aggregation complete", "total_submissions", stats.TotalSubmissions)

	m.setState(StatePersisting)
	m.persist(ctx, SnapshotKey, caching.KindSnapshot, m.store.Snapshot())

	m.setState(StateDone)
	return m.store.Stats(), nil
}

// fetchAll fetches pages 1..N concurrently and waits for all of them.
// Failed siblings do not cancel each other.
func (m *Manager) fetchAll(ctx context.Context) ([][]models.Submission, error) {
	pages := make([][]models.Submission, m.cfg.Pages)
	errs := make([]error, m.cfg.Pages)

	var g errgroup.Group
	if m.cfg.Concurrency > 0 {
		g.SetLimit(m.cfg.Concurrency)
	}
	for i := range pages {
		i := i
		g.Go(func() error {
			subs, err := m.FetchPage(ctx, i+1)
			if err != nil {
				errs[i] = err
				return err
			}
			pages[i] = subs
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		aggErr := newAggregationError(errs)
		m.logger.Error("Aggregation failed", "error", aggErr)
		return nil, aggErr
	}
	return pages, nil
}

// Refresh drops the cached snapshot and pages, then recomputes.
func (m *Manager) Refresh(ctx context.Context) (models.Stats, error) {
	keys := []string{SnapshotKey}
	for page := 1; page <= m.cfg.Pages; page++ {
		keys = append(keys, PageKey(page))
	}
	for _, key := range keys {
		if err := m.cache.Delete(ctx, key); err != nil {
			m.logger.Warn("failed to delete cache entry", "key", key, "error", err)
		}
	}
	return m.ComputeStats(ctx)
}

// Consolidate concatenates pages in page order, then intra-page order.
func Consolidate(pages [][]models.Submission) []models.Submission {
	total := 0
	for _, p := range pages {
		total += len(p)
	}
	all := make([]models.Submission, 0, total)
	for _, p := range pages {
		all = append(all, p...)
	}
	return all
}

// Aggregate computes the statistics of a classified submission set.
func Aggregate(subs []models.Submission) models.Stats {
	langs := mapreduce.Count(subs, func(s models.Submission) string { return s.Language })
	titles := mapreduce.Count(subs, func(s models.Submission) string { return s.Title })
	levels := mapreduce.Count(subs, func(s models.Submission) string { return string(s.Metadata.Level) })

	return models.Stats{
		TopLanguages:        ranked(mapreduce.TopK(langs, TopLanguageCount)),
		TopSubmissions:      ranked(mapreduce.TopK(titles, TopSubmissionCount)),
		SubmissionsPerLevel: levels.Map(),
		TotalSubmissions:    len(subs),
	}
}

func ranked(entries []mapreduce.Entry[string]) []models.RankedCount {
	out := make([]models.RankedCount, len(entries))
	for i, e := range entries {
		out[i] = models.RankedCount{Name: e.Key, Count: e.Count}
	}
	return out
}
