package progress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/felixgeelhaar/codeclip/internal/metrics"
	"github.com/felixgeelhaar/codeclip/internal/validation"
)

// ErrInvalidCompletion is returned for completions missing a title or difficulty
var ErrInvalidCompletion = errors.New("invalid completion")

// Event is published after a completion has been applied
type Event struct {
	ChallengeID string        `json:"challengeId"`
	Completion  Completion    `json:"completion"`
	Day         DayKey        `json:"day"`
	Total       int           `json:"totalChallenges"`
	Streak      int           `json:"currentStreak"`
	Unlocked    []Achievement `json:"unlocked"`
	Saved       bool          `json:"saved"`
	OccurredAt  time.Time     `json:"occurredAt"`
}

// Notifier receives completion events, typically to show unlock toasts
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// Result is returned by Service.RecordCompletion
type Result struct {
	Outcome
	Saved  bool    `json:"saved"`
	Record *Record `json:"record"`
}

// Service ties the store, tracker and notifier together. Load, mutate and
// save run under one lock so concurrent callers in the same process do not
// overwrite each other.
type Service struct {
	store    *Store
	notifier Notifier
	now      func() time.Time
	loc      *time.Location
	mu       sync.Mutex
}

// ServiceOption configures a Service
type ServiceOption func(*Service)

// WithNotifier sets the notifier for completion events.
func WithNotifier(n Notifier) ServiceOption {
	return func(s *Service) { s.notifier = n }
}

// WithLocation sets the time zone days are counted in. Defaults to UTC.
func WithLocation(loc *time.Location) ServiceOption {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithNow sets the service clock.
func WithNow(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService creates a new progress service
func NewService(store *Store, opts ...ServiceOption) *Service {
	s := &Service{store: store, now: time.Now, loc: time.UTC}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the current day in the service's time zone.
func (s *Service) Today() DayKey {
	return Day(s.now(), s.loc)
}

// Location returns the time zone days are counted in.
func (s *Service) Location() *time.Location {
	return s.loc
}

// Record returns the current progress record
func (s *Service) Record(ctx context.Context) *Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Load(ctx)
}

// RecordCompletion applies a solved challenge, saves the record and
// notifies about newly unlocked achievements. A failed save is reported
// through Result.Saved rather than an error.
func (s *Service) RecordCompletion(ctx context.Context, c Completion) (*Result, error) {
	if err := validation.Struct(c); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCompletion, validation.Summary(err))
	}

	s.mu.Lock()
	rec := s.store.Load(ctx)
	today := s.Today()
	outcome := RecordCompletion(rec, c, today, today.Yesterday())

	if outcome.Duplicate {
		s.mu.Unlock()
		metrics.CompletionsDuplicate.Inc()
		slog.Debug("duplicate completion ignored", "challenge_id", outcome.ChallengeID)
		// Nothing changed, so the stored record is already current.
		return &Result{Outcome: outcome, Saved: true, Record: rec}, nil
	}

	saved := s.store.Save(ctx, rec)
	s.mu.Unlock()

	metrics.CompletionsRecorded.WithLabelValues(string(c.Category)).Inc()
	for _, a := range outcome.Unlocked {
		metrics.AchievementsUnlocked.WithLabelValues(a.ID).Inc()
	}

	slog.Info("challenge completed",
		"challenge_id", outcome.ChallengeID,
		"total", rec.TotalChallenges,
		"streak", rec.StreakData.Current,
		"unlocked", len(outcome.Unlocked),
		"saved", saved,
	)

	if s.notifier != nil {
		ev := Event{
			ChallengeID: outcome.ChallengeID,
			Completion:  c,
			Day:         today,
			Total:       rec.TotalChallenges,
			Streak:      rec.StreakData.Current,
			Unlocked:    outcome.Unlocked,
			Saved:       saved,
			OccurredAt:  s.now().UTC(),
		}
		if err := s.notifier.Notify(ctx, ev); err != nil {
			slog.Warn("failed to publish completion event", "challenge_id", outcome.ChallengeID, "error", err)
		}
	}

	return &Result{Outcome: outcome, Saved: saved, Record: rec}, nil
}

// Overview returns dashboard analytics for today
func (s *Service) Overview(ctx context.Context) *Overview {
	return BuildOverview(s.Record(ctx), s.Today())
}

// Achievements returns the catalog with the record's progress on each entry
func (s *Service) Achievements(ctx context.Context) []AchievementStatus {
	return Statuses(s.Record(ctx))
}

// Skills returns the skill chart data
func (s *Service) Skills(ctx context.Context) []SkillCount {
	return SkillChart(s.Record(ctx))
}

// Weekly returns the last seven days of activity
func (s *Service) Weekly(ctx context.Context) []DayCount {
	return WeeklyActivity(s.Record(ctx), s.Today())
}

// LoadSample replaces an empty record with demonstration data. It refuses
// to touch a record that already has completions.
func (s *Service) LoadSample(ctx context.Context, rng *rand.Rand) (*Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cur := s.store.Load(ctx); cur.TotalChallenges > 0 {
		return cur, false, nil
	}
	rec := SampleRecord(s.now(), s.loc, rng)
	if !s.store.Save(ctx, rec) {
		return rec, false, errors.New("save sample record")
	}
	return rec, true, nil
}

// Reset deletes all progress
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Reset(ctx)
}
