package goal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/codeclip/internal/metrics"
	"github.com/felixgeelhaar/codeclip/internal/progress"
	"github.com/felixgeelhaar/codeclip/internal/storage"
	"github.com/felixgeelhaar/codeclip/internal/validation"
)

// StorageKey is the slot goals are persisted in.
const StorageKey = "codeclip_goals"

// Input is the data needed to create a goal
type Input struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=1000"`
	Type        Type   `json:"type" validate:"required,oneof=weekly monthly"`
	Target      int    `json:"target" validate:"min=1,max=10000"`
	// Deadline in YYYY-MM-DD form; empty picks SuggestDeadline.
	Deadline string `json:"deadline,omitempty" validate:"omitempty,day"`
	Category string `json:"category" validate:"max=50"`
}

// Service manages goals in a single slot
type Service struct {
	slots storage.Slots
	now   func() time.Time
	loc   *time.Location
	newID func() string
	mu    sync.Mutex
}

// Option configures a Service
type Option func(*Service)

// WithClock sets the time source used for deadline suggestions.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the time zone for deadline suggestions.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithIDGenerator overrides goal id generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) { s.newID = gen }
}

// NewService creates a goal service over slots
func NewService(slots storage.Slots, opts ...Option) *Service {
	s := &Service{
		slots: slots,
		now:   time.Now,
		loc:   time.UTC,
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// load reads the goal document. A missing or unreadable slot is an empty
// document.
func (s *Service) load(ctx context.Context) *Goals {
	gs := &Goals{}
	data, err := s.slots.Get(ctx, StorageKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Warn("failed to read goals, starting empty", "error", err)
		}
		gs.normalize()
		return gs
	}
	if err := json.Unmarshal(data, gs); err != nil {
		slog.Warn("corrupt goals document, starting empty", "error", err)
		gs = &Goals{}
	}
	gs.normalize()
	return gs
}

// normalize fills nil lists and the type of goals written without one, and
// re-derives every status from progress.
func (gs *Goals) normalize() {
	if gs.Weekly == nil {
		gs.Weekly = []Goal{}
	}
	if gs.Monthly == nil {
		gs.Monthly = []Goal{}
	}
	fix := func(list []Goal, t Type) {
		for i := range list {
			if list[i].Type == "" {
				list[i].Type = t
			}
			list[i].Status = DeriveStatus(list[i].Current, list[i].Target)
		}
	}
	fix(gs.Weekly, TypeWeekly)
	fix(gs.Monthly, TypeMonthly)
}

func (s *Service) save(ctx context.Context, gs *Goals) error {
	data, err := json.Marshal(gs)
	if err != nil {
		return fmt.Errorf("encode goals: %w", err)
	}
	if err := s.slots.Put(ctx, StorageKey, data); err != nil {
		metrics.SaveFailures.WithLabelValues(StorageKey).Inc()
		return fmt.Errorf("save goals: %w", err)
	}
	return nil
}

// List returns all goals
func (s *Service) List(ctx context.Context) *Goals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Get returns the goal with id
func (s *Service) Get(ctx context.Context, id string) (*Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	gs := s.load(ctx)
	list, i := gs.find(id)
	if list == nil {
		return nil, ErrNotFound
	}
	g := (*list)[i]
	return &g, nil
}

// Create validates in and appends a new pending goal to the list for its type
func (s *Service) Create(ctx context.Context, in Input) (*Goal, error) {
	if err := validation.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, validation.Summary(err))
	}

	deadline := progress.DayKey(in.Deadline)
	if deadline == "" {
		deadline = SuggestDeadline(in.Type, s.now(), s.loc)
	}

	g := Goal{
		ID:          s.newID(),
		Title:       in.Title,
		Description: in.Description,
		Type:        in.Type,
		Target:      in.Target,
		Current:     0,
		Deadline:    deadline,
		Status:      StatusPending,
		Category:    in.Category,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	gs := s.load(ctx)
	if g.Type == TypeWeekly {
		gs.Weekly = append(gs.Weekly, g)
	} else {
		gs.Monthly = append(gs.Monthly, g)
	}
	if err := s.save(ctx, gs); err != nil {
		return nil, err
	}

	slog.Info("goal created", "goal_id", g.ID, "type", g.Type, "target", g.Target)
	return &g, nil
}

// UpdateProgress adds delta to the goal's current value, never going below
// zero, and re-derives its status.
func (s *Service) UpdateProgress(ctx context.Context, id string, delta int) (*Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	gs := s.load(ctx)
	list, i := gs.find(id)
	if list == nil {
		return nil, ErrNotFound
	}

	g := &(*list)[i]
	prev := g.Status
	g.Current = max(0, g.Current+delta)
	g.Status = DeriveStatus(g.Current, g.Target)

	if err := s.save(ctx, gs); err != nil {
		return nil, err
	}

	if g.Status == StatusCompleted && prev != StatusCompleted {
		metrics.GoalsCompleted.WithLabelValues(string(g.Type)).Inc()
		slog.Info("goal completed", "goal_id", g.ID, "title", g.Title)
	}
	out := *g
	return &out, nil
}

// Delete removes the goal with id from whichever list holds it
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	gs := s.load(ctx)
	list, i := gs.find(id)
	if list == nil {
		return ErrNotFound
	}
	*list = append((*list)[:i], (*list)[i+1:]...)
	return s.save(ctx, gs)
}

// Rings returns the weekly and monthly progress rings
func (s *Service) Rings(ctx context.Context) Rings {
	gs := s.List(ctx)
	return Rings{Weekly: Ring(gs.Weekly), Monthly: Ring(gs.Monthly)}
}

// Seed writes the starter goals when no goals have been stored yet. It
// reports whether anything was written.
func (s *Service) Seed(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.slots.Get(ctx, StorageKey); err == nil {
		return false, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return false, fmt.Errorf("read goals: %w", err)
	}

	gs := Defaults(s.now(), s.loc)
	if err := s.save(ctx, &gs); err != nil {
		return false, err
	}
	return true, nil
}
