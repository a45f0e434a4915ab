package daemon

import (
	"encoding/json"
	"errors"
	"io"
	"math/rand"
	"net/http"
	"strconv"

	"github.com/felixgeelhaar/codeclip/internal/goal"
	"github.com/felixgeelhaar/codeclip/internal/heatmap"
	"github.com/felixgeelhaar/codeclip/internal/progress"
	"github.com/felixgeelhaar/codeclip/internal/validation"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 64 << 10

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// Progress handlers

func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.app.Progress.Record(r.Context()))
}

func (s *Server) handleRecordCompletion(w http.ResponseWriter, r *http.Request) {
	var c progress.Completion
	if err := decodeBody(w, r, &c); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := validation.Struct(c); err != nil {
		s.validationError(w, err)
		return
	}

	res, err := s.app.Progress.RecordCompletion(r.Context(), c)
	if err != nil {
		if errors.Is(err, progress.ErrInvalidCompletion) {
			s.jsonError(w, http.StatusBadRequest, "invalid completion", err)
			return
		}
		s.jsonError(w, http.StatusInternalServerError, "failed to record completion", err)
		return
	}

	status := http.StatusCreated
	if res.Duplicate {
		status = http.StatusOK
	}
	s.jsonResponse(w, status, res)
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.app.Progress.Overview(r.Context()))
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	statuses := s.app.Progress.Achievements(r.Context())
	unlocked := 0
	for _, st := range statuses {
		if st.Unlocked {
			unlocked++
		}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"achievements": statuses,
		"unlocked":     unlocked,
		"total":        len(statuses),
		"xp":           progress.TotalXP(s.app.Progress.Record(r.Context())),
	})
}

func (s *Server) handleSkills(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"skills": s.app.Progress.Skills(r.Context()),
	})
}

func (s *Server) handleWeekly(w http.ResponseWriter, r *http.Request) {
	days := s.app.Progress.Weekly(r.Context())
	total := 0
	for _, d := range days {
		total += d.Challenges
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"days":  days,
		"total": total,
	})
}

// handleCalendar returns the year heatmap. ?source=synthetic&seed=N serves
// the demo calendar instead of recorded activity.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	today := s.app.Progress.Today()

	var cal *heatmap.Calendar
	switch source := r.URL.Query().Get("source"); source {
	case "", "activity":
		cal = heatmap.FromActivity(s.app.Progress.Record(r.Context()).DailyActivity, today)
	case "synthetic":
		seed, err := strconv.ParseInt(r.URL.Query().Get("seed"), 10, 64)
		if err != nil {
			seed = 1
		}
		cal = heatmap.Synthesize(today, rand.New(rand.NewSource(seed)))
	default:
		s.jsonError(w, http.StatusBadRequest, "source must be activity or synthetic", nil)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"start": cal.Start,
		"end":   cal.End,
		"days":  cal.Cells(),
		"stats": cal.Stats(today),
	})
}

// Goal handlers

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals := s.app.Goals.List(r.Context())
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"weekly":  goals.Weekly,
		"monthly": goals.Monthly,
		"rings": goal.Rings{
			Weekly:  goal.Ring(goals.Weekly),
			Monthly: goal.Ring(goals.Monthly),
		},
	})
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var in goal.Input
	if err := decodeBody(w, r, &in); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := validation.Struct(in); err != nil {
		s.validationError(w, err)
		return
	}

	g, err := s.app.Goals.Create(r.Context(), in)
	if err != nil {
		s.goalError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, g)
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	g, err := s.app.Goals.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.goalError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, g)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.app.Goals.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.goalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGoalProgress(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Delta *int `json:"delta"`
	}
	// an empty body counts as one step
	if err := decodeBody(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		s.jsonError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	delta := 1
	if req.Delta != nil {
		delta = *req.Delta
	}

	g, err := s.app.Goals.UpdateProgress(r.Context(), r.PathValue("id"), delta)
	if err != nil {
		s.goalError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, g)
}

func (s *Server) goalError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, goal.ErrNotFound):
		s.jsonError(w, http.StatusNotFound, "goal not found", nil)
	case errors.Is(err, goal.ErrInvalidInput):
		s.jsonError(w, http.StatusBadRequest, "invalid goal", err)
	default:
		s.jsonError(w, http.StatusInternalServerError, "goal operation failed", err)
	}
}
