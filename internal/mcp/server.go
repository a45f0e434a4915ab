package mcp

import (
	"context"
	"fmt"
	"strings"

	mcp "github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/server"

	"github.com/felixgeelhaar/codeclip/internal/goal"
	"github.com/felixgeelhaar/codeclip/internal/progress"
)

// Server exposes progress tracking to editor assistants over MCP
type Server struct {
	mcpServer *server.Server
	progress  *progress.Service
	goals     *goal.Service
}

// Config contains configuration for the MCP server
type Config struct {
	Progress *progress.Service
	Goals    *goal.Service
	Version  string
}

// NewServer creates a new MCP server for codeclip
func NewServer(cfg Config) *Server {
	s := &Server{
		progress: cfg.Progress,
		goals:    cfg.Goals,
	}

	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	s.mcpServer = server.New(server.Info{
		Name:    "codeclip",
		Version: version,
	}, server.WithInstructions(`
codeclip tracks solved coding challenges, daily streaks, achievements and goals.

Available tools:
- codeclip_complete: Record a solved challenge (title + difficulty; repeats are ignored)
- codeclip_progress: Totals, streaks, weekly activity and insights
- codeclip_achievements: Achievement catalog with unlock progress
- codeclip_goal_create: Create a weekly or monthly goal
- codeclip_goal_progress: Move a goal forward (or back with a negative delta)
`))

	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	s.mcpServer.Tool("codeclip_complete").
		Description("Record a solved coding challenge and report unlocked achievements.").
		Handler(s.handleComplete)

	s.mcpServer.Tool("codeclip_progress").
		Description("Get totals, streaks, weekly activity and insights.").
		Handler(s.handleProgress)

	s.mcpServer.Tool("codeclip_achievements").
		Description("List achievements with unlock state and progress.").
		Handler(s.handleAchievements)

	s.mcpServer.Tool("codeclip_goal_create").
		Description("Create a weekly or monthly goal.").
		Handler(s.handleGoalCreate)

	s.mcpServer.Tool("codeclip_goal_progress").
		Description("Add progress to a goal.").
		Handler(s.handleGoalProgress)
}

// Input/Output types for tools

type CompleteInput struct {
	Title      string `json:"title" jsonschema:"description=Challenge title"`
	Difficulty string `json:"difficulty" jsonschema:"description=Difficulty label such as Easy or Hard"`
	Category   string `json:"category,omitempty" jsonschema:"description=Skill area,enum=arrays,enum=strings,enum=algorithms,enum=data-structures,enum=frontend,enum=backend,enum=fullstack"`
	Minutes    int    `json:"minutes,omitempty" jsonschema:"description=Minutes spent on the challenge"`
}

type CompleteOutput struct {
	ChallengeID string   `json:"challenge_id"`
	Recorded    bool     `json:"recorded"`
	Saved       bool     `json:"saved"`
	Total       int      `json:"total_challenges"`
	Streak      int      `json:"current_streak"`
	Unlocked    []string `json:"unlocked,omitempty"`
	Message     string   `json:"message"`
}

type ProgressInput struct{}

type ProgressOutput struct {
	*progress.Overview
	Weekly []progress.DayCount `json:"weekly"`
}

type AchievementsInput struct {
	UnlockedOnly bool `json:"unlocked_only,omitempty" jsonschema:"description=Only list unlocked achievements"`
}

type AchievementsOutput struct {
	Achievements []progress.AchievementStatus `json:"achievements"`
	XP           int                          `json:"xp"`
}

type GoalCreateInput struct {
	Title       string `json:"title" jsonschema:"description=Goal title"`
	Description string `json:"description,omitempty" jsonschema:"description=What the goal is about"`
	Type        string `json:"type" jsonschema:"description=Goal horizon,enum=weekly,enum=monthly"`
	Target      int    `json:"target" jsonschema:"description=Number of steps to complete the goal"`
	Deadline    string `json:"deadline,omitempty" jsonschema:"description=Deadline as YYYY-MM-DD; suggested when omitted"`
	Category    string `json:"category,omitempty" jsonschema:"description=Free-form category"`
}

type GoalProgressInput struct {
	GoalID string `json:"goal_id" jsonschema:"description=Goal ID from codeclip_goal_create"`
	Delta  int    `json:"delta,omitempty" jsonschema:"description=Steps to add; defaults to 1"`
}

type GoalOutput struct {
	*goal.Goal
	Percent int  `json:"percent"`
	Overdue bool `json:"overdue"`
}

// Handler implementations

func (s *Server) handleComplete(ctx context.Context, input CompleteInput) (CompleteOutput, error) {
	res, err := s.progress.RecordCompletion(ctx, progress.Completion{
		Title:      strings.TrimSpace(input.Title),
		Difficulty: strings.TrimSpace(input.Difficulty),
		Category:   progress.Category(input.Category),
		Minutes:    input.Minutes,
	})
	if err != nil {
		return CompleteOutput{}, fmt.Errorf("failed to record completion: %w", err)
	}

	out := CompleteOutput{
		ChallengeID: res.ChallengeID,
		Recorded:    res.Recorded,
		Saved:       res.Saved,
		Total:       res.Record.TotalChallenges,
		Streak:      res.Record.StreakData.Current,
	}
	for _, a := range res.Unlocked {
		out.Unlocked = append(out.Unlocked, a.Icon+" "+a.Name)
	}

	switch {
	case res.Duplicate:
		out.Message = "Already recorded, nothing changed"
	case len(out.Unlocked) > 0:
		out.Message = "Recorded! Unlocked: " + strings.Join(out.Unlocked, ", ")
	default:
		out.Message = fmt.Sprintf("Recorded! %d solved, %d-day streak", out.Total, out.Streak)
	}
	if !res.Saved {
		out.Message += " (warning: progress could not be saved)"
	}
	return out, nil
}

func (s *Server) handleProgress(ctx context.Context, _ ProgressInput) (ProgressOutput, error) {
	return ProgressOutput{
		Overview: s.progress.Overview(ctx),
		Weekly:   s.progress.Weekly(ctx),
	}, nil
}

func (s *Server) handleAchievements(ctx context.Context, input AchievementsInput) (AchievementsOutput, error) {
	statuses := s.progress.Achievements(ctx)
	if input.UnlockedOnly {
		kept := statuses[:0]
		for _, st := range statuses {
			if st.Unlocked {
				kept = append(kept, st)
			}
		}
		statuses = kept
	}
	return AchievementsOutput{
		Achievements: statuses,
		XP:           progress.TotalXP(s.progress.Record(ctx)),
	}, nil
}

func (s *Server) handleGoalCreate(ctx context.Context, input GoalCreateInput) (GoalOutput, error) {
	g, err := s.goals.Create(ctx, goal.Input{
		Title:       input.Title,
		Description: input.Description,
		Type:        goal.Type(input.Type),
		Target:      input.Target,
		Deadline:    input.Deadline,
		Category:    input.Category,
	})
	if err != nil {
		return GoalOutput{}, fmt.Errorf("failed to create goal: %w", err)
	}
	return s.goalOutput(g), nil
}

func (s *Server) handleGoalProgress(ctx context.Context, input GoalProgressInput) (GoalOutput, error) {
	delta := input.Delta
	if delta == 0 {
		delta = 1
	}
	g, err := s.goals.UpdateProgress(ctx, input.GoalID, delta)
	if err != nil {
		return GoalOutput{}, fmt.Errorf("failed to update goal: %w", err)
	}
	return s.goalOutput(g), nil
}

func (s *Server) goalOutput(g *goal.Goal) GoalOutput {
	return GoalOutput{Goal: g, Percent: g.Percent(), Overdue: g.Overdue(s.progress.Today())}
}

// ServeStdio starts the MCP server on stdio
func (s *Server) ServeStdio(ctx context.Context) error {
	return mcp.ServeStdio(ctx, s.mcpServer)
}

// ServeHTTP starts the MCP server over HTTP on addr
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	return mcp.ServeHTTP(ctx, s.mcpServer, addr)
}

// GetMCPServer returns the underlying MCP server (for testing)
func (s *Server) GetMCPServer() *server.Server {
	return s.mcpServer
}
