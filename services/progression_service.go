package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"codeQuestAPI/internal/activity"
	"codeQuestAPI/internal/badge"
	"codeQuestAPI/internal/gamification"
	"codeQuestAPI/internal/goal"
	"codeQuestAPI/storage"
)

var (
	eventsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "progression_events_total",
		Help: "Gamification events processed, by outcome.",
	}, []string{"type", "outcome"})

	badgesAwarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "progression_badges_awarded_total",
		Help: "Badges awarded across all users.",
	})

	temporalAnomalies = promauto.NewCounter(prometheus.CounterOpts{
		Name: "progression_temporal_anomalies_total",
		Help: "Solve events whose day preceded the stored last-active day.",
	})
)

// SolveResult is what one accepted submission produced.
type SolveResult struct {
	NewStreak      int            `json:"new_streak"`
	XPAwarded      int            `json:"xp_awarded"`
	Level          int            `json:"level"`
	CompletedGoals []*goal.Goal   `json:"completed_goals,omitempty"`
	NewBadges      []*badge.Badge `json:"new_badges,omitempty"`
}

// ProgressionService owns event processing: one accepted submission in,
// streak/goal/badge updates out, committed atomically per user. The store
// is injected so tests run against the in-memory implementation.
type ProgressionService struct {
	store    storage.EventStore
	badges   *BadgeService
	notifier *NotificationService
	now      func() time.Time
}

func NewProgressionService(store storage.EventStore, badges *BadgeService) *ProgressionService {
	return &ProgressionService{
		store:  store,
		badges: badges,
		now:    time.Now,
	}
}

// SetNotifier enables post-commit push notifications. Optional.
func (s *ProgressionService) SetNotifier(n *NotificationService) {
	s.notifier = n
}

// SetClock overrides the wall clock. Tests only.
func (s *ProgressionService) SetClock(now func() time.Time) {
	s.now = now
}

// ProcessEvent dispatches on the event variant. Attempted submissions are
// recorded upstream and deliberately touch nothing here.
func (s *ProgressionService) ProcessEvent(ctx context.Context, ev gamification.Event) (*SolveResult, error) {
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	switch e := ev.(type) {
	case gamification.SolvedEvent:
		return s.processSolved(ctx, e)
	case gamification.AttemptedEvent:
		eventsProcessed.WithLabelValues("attempted", "ok").Inc()
		return nil, nil
	default:
		return nil, fmt.Errorf("unhandled event type %T", ev)
	}
}

// processSolved runs the whole read-modify-write for one solve inside the
// per-user event scope: streak, counters, XP, goals, badges, feed entries.
// Any storage failure rolls all of it back; the caller may retry the event.
func (s *ProgressionService) processSolved(ctx context.Context, e gamification.SolvedEvent) (*SolveResult, error) {
	result := &SolveResult{}
	var milestone *badge.Badge

	err := s.store.WithinUserEvent(ctx, e.User, func(ctx context.Context, st storage.Store) error {
		now := s.now().UTC()

		p, err := st.LoadUserProgress(ctx, e.User)
		if err != nil {
			return err
		}
		catalog, err := s.badges.Catalog(ctx, st)
		if err != nil {
			return err
		}
		earned, err := st.LoadEarnedBadgeIDs(ctx, e.User)
		if err != nil {
			return err
		}

		prevStreak := p.Streak
		newStreak, err := gamification.UpdateStreak(p, e.Day)
		if err != nil {
			if !errors.Is(err, gamification.ErrInvalidTemporalOrder) {
				return err
			}
			// Out-of-order day: keep the streak as it was rather than
			// corrupt it, and carry on with the rest of the event.
			log.Printf("solve event for user %s dated %s precedes last active day, streak left at %d",
				e.User, e.Day.Format("2006-01-02"), p.Streak)
			temporalAnomalies.Inc()
		}
		result.NewStreak = newStreak

		if newStreak > prevStreak {
			milestone = gamification.MilestoneBadge(catalog, earned, newStreak)
		}

		p.RecordSolve(e.Difficulty, e.Tags)
		result.XPAwarded = gamification.XPForSolve(e.Difficulty)
		p.XP += result.XPAwarded
		p.Level = gamification.LevelForXP(p.XP)
		result.Level = p.Level

		goals, err := st.LoadGoals(ctx, e.User)
		if err != nil {
			return err
		}
		changed, completed := gamification.ApplySolve(goals, now)
		for _, g := range changed {
			if err := st.SaveGoal(ctx, g); err != nil {
				return err
			}
		}
		result.CompletedGoals = completed

		for _, b := range gamification.Evaluate(p, earned, catalog) {
			inserted, err := st.InsertUserBadge(ctx, e.User, b.ID, now)
			if err != nil {
				return err
			}
			if !inserted {
				// Already on record, nothing to announce.
				continue
			}
			result.NewBadges = append(result.NewBadges, b)
			if _, err := st.AppendActivity(ctx, &activity.Entry{
				UserID:  e.User,
				Type:    activity.TypeBadgeEarned,
				Content: fmt.Sprintf("earned the %s badge", b.Name),
				Metadata: map[string]any{
					"badge_id":   b.ID.String(),
					"badge_name": b.Name,
				},
				CreatedAt: now,
			}); err != nil {
				return err
			}
		}

		if milestone != nil {
			if _, err := st.AppendActivity(ctx, &activity.Entry{
				UserID:  e.User,
				Type:    activity.TypeStreakMilestone,
				Content: fmt.Sprintf("hit a %d-day streak", newStreak),
				Metadata: map[string]any{
					"streak": newStreak,
				},
				CreatedAt: now,
			}); err != nil {
				return err
			}
		}

		for _, g := range completed {
			if _, err := st.AppendActivity(ctx, &activity.Entry{
				UserID:  e.User,
				Type:    activity.TypeGoalCompleted,
				Content: fmt.Sprintf("completed the goal %q", g.Title),
				Metadata: map[string]any{
					"goal_id": g.ID.String(),
				},
				CreatedAt: now,
			}); err != nil {
				return err
			}
		}

		if _, err := st.AppendActivity(ctx, &activity.Entry{
			UserID:  e.User,
			Type:    activity.TypeSolvedProblem,
			Content: fmt.Sprintf("solved a %s problem", e.Difficulty),
			Metadata: map[string]any{
				"problem_id": e.ProblemID.String(),
				"difficulty": string(e.Difficulty),
			},
			CreatedAt: now,
		}); err != nil {
			return err
		}

		if !p.SolvedCountsConsistent() {
			return fmt.Errorf("solved counters diverged for user %s", e.User)
		}
		p.UpdatedAt = now
		return st.SaveUserProgress(ctx, p)
	})
	if err != nil {
		eventsProcessed.WithLabelValues("solved", "error").Inc()
		return nil, err
	}

	eventsProcessed.WithLabelValues("solved", "ok").Inc()
	badgesAwarded.Add(float64(len(result.NewBadges)))

	// Pushes go out only after the commit, so a rolled-back event never
	// notifies anyone.
	if s.notifier != nil {
		if milestone != nil {
			s.notifier.NotifyStreakMilestone(e.User, result.NewStreak)
		}
		for _, b := range result.NewBadges {
			s.notifier.NotifyBadgeEarned(e.User, b)
		}
	}
	return result, nil
}
