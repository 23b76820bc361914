package gamification

import (
	"time"

	"github.com/google/uuid"

	"codeQuestAPI/internal/badge"
	"codeQuestAPI/internal/progress"
)

// UpdateStreak applies one day of qualifying activity to the aggregate and
// returns the new streak count.
//
//	same day as last activity  -> unchanged (idempotent)
//	exactly the next day       -> streak + 1
//	gap of more than one day,
//	or first activity ever     -> reset to 1
//
// today must not precede the stored last-active day; if it does the
// aggregate is left untouched and ErrInvalidTemporalOrder is returned.
func UpdateStreak(p *progress.UserProgress, today time.Time) (int, error) {
	day := DayOf(today)

	if p.LastActiveDay == nil {
		p.Streak = 1
		p.LastActiveDay = &day
		return p.Streak, nil
	}

	diffDays := DaysBetween(*p.LastActiveDay, day)
	switch {
	case diffDays < 0:
		return p.Streak, ErrInvalidTemporalOrder
	case diffDays == 0:
		// Already credited today.
	case diffDays == 1:
		p.Streak++
		p.LastActiveDay = &day
	default:
		p.Streak = 1
		p.LastActiveDay = &day
	}

	return p.Streak, nil
}

// MilestoneBadge returns the unearned streak badge whose threshold the new
// streak just hit, if any. It only nominates the candidate; awarding (and
// its at-most-once guarantee) stays with the badge evaluation path.
func MilestoneBadge(catalog []*badge.Badge, earned map[uuid.UUID]struct{}, newStreak int) *badge.Badge {
	for _, b := range catalog {
		if b.Requirement.Kind != badge.RequirementStreak || b.Requirement.Threshold != newStreak {
			continue
		}
		if _, ok := earned[b.ID]; ok {
			continue
		}
		return b
	}
	return nil
}
