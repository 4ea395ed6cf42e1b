// Package review implements the spaced-repetition scheduling used for
// outline-section review cards.
package review

import (
	"math"
	"time"
)

// Grade is the user's recall quality for one review, 0 (blackout) to 5
// (perfect recall). Grades below 3 count as a lapse.
type Grade int

const (
	GradeBlackout  Grade = 0
	GradeWrong     Grade = 1
	GradeAlmost    Grade = 2
	GradeHard      Grade = 3
	GradeGood      Grade = 4
	GradePerfect   Grade = 5
	passingGrade         = GradeHard
	minEaseFactor        = 1.3
	initialEase          = 2.5
)

// State is the scheduling state carried by a review card.
type State struct {
	Repetitions  int
	IntervalDays int
	EaseFactor   float64
}

// NewState returns the state for a freshly created card.
func NewState() State {
	return State{Repetitions: 0, IntervalDays: 0, EaseFactor: initialEase}
}

// Scheduler applies the SM-2 interval progression.
type Scheduler struct{}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Review folds one graded review into the state and returns the next state
// plus the next due time. A lapse resets repetitions and schedules the card
// for tomorrow; the ease factor is adjusted on every review but never drops
// below the floor.
func (s *Scheduler) Review(state State, grade Grade, now time.Time) (State, time.Time) {
	if grade < GradeBlackout {
		grade = GradeBlackout
	}
	if grade > GradePerfect {
		grade = GradePerfect
	}

	q := float64(grade)
	ease := state.EaseFactor
	if ease == 0 {
		ease = initialEase
	}
	ease += 0.1 - (5-q)*(0.08+(5-q)*0.02)
	if ease < minEaseFactor {
		ease = minEaseFactor
	}

	next := State{EaseFactor: ease}
	if grade < passingGrade {
		next.Repetitions = 0
		next.IntervalDays = 1
	} else {
		next.Repetitions = state.Repetitions + 1
		switch next.Repetitions {
		case 1:
			next.IntervalDays = 1
		case 2:
			next.IntervalDays = 6
		default:
			next.IntervalDays = int(math.Round(float64(state.IntervalDays) * ease))
			if next.IntervalDays <= state.IntervalDays {
				next.IntervalDays = state.IntervalDays + 1
			}
		}
	}

	return next, now.AddDate(0, 0, next.IntervalDays)
}
