package metric

import (
	"fmt"

	"fitArenaAPI/internal/apperr"
)

// Kind is the closed set of metrics a challenge can track. Metric dispatch
// happens through Resolve, never through free-text comparison in services.
type Kind string

const (
	KindFrequency      Kind = "frequency"
	KindTrainingVolume Kind = "training_volume"
	KindTotalWeight    Kind = "total_weight"
	KindEnduranceTime  Kind = "endurance_time"
	KindDistanceGoal   Kind = "distance_goal"
)

// Criterion selects the winner from per-participant aggregates.
type Criterion string

const (
	CriterionMaxTotal Criterion = "max_total"
	CriterionMinTotal Criterion = "min_total"
)

// ExerciseSet is one (reps, weight) pair of a training-volume submission.
type ExerciseSet struct {
	Reps   int     `json:"reps"`
	Weight float64 `json:"weight"`
}

// Submission carries the raw fields of one workout registration. Which fields
// are required depends on the challenge's metric kind.
type Submission struct {
	Sets            []ExerciseSet `json:"sets,omitempty"`
	TotalWeight     *float64      `json:"total_weight,omitempty"`
	EnduranceMinute *float64      `json:"endurance_minutes,omitempty"`
	Distance        *float64      `json:"distance,omitempty"`
	MuscleGroup     string        `json:"muscle_group,omitempty"`
	Location        string        `json:"location,omitempty"`
}

// Handler is the per-kind policy applied at registration time and again at
// finalization time.
type Handler interface {
	Kind() Kind
	// ComputeVolume validates the submission's raw fields and derives the
	// single numeric volume persisted with the log.
	ComputeVolume(sub *Submission) (float64, error)
	// Describe renders the workout announcement posted to the challenge chat.
	Describe(sub *Submission, volume float64) string
}

var handlers = map[Kind]Handler{
	KindFrequency:      frequencyHandler{},
	KindTrainingVolume: trainingVolumeHandler{},
	KindTotalWeight:    totalWeightHandler{},
	KindEnduranceTime:  enduranceTimeHandler{},
	KindDistanceGoal:   distanceGoalHandler{},
}

// Resolve returns the handler for a challenge's declared metric kind.
func Resolve(kind Kind) (Handler, error) {
	h, ok := handlers[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperr.ErrUnrecognizedMetric, kind)
	}
	return h, nil
}

// Valid reports whether kind is one of the five recognized metrics.
func (k Kind) Valid() bool {
	_, ok := handlers[k]
	return ok
}

// DailyCapped reports whether the metric allows at most one submission per
// (user, challenge, calendar day). Only check-in style challenges are capped;
// quantity-tracked challenges accept unlimited same-day submissions.
func (k Kind) DailyCapped() bool {
	return k == KindFrequency
}

// AllowsCriterion reports whether the winning criterion is usable with this
// metric. Lowest-total-wins only makes sense for endurance-style metrics.
func (k Kind) AllowsCriterion(c Criterion) bool {
	switch c {
	case CriterionMaxTotal:
		return true
	case CriterionMinTotal:
		return k == KindEnduranceTime
	default:
		return false
	}
}

// RequiresGoal reports whether the challenge must declare a numeric goal.
func (k Kind) RequiresGoal() bool {
	return k == KindDistanceGoal
}

type frequencyHandler struct{}

func (frequencyHandler) Kind() Kind { return KindFrequency }

func (frequencyHandler) ComputeVolume(sub *Submission) (float64, error) {
	// A check-in always counts as exactly one workout. The one-per-day rule
	// is enforced by the store's unique daily key, not here.
	return 1, nil
}

func (frequencyHandler) Describe(sub *Submission, volume float64) string {
	if sub.MuscleGroup != "" {
		return fmt.Sprintf("Checked in a %s workout", sub.MuscleGroup)
	}
	return "Checked in today's workout"
}

type trainingVolumeHandler struct{}

func (trainingVolumeHandler) Kind() Kind { return KindTrainingVolume }

func (trainingVolumeHandler) ComputeVolume(sub *Submission) (float64, error) {
	if len(sub.Sets) == 0 {
		return 0, apperr.ErrMissingExerciseSets
	}
	var volume float64
	for _, set := range sub.Sets {
		volume += float64(set.Reps) * set.Weight
	}
	return volume, nil
}

func (trainingVolumeHandler) Describe(sub *Submission, volume float64) string {
	group := sub.MuscleGroup
	if group == "" {
		group = "exercise"
	}
	return fmt.Sprintf("Registered a %s workout with a total volume of %g", group, volume)
}

type totalWeightHandler struct{}

func (totalWeightHandler) Kind() Kind { return KindTotalWeight }

func (totalWeightHandler) ComputeVolume(sub *Submission) (float64, error) {
	if sub.TotalWeight == nil {
		return 0, apperr.ErrMissingTotalWeight
	}
	return *sub.TotalWeight, nil
}

func (totalWeightHandler) Describe(sub *Submission, volume float64) string {
	return fmt.Sprintf("Lifted a total of %g kg", volume)
}

type enduranceTimeHandler struct{}

func (enduranceTimeHandler) Kind() Kind { return KindEnduranceTime }

func (enduranceTimeHandler) ComputeVolume(sub *Submission) (float64, error) {
	if sub.EnduranceMinute == nil {
		return 0, apperr.ErrMissingEnduranceTime
	}
	return *sub.EnduranceMinute, nil
}

func (enduranceTimeHandler) Describe(sub *Submission, volume float64) string {
	return fmt.Sprintf("Logged %g minutes of endurance training", volume)
}

type distanceGoalHandler struct{}

func (distanceGoalHandler) Kind() Kind { return KindDistanceGoal }

func (distanceGoalHandler) ComputeVolume(sub *Submission) (float64, error) {
	if sub.Distance == nil {
		return 0, apperr.ErrMissingDistanceData
	}
	return *sub.Distance, nil
}

func (distanceGoalHandler) Describe(sub *Submission, volume float64) string {
	return fmt.Sprintf("Covered %g km", volume)
}
