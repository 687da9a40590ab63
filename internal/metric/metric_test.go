package metric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitArenaAPI/internal/apperr"
)

func floatPtr(f float64) *float64 { return &f }

func TestResolveUnknownKind(t *testing.T) {
	_, err := Resolve(Kind("calories"))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrUnrecognizedMetric)
}

func TestResolveAllKinds(t *testing.T) {
	for _, kind := range []Kind{KindFrequency, KindTrainingVolume, KindTotalWeight, KindEnduranceTime, KindDistanceGoal} {
		h, err := Resolve(kind)
		require.NoError(t, err, "kind %s", kind)
		assert.Equal(t, kind, h.Kind())
	}
}

func TestFrequencyVolumeIsAlwaysOne(t *testing.T) {
	h, err := Resolve(KindFrequency)
	require.NoError(t, err)

	volume, err := h.ComputeVolume(&Submission{})
	require.NoError(t, err)
	assert.Equal(t, float64(1), volume)
}

func TestTrainingVolumeSumsRepsTimesWeight(t *testing.T) {
	h, err := Resolve(KindTrainingVolume)
	require.NoError(t, err)

	volume, err := h.ComputeVolume(&Submission{
		Sets: []ExerciseSet{
			{Reps: 10, Weight: 20},
			{Reps: 5, Weight: 10},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, float64(250), volume)
}

func TestTrainingVolumeRejectsEmptySets(t *testing.T) {
	h, err := Resolve(KindTrainingVolume)
	require.NoError(t, err)

	_, err = h.ComputeVolume(&Submission{})
	assert.ErrorIs(t, err, apperr.ErrMissingExerciseSets)

	_, err = h.ComputeVolume(&Submission{Sets: []ExerciseSet{}})
	assert.ErrorIs(t, err, apperr.ErrMissingExerciseSets)
}

func TestScalarMetrics(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		sub     *Submission
		want    float64
		wantErr error
	}{
		{"total weight verbatim", KindTotalWeight, &Submission{TotalWeight: floatPtr(82.5)}, 82.5, nil},
		{"total weight missing", KindTotalWeight, &Submission{}, 0, apperr.ErrMissingTotalWeight},
		{"endurance verbatim", KindEnduranceTime, &Submission{EnduranceMinute: floatPtr(12.5)}, 12.5, nil},
		{"endurance missing", KindEnduranceTime, &Submission{}, 0, apperr.ErrMissingEnduranceTime},
		{"distance verbatim", KindDistanceGoal, &Submission{Distance: floatPtr(5)}, 5, nil},
		{"distance missing", KindDistanceGoal, &Submission{}, 0, apperr.ErrMissingDistanceData},
		// Negative and zero values pass through untouched.
		{"negative accepted", KindTotalWeight, &Submission{TotalWeight: floatPtr(-3)}, -3, nil},
		{"zero accepted", KindDistanceGoal, &Submission{Distance: floatPtr(0)}, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := Resolve(tt.kind)
			require.NoError(t, err)

			volume, err := h.ComputeVolume(tt.sub)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, volume)
		})
	}
}

func TestDailyCapped(t *testing.T) {
	assert.True(t, KindFrequency.DailyCapped())
	assert.False(t, KindTrainingVolume.DailyCapped())
	assert.False(t, KindTotalWeight.DailyCapped())
	assert.False(t, KindEnduranceTime.DailyCapped())
	assert.False(t, KindDistanceGoal.DailyCapped())
}

func TestAllowsCriterion(t *testing.T) {
	assert.True(t, KindEnduranceTime.AllowsCriterion(CriterionMinTotal))
	assert.False(t, KindFrequency.AllowsCriterion(CriterionMinTotal))
	assert.False(t, KindDistanceGoal.AllowsCriterion(CriterionMinTotal))
	assert.True(t, KindDistanceGoal.AllowsCriterion(CriterionMaxTotal))
	assert.False(t, KindTotalWeight.AllowsCriterion(Criterion("avg_total")))
}

func TestRequiresGoal(t *testing.T) {
	assert.True(t, KindDistanceGoal.RequiresGoal())
	assert.False(t, KindFrequency.RequiresGoal())
}
