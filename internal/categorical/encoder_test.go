package categorical

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitUsesSortedOrder(t *testing.T) {
	enc := Fit(FeatureCrowd, []string{"Medium", "High", "Low", "High", "Medium"})

	assert.Equal(t, []string{"High", "Low", "Medium"}, enc.Classes())
	assert.Equal(t, 3, enc.Len())

	tests := []struct {
		label string
		code  int
	}{
		{"High", 0},
		{"Low", 1},
		{"Medium", 2},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			code, err := enc.Encode(tt.label)
			require.NoError(t, err)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestFitIsIndependentOfInputOrder(t *testing.T) {
	a := Fit(FeatureTraffic, []string{"Low", "High", "Medium"})
	b := Fit(FeatureTraffic, []string{"Medium", "Medium", "Low", "High"})

	assert.Equal(t, a.Classes(), b.Classes())
	for _, label := range a.Classes() {
		ca, err := a.Encode(label)
		require.NoError(t, err)
		cb, err := b.Encode(label)
		require.NoError(t, err)
		assert.Equal(t, ca, cb, label)
	}
}

func TestEncodeIsStable(t *testing.T) {
	enc := Fit(FeatureUserExperience, []string{"Good", "Average", "Poor"})

	for _, label := range enc.Classes() {
		first, err := enc.Encode(label)
		require.NoError(t, err)
		for i := 0; i < 5; i++ {
			again, err := enc.Encode(label)
			require.NoError(t, err)
			assert.Equal(t, first, again)
		}
	}
}

func TestEncodeUnknownLabel(t *testing.T) {
	enc := Fit(FeatureCrowd, []string{"Low", "High"})

	_, err := enc.Encode("Extreme")
	require.Error(t, err)

	var unknown *UnknownCategoryError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, FeatureCrowd, unknown.Feature)
	assert.Equal(t, "Extreme", unknown.Label)
	assert.Equal(t, `unknown crowd category "Extreme"`, err.Error())

	_, err = enc.Encode("low")
	assert.Error(t, err, "labels are case sensitive")
}

func TestClassesReturnsCopy(t *testing.T) {
	enc := Fit(FeatureCrowd, []string{"Low", "High"})
	classes := enc.Classes()
	classes[0] = "mutated"

	assert.Equal(t, []string{"High", "Low"}, enc.Classes())
}

func TestFromClasses(t *testing.T) {
	t.Run("round trips fitted classes", func(t *testing.T) {
		fitted := Fit(FeatureTraffic, []string{"Low", "High", "Medium"})
		rebuilt, err := FromClasses(FeatureTraffic, fitted.Classes())
		require.NoError(t, err)

		for _, label := range fitted.Classes() {
			want, _ := fitted.Encode(label)
			got, err := rebuilt.Encode(label)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
	})

	t.Run("rejects unsorted classes", func(t *testing.T) {
		_, err := FromClasses(FeatureTraffic, []string{"Low", "High"})
		assert.Error(t, err)
	})

	t.Run("rejects duplicates", func(t *testing.T) {
		_, err := FromClasses(FeatureTraffic, []string{"High", "High"})
		assert.Error(t, err)
	})

	t.Run("rejects empty", func(t *testing.T) {
		_, err := FromClasses(FeatureTraffic, nil)
		assert.Error(t, err)
	})
}

func TestSetEncode(t *testing.T) {
	set := FitSet(
		[]string{"Low", "Medium", "High"},
		[]string{"Low", "High"},
		[]string{"Good", "Poor"},
	)

	codes, err := set.Encode("Medium", "Low", "Poor")
	require.NoError(t, err)
	assert.Equal(t, Codes{Crowd: 2, Traffic: 1, UserExperience: 1}, codes)

	_, err = set.Encode("Medium", "Jammed", "Poor")
	var unknown *UnknownCategoryError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, FeatureTraffic, unknown.Feature)

	var empty *Set
	_, err = empty.Encode("Low", "Low", "Good")
	assert.Error(t, err)
}

func TestNewSet(t *testing.T) {
	set, err := NewSet([]string{"High", "Low"}, []string{"Low"}, []string{"Good"})
	require.NoError(t, err)

	codes, err := set.Encode("Low", "Low", "Good")
	require.NoError(t, err)
	assert.Equal(t, Codes{Crowd: 1}, codes)

	_, err = NewSet([]string{"High", "Low"}, []string{"Low"}, nil)
	assert.Error(t, err)
}
