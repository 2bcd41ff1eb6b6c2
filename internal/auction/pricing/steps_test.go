package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stepTimes(steps []DecayStep) []int {
	out := make([]int, len(steps))
	for i, s := range steps {
		out[i] = s.TimeMinutes
	}
	return out
}

func TestGenerateDefaultSteps(t *testing.T) {
	steps := GenerateDefaultSteps(d("10"), d("0"), 100, 5)

	require.Len(t, steps, 5)
	assert.Equal(t, []int{20, 40, 60, 80, 100}, stepTimes(steps))
	for i, want := range []string{"8", "6", "4", "2", "0"} {
		requireDecimal(t, want, steps[i].Price, "step %d", i)
	}
}

func TestGenerateDefaultSteps_DefaultCount(t *testing.T) {
	steps := GenerateDefaultSteps(d("10"), d("0"), 100, 0)

	assert.Len(t, steps, DefaultStepCount)
}

func TestGenerateDefaultSteps_UnevenDivision(t *testing.T) {
	steps := GenerateDefaultSteps(d("10"), d("0"), 100, 3)

	require.Len(t, steps, 3)
	assert.Equal(t, []int{33, 67, 100}, stepTimes(steps))
	requireDecimal(t, "6.666666667", steps[0].Price)
	requireDecimal(t, "3.333333333", steps[1].Price)
	requireDecimal(t, "0", steps[2].Price)
}

func TestGenerateDefaultSteps_EndsAtFloor(t *testing.T) {
	steps := GenerateDefaultSteps(d("10"), d("4"), 60, 4)

	assert.Equal(t, []int{15, 30, 45, 60}, stepTimes(steps))
	for i, want := range []string{"8.5", "7", "5.5", "4"} {
		requireDecimal(t, want, steps[i].Price, "step %d", i)
	}
}

func TestGenerateDefaultSteps_DrivesSteppedCurve(t *testing.T) {
	a := newAuction(nil)
	a.Curve = SteppedCurve{Steps: GenerateDefaultSteps(a.StartPrice, a.FloorPrice, a.DurationMinutes, 5)}

	requireDecimal(t, "10", CurrentPrice(a, at(5.9)))
	requireDecimal(t, "9", CurrentPrice(a, at(6)))
	requireDecimal(t, "6", CurrentPrice(a, at(24)))
}
