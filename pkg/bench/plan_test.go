package bench

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_planValidate(t *testing.T) {
	assert.Error(t, StitchPlan{}.Validate(4))
	assert.Error(t, StitchPlan{{0}, {}}.Validate(4))
	assert.Error(t, StitchPlan{{0, 4}}.Validate(4))
	assert.Error(t, StitchPlan{{-1}}.Validate(4))
	assert.NoError(t, StitchPlan{{0, 1}, {2}, {3}}.Validate(4))
	// repeats are not rejected
	assert.NoError(t, StitchPlan{{0}, {0}}.Validate(4))
}

func Test_planString(t *testing.T) {
	plan := StitchPlan{{0, 1}, {2}, {3}}
	assert.Equal(t, "[0,1] [2] [3]", plan.String())
	assert.Equal(t, 4, plan.ColumnCount())
	assert.Equal(t, []int{0, 1, 2, 3}, plan.FlattenColumns())
}

func Test_planCopyIsDeep(t *testing.T) {
	plan := StitchPlan{{0, 1}, {2}}
	cp := plan.Copy()
	cp[0][0] = 9
	assert.Equal(t, 0, plan[0][0])
}

func Test_planExplain(t *testing.T) {
	text := StitchPlan{{0, 1}, {2}}.Explain("plan00")
	assert.Contains(t, text, "Plan plan00:")
	assert.Contains(t, text, "Round 0 (stitch width 2):")
	assert.Contains(t, text, "Round 1 (stitch width 1):")
	assert.Contains(t, text, "column 2")
}

func Test_defaultPlans(t *testing.T) {
	plans := DefaultPlans()
	require.Equal(t, 8, len(plans))
	for _, plan := range plans {
		require.NoError(t, plan.Validate(4))
	}
}
