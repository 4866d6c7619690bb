package screening

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dentacamp/portal/core"
)

func Test_NewChart(t *testing.T) {
	permanent := NewChart(DentitionPermanent)
	assert.Len(t, permanent, 32)
	assert.Equal(t, StateHealthy, permanent[11])
	assert.Equal(t, StateHealthy, permanent[48])
	_, hasPrimary := permanent[51]
	assert.False(t, hasPrimary)

	primary := NewChart(DentitionPrimary)
	assert.Len(t, primary, 20)
	assert.Equal(t, StateHealthy, primary[85])

	mixed := NewChart(DentitionMixed)
	assert.Len(t, mixed, 52)
}

func Test_Chart_Toggle(t *testing.T) {
	chart := NewChart(DentitionPermanent)

	// the full cycle returns to healthy after exactly five toggles
	want := []ToothState{StateDecayed, StateFilled, StateSealed, StateMissing, StateHealthy}
	for _, state := range want {
		assert.NoError(t, chart.Toggle(11))
		assert.Equal(t, state, chart[11])
	}

	// other toggles back to healthy
	assert.NoError(t, chart.Set(21, StateOther))
	assert.NoError(t, chart.Toggle(21))
	assert.Equal(t, StateHealthy, chart[21])

	assert.Error(t, chart.Toggle(99), "tooth outside the FDI alphabet")
	assert.Error(t, chart.Toggle(51), "primary tooth absent from a permanent chart")
}

func Test_Chart_Set(t *testing.T) {
	chart := NewChart(DentitionPrimary)
	assert.NoError(t, chart.Set(55, StateDecayed))
	assert.Equal(t, StateDecayed, chart[55])
	assert.Error(t, chart.Set(55, ToothState("sparkly")))
	assert.Error(t, chart.Set(11, StateDecayed))
}

func Test_Chart_Summary(t *testing.T) {
	chart := NewChart(DentitionPermanent)
	_ = chart.Set(11, StateDecayed)
	_ = chart.Set(12, StateDecayed)
	_ = chart.Set(36, StateFilled)

	sum := chart.Summary()
	assert.Equal(t, 2, sum[StateDecayed])
	assert.Equal(t, 1, sum[StateFilled])
	assert.Equal(t, 29, sum[StateHealthy])

	var total int
	for _, n := range sum {
		total += n
	}
	assert.Equal(t, len(chart), total)
}

func Test_Chart_Validate(t *testing.T) {
	chart := NewChart(DentitionMixed)
	assert.NoError(t, chart.Validate())

	chart[99] = StateHealthy
	chart[11] = ToothState("sparkly")
	err := chart.Validate()
	assert.Error(t, err)

	vErr, ok := err.(*core.ValidationError)
	assert.True(t, ok)
	assert.Len(t, vErr.Fields, 2)
}
