package schedule_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/atlas/planning-engine/schedule"
)

func TestLoadMap_RemainingFlooredAtZero(t *testing.T) {
	load := schedule.NewLoadMap()
	load.Add(monday.Key(), hours(10))

	// Already past capacity: spare reads zero, never negative.
	remaining := load.Remaining(monday.Key(), schedule.DefaultDailyCapacity)
	assert.True(t, remaining.IsZero())
	assert.True(t, load.IsFull(monday.Key(), schedule.DefaultDailyCapacity))
}

func TestLoadMap_ExactEpsilonResidualCountsAsFull(t *testing.T) {
	load := schedule.NewLoadMap()
	load.Add(monday.Key(), hours(7.99))

	// A residual of exactly 0.01h sits on the tolerance boundary: the day
	// still reads as full (inclusive threshold).
	remaining := load.Remaining(monday.Key(), schedule.DefaultDailyCapacity)
	assert.True(t, remaining.Equal(hours(0.01)))
	assert.True(t, load.IsFull(monday.Key(), schedule.DefaultDailyCapacity))
}

func TestLoadMap_AbsentDayHasFullCapacity(t *testing.T) {
	load := schedule.NewLoadMap()

	remaining := load.Remaining(monday.Key(), schedule.DefaultDailyCapacity)
	assert.True(t, remaining.Equal(schedule.DefaultDailyCapacity))
	assert.False(t, load.IsFull(monday.Key(), schedule.DefaultDailyCapacity))
}

func TestLoadMap_OverfullDaysDetection(t *testing.T) {
	load := schedule.NewLoadMap()
	load.Add(monday.Key(), hours(8))     // exactly full, fine
	load.Add(tuesday.Key(), hours(8.01)) // within tolerance, fine
	load.Add(friday.Key(), hours(9))     // overfull

	overfull := load.OverfullDays(schedule.DefaultDailyCapacity)
	assert.Equal(t, []string{friday.Key()}, overfull)
}

func TestLoadMap_SnapshotIsACopy(t *testing.T) {
	load := schedule.NewLoadMap()
	load.Add(monday.Key(), hours(4))

	snap := load.Snapshot()
	snap[monday.Key()] = hours(99)

	assert.True(t, load.Get(monday.Key()).Equal(hours(4)), "snapshot mutation must not leak back")
}

func TestLoadMap_KeysSorted(t *testing.T) {
	load := schedule.NewLoadMap()
	load.Add(friday.Key(), hours(1))
	load.Add(monday.Key(), hours(1))
	load.Add(wednesday.Key(), hours(1))

	assert.Equal(t, []string{monday.Key(), wednesday.Key(), friday.Key()}, load.Keys())
}

func TestLoadMapFrom_CopiesInput(t *testing.T) {
	src := map[string]schedule.Hours{monday.Key(): hours(3)}
	load := schedule.LoadMapFrom(src)
	src[monday.Key()] = hours(7)

	assert.True(t, load.Get(monday.Key()).Equal(hours(3)))
}
