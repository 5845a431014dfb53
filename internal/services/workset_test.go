package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, 3, 14, hour, minute, 0, 0, time.UTC)
}

func TestComputeWorkSet_PlainTick(t *testing.T) {
	now := at(12, 30)
	ws := ComputeWorkSet(now, now.Add(-30*time.Minute), true)
	assert.Equal(t, WorkSet{Tick: true}, ws)
}

func TestComputeWorkSet_HourlyFlush(t *testing.T) {
	now := at(12, 0)
	ws := ComputeWorkSet(now, now.Add(-30*time.Minute), true)
	assert.Equal(t, WorkSet{Tick: true, SnapshotFlush: true}, ws)
}

func TestComputeWorkSet_BackupSkippedWhenFresh(t *testing.T) {
	for _, minute := range []int{5, 35} {
		now := at(12, minute)
		ws := ComputeWorkSet(now, now.Add(-5*time.Minute), true)
		assert.True(t, ws.Skip, "minute %d should skip with a fresh tick", minute)
		assert.False(t, ws.Tick)
	}
}

func TestComputeWorkSet_BackupRunsWhenStale(t *testing.T) {
	now := at(12, 35)
	ws := ComputeWorkSet(now, now.Add(-25*time.Minute), true)
	assert.Equal(t, WorkSet{Tick: true, Backup: true}, ws)
}

func TestComputeWorkSet_BackupRunsOnFirstEver(t *testing.T) {
	now := at(12, 5)
	ws := ComputeWorkSet(now, time.Time{}, false)
	assert.True(t, ws.Tick)
	assert.True(t, ws.Backup)
	assert.False(t, ws.Skip)
}

func TestComputeWorkSet_StalenessBoundary(t *testing.T) {
	now := at(12, 5)

	ws := ComputeWorkSet(now, now.Add(-maxTickStaleness), true)
	assert.True(t, ws.Skip)

	ws = ComputeWorkSet(now, now.Add(-maxTickStaleness-time.Second), true)
	assert.True(t, ws.Backup)
}

func TestComputeWorkSet_DailyRollupAfterMidnight(t *testing.T) {
	now := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	ws := ComputeWorkSet(now, now.Add(-30*time.Minute), true)
	assert.Equal(t, WorkSet{Tick: true, SnapshotFlush: true, DailyRollup: true}, ws)
}

func TestComputeWorkSet_NoRollupLaterInDay(t *testing.T) {
	now := time.Date(2026, 3, 14, 1, 0, 0, 0, time.UTC)
	ws := ComputeWorkSet(now, now.Add(-30*time.Minute), true)
	assert.False(t, ws.DailyRollup)
}

func TestComputeWorkSet_BackupNeverRollsUp(t *testing.T) {
	now := time.Date(2026, 3, 14, 0, 5, 0, 0, time.UTC)
	ws := ComputeWorkSet(now, now.Add(-time.Hour), true)
	assert.True(t, ws.Backup)
	assert.False(t, ws.DailyRollup)
	assert.False(t, ws.SnapshotFlush)
}
