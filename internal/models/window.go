package models

// WindowKind identifies one aggregation granularity.
type WindowKind string

const (
	WindowTick   WindowKind = "tick"
	Window1Day   WindowKind = "1_day"
	Window3Days  WindowKind = "3_days"
	Window7Days  WindowKind = "7_days"
	Window14Days WindowKind = "14_days"
	Window30Days WindowKind = "30_days"
)

// WindowSpec is the configuration for one window kind. The daily family is
// tiered: each window's [DayStart, DayEnd] range (day 1 = yesterday) is
// merged cumulatively on top of the previous windows' days, so 30_days ends
// up covering days 1–30 without re-reading any snapshot.
type WindowSpec struct {
	Kind          WindowKind
	Table         string
	DayStart      int
	DayEnd        int
	Cap           int
	MinShared     int
	RetentionDays int
}

// TickWindow is the live ~30-minute window.
var TickWindow = WindowSpec{
	Kind:          WindowTick,
	Table:         "overlap_tick",
	Cap:           100,
	MinShared:     5,
	RetentionDays: 30,
}

// DailyWindows lists the rolling windows in ascending order. Order matters:
// the merger accumulates day ranges across this slice.
var DailyWindows = []WindowSpec{
	{Kind: Window1Day, Table: "overlap_daily", DayStart: 1, DayEnd: 1, Cap: 100, MinShared: 5, RetentionDays: 14},
	{Kind: Window3Days, Table: "overlap_rolling_3_days", DayStart: 2, DayEnd: 3, Cap: 200, MinShared: 5, RetentionDays: 14},
	{Kind: Window7Days, Table: "overlap_rolling_7_days", DayStart: 4, DayEnd: 7, Cap: 300, MinShared: 5, RetentionDays: 14},
	{Kind: Window14Days, Table: "overlap_rolling_14_days", DayStart: 8, DayEnd: 14, Cap: 300, MinShared: 5, RetentionDays: 14},
	{Kind: Window30Days, Table: "overlap_rolling_30_days", DayStart: 15, DayEnd: 30, Cap: 300, MinShared: 5, RetentionDays: 14},
}

// SnapshotRetentionDays is the horizon beyond which per-day snapshots are
// unreachable by every configured window, plus a small safety margin.
func SnapshotRetentionDays() int {
	maxDay := 0
	for _, w := range DailyWindows {
		if w.DayEnd > maxDay {
			maxDay = w.DayEnd
		}
	}
	return maxDay + 2
}
