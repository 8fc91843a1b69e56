package todo

import "time"

// DateOnlyKey returns the Unix time of midnight of t's calendar day in loc.
// Keys compare in day order and ignore time of day.
func DateOnlyKey(t time.Time, loc *time.Location) int64 {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc).Unix()
}

// IsOverdue reports whether the task's due day is strictly before now's day.
// Completed tasks and tasks without a usable due date are never overdue. Days
// are taken in now's location, and a date-only due date names a day there.
func IsOverdue(t Task, now time.Time) bool {
	if t.Completed {
		return false
	}
	loc := now.Location()
	due, ok := t.DueIn(loc)
	if !ok {
		return false
	}
	return DateOnlyKey(due, loc) < DateOnlyKey(now, loc)
}

// Summary counts tasks by state.
type Summary struct {
	Total     int
	Open      int
	Completed int
	Overdue   int
}

// Summarize counts the tasks as of now.
func Summarize(tasks []Task, now time.Time) Summary {
	var s Summary
	for _, t := range tasks {
		s.Total++
		if t.Completed {
			s.Completed++
			continue
		}
		s.Open++
		if IsOverdue(t, now) {
			s.Overdue++
		}
	}
	return s
}
