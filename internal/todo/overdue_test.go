package todo

import (
	"testing"
	"time"
)

func TestIsOverdue(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		task Task
		want bool
	}{
		{
			name: "due yesterday",
			task: Task{DueDate: "2025-06-14"},
			want: true,
		},
		{
			name: "due yesterday but completed",
			task: Task{DueDate: "2025-06-14", Completed: true},
			want: false,
		},
		{
			name: "due today",
			task: Task{DueDate: "2025-06-15"},
			want: false,
		},
		{
			name: "due today later",
			task: Task{DueDate: "2025-06-15T23:59:59.000Z"},
			want: false,
		},
		{
			name: "due today earlier",
			task: Task{DueDate: "2025-06-15T00:00:01.000Z"},
			want: false,
		},
		{
			name: "due tomorrow",
			task: Task{DueDate: "2025-06-16"},
			want: false,
		},
		{
			name: "due last year",
			task: Task{DueDate: "2024-12-31T12:00:00.000Z"},
			want: true,
		},
		{
			name: "no due date",
			task: Task{},
			want: false,
		},
		{
			name: "unparseable due date",
			task: Task{DueDate: "soon"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsOverdue(tt.task, now); got != tt.want {
				t.Errorf("IsOverdue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsOverdueUsesLocalDay(t *testing.T) {
	newYork := time.FixedZone("EDT", -4*60*60)
	// 01:00 on June 15 in New York.
	now := time.Date(2025, 6, 15, 1, 0, 0, 0, newYork)

	// 03:00 UTC on June 15 is 23:00 on June 14 in New York.
	task := Task{DueDate: "2025-06-15T03:00:00.000Z"}
	if !IsOverdue(task, now) {
		t.Error("expected task due late on the previous local day to be overdue")
	}

	// 05:00 UTC on June 15 is 01:00 on June 15 in New York.
	task = Task{DueDate: "2025-06-15T05:00:00.000Z"}
	if IsOverdue(task, now) {
		t.Error("expected task due on the same local day not to be overdue")
	}
}

func TestIsOverdueDateOnlyWestOfUTC(t *testing.T) {
	newYork := time.FixedZone("EDT", -4*60*60)
	evening := time.Date(2025, 6, 15, 18, 0, 0, 0, newYork)
	lateNight := time.Date(2025, 6, 15, 23, 30, 0, 0, newYork)

	tests := []struct {
		name string
		due  string
		now  time.Time
		want bool
	}{
		{"date only today", "2025-06-15", evening, false},
		{"date only today late", "2025-06-15", lateNight, false},
		{"date only yesterday", "2025-06-14", evening, true},
		{"date only tomorrow", "2025-06-16", evening, false},
		{"zoneless today", "2025-06-15T09:00", evening, false},
		{"zoneless today with seconds", "2025-06-15T23:59:59", lateNight, false},
		{"zoneless yesterday", "2025-06-14T23:00", evening, true},
		{"stored local midnight", "2025-06-15T04:00:00.000Z", evening, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsOverdue(Task{DueDate: tt.due}, tt.now); got != tt.want {
				t.Errorf("IsOverdue(%q, %v) = %v, want %v", tt.due, tt.now, got, tt.want)
			}
		})
	}
}

func TestIsOverdueDateOnlyEastOfUTC(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	// 01:00 on June 16 in Tokyo is still June 15 in UTC.
	now := time.Date(2025, 6, 16, 1, 0, 0, 0, tokyo)

	if !IsOverdue(Task{DueDate: "2025-06-15"}, now) {
		t.Error("expected a date-only due date of the previous local day to be overdue")
	}
	if IsOverdue(Task{DueDate: "2025-06-16"}, now) {
		t.Error("expected a date-only due date of the current local day not to be overdue")
	}
}

func TestDateOnlyKey(t *testing.T) {
	loc := time.UTC
	morning := time.Date(2025, 6, 15, 0, 0, 1, 0, loc)
	evening := time.Date(2025, 6, 15, 23, 59, 59, 0, loc)
	nextDay := time.Date(2025, 6, 16, 0, 0, 0, 0, loc)

	if DateOnlyKey(morning, loc) != DateOnlyKey(evening, loc) {
		t.Error("expected same key for the same calendar day")
	}
	if DateOnlyKey(evening, loc) >= DateOnlyKey(nextDay, loc) {
		t.Error("expected earlier day to have a smaller key")
	}
	want := time.Date(2025, 6, 15, 0, 0, 0, 0, loc).Unix()
	if got := DateOnlyKey(evening, loc); got != want {
		t.Errorf("DateOnlyKey() = %d, want %d", got, want)
	}
}

func TestDateOnlyKeyNilLocation(t *testing.T) {
	ts := time.Date(2025, 6, 15, 12, 0, 0, 0, time.Local)
	if DateOnlyKey(ts, nil) != DateOnlyKey(ts, time.Local) {
		t.Error("expected nil location to mean time.Local")
	}
}

func TestSummarize(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	tasks := []Task{
		{ID: "1", DueDate: "2025-06-14"},
		{ID: "2", DueDate: "2025-06-14", Completed: true},
		{ID: "3", DueDate: "2025-06-20"},
		{ID: "4"},
	}

	got := Summarize(tasks, now)
	want := Summary{Total: 4, Open: 3, Completed: 1, Overdue: 1}
	if got != want {
		t.Errorf("Summarize() = %+v, want %+v", got, want)
	}
}
