package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func formatDays(days []time.Time) []string {
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, d.Format("2006-01-02"))
	}
	return out
}

func TestExpandDates_Patterns(t *testing.T) {
	tests := []struct {
		name       string
		start      time.Time
		recurrence Recurrence
		want       []string
	}{
		{
			name:       "single session",
			start:      day(2024, 1, 1),
			recurrence: Once{},
			want:       []string{"2024-01-01"},
		},
		{
			name:       "nil recurrence is a single session",
			start:      day(2024, 1, 1),
			recurrence: nil,
			want:       []string{"2024-01-01"},
		},
		{
			name:       "weekly without skips",
			start:      day(2024, 1, 1),
			recurrence: Repeating{Pattern: PatternWeekly, EndDate: day(2024, 1, 22)},
			want:       []string{"2024-01-01", "2024-01-08", "2024-01-15", "2024-01-22"},
		},
		{
			name:       "weekly skipping monday",
			start:      day(2024, 1, 1),
			recurrence: Repeating{Pattern: PatternWeekly, EndDate: day(2024, 1, 22), SkipDays: []time.Weekday{time.Monday}},
			want:       []string{},
		},
		{
			name:       "daily skipping the weekend",
			start:      day(2024, 1, 5),
			recurrence: Repeating{Pattern: PatternDaily, EndDate: day(2024, 1, 9), SkipDays: []time.Weekday{time.Saturday, time.Sunday}},
			want:       []string{"2024-01-05", "2024-01-08", "2024-01-09"},
		},
		{
			name:       "biweekly",
			start:      day(2024, 1, 1),
			recurrence: Repeating{Pattern: PatternBiweekly, EndDate: day(2024, 2, 12)},
			want:       []string{"2024-01-01", "2024-01-15", "2024-01-29", "2024-02-12"},
		},
		{
			name:       "triweekly stops before end",
			start:      day(2024, 1, 1),
			recurrence: Repeating{Pattern: PatternTriweekly, EndDate: day(2024, 2, 20)},
			want:       []string{"2024-01-01", "2024-01-22", "2024-02-12"},
		},
		{
			name:       "monthly clamps to month end",
			start:      day(2024, 1, 31),
			recurrence: Repeating{Pattern: PatternMonthly, EndDate: day(2024, 5, 31)},
			want:       []string{"2024-01-31", "2024-02-29", "2024-03-31", "2024-04-30", "2024-05-31"},
		},
		{
			name:       "bimonthly",
			start:      day(2024, 1, 15),
			recurrence: Repeating{Pattern: PatternBimonthly, EndDate: day(2024, 7, 15)},
			want:       []string{"2024-01-15", "2024-03-15", "2024-05-15", "2024-07-15"},
		},
		{
			name:       "trimonthly across leap february",
			start:      day(2023, 11, 30),
			recurrence: Repeating{Pattern: PatternTrimonthly, EndDate: day(2024, 6, 1)},
			want:       []string{"2023-11-30", "2024-02-29", "2024-05-30"},
		},
		{
			name:       "end equal to start yields the start day",
			start:      day(2024, 1, 1),
			recurrence: Repeating{Pattern: PatternWeekly, EndDate: day(2024, 1, 1)},
			want:       []string{"2024-01-01"},
		},
		{
			name:       "end equal to start on a skipped day yields nothing",
			start:      day(2024, 1, 1),
			recurrence: Repeating{Pattern: PatternWeekly, EndDate: day(2024, 1, 1), SkipDays: []time.Weekday{time.Monday}},
			want:       []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days, err := ExpandDates(SessionSpec{StartDate: tt.start, Recurrence: tt.recurrence})
			require.NoError(t, err)
			assert.Equal(t, tt.want, formatDays(days))
		})
	}
}

func TestExpandDates_SessionLimit(t *testing.T) {
	_, err := ExpandDates(SessionSpec{
		StartDate:  day(2024, 1, 1),
		Recurrence: Repeating{Pattern: PatternDaily, EndDate: day(2024, 12, 31)},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTooManySessions)

	var limitErr *SessionLimitError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, MaxSessionsPerClass, limitErr.Limit)

	// 2024-01-01 .. 2024-07-18 is exactly 200 days.
	days, err := ExpandDates(SessionSpec{
		StartDate:  day(2024, 1, 1),
		Recurrence: Repeating{Pattern: PatternDaily, EndDate: day(2024, 7, 18)},
	})
	require.NoError(t, err)
	assert.Len(t, days, MaxSessionsPerClass)

	_, err = ExpandDates(SessionSpec{
		StartDate:  day(2024, 1, 1),
		Recurrence: Repeating{Pattern: PatternDaily, EndDate: day(2024, 7, 19)},
	})
	assert.ErrorIs(t, err, ErrTooManySessions)
}

func TestExpandDates_InvalidRecurrence(t *testing.T) {
	tests := []struct {
		name string
		spec SessionSpec
	}{
		{"missing start", SessionSpec{Recurrence: Once{}}},
		{"missing pattern", SessionSpec{StartDate: day(2024, 1, 1), Recurrence: Repeating{EndDate: day(2024, 2, 1)}}},
		{"unknown pattern", SessionSpec{StartDate: day(2024, 1, 1), Recurrence: Repeating{Pattern: "hourly", EndDate: day(2024, 2, 1)}}},
		{"missing end", SessionSpec{StartDate: day(2024, 1, 1), Recurrence: Repeating{Pattern: PatternWeekly}}},
		{"end before start", SessionSpec{StartDate: day(2024, 2, 1), Recurrence: Repeating{Pattern: PatternWeekly, EndDate: day(2024, 1, 1)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExpandDates(tt.spec)
			assert.ErrorIs(t, err, ErrInvalidRecurrence)
		})
	}
}

func TestRepeating_Validate(t *testing.T) {
	start := day(2024, 1, 1)

	err := Repeating{Pattern: PatternWeekly, EndDate: start}.Validate(start, time.UTC)
	assert.ErrorIs(t, err, ErrInvalidRecurrence)

	err = Repeating{EndDate: day(2024, 2, 1)}.Validate(start, time.UTC)
	assert.ErrorIs(t, err, ErrInvalidRecurrence)

	err = Repeating{Pattern: PatternWeekly}.Validate(start, time.UTC)
	assert.ErrorIs(t, err, ErrInvalidRecurrence)

	assert.NoError(t, Repeating{Pattern: PatternWeekly, EndDate: day(2024, 1, 2)}.Validate(start, time.UTC))
}

func TestExpand_BuildsIntervalsInLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	sessions, err := Expand(SessionSpec{
		StartDate:  day(2024, 3, 4),
		StartTime:  Clock{Hour: 18, Minute: 30},
		Duration:   90 * time.Minute,
		Recurrence: Repeating{Pattern: PatternWeekly, EndDate: day(2024, 3, 11)},
		Location:   loc,
	})
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	// DST starts on 2024-03-10; wall clock stays 18:30.
	assert.Equal(t, "2024-03-04T18:30:00-05:00", sessions[0].Start.Format(time.RFC3339))
	assert.Equal(t, "2024-03-11T18:30:00-04:00", sessions[1].Start.Format(time.RFC3339))
	assert.Equal(t, 90*time.Minute, sessions[1].Duration())
}

func TestExpand_RequiresDuration(t *testing.T) {
	_, err := Expand(SessionSpec{StartDate: day(2024, 1, 1), StartTime: Clock{Hour: 9}})
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestParsePatternAndWeekdays(t *testing.T) {
	p, err := ParsePattern("trimonthly")
	require.NoError(t, err)
	assert.Equal(t, PatternTrimonthly, p)

	_, err = ParsePattern("yearly")
	assert.ErrorIs(t, err, ErrInvalidRecurrence)

	days, err := ParseWeekdays([]string{"Monday", " sunday "})
	require.NoError(t, err)
	assert.Equal(t, []time.Weekday{time.Monday, time.Sunday}, days)

	_, err = ParseWeekdays([]string{"funday"})
	assert.ErrorIs(t, err, ErrInvalidRecurrence)
}
