package domain

import (
	"testing"
	"time"
)

// TestDateOfUsesLocationOfInstant derives the calendar day from the instant's
// own location rather than UTC.
func TestDateOfUsesLocationOfInstant(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	// 21:30 local on Jan 2 is 02:30 UTC on Jan 3.
	instant := time.Date(2024, time.January, 2, 21, 30, 0, 0, loc)

	got := DateOf(instant)
	want := Date{Year: 2024, Month: time.January, Day: 2}
	if !got.Equal(want) {
		t.Fatalf("DateOf = %s, want %s", got, want)
	}
	if !DateOf(instant.UTC()).Equal(want.Next()) {
		t.Fatalf("expected UTC view of the same instant to land on the next day")
	}
}

// TestDateNextCrossesMonthAndYearBoundaries normalizes rollovers.
func TestDateNextCrossesMonthAndYearBoundaries(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024-01-31", "2024-02-01"},
		{"2024-02-28", "2024-02-29"},
		{"2023-02-28", "2023-03-01"},
		{"2024-12-31", "2025-01-01"},
	}
	for _, tc := range tests {
		in, err := ParseDate(tc.in)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.in, err)
		}
		if got := in.Next().String(); got != tc.want {
			t.Fatalf("%s.Next() = %s, want %s", tc.in, got, tc.want)
		}
	}
}

// TestDateTextRoundTrip covers the storage encoding, including the zero date.
func TestDateTextRoundTrip(t *testing.T) {
	d, err := ParseDate("2024-07-15")
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	text, err := d.MarshalText()
	if err != nil {
		t.Fatalf("marshal date: %v", err)
	}
	var back Date
	if err := back.UnmarshalText(text); err != nil {
		t.Fatalf("unmarshal date: %v", err)
	}
	if !back.Equal(d) {
		t.Fatalf("round trip = %s, want %s", back, d)
	}

	var zero Date
	if err := zero.UnmarshalText(nil); err != nil {
		t.Fatalf("unmarshal empty: %v", err)
	}
	if !zero.IsZero() {
		t.Fatalf("empty text should decode to the zero date, got %s", zero)
	}

	if _, err := ParseDate("not-a-date"); err == nil {
		t.Fatalf("expected error for malformed date")
	}
}

// TestIsMidnightHour bounds the late-night window at 06:00 exclusive.
func TestIsMidnightHour(t *testing.T) {
	base := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	for hour := 0; hour < 24; hour++ {
		at := base.Add(time.Duration(hour) * time.Hour)
		want := hour < 6
		if got := IsMidnightHour(at); got != want {
			t.Fatalf("IsMidnightHour(hour=%d) = %v, want %v", hour, got, want)
		}
	}
}

// TestStatsValueKnownKeys resolves every addressable stat key.
func TestStatsValueKnownKeys(t *testing.T) {
	stats := UserStats{
		Victories:          1,
		Highlights:         2,
		Friends:            3,
		Achievements:       4,
		SnapsSent:          5,
		StoriesCreated:     6,
		MessagesExchanged:  7,
		SessionsCompleted:  8,
		TotalAppOpenings:   9,
		GamingSessions:     10,
		MidnightActivities: 11,
		StatusUpdates:      12,
		ConsecutiveDays:    13,
		StreakDays:         14,
		LongestStreak:      15,
	}
	keys := []struct {
		key  StatKey
		want int
	}{
		{StatVictories, 1}, {StatHighlights, 2}, {StatFriends, 3},
		{StatAchievements, 4}, {StatSnapsSent, 5}, {StatStoriesCreated, 6},
		{StatMessagesExchanged, 7}, {StatSessionsCompleted, 8},
		{StatTotalAppOpenings, 9}, {StatGamingSessions, 10},
		{StatMidnightActivities, 11}, {StatStatusUpdates, 12},
		{StatConsecutiveDays, 13}, {StatStreakDays, 14}, {StatLongestStreak, 15},
	}
	for _, tc := range keys {
		got, ok := stats.Value(tc.key)
		if !ok {
			t.Fatalf("Value(%s) not found", tc.key)
		}
		if got != tc.want {
			t.Fatalf("Value(%s) = %d, want %d", tc.key, got, tc.want)
		}
	}

	if _, ok := stats.Value(StatKey("charisma")); ok {
		t.Fatalf("unknown key should not resolve")
	}
	if KnownStatKey(StatKey("charisma")) {
		t.Fatalf("KnownStatKey should reject unknown keys")
	}
}
