package domain

// StatKey addresses one UserStats field for criterion evaluation.
type StatKey string

const (
	StatVictories          StatKey = "victories"
	StatHighlights         StatKey = "highlights"
	StatFriends            StatKey = "friends"
	StatAchievements       StatKey = "achievements"
	StatSnapsSent          StatKey = "snaps_sent"
	StatStoriesCreated     StatKey = "stories_created"
	StatMessagesExchanged  StatKey = "messages_exchanged"
	StatSessionsCompleted  StatKey = "sessions_completed"
	StatTotalAppOpenings   StatKey = "total_app_openings"
	StatGamingSessions     StatKey = "gaming_sessions"
	StatMidnightActivities StatKey = "midnight_activities"
	StatStatusUpdates      StatKey = "status_updates"
	StatConsecutiveDays    StatKey = "consecutive_days"
	StatStreakDays         StatKey = "streak_days"
	StatLongestStreak      StatKey = "longest_streak"
)

// UserStats is the cumulative per-user activity record. All counters are
// monotonic non-decreasing except ConsecutiveDays/StreakDays, which reset to
// one when a streak breaks; LongestStreak never decreases.
type UserStats struct {
	Victories          int
	Highlights         int
	Friends            int
	Achievements       int
	SnapsSent          int
	StoriesCreated     int
	MessagesExchanged  int
	SessionsCompleted  int
	TotalAppOpenings   int
	GamingSessions     int
	MidnightActivities int
	StatusUpdates      int

	LastActiveDate  Date
	ConsecutiveDays int
	StreakDays      int
	LongestStreak   int
}

// Value returns the stat addressed by key, reporting false for unknown keys.
func (s UserStats) Value(key StatKey) (int, bool) {
	switch key {
	case StatVictories:
		return s.Victories, true
	case StatHighlights:
		return s.Highlights, true
	case StatFriends:
		return s.Friends, true
	case StatAchievements:
		return s.Achievements, true
	case StatSnapsSent:
		return s.SnapsSent, true
	case StatStoriesCreated:
		return s.StoriesCreated, true
	case StatMessagesExchanged:
		return s.MessagesExchanged, true
	case StatSessionsCompleted:
		return s.SessionsCompleted, true
	case StatTotalAppOpenings:
		return s.TotalAppOpenings, true
	case StatGamingSessions:
		return s.GamingSessions, true
	case StatMidnightActivities:
		return s.MidnightActivities, true
	case StatStatusUpdates:
		return s.StatusUpdates, true
	case StatConsecutiveDays:
		return s.ConsecutiveDays, true
	case StatStreakDays:
		return s.StreakDays, true
	case StatLongestStreak:
		return s.LongestStreak, true
	default:
		return 0, false
	}
}

// KnownStatKey reports whether key addresses a UserStats field.
func KnownStatKey(key StatKey) bool {
	_, ok := UserStats{}.Value(key)
	return ok
}
