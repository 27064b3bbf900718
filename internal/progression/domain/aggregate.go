package domain

// Apply folds one activity event into the stats record. The function is pure:
// unrecognized kinds pass through unchanged and no input can fail. The today
// argument is the calendar date at processing time; streak transitions key off
// it rather than the event's own timestamp.
func Apply(stats UserStats, evt ActivityEvent, today Date) UserStats {
	switch evt.Kind {
	case KindCameraCapture:
		stats.SnapsSent++
		if evt.Metadata[MetaMediaType] == MediaTypeVideo {
			stats.Highlights++
		}
	case KindStoryCreate:
		stats.StoriesCreated++
	case KindMessageSend:
		stats.MessagesExchanged++
	case KindFriendAdd:
		stats.Friends++
	case KindGamingSession:
		stats.GamingSessions++
		if evt.Metadata[MetaResult] == ResultVictory {
			stats.Victories++
		}
	case KindAppOpen:
		stats.TotalAppOpenings++
		stats = advanceStreak(stats, today)
	case KindMidnightActivity:
		stats.MidnightActivities++
	case KindStatusUpdate:
		stats.StatusUpdates++
	case KindAchievementUnlock:
		stats.Achievements++
	}
	return stats
}

// ApplyAll folds a batch of events in order. The result matches sequential
// single-event application regardless of how the batch is chunked.
func ApplyAll(stats UserStats, events []ActivityEvent, today Date) UserStats {
	for _, evt := range events {
		stats = Apply(stats, evt, today)
	}
	return stats
}

// advanceStreak applies the day-boundary streak transition. The first
// qualifying open per calendar day either extends the run (exactly one day
// after the last active date) or restarts it at one; repeat opens on the same
// day leave the streak fields untouched.
func advanceStreak(stats UserStats, today Date) UserStats {
	if today.Equal(stats.LastActiveDate) {
		return stats
	}
	if !stats.LastActiveDate.IsZero() && today.Equal(stats.LastActiveDate.Next()) {
		stats.ConsecutiveDays++
	} else {
		stats.ConsecutiveDays = 1
	}
	stats.StreakDays = stats.ConsecutiveDays
	if stats.ConsecutiveDays > stats.LongestStreak {
		stats.LongestStreak = stats.ConsecutiveDays
	}
	stats.LastActiveDate = today
	return stats
}
