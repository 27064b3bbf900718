package domain

import "time"

// ActivityKind identifies one category of tracked user action.
type ActivityKind string

const (
	// KindCameraCapture records a photo or video capture.
	KindCameraCapture ActivityKind = "camera_capture"
	// KindStoryCreate records a published story.
	KindStoryCreate ActivityKind = "story_create"
	// KindMessageSend records a sent chat message.
	KindMessageSend ActivityKind = "message_send"
	// KindFriendAdd records a new friend connection.
	KindFriendAdd ActivityKind = "friend_add"
	// KindGamingSession records a completed in-app game session.
	KindGamingSession ActivityKind = "gaming_session"
	// KindAppOpen records an application launch or foreground.
	KindAppOpen ActivityKind = "app_open"
	// KindMidnightActivity records activity during the late-night window.
	KindMidnightActivity ActivityKind = "midnight_activity"
	// KindStatusUpdate records a status change.
	KindStatusUpdate ActivityKind = "status_update"
	// KindAchievementUnlock records an achievement grant feedback event.
	KindAchievementUnlock ActivityKind = "achievement_unlock"
)

// Metadata keys and values recognized by the aggregation rules.
const (
	MetaMediaType     = "media_type"
	MetaResult        = "result"
	MetaAchievementID = "achievement_id"

	MediaTypeVideo = "video"
	MediaTypeImage = "image"
	ResultVictory  = "victory"
	ResultDefeat   = "defeat"
)

// midnightWindowEnd is the exclusive end hour of the late-night window.
const midnightWindowEnd = 6

// ActivityEvent is one discrete, timestamped user action. Events are
// transient: they are consumed by aggregation and never persisted standalone.
type ActivityEvent struct {
	Kind       ActivityKind
	UserID     string
	OccurredAt time.Time
	Metadata   map[string]string
}

// NewCameraCapture builds a capture event. mediaType is MediaTypeImage or
// MediaTypeVideo; only video captures count as highlights.
func NewCameraCapture(userID, mediaType string, at time.Time) ActivityEvent {
	return ActivityEvent{
		Kind:       KindCameraCapture,
		UserID:     userID,
		OccurredAt: at,
		Metadata:   map[string]string{MetaMediaType: mediaType},
	}
}

// NewStoryCreate builds a story publication event.
func NewStoryCreate(userID string, at time.Time) ActivityEvent {
	return ActivityEvent{Kind: KindStoryCreate, UserID: userID, OccurredAt: at}
}

// NewMessageSend builds a chat message event.
func NewMessageSend(userID string, at time.Time) ActivityEvent {
	return ActivityEvent{Kind: KindMessageSend, UserID: userID, OccurredAt: at}
}

// NewFriendAdd builds a friend connection event.
func NewFriendAdd(userID string, at time.Time) ActivityEvent {
	return ActivityEvent{Kind: KindFriendAdd, UserID: userID, OccurredAt: at}
}

// NewGamingSession builds a game session event. result is ResultVictory or
// ResultDefeat; only victories count toward the victory total.
func NewGamingSession(userID, result string, at time.Time) ActivityEvent {
	return ActivityEvent{
		Kind:       KindGamingSession,
		UserID:     userID,
		OccurredAt: at,
		Metadata:   map[string]string{MetaResult: result},
	}
}

// NewAppOpen builds an application open event.
func NewAppOpen(userID string, at time.Time) ActivityEvent {
	return ActivityEvent{Kind: KindAppOpen, UserID: userID, OccurredAt: at}
}

// NewMidnightActivity builds a late-night activity event. Callers gate on
// IsMidnightHour at recording time before constructing the event.
func NewMidnightActivity(userID string, at time.Time) ActivityEvent {
	return ActivityEvent{Kind: KindMidnightActivity, UserID: userID, OccurredAt: at}
}

// NewStatusUpdate builds a status change event.
func NewStatusUpdate(userID string, at time.Time) ActivityEvent {
	return ActivityEvent{Kind: KindStatusUpdate, UserID: userID, OccurredAt: at}
}

// NewAchievementUnlock builds the feedback event recorded once per grant so
// the achievements counter tracks the unlocked-set size.
func NewAchievementUnlock(userID, achievementID string, at time.Time) ActivityEvent {
	return ActivityEvent{
		Kind:       KindAchievementUnlock,
		UserID:     userID,
		OccurredAt: at,
		Metadata:   map[string]string{MetaAchievementID: achievementID},
	}
}

// IsMidnightHour reports whether the instant falls in the 00:00-06:00 local
// window. The gate is evaluated at recording time, not against the event's
// own timestamp, so deferred recording shifts the outcome with the clock.
func IsMidnightHour(t time.Time) bool {
	return t.Hour() < midnightWindowEnd
}

// Unlock is one granted achievement: the definition it references and the
// instant it was granted. Unlocks form an append-only set per user.
type Unlock struct {
	AchievementID string
	UnlockedAt    time.Time
}
