package catalog

import "github.com/glimmerhq/progression/internal/progression/domain"

// statThreshold builds a single-key counter criterion.
func statThreshold(key domain.StatKey, threshold int) Criterion {
	return Criterion{
		Kind:       CriterionStatThreshold,
		Thresholds: []Threshold{{Key: key, Threshold: threshold}},
	}
}

// streak builds a single-key streak criterion.
func streak(key domain.StatKey, threshold int) Criterion {
	return Criterion{
		Kind:       CriterionStreak,
		Thresholds: []Threshold{{Key: key, Threshold: threshold}},
	}
}

// builtinDefinitions is the shipped achievement table. Order is the host
// display order.
var builtinDefinitions = []Definition{
	// Messaging
	{
		ID:          "first_message",
		Title:       "Breaking the Ice",
		Description: "Send your first message.",
		Rarity:      RarityCommon,
		Tier:        1,
		Points:      10,
		Category:    CategoryMessaging,
		Criterion:   statThreshold(domain.StatMessagesExchanged, 1),
	},
	{
		ID:          "chatterbox",
		Title:       "Chatterbox",
		Description: "Exchange 100 messages.",
		Rarity:      RarityUncommon,
		Tier:        2,
		Points:      25,
		Category:    CategoryMessaging,
		Criterion:   statThreshold(domain.StatMessagesExchanged, 100),
	},
	{
		ID:          "conversation_legend",
		Title:       "Conversation Legend",
		Description: "Exchange 1,000 messages.",
		Rarity:      RarityRare,
		Tier:        3,
		Points:      75,
		Category:    CategoryMessaging,
		Criterion:   statThreshold(domain.StatMessagesExchanged, 1000),
	},

	// Capture
	{
		ID:          "first_snap",
		Title:       "Say Cheese",
		Description: "Capture your first snap.",
		Rarity:      RarityCommon,
		Tier:        1,
		Points:      10,
		Category:    CategoryCapture,
		Criterion:   statThreshold(domain.StatSnapsSent, 1),
	},
	{
		ID:          "shutterbug",
		Title:       "Shutterbug",
		Description: "Capture 50 snaps.",
		Rarity:      RarityUncommon,
		Tier:        2,
		Points:      25,
		Category:    CategoryCapture,
		Criterion:   statThreshold(domain.StatSnapsSent, 50),
	},
	{
		ID:          "highlight_reel",
		Title:       "Highlight Reel",
		Description: "Record 25 video highlights.",
		Rarity:      RarityRare,
		Tier:        3,
		Points:      50,
		Category:    CategoryCapture,
		Criterion:   statThreshold(domain.StatHighlights, 25),
	},
	{
		ID:          "storyteller",
		Title:       "Storyteller",
		Description: "Publish 10 stories.",
		Rarity:      RarityUncommon,
		Tier:        2,
		Points:      30,
		Category:    CategoryCapture,
		Criterion:   statThreshold(domain.StatStoriesCreated, 10),
	},

	// Social
	{
		ID:          "first_friend",
		Title:       "Plus One",
		Description: "Add your first friend.",
		Rarity:      RarityCommon,
		Tier:        1,
		Points:      10,
		Category:    CategorySocial,
		Criterion:   statThreshold(domain.StatFriends, 1),
	},
	{
		ID:          "social_circle",
		Title:       "Social Circle",
		Description: "Grow your circle to 10 friends.",
		Rarity:      RarityUncommon,
		Tier:        2,
		Points:      25,
		Category:    CategorySocial,
		Criterion:   statThreshold(domain.StatFriends, 10),
	},
	{
		ID:          "socialite",
		Title:       "Socialite",
		Description: "Grow your circle to 50 friends.",
		Rarity:      RarityEpic,
		Tier:        3,
		Points:      100,
		Category:    CategorySocial,
		Criterion:   statThreshold(domain.StatFriends, 50),
		Reward:      &Reward{Kind: "badge", Value: "gold_circle"},
	},
	{
		ID:          "status_curator",
		Title:       "Status Curator",
		Description: "Post 25 status updates.",
		Rarity:      RarityUncommon,
		Tier:        2,
		Points:      20,
		Category:    CategorySocial,
		Criterion:   statThreshold(domain.StatStatusUpdates, 25),
	},

	// Gaming
	{
		ID:          "first_victory",
		Title:       "First Victory",
		Description: "Win your first game.",
		Rarity:      RarityCommon,
		Tier:        1,
		Points:      15,
		Category:    CategoryGaming,
		Criterion:   statThreshold(domain.StatVictories, 1),
	},
	{
		ID:          "game_on",
		Title:       "Game On",
		Description: "Play 10 game sessions.",
		Rarity:      RarityUncommon,
		Tier:        2,
		Points:      25,
		Category:    CategoryGaming,
		Criterion:   statThreshold(domain.StatGamingSessions, 10),
	},
	{
		ID:          "champion",
		Title:       "Champion",
		Description: "Win 25 games.",
		Rarity:      RarityEpic,
		Tier:        3,
		Points:      100,
		Category:    CategoryGaming,
		Criterion:   statThreshold(domain.StatVictories, 25),
		Reward:      &Reward{Kind: "badge", Value: "champion_crest"},
	},

	// Streaks
	{
		ID:          "daily_habit",
		Title:       "Daily Habit",
		Description: "Open the app three days in a row.",
		Rarity:      RarityCommon,
		Tier:        1,
		Points:      15,
		Category:    CategoryStreak,
		Criterion:   streak(domain.StatConsecutiveDays, 3),
	},
	{
		ID:          "week_streak",
		Title:       "Seven Strong",
		Description: "Keep a seven-day streak alive.",
		Rarity:      RarityUncommon,
		Tier:        2,
		Points:      40,
		Category:    CategoryStreak,
		Criterion:   streak(domain.StatStreakDays, 7),
	},
	{
		ID:          "monthly_flame",
		Title:       "Monthly Flame",
		Description: "Reach a 30-day longest streak.",
		Rarity:      RarityLegendary,
		Tier:        4,
		Points:      200,
		Category:    CategoryStreak,
		Criterion:   streak(domain.StatLongestStreak, 30),
		Reward:      &Reward{Kind: "badge", Value: "eternal_flame"},
	},

	// App usage
	{
		ID:          "regular",
		Title:       "Regular",
		Description: "Open the app 100 times.",
		Rarity:      RarityCommon,
		Tier:        2,
		Points:      20,
		Category:    CategorySpecial,
		Criterion:   statThreshold(domain.StatTotalAppOpenings, 100),
	},
	{
		ID:          "midnight_snacker",
		Title:       "Midnight Snacker",
		Description: "Be active after midnight 10 times.",
		Rarity:      RarityRare,
		Tier:        2,
		Points:      40,
		Category:    CategorySpecial,
		Criterion:   statThreshold(domain.StatMidnightActivities, 10),
	},
	{
		ID:          "devoted_grinder",
		Title:       "Devoted Grinder",
		Description: "Open the app 30 times and exchange 100 messages.",
		Rarity:      RarityRare,
		Tier:        3,
		Points:      60,
		Category:    CategorySpecial,
		Criterion: Criterion{
			Kind: CriterionStatThreshold,
			Thresholds: []Threshold{
				{Key: domain.StatTotalAppOpenings, Threshold: 30},
				{Key: domain.StatMessagesExchanged, Threshold: 100},
			},
		},
	},
	{
		ID:          "collector",
		Title:       "Collector",
		Description: "Unlock 10 achievements.",
		Rarity:      RarityEpic,
		Tier:        3,
		Points:      80,
		Category:    CategorySpecial,
		Criterion:   statThreshold(domain.StatAchievements, 10),
	},

	// Special conditions
	{
		ID:          "night_owl",
		Title:       "Night Owl",
		Description: "Make the late-night hours your own.",
		Rarity:      RarityRare,
		Tier:        2,
		Points:      50,
		Category:    CategorySpecial,
		Criterion: Criterion{
			Kind:      CriterionSpecial,
			Condition: ConditionNightOwl,
			Params:    map[string]string{ParamMinActivities: "5", ParamMinOpenings: "20"},
		},
	},
	{
		ID:          "veteran",
		Title:       "Veteran",
		Description: "Keep your account for a full year.",
		Rarity:      RarityEpic,
		Tier:        3,
		Points:      100,
		Category:    CategorySpecial,
		Criterion: Criterion{
			Kind:      CriterionSpecial,
			Condition: ConditionAccountAgeDays,
			Params:    map[string]string{ParamMinDays: "365"},
		},
		Reward: &Reward{Kind: "badge", Value: "veteran_ribbon"},
	},
}

// Builtin returns the shipped catalog. The table is validated by tests, so a
// construction failure here is a programmer error.
func Builtin() *Catalog {
	cat, err := New(builtinDefinitions)
	if err != nil {
		panic("builtin catalog invalid: " + err.Error())
	}
	return cat
}
