// Package settings defines the typed user settings document and the sidebar
// sections that group its fields.
package settings

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

var (
	// ErrUnknownField is returned by Apply for a field id that does not exist.
	ErrUnknownField = errors.New("settings: unknown field")
	// ErrInvalidValue is returned by Apply when the value does not fit the field.
	ErrInvalidValue = errors.New("settings: invalid value")
)

// Settings is the complete settings document of one user.
type Settings struct {
	ProfileVisibility     string `json:"profileVisibility"`
	AutoShareAchievements bool   `json:"autoShareAchievements"`
	ProfileImage          string `json:"profileImage"`
	Bio                   string `json:"bio"`

	EventReminders      bool     `json:"eventReminders"`
	AutoEnrollRecurring bool     `json:"autoEnrollRecurring"`
	PreferredEventTypes []string `json:"preferredEventTypes"`
	DifficultyLevel     string   `json:"difficultyLevel"`

	PublicAchievements bool   `json:"publicAchievements"`
	MilestoneAlerts    bool   `json:"milestoneAlerts"`
	CustomBadgeStyle   string `json:"customBadgeStyle"`
	GoalNotifications  bool   `json:"goalNotifications"`

	DefaultPaymentMethod string `json:"defaultPaymentMethod"`
	SubscriptionTier     string `json:"subscriptionTier"`
	AutoRenew            bool   `json:"autoRenew"`
	ReceiveReceipts      bool   `json:"receiveReceipts"`

	SyncFitbit      bool `json:"syncFitbit"`
	SyncAppleHealth bool `json:"syncAppleHealth"`
	SyncGarmin      bool `json:"syncGarmin"`
	SyncStrava      bool `json:"syncStrava"`

	TwoFactorAuth    bool   `json:"twoFactorAuth"`
	LoginAlerts      bool   `json:"loginAlerts"`
	DataSharing      string `json:"dataSharing"`
	LocationTracking bool   `json:"locationTracking"`

	EventCreationAccess      bool   `json:"eventCreationAccess"`
	AnalyticsDetail          string `json:"analyticsDetail"`
	ParticipantLimit         string `json:"participantLimit"`
	AutoApproveRegistrations bool   `json:"autoApproveRegistrations"`

	ShowOnLeaderboard   bool   `json:"showOnLeaderboard"`
	AllowFriendRequests bool   `json:"allowFriendRequests"`
	TeamInvites         string `json:"teamInvites"`
	ActivityFeed        string `json:"activityFeed"`

	EmailUpdates          bool   `json:"emailUpdates"`
	SupportLanguage       string `json:"supportLanguage"`
	FeedbackParticipation bool   `json:"feedbackParticipation"`
}

// Defaults returns the settings a new user starts with.
func Defaults() Settings {
	return Settings{
		ProfileVisibility:     "public",
		AutoShareAchievements: true,

		EventReminders:      true,
		PreferredEventTypes: []string{"running", "weightlifting"},
		DifficultyLevel:     "intermediate",

		PublicAchievements: true,
		MilestoneAlerts:    true,
		CustomBadgeStyle:   "minimal",
		GoalNotifications:  true,

		DefaultPaymentMethod: "card",
		SubscriptionTier:     "pro",
		AutoRenew:            true,
		ReceiveReceipts:      true,

		SyncAppleHealth: true,
		SyncStrava:      true,

		LoginAlerts: true,
		DataSharing: "minimal",

		EventCreationAccess: true,
		AnalyticsDetail:     "advanced",
		ParticipantLimit:    "1000",

		ShowOnLeaderboard:   true,
		AllowFriendRequests: true,
		TeamInvites:         "friends",
		ActivityFeed:        "public",

		EmailUpdates:          true,
		SupportLanguage:       "English",
		FeedbackParticipation: true,
	}
}

// Kind is the input control used for a field.
type Kind string

const (
	KindToggle      Kind = "toggle"
	KindSelect      Kind = "select"
	KindMultiSelect Kind = "multiselect"
	KindInput       Kind = "input"
)

// Field describes one editable setting.
type Field struct {
	ID          string
	Label       string
	Kind        Kind
	Options     []string
	Placeholder string

	boolRef    func(*Settings) *bool
	stringRef  func(*Settings) *string
	stringsRef func(*Settings) *[]string
}

// Section groups related fields in the settings sidebar.
type Section struct {
	ID          string
	Title       string
	Description string
	Fields      []Field
}

func toggle(id, label string, ref func(*Settings) *bool) Field {
	return Field{ID: id, Label: label, Kind: KindToggle, boolRef: ref}
}

func choice(id, label string, options []string, ref func(*Settings) *string) Field {
	return Field{ID: id, Label: label, Kind: KindSelect, Options: options, stringRef: ref}
}

func input(id, label, placeholder string, ref func(*Settings) *string) Field {
	return Field{ID: id, Label: label, Kind: KindInput, Placeholder: placeholder, stringRef: ref}
}

var sections = []Section{
	{
		ID:          "profile",
		Title:       "Profile & Account",
		Description: "Manage your personal information and account preferences",
		Fields: []Field{
			choice("profileVisibility", "Profile Visibility", []string{"public", "friends", "private"}, func(s *Settings) *string { return &s.ProfileVisibility }),
			toggle("autoShareAchievements", "Auto-share Achievements", func(s *Settings) *bool { return &s.AutoShareAchievements }),
			input("profileImage", "Profile Image URL", "https://example.com/image.jpg", func(s *Settings) *string { return &s.ProfileImage }),
			input("bio", "Bio", "Tell us about yourself", func(s *Settings) *string { return &s.Bio }),
		},
	},
	{
		ID:          "competition",
		Title:       "Competition Preferences",
		Description: "Customize your competition and event preferences",
		Fields: []Field{
			toggle("eventReminders", "Event Reminders", func(s *Settings) *bool { return &s.EventReminders }),
			toggle("autoEnrollRecurring", "Auto-enroll in Recurring Events", func(s *Settings) *bool { return &s.AutoEnrollRecurring }),
			{
				ID:         "preferredEventTypes",
				Label:      "Preferred Event Types",
				Kind:       KindMultiSelect,
				Options:    []string{"running", "weightlifting", "crossfit", "yoga", "swimming"},
				stringsRef: func(s *Settings) *[]string { return &s.PreferredEventTypes },
			},
			choice("difficultyLevel", "Preferred Difficulty", []string{"beginner", "intermediate", "advanced", "elite"}, func(s *Settings) *string { return &s.DifficultyLevel }),
		},
	},
	{
		ID:          "achievements",
		Title:       "Achievements & Rewards",
		Description: "Manage your achievements and reward preferences",
		Fields: []Field{
			toggle("publicAchievements", "Public Achievements", func(s *Settings) *bool { return &s.PublicAchievements }),
			toggle("milestoneAlerts", "Milestone Alerts", func(s *Settings) *bool { return &s.MilestoneAlerts }),
			choice("customBadgeStyle", "Badge Style", []string{"minimal", "classic", "animated", "premium"}, func(s *Settings) *string { return &s.CustomBadgeStyle }),
			toggle("goalNotifications", "Goal Notifications", func(s *Settings) *bool { return &s.GoalNotifications }),
		},
	},
	{
		ID:          "payments",
		Title:       "Payments & Subscriptions",
		Description: "Manage your payment methods and subscriptions",
		Fields: []Field{
			choice("defaultPaymentMethod", "Default Payment Method", []string{"card", "paypal", "apple-pay", "google-pay"}, func(s *Settings) *string { return &s.DefaultPaymentMethod }),
			choice("subscriptionTier", "Subscription Tier", []string{"basic", "pro", "elite"}, func(s *Settings) *string { return &s.SubscriptionTier }),
			toggle("autoRenew", "Auto-renew Subscription", func(s *Settings) *bool { return &s.AutoRenew }),
			toggle("receiveReceipts", "Receive Receipts", func(s *Settings) *bool { return &s.ReceiveReceipts }),
		},
	},
	{
		ID:          "devices",
		Title:       "Device & App Integration",
		Description: "Connect your fitness devices and apps",
		Fields: []Field{
			toggle("syncFitbit", "Sync with Fitbit", func(s *Settings) *bool { return &s.SyncFitbit }),
			toggle("syncAppleHealth", "Sync with Apple Health", func(s *Settings) *bool { return &s.SyncAppleHealth }),
			toggle("syncGarmin", "Sync with Garmin", func(s *Settings) *bool { return &s.SyncGarmin }),
			toggle("syncStrava", "Sync with Strava", func(s *Settings) *bool { return &s.SyncStrava }),
		},
	},
	{
		ID:          "security",
		Title:       "Security & Privacy",
		Description: "Manage your security and privacy settings",
		Fields: []Field{
			toggle("twoFactorAuth", "Two-factor Authentication", func(s *Settings) *bool { return &s.TwoFactorAuth }),
			toggle("loginAlerts", "Login Alerts", func(s *Settings) *bool { return &s.LoginAlerts }),
			choice("dataSharing", "Data Sharing", []string{"minimal", "standard", "full"}, func(s *Settings) *string { return &s.DataSharing }),
			toggle("locationTracking", "Location Tracking", func(s *Settings) *bool { return &s.LocationTracking }),
		},
	},
	{
		ID:          "organizer",
		Title:       "Event Organizer Tools",
		Description: "Configure event organization settings",
		Fields: []Field{
			toggle("eventCreationAccess", "Event Creation Access", func(s *Settings) *bool { return &s.EventCreationAccess }),
			choice("analyticsDetail", "Analytics Detail Level", []string{"basic", "advanced", "professional"}, func(s *Settings) *string { return &s.AnalyticsDetail }),
			input("participantLimit", "Default Participant Limit", "", func(s *Settings) *string { return &s.ParticipantLimit }),
			toggle("autoApproveRegistrations", "Auto-approve Registrations", func(s *Settings) *bool { return &s.AutoApproveRegistrations }),
		},
	},
	{
		ID:          "community",
		Title:       "Community & Social",
		Description: "Manage your community and social preferences",
		Fields: []Field{
			toggle("showOnLeaderboard", "Show on Leaderboard", func(s *Settings) *bool { return &s.ShowOnLeaderboard }),
			toggle("allowFriendRequests", "Allow Friend Requests", func(s *Settings) *bool { return &s.AllowFriendRequests }),
			choice("teamInvites", "Team Invites", []string{"all", "friends", "none"}, func(s *Settings) *string { return &s.TeamInvites }),
			choice("activityFeed", "Activity Feed Privacy", []string{"public", "friends", "private"}, func(s *Settings) *string { return &s.ActivityFeed }),
		},
	},
	{
		ID:          "support",
		Title:       "Help & Support",
		Description: "Access help resources and support options",
		Fields: []Field{
			toggle("emailUpdates", "Email Updates", func(s *Settings) *bool { return &s.EmailUpdates }),
			choice("supportLanguage", "Support Language", []string{"English", "Spanish", "French", "German", "Japanese"}, func(s *Settings) *string { return &s.SupportLanguage }),
			toggle("feedbackParticipation", "Participate in Feedback", func(s *Settings) *bool { return &s.FeedbackParticipation }),
		},
	},
}

// Sections returns the sidebar sections in display order.
func Sections() []Section {
	out := make([]Section, len(sections))
	for i, section := range sections {
		out[i] = section
		out[i].Fields = slices.Clone(section.Fields)
	}
	return out
}

func lookup(id string) (Field, bool) {
	for _, section := range sections {
		for _, field := range section.Fields {
			if field.ID == id {
				return field, true
			}
		}
	}
	return Field{}, false
}

// Value renders the current value of a field as text.
func (s Settings) Value(id string) (string, error) {
	field, ok := lookup(id)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownField, id)
	}
	switch field.Kind {
	case KindToggle:
		return strconv.FormatBool(*field.boolRef(&s)), nil
	case KindMultiSelect:
		return strings.Join(*field.stringsRef(&s), ","), nil
	default:
		return *field.stringRef(&s), nil
	}
}

// Apply sets one field from its text form. Toggles accept strconv.ParseBool
// input, selects must name one of the options and multi-selects take a
// comma-separated list of options.
func (s *Settings) Apply(id, value string) error {
	field, ok := lookup(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, id)
	}

	switch field.Kind {
	case KindToggle:
		parsed, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: %s expects true or false", ErrInvalidValue, id)
		}
		*field.boolRef(s) = parsed
	case KindSelect:
		value = strings.TrimSpace(value)
		if !slices.Contains(field.Options, value) {
			return fmt.Errorf("%w: %s must be one of %s", ErrInvalidValue, id, strings.Join(field.Options, ", "))
		}
		*field.stringRef(s) = value
	case KindMultiSelect:
		selected := []string{}
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if !slices.Contains(field.Options, part) {
				return fmt.Errorf("%w: %s does not offer %q", ErrInvalidValue, id, part)
			}
			if !slices.Contains(selected, part) {
				selected = append(selected, part)
			}
		}
		*field.stringsRef(s) = selected
	default:
		*field.stringRef(s) = value
	}
	return nil
}
