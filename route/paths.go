package route

// Patterns of the Entries in the Default table.
const (
	HomePath           = "/"
	LoginPath          = "/login"
	RegisterPath       = "/register"
	FeedPath           = "/feed"
	NetworkPath        = "/network"
	ProfilePattern     = "/profile/:username"
	MessagesPath       = "/messages"
	SettingsPath       = "/settings"
	ConnectionsPattern = "/profile/:username/connections"

	// UsernameParam names the parameter of ProfilePattern and ConnectionsPattern.
	UsernameParam = "username"
)
