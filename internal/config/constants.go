package config

const (
	// DefaultDatabasePath is the snapshot store used by serve mode
	DefaultDatabasePath = "./session-catalog.db"

	// DefaultCredentialsPath is where the Rainfocus credentials live
	DefaultCredentialsPath = "./credentials.json"

	// DefaultEventName selects the event profile when none is configured
	DefaultEventName = "amsterdam-2024"
)
