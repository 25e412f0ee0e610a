package config

const (
	// DefaultDatabasePath is the default path for the console database
	DefaultDatabasePath = "./pawsitive-sync.db"

	// DefaultAdminAPIBaseURL is where the PawsitiveCheck API listens in local development
	DefaultAdminAPIBaseURL = "http://localhost:5000"
)
