package config

// AppName is used as the postgres schema and as the prefix for queue names.
const AppName = "billed"

const (
	DefaultPort      = "8080"
	DefaultUploadDir = "uploads"
)

// SessionUserKey is the session-store key holding the logged-in user record,
// a JSON object with at least "email" and "type" fields.
const SessionUserKey = "user"
