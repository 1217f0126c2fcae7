package constants

import "time"

const (
	AppName             = "taskflow"
	DefaultKeyringUser  = "database-connection"
	KeyringConfigValue  = "keyring"
	EnvPrefix           = "TASKFLOW_"
	EnvDBConnection     = "TASKFLOW_DB_CONNECTION"
	DefaultConfigDir    = "~/.config/taskflow"
	DefaultConfigPath   = "~/.config/taskflow/taskflow.db"
	DefaultSettingsFile = "config.yaml"
	Version             = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// TimestampFormat is a fixed-width UTC layout so stored timestamps sort lexically
	TimestampFormat = "2006-01-02T15:04:05.000000000Z"

	// Scheduling constants
	BlockHours          = 2
	SequentialOrderLast = 999
	DefaultScheduleDays = 7
	MinScheduleDays     = 1
	MaxScheduleDays     = 14
	OpenSlotLabel       = "Open slot"
	BlockInfoFormat     = "Block %d of %d"
	SlotTimeFormat      = "%02d:00 - %02d:00"

	// Input limits
	MaxNameLength     = 255
	MinEstimatedHours = 0.1
	MaxEstimatedHours = 99.99

	// Server constants
	DefaultServerAddr     = ":3001"
	DefaultUserID         = "1"
	UserIDHeader          = "X-User-ID"
	DefaultRequestTimeout = 30 * time.Second
)
