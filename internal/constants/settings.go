package constants

const (
	// Settings keys
	SettingWorkSchedule = "work_schedule"

	// Default Settings Values
	DefaultWeekdayStart = "09:00"
	DefaultWeekdayEnd   = "17:00"
	DefaultWeekendStart = "10:00"
	DefaultWeekendEnd   = "14:00"
	DefaultTimezone     = "Local" // Use system local timezone by default
)
