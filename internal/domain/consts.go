package domain

// ISO 8601 weekday constants and mappings
const (
	Monday    = 1
	Tuesday   = 2
	Wednesday = 3
	Thursday  = 4
	Friday    = 5
	Saturday  = 6
	Sunday    = 7
)

// WeekdayNames maps ISO 8601 weekday numbers to their English names
var WeekdayNames = map[int]string{
	Monday:    "Monday",
	Tuesday:   "Tuesday",
	Wednesday: "Wednesday",
	Thursday:  "Thursday",
	Friday:    "Friday",
	Saturday:  "Saturday",
	Sunday:    "Sunday",
}

// WeekdayNumbers maps weekday names as typed in commands to ISO numbers
var WeekdayNumbers = map[string]int{
	"mon": Monday,
	"tue": Tuesday,
	"wed": Wednesday,
	"thu": Thursday,
	"fri": Friday,
	"sat": Saturday,
	"sun": Sunday,
}

// DefaultActiveDays represents Monday through Friday in ISO format
var DefaultActiveDays = []int{Monday, Tuesday, Wednesday, Thursday, Friday}

// Delivery modes for standup prompts and reminders
const (
	DeliveryBroadcast = "broadcast-to-channel"
	DeliveryDirect    = "direct-to-each-member"
)

// Standup instance states
const (
	StatePending    = "pending"
	StateCollecting = "collecting"
	StatePosted     = "posted"
)

// Reminder escalation tiers, ordered by urgency
const (
	TierNone   = ""
	TierGentle = "gentle"
	TierUrgent = "urgent"
	TierFinal  = "final"
)

// TierRank orders tiers so escalation can be compared; higher is more urgent.
var TierRank = map[string]int{
	TierNone:   0,
	TierGentle: 1,
	TierUrgent: 2,
	TierFinal:  3,
}

// DefaultRole is the participant role name when none is configured
const DefaultRole = "member"

// Defaults applied when a team is set up without explicit configuration
const (
	DefaultTimeOfDay            = "09:00"
	DefaultTimezone             = "UTC"
	DefaultResponseTimeoutHours = 2
	DefaultReminderLeadMinutes  = 40
	MaxQuestions                = 10
	MaxQuestionLen              = 500
)

// DefaultQuestions is the classic three-question standup
var DefaultQuestions = []string{
	"What did you work on yesterday?",
	"What are you working on today?",
	"Anything blocking your progress?",
}
