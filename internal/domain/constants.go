package domain

import "time"

// Default configuration values
const (
	DefaultRequestTTL         = 24 * time.Hour
	DefaultTimezone           = "Europe/Paris"
	DefaultMinNoticeMinutes   = 60
	DefaultSweepBatchSize     = 100
	DefaultDurationMinutes    = 60
	DefaultCurrency           = "eur"
	DefaultAlternativesNumber = 3
	DefaultReminderLead       = 24 * time.Hour
)

// Business validation constants
const (
	MinDurationMinutes       = 15
	MaxDurationMinutes       = 720 // 12 hours
	MaxNotesLength           = 500
	MaxReasonLength          = 500
	MaxContractorMessageSize = 1000
	MaxUnavailabilityDays    = 366
)

// Scoring constants
const (
	BaseScore            = 100
	ExperiencePerBooking = 2
	MaxExperienceBonus   = 50
	SpecialtyBonus       = 20
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// System reasons written on automatic transitions
const (
	ReasonExpired    = "request expired without response"
	ReasonSuperseded = "superseded: booking accepted by another contractor"
	ReasonRefused    = "all contractors refused"
)
