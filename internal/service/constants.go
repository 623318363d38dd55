package service

const (
	// Submission kinds, used as metric labels and log fields
	KindCheckIn  = "checkin"
	KindCheckOut = "checkout"
	KindImport   = "import"

	// Submission outcomes
	OutcomeCreated = "created"
	OutcomeMerged  = "merged"
	OutcomeInvalid = "invalid"
	OutcomeFailed  = "failed"

	// Check-in score range
	MinScore = 1
	MaxScore = 5

	// Check-out ranges
	MinRPE            = 1
	MaxRPE            = 10
	MaxSessionMinutes = 24 * 60

	// Pain above this level requires the affected body parts
	PainNeedsBodyPartsAbove = 1

	// Tactical periodization is reported within two weeks of a match
	MaxMatchdayOffset = 14

	// Athlete report history
	RecentRecordsLimit = 14
)
