package models

// Sheet identifies the one modal surface that may be visible at a time.
// Preferences, Suggestion, Waitlist, Proposal and HistoryDetails all compete
// for the same presentation slot.
type Sheet int

const (
	SheetNone Sheet = iota
	SheetPreferences
	SheetSuggestion
	SheetWaitlist
	SheetProposal
	SheetHistoryDetails
)

func (s Sheet) String() string {
	switch s {
	case SheetNone:
		return "none"
	case SheetPreferences:
		return "preferences"
	case SheetSuggestion:
		return "suggestion"
	case SheetWaitlist:
		return "waitlist"
	case SheetProposal:
		return "proposal"
	case SheetHistoryDetails:
		return "history_details"
	default:
		return "unknown"
	}
}
