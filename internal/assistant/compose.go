package assistant

import "fmt"

// Reply texts that do not depend on the extracted slot.
const (
	ReplyNotUnderstood = "Sorry, I couldn't understand your request."
	ReplyNeedDateTime  = "I need a date and time to check or book your meeting."
)

// Compose renders the final reply for a state. It is a pure function of
// Intent, Date, Hours, Available and Booked.
//
// An unknown intent is reported before a missing date or time, so "hello
// there" gets ReplyNotUnderstood. Only for check and book does a missing
// slot produce ReplyNeedDateTime.
func Compose(s *State) string {
	if s.Intent == IntentUnknown || s.Intent == "" {
		return ReplyNotUnderstood
	}
	if s.Date == nil || s.Hours == nil {
		return ReplyNeedDateTime
	}

	date, hours := s.Date.String(), s.Hours.String()
	switch s.Intent {
	case IntentBook:
		switch {
		case s.Booked == Yes:
			return fmt.Sprintf("Your meeting has been booked on %s at %s.", date, hours)
		case s.Booked == No, s.Available == No:
			return fmt.Sprintf("You're not free on %s from %s.", date, hours)
		default:
			return fmt.Sprintf("I couldn't book your meeting on %s from %s because your availability could not be confirmed.", date, hours)
		}
	case IntentCheck:
		switch s.Available {
		case Yes:
			return fmt.Sprintf("You're free on %s at %s.", date, hours)
		case No:
			return fmt.Sprintf("You're not free on %s from %s.", date, hours)
		default:
			return fmt.Sprintf("I couldn't check your availability on %s from %s.", date, hours)
		}
	}
	return ReplyNotUnderstood
}
