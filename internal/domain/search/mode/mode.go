package mode

// Mode is the full-text matching strategy.
type Mode string

// Match mode constants.
const (
	// Any matches documents containing at least one query term.
	Any Mode = "any"
	// All requires every query term.
	All Mode = "all"
	// Phrase requires the terms in order.
	Phrase Mode = "phrase"
	// Prefix treats the last term as a prefix.
	Prefix Mode = "prefix"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Any || m == All || m == Phrase || m == Prefix
}

// MultiMatchType returns the multi_match type for the mode.
func (m Mode) MultiMatchType() string {
	switch m {
	case Phrase:
		return "phrase"
	case Prefix:
		return "phrase_prefix"
	default:
		return "best_fields"
	}
}

// Operator returns the boolean operator between terms.
func (m Mode) Operator() string {
	if m == All {
		return "and"
	}
	return "or"
}
