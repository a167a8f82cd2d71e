package canonical

// Pattern classifies the encoding layers observed while canonicalizing.
type Pattern int

const (
	// PatternNone means no codec changed the input.
	PatternNone Pattern = iota
	// PatternSingle means exactly one codec fired exactly once.
	PatternSingle
	// PatternMultipleIdentical means the same codec fired more than once.
	PatternMultipleIdentical
	// PatternMultipleMixed means two or more distinct codecs fired.
	PatternMultipleMixed
	// PatternMalformed means a codec reported an illegal sequence or the pass bound was hit.
	PatternMalformed
)

func (p Pattern) String() string {
	switch p {
	case PatternNone:
		return "none"
	case PatternSingle:
		return "single"
	case PatternMultipleIdentical:
		return "multiple_identical"
	case PatternMultipleMixed:
		return "multiple_mixed"
	case PatternMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// classify derives the pattern from per-codec fire counts.
func classify(fired map[string]int) Pattern {
	switch len(fired) {
	case 0:
		return PatternNone
	case 1:
		for _, n := range fired {
			if n > 1 {
				return PatternMultipleIdentical
			}
		}
		return PatternSingle
	default:
		return PatternMultipleMixed
	}
}
