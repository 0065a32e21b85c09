package source

// State is the acquisition strategy currently in effect for a Fetch.
type State int

const (
	Live State = iota
	Degraded
	Synthetic
)

func (s State) String() string {
	switch s {
	case Live:
		return "live"
	case Degraded:
		return "degraded"
	case Synthetic:
		return "synthetic"
	default:
		return "unknown"
	}
}

type event int

const (
	evLiveDone event = iota
	evLiveError
	evFallback
	evSyntheticDone
)

// transition returns the state which follows from after ev, and whether the
// fetch is complete.  Nothing ever transitions back into Live.
func transition(from State, ev event) (State, bool) {
	switch from {
	case Live:
		switch ev {
		case evLiveDone:
			return Live, true
		case evLiveError:
			return Degraded, false
		}
	case Degraded:
		if ev == evFallback {
			return Synthetic, false
		}
	case Synthetic:
		if ev == evSyntheticDone {
			return Synthetic, true
		}
	}
	// Unexpected pairings end the fetch where it stands.
	return from, true
}
