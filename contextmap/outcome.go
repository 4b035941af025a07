package contextmap

// Outcome reports what a successful Insert did to the map.
type Outcome int

const (
	// NoChange: the link and the value were already associated.
	NoChange Outcome = iota
	// NewLink: a registry was created for a link seen for the first time.
	NewLink
	// Update: the link's registry was extended at a later context.
	Update
	// Overwrite: a null record was given a value at the same context.
	Overwrite
	// NullifyAndRepoint: the value was taken from another link, whose
	// registry got a null record at the inserted context.
	NullifyAndRepoint
)

func (o Outcome) String() string {
	switch o {
	case NoChange:
		return "no-change"
	case NewLink:
		return "new-link"
	case Update:
		return "update"
	case Overwrite:
		return "overwrite"
	case NullifyAndRepoint:
		return "nullify-and-repoint"
	default:
		return "unknown"
	}
}

// Changed is false only for NoChange.
func (o Outcome) Changed() bool {
	return o != NoChange
}
