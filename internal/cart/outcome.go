package cart

// Outcome reports what a mutation did. Rejections leave the cart untouched.
type Outcome int

const (
	Unchanged Outcome = iota
	Added
	Updated
	Removed
	Cleared
	RejectedWrongStore
	NotFound
)

var outcomeNames = map[Outcome]string{
	Unchanged:          "unchanged",
	Added:              "added",
	Updated:            "updated",
	Removed:            "removed",
	Cleared:            "cleared",
	RejectedWrongStore: "rejected_wrong_store",
	NotFound:           "not_found",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return "unknown"
}

// Rejected reports whether the mutation was refused.
func (o Outcome) Rejected() bool {
	return o == RejectedWrongStore || o == NotFound
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}
