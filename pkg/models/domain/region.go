package domain

// Selection is the active state/district pair driving dashboard queries.
// States are top level; a district belongs to exactly one state and is
// referenced by name only.
type Selection struct {
	State    string
	District string
}

func (s Selection) Complete() bool {
	return s.State != "" && s.District != ""
}
