// Package selection tracks which demand lines a workflow acts on.
package selection

// Set is an ordered set of demand line ids. Each workflow owns its own Set.
type Set struct {
	order []string
	index map[string]struct{}
}

func New() *Set {
	return &Set{index: map[string]struct{}{}}
}

// Toggle adds id when selected is true and removes it otherwise. Blank ids
// are ignored.
func (s *Set) Toggle(id string, selected bool) {
	if id == "" {
		return
	}
	_, present := s.index[id]
	switch {
	case selected && !present:
		s.index[id] = struct{}{}
		s.order = append(s.order, id)
	case !selected && present:
		delete(s.index, id)
		next := make([]string, 0, len(s.order)-1)
		for _, existing := range s.order {
			if existing != id {
				next = append(next, existing)
			}
		}
		s.order = next
	}
}

// IDs returns the selected ids in insertion order.
func (s *Set) IDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *Set) Has(id string) bool {
	_, ok := s.index[id]
	return ok
}

func (s *Set) IsEmpty() bool { return len(s.order) == 0 }

func (s *Set) Len() int { return len(s.order) }
