package feed

// Mode controls the incremental selection behaviour.
type Mode int

const (
	// ModeNewOnly selects only entries whose key was never emitted before.
	ModeNewOnly Mode = iota
	// ModeAll selects every merged entry.
	ModeAll
)

func (m Mode) String() string {
	if m == ModeAll {
		return "all"
	}
	return "new-only"
}

// Select computes the emission set for this run. In both modes every
// entry's key is added to the returned seen set, so an all-mode run
// still advances the incremental baseline. seenBefore is not mutated.
func Select(entries []Entry, seenBefore map[string]struct{}, mode Mode) ([]Entry, map[string]struct{}) {
	seenAfter := make(map[string]struct{}, len(seenBefore)+len(entries))
	for key := range seenBefore {
		seenAfter[key] = struct{}{}
	}

	selected := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		key := entry.Key()
		_, known := seenBefore[key]
		seenAfter[key] = struct{}{}
		if mode == ModeNewOnly && known {
			continue
		}
		selected = append(selected, entry)
	}
	return selected, seenAfter
}
