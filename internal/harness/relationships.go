package harness

import "github.com/roach88/propharness/internal/component"

// AvailableRelationships returns the declared relationships minus the
// unavailable ones, sorted by name. Components that do not route have none.
func (h *Harness) AvailableRelationships() []component.Relationship {
	router, ok := h.component.(component.Router)
	if !ok {
		return []component.Relationship{}
	}

	unavailable := make(map[string]bool)
	for _, r := range h.UnavailableRelationships() {
		unavailable[r.Name] = true
	}

	available := []component.Relationship{}
	for _, r := range router.Relationships() {
		if !unavailable[r.Name] {
			available = append(available, r)
		}
	}
	return component.SortRelationships(available)
}

// SetUnavailableRelationships replaces the unavailable set. Names the
// component does not declare are accepted and have no effect.
func (h *Harness) SetUnavailableRelationships(rels ...component.Relationship) {
	set := make([]component.Relationship, 0, len(rels))
	seen := make(map[string]bool, len(rels))
	for _, r := range rels {
		if seen[r.Name] {
			continue
		}
		seen[r.Name] = true
		set = append(set, r)
	}
	component.SortRelationships(set)
	h.unavailable.Store(&set)
}

// UnavailableRelationships returns the current unavailable set sorted by name.
func (h *Harness) UnavailableRelationships() []component.Relationship {
	p := h.unavailable.Load()
	if p == nil {
		return []component.Relationship{}
	}
	out := make([]component.Relationship, len(*p))
	copy(out, *p)
	return out
}
