package component

import "sort"

// Relationship is a named routing outcome. Relationships are equal by name.
type Relationship struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// NewRelationship returns a relationship with the given name.
func NewRelationship(name string) Relationship {
	return Relationship{Name: name}
}

// SortRelationships sorts in place by name and returns rels.
func SortRelationships(rels []Relationship) []Relationship {
	sort.Slice(rels, func(i, j int) bool { return rels[i].Name < rels[j].Name })
	return rels
}

// RelationshipNames returns the names of rels in order.
func RelationshipNames(rels []Relationship) []string {
	names := make([]string, len(rels))
	for i, r := range rels {
		names[i] = r.Name
	}
	return names
}
