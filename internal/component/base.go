package component

// Base is an embeddable descriptor catalog. It implements Descriptor and
// Descriptors; the embedding type supplies OnPropertyModified and Validate.
type Base struct {
	descriptors []PropertyDescriptor
	index       map[string]int
	dynamic     bool
}

// NewBase returns a catalog holding descriptors in the given order.
// Later duplicates of a key replace earlier ones in place.
func NewBase(descriptors ...PropertyDescriptor) Base {
	b := Base{index: make(map[string]int, len(descriptors))}
	for _, d := range descriptors {
		if i, ok := b.index[d.Key()]; ok {
			b.descriptors[i] = d
			continue
		}
		b.index[d.Key()] = len(b.descriptors)
		b.descriptors = append(b.descriptors, d)
	}
	return b
}

// NewDynamicBase is NewBase for components that accept properties outside
// their catalog. Unknown names resolve to Dynamic descriptors.
func NewDynamicBase(descriptors ...PropertyDescriptor) Base {
	b := NewBase(descriptors...)
	b.dynamic = true
	return b
}

// Descriptor implements Component.
func (b Base) Descriptor(name string) (PropertyDescriptor, bool) {
	if i, ok := b.index[Key(name)]; ok {
		return b.descriptors[i], true
	}
	if b.dynamic {
		return Dynamic(name), true
	}
	return PropertyDescriptor{}, false
}

// Descriptors implements Component. The returned slice is a copy.
func (b Base) Descriptors() []PropertyDescriptor {
	out := make([]PropertyDescriptor, len(b.descriptors))
	copy(out, b.descriptors)
	return out
}

// AcceptsDynamicProperties reports whether unknown names resolve.
func (b Base) AcceptsDynamicProperties() bool {
	return b.dynamic
}

// ValidateProperties validates every declared descriptor against its
// effective value, plus every configured dynamic property, and returns all
// failing results. Required properties without an effective value fail.
func ValidateProperties(ctx ValidationContext, descriptors []PropertyDescriptor) []ValidationResult {
	var failures []ValidationResult
	seen := make(map[string]bool, len(descriptors))

	for _, d := range descriptors {
		seen[d.Key()] = true
		if r := validateOne(ctx, d); !r.Valid {
			failures = append(failures, r)
		}
	}

	for _, entry := range ctx.Properties() {
		if seen[entry.Descriptor.Key()] || !entry.Value.IsSet() {
			continue
		}
		if r := validateOne(ctx, entry.Descriptor); !r.Valid {
			failures = append(failures, r)
		}
	}

	return failures
}

func validateOne(ctx ValidationContext, d PropertyDescriptor) ValidationResult {
	pv, ok := ctx.Property(d)
	if !ok || !pv.IsSet() {
		if d.Required {
			return Invalid(d.Label(), "", d.Label()+" is required")
		}
		return Valid(d.Label(), "")
	}
	return d.Validate(pv.String(), ctx)
}
