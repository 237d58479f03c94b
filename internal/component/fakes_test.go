package component

// stubService is a minimal typed controller service for lookup tests.
type stubService struct {
	Base
	id  string
	typ string
}

func (s *stubService) Identifier() string  { return s.id }
func (s *stubService) ServiceType() string { return s.typ }

func (s *stubService) OnPropertyModified(PropertyDescriptor, Value, Value) {}

func (s *stubService) Validate(ctx ValidationContext) []ValidationResult {
	return ValidateProperties(ctx, s.Descriptors())
}

// stubLookup serves a fixed set of services.
type stubLookup map[string]ControllerService

func (l stubLookup) Service(id string) (ControllerService, bool) {
	s, ok := l[id]
	return s, ok
}

func (l stubLookup) IsServiceEnabled(id string) bool {
	_, ok := l[id]
	return ok
}

func (l stubLookup) ServiceIdentifiers(string) []string {
	ids := make([]string, 0, len(l))
	for id := range l {
		ids = append(ids, id)
	}
	return ids
}

// stubContext is a map-backed ValidationContext.
type stubContext struct {
	catalog  Base
	values   map[string]string
	lookup   stubLookup
	problems map[string][]ValidationResult
}

func newStubContext(catalog Base) *stubContext {
	return &stubContext{
		catalog:  catalog,
		values:   make(map[string]string),
		lookup:   stubLookup{},
		problems: make(map[string][]ValidationResult),
	}
}

func (c *stubContext) Property(d PropertyDescriptor) (PropertyValue, bool) {
	full, ok := c.catalog.Descriptor(d.Name)
	if !ok {
		return PropertyValue{}, false
	}
	if v, ok := c.values[full.Key()]; ok {
		return NewPropertyValue(Some(v), c.lookup, nil), true
	}
	return NewPropertyValue(full.Default, c.lookup, nil), true
}

func (c *stubContext) Properties() []PropertyEntry {
	var out []PropertyEntry
	for _, d := range c.catalog.Descriptors() {
		if v, ok := c.values[d.Key()]; ok {
			out = append(out, PropertyEntry{Descriptor: d, Value: Some(v)})
		} else {
			out = append(out, PropertyEntry{Descriptor: d, Value: None})
		}
	}
	for k, v := range c.values {
		if _, declared := c.catalog.index[k]; !declared {
			out = append(out, PropertyEntry{Descriptor: Dynamic(k), Value: Some(v)})
		}
	}
	return out
}

func (c *stubContext) AnnotationData() Value         { return None }
func (c *stubContext) ServiceLookup() ServiceLookup { return c.lookup }

func (c *stubContext) ValidateService(id string) ([]ValidationResult, error) {
	return c.problems[id], nil
}

func (c *stubContext) NewPropertyValue(raw string) PropertyValue {
	return NewPropertyValue(Some(raw), c.lookup, nil)
}
