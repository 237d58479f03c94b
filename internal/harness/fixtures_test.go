package harness

import (
	"fmt"
	"testing"

	"github.com/roach88/propharness/internal/component"
	"github.com/roach88/propharness/internal/testutil"
)

var (
	batchSize = component.PropertyDescriptor{
		Name:       "Batch Size",
		Default:    component.Some("10"),
		Required:   true,
		Validators: []component.Validator{component.PositiveInteger},
	}
	mode = component.PropertyDescriptor{
		Name:            "Mode",
		Default:         component.Some("single"),
		AllowableValues: []string{"single", "batch"},
	}
	host = component.PropertyDescriptor{
		Name:       "Host",
		Required:   true,
		Validators: []component.Validator{component.NonEmpty},
	}
	writerRef = component.PropertyDescriptor{
		Name:        "Record Writer",
		ServiceType: "RecordWriter",
	}
	path = component.PropertyDescriptor{
		Name:     "Path",
		Required: true,
	}
)

func newPlainHarness(t *testing.T, opts ...Option) (*Harness, *testutil.Plain) {
	t.Helper()
	c := testutil.NewPlain(batchSize, mode, host)
	h, err := New(c, append([]Option{WithID("test")}, opts...)...)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return h, c
}

// fakeTB captures Fatal calls made by assertion helpers.
type fakeTB struct {
	testing.TB
	failed bool
	msg    string
}

func (f *fakeTB) Helper() {}

func (f *fakeTB) Fatal(args ...any) {
	f.failed = true
	f.msg = fmt.Sprint(args...)
}

func (f *fakeTB) Fatalf(format string, args ...any) {
	f.failed = true
	f.msg = fmt.Sprintf(format, args...)
}
