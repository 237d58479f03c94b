package component

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Standard validators. Each is stateless and safe for concurrent use.
var (
	NonEmpty ValidatorFunc = func(subject, input string, _ ValidationContext) ValidationResult {
		if strings.TrimSpace(input) == "" {
			return Invalid(subject, input, "value must not be empty")
		}
		return Valid(subject, input)
	}

	Integer ValidatorFunc = func(subject, input string, _ ValidationContext) ValidationResult {
		if _, err := strconv.ParseInt(strings.TrimSpace(input), 10, 64); err != nil {
			return Invalid(subject, input, "value is not a valid integer")
		}
		return Valid(subject, input)
	}

	PositiveInteger ValidatorFunc = func(subject, input string, _ ValidationContext) ValidationResult {
		n, err := strconv.ParseInt(strings.TrimSpace(input), 10, 64)
		if err != nil || n <= 0 {
			return Invalid(subject, input, "value is not a positive integer")
		}
		return Valid(subject, input)
	}

	NonNegativeInteger ValidatorFunc = func(subject, input string, _ ValidationContext) ValidationResult {
		n, err := strconv.ParseInt(strings.TrimSpace(input), 10, 64)
		if err != nil || n < 0 {
			return Invalid(subject, input, "value is not a non-negative integer")
		}
		return Valid(subject, input)
	}

	Boolean ValidatorFunc = func(subject, input string, _ ValidationContext) ValidationResult {
		switch strings.ToLower(strings.TrimSpace(input)) {
		case "true", "false":
			return Valid(subject, input)
		}
		return Invalid(subject, input, "value must be true or false")
	}

	Duration ValidatorFunc = func(subject, input string, _ ValidationContext) ValidationResult {
		if _, err := ParseDuration(input); err != nil {
			return Invalid(subject, input, "value is not a valid time period")
		}
		return Valid(subject, input)
	}

	// Regex accepts values that are themselves valid regular expressions.
	Regex ValidatorFunc = func(subject, input string, _ ValidationContext) ValidationResult {
		if _, err := regexp.Compile(input); err != nil {
			return Invalid(subject, input, fmt.Sprintf("value is not a valid regular expression: %v", err))
		}
		return Valid(subject, input)
	}

	URL ValidatorFunc = func(subject, input string, _ ValidationContext) ValidationResult {
		u, err := url.Parse(strings.TrimSpace(input))
		if err != nil || u.Scheme == "" || u.Host == "" {
			return Invalid(subject, input, "value is not a valid absolute URL")
		}
		return Valid(subject, input)
	}

	Port ValidatorFunc = func(subject, input string, _ ValidationContext) ValidationResult {
		n, err := strconv.Atoi(strings.TrimSpace(input))
		if err != nil || n < 1 || n > 65535 {
			return Invalid(subject, input, "value is not a valid port (1-65535)")
		}
		return Valid(subject, input)
	}

	// ServiceIdentifier accepts values naming a registered controller
	// service of any type.
	ServiceIdentifier ValidatorFunc = func(subject, input string, ctx ValidationContext) ValidationResult {
		if ctx == nil || ctx.ServiceLookup() == nil {
			return Invalid(subject, input, "no controller service lookup is available")
		}
		if _, ok := ctx.ServiceLookup().Service(input); !ok {
			return Invalid(subject, input, fmt.Sprintf("no controller service is registered as %q", input))
		}
		return Valid(subject, input)
	}
)

// MatchesPattern returns a validator accepting values that match re.
func MatchesPattern(re *regexp.Regexp) Validator {
	return ValidatorFunc(func(subject, input string, _ ValidationContext) ValidationResult {
		if !re.MatchString(input) {
			return Invalid(subject, input, fmt.Sprintf("value does not match pattern %s", re.String()))
		}
		return Valid(subject, input)
	})
}

var standardValidators = map[string]Validator{
	"non_empty":            NonEmpty,
	"integer":              Integer,
	"positive_integer":     PositiveInteger,
	"non_negative_integer": NonNegativeInteger,
	"boolean":              Boolean,
	"duration":             Duration,
	"regex":                Regex,
	"url":                  URL,
	"port":                 Port,
	"service":              ServiceIdentifier,
}

// LookupValidator returns the standard validator registered under name.
func LookupValidator(name string) (Validator, bool) {
	v, ok := standardValidators[name]
	return v, ok
}

// ValidatorNames returns the registered standard validator names, sorted.
func ValidatorNames() []string {
	names := make([]string, 0, len(standardValidators))
	for name := range standardValidators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var periodUnits = map[string]time.Duration{
	"ns": time.Nanosecond, "nanos": time.Nanosecond, "nanosecond": time.Nanosecond, "nanoseconds": time.Nanosecond,
	"ms": time.Millisecond, "millis": time.Millisecond, "millisecond": time.Millisecond, "milliseconds": time.Millisecond,
	"s": time.Second, "sec": time.Second, "secs": time.Second, "second": time.Second, "seconds": time.Second,
	"m": time.Minute, "min": time.Minute, "mins": time.Minute, "minute": time.Minute, "minutes": time.Minute,
	"h": time.Hour, "hr": time.Hour, "hrs": time.Hour, "hour": time.Hour, "hours": time.Hour,
	"d": 24 * time.Hour, "day": 24 * time.Hour, "days": 24 * time.Hour,
}

var periodPattern = regexp.MustCompile(`^(\d+)\s*([A-Za-z]+)$`)

// ParseDuration accepts Go durations ("1m30s") and "<n> <unit>" periods
// ("5 secs", "10 mins", "1 day").
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}

	m := periodPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid time period %q", s)
	}
	unit, ok := periodUnits[strings.ToLower(m[2])]
	if !ok {
		return 0, fmt.Errorf("invalid time unit %q in %q", m[2], s)
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid time period %q: %w", s, err)
	}
	return time.Duration(n) * unit, nil
}
