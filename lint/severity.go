package lint

import (
	"fmt"
	"strconv"
	"strings"
)

// Severity is the closed set of diagnostic levels.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInformation
	SeverityHint
	SeverityUnknown
)

var severityNames = [...]string{
	SeverityError:       "Error",
	SeverityWarning:     "Warning",
	SeverityInformation: "Information",
	SeverityHint:        "Hint",
	SeverityUnknown:     "Unknown",
}

func (s Severity) String() string {
	if s < SeverityError || s > SeverityUnknown {
		return severityNames[SeverityUnknown]
	}
	return severityNames[s]
}

// SeverityFromCode maps the numeric levels used by lint tooling
// (0 error, 1 warning, 2 information, 3 hint). Any other code is Unknown.
func SeverityFromCode(code int) Severity {
	if code < int(SeverityError) || code >= int(SeverityUnknown) {
		return SeverityUnknown
	}
	return Severity(code)
}

// ParseSeverity accepts the spellings used in rule set files, by name or
// by numeric code.
func ParseSeverity(s string) (Severity, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "error":
		return SeverityError, nil
	case "warn", "warning":
		return SeverityWarning, nil
	case "info", "information":
		return SeverityInformation, nil
	case "hint":
		return SeverityHint, nil
	}
	if code, err := strconv.Atoi(s); err == nil {
		if sev := SeverityFromCode(code); sev != SeverityUnknown {
			return sev, nil
		}
	}
	return SeverityUnknown, fmt.Errorf("unknown severity %q", s)
}
