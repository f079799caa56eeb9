package control

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values. A negative
// index means "no color".
type Theme struct {
	Header  int // Table headers, headings
	Error   int // Error notices, expired session
	Success int // Success notices, active session
	Warn    int // Warnings
	Info    int // Informational notices
	Muted   int // Status lines, secondary text
	Accent  int // Links, highlights
	Border  int // Table and modal borders
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		Header:  4,
		Error:   1,
		Success: 2,
		Warn:    3,
		Info:    6,
		Muted:   8,
		Accent:  5,
		Border:  8,
	}
}

// Color returns the color index for a notice severity.
func (t Theme) Color(s Severity) int {
	switch s {
	case SeverityError:
		return t.Error
	case SeveritySuccess:
		return t.Success
	case SeverityWarn:
		return t.Warn
	default:
		return t.Info
	}
}
