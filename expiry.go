package control

import "strings"

// ExpiryPhrases lists, per locale, the lowercase fragments that mark a
// backend message as "your session is no longer valid". The backend has no
// machine-readable code for this, so detection depends on its wording:
// rephrasing a message on the server silently disables expiry detection.
var ExpiryPhrases = map[string][]string{
	"en": {"session", "unauthorized", "forbidden"},
	"es": {"sesión", "no autorizado", "prohibido"},
}

// IndicatesExpiry reports whether message contains any expiry phrase, in
// any locale, ignoring case.
func IndicatesExpiry(message string) bool {
	if message == "" {
		return false
	}
	m := strings.ToLower(message)
	for _, phrases := range ExpiryPhrases {
		for _, p := range phrases {
			if strings.Contains(m, p) {
				return true
			}
		}
	}
	return false
}
