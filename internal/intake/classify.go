package intake

import "strings"

// sensitiveTerms drive the sensitive-matter classifier. The table is data,
// not control flow, so categories can be extended without touching Evaluate.
var sensitiveTerms = map[string][]string{
	"criminal":  {"criminal", "arrest", "arrested", "charged", "felony", "misdemeanor", "police"},
	"emergency": {"emergency", "urgent", "immediately", "restraining order"},
	"injury":    {"injury", "injured", "accident", "hospital", "malpractice"},
	"death":     {"death", "died", "deceased", "wrongful death", "estate"},
}

// Sensitive reports whether text mentions any term from the sensitive
// categories. The flag does not change the conversation state; it is
// surfaced to downstream risk assessment.
func Sensitive(text string) bool {
	if text == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, terms := range sensitiveTerms {
		for _, term := range terms {
			if strings.Contains(lower, term) {
				return true
			}
		}
	}
	return false
}
