package matter

import (
	"fmt"
	"strings"
)

// Keyword tables driving risk assessment. They are data, not control flow,
// so the rule set can be extended and tested without touching the engine.
var (
	// hardTriggerTerms always force a human handoff.
	hardTriggerTerms = []string{"criminal", "immigration"}

	// urgencyTerms escalate risk to high.
	urgencyTerms = []string{"deadline", "hearing", "trial"}

	// complexityTerms escalate risk to at least med.
	complexityTerms = []string{"custody", "support", "property"}

	// courtFilingTerms mark an outstanding document as court-critical.
	courtFilingTerms = []string{"court", "petition", "summons"}
)

// docBacklogThreshold is the outstanding-document count above which a matter
// is at least med risk.
const docBacklogThreshold = 5

// assessment is the result of one risk pass over the case brief.
type assessment struct {
	level       RiskLevel
	hardTrigger bool
}

// assessRisk recomputes the brief's risk grade from its text. high always
// dominates med.
func assessRisk(brief *CaseBrief) assessment {
	corpus := briefCorpus(brief)

	a := assessment{level: RiskLow}
	var notes []string

	if term := firstMatch(corpus, hardTriggerTerms); term != "" {
		a.hardTrigger = true
		a.level = RiskHigh
		notes = append(notes, fmt.Sprintf("hard trigger term %q present", term))
	}
	if term := firstMatch(corpus, urgencyTerms); term != "" {
		a.level = RiskHigh
		notes = append(notes, fmt.Sprintf("urgent-deadline term %q present", term))
	}
	if a.level != RiskHigh {
		if term := firstMatch(corpus, complexityTerms); term != "" {
			a.level = RiskMed
			notes = append(notes, fmt.Sprintf("family-law complexity term %q present", term))
		}
		if len(stillNeededDocs(brief)) > docBacklogThreshold {
			a.level = RiskMed
			notes = append(notes, "more than five documents still outstanding")
		}
	}

	brief.Risk.Level = a.level
	for _, n := range notes {
		brief.Risk.Notes = union(brief.Risk.Notes, n)
	}
	return a
}

// decideHandoff derives the handoff recommendation from the risk pass and
// document gaps. The rules form a strict priority chain: hard trigger, then
// risk level, then document-gap refinement. The first matching rule wins.
func decideHandoff(brief *CaseBrief, a assessment) *HandoffDecision {
	if a.hardTrigger {
		return &HandoffDecision{
			Recommended: true,
			Reason:      ReasonHardTrigger,
			Message:     "This matter involves an area that requires direct attorney review.",
		}
	}

	if a.level == RiskHigh {
		return &HandoffDecision{
			Recommended: true,
			Reason:      ReasonHighRisk,
			Message:     "Time-sensitive or high-risk facts were identified; an attorney should take over.",
		}
	}

	if a.level == RiskMed {
		for _, doc := range stillNeededDocs(brief) {
			if term := firstMatch(strings.ToLower(doc), courtFilingTerms); term != "" {
				return &HandoffDecision{
					Recommended: true,
					Reason:      ReasonDocumentGaps,
					Message:     fmt.Sprintf("Outstanding court filing %q needs attorney attention.", doc),
				}
			}
		}
	}

	return &HandoffDecision{Recommended: false}
}

// briefCorpus flattens the brief text the keyword tables scan: summary,
// timeline events, and issues.
func briefCorpus(brief *CaseBrief) string {
	var b strings.Builder
	b.WriteString(brief.Summary)
	for _, entry := range brief.Timeline {
		b.WriteString("\n")
		b.WriteString(entry.Event)
	}
	for _, issue := range brief.Issues {
		b.WriteString("\n")
		b.WriteString(issue)
	}
	return strings.ToLower(b.String())
}

// firstMatch returns the first term contained in text, or "".
func firstMatch(text string, terms []string) string {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return term
		}
	}
	return ""
}
