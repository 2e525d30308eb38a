package matter

import (
	"fmt"
	"strings"
	"time"
)

// newCaseBrief initializes the brief for a fresh matter.
func newCaseBrief() *CaseBrief {
	return &CaseBrief{
		Parties: Parties{Opposing: []string{}, Orgs: []string{}},
		Risk:    Risk{Level: RiskLow},
	}
}

// mergeEventData folds an event's payload into the matter metadata and case
// brief. Opposing parties and document lists use set semantics; the matter
// type is overwritten when supplied; the timeline is append-only.
func mergeEventData(st *State, ev Event) {
	data := ev.Data

	// Client identity.
	if name := stringField(data, "name", "client_name"); name != "" {
		if st.Metadata.ClientInfo == nil {
			st.Metadata.ClientInfo = &ClientInfo{}
		}
		st.Metadata.ClientInfo.Name = name
	}
	if st.Metadata.ClientInfo != nil {
		if email := stringField(data, "email"); email != "" {
			st.Metadata.ClientInfo.Email = email
		}
		if phone := stringField(data, "phone"); phone != "" {
			st.Metadata.ClientInfo.Phone = phone
		}
		if loc := stringField(data, "location"); loc != "" {
			st.Metadata.ClientInfo.Location = loc
		}
	}

	if mt := stringField(data, "matter_type"); mt != "" {
		st.Metadata.MatterType = mt
	}
	if op := stringField(data, "opposing_party"); op != "" {
		st.Metadata.OpposingParty = op
	}

	brief := st.CaseBrief
	if brief == nil {
		brief = newCaseBrief()
		st.CaseBrief = brief
	}

	if st.Metadata.ClientInfo != nil {
		brief.Parties.Client = st.Metadata.ClientInfo.Name
	}
	if st.Metadata.OpposingParty != "" {
		brief.Parties.Opposing = union(brief.Parties.Opposing, st.Metadata.OpposingParty)
	}
	for _, op := range stringList(data, "opposing_parties") {
		brief.Parties.Opposing = union(brief.Parties.Opposing, op)
	}
	for _, org := range stringList(data, "organizations") {
		brief.Parties.Orgs = union(brief.Parties.Orgs, org)
	}

	if issue := stringField(data, "legal_issue", "issue"); issue != "" {
		brief.Issues = union(brief.Issues, issue)
	}
	if j := stringField(data, "jurisdiction"); j != "" {
		brief.Jurisdiction = j
	}

	for _, doc := range stringList(data, "docs_needed") {
		brief.DocsNeeded = union(brief.DocsNeeded, doc)
	}
	for _, doc := range stringList(data, "docs_received") {
		brief.DocsReceived = union(brief.DocsReceived, doc)
	}
	if ev.Type == EventDocumentsReceived {
		// Without an itemized list, a documents_received event clears the
		// outstanding set wholesale.
		if len(stringList(data, "docs_received")) == 0 {
			for _, doc := range brief.DocsNeeded {
				brief.DocsReceived = union(brief.DocsReceived, doc)
			}
		}
	}

	if conflictFound(data) {
		brief.Risk.Notes = union(brief.Risk.Notes, "conflict search returned a potential hit")
	}

	brief.Summary = renderSummary(st)
}

// appendTimeline records the event and the stage it produced.
func appendTimeline(st *State, ev Event, now time.Time) {
	if st.CaseBrief == nil {
		st.CaseBrief = newCaseBrief()
	}
	st.CaseBrief.Timeline = append(st.CaseBrief.Timeline, TimelineEntry{
		Date:  now.UTC().Format(time.RFC3339),
		Event: fmt.Sprintf("%s (stage: %s)", ev.Type, st.Stage),
	})
}

// renderSummary regenerates the human-readable summary from merged fields.
func renderSummary(st *State) string {
	brief := st.CaseBrief
	var b strings.Builder

	client := "Unidentified client"
	if brief.Parties.Client != "" {
		client = brief.Parties.Client
	}
	b.WriteString(client)

	if st.Metadata.MatterType != "" {
		fmt.Fprintf(&b, " — %s matter", st.Metadata.MatterType)
	} else {
		b.WriteString(" — matter under intake")
	}

	if len(brief.Parties.Opposing) > 0 {
		fmt.Fprintf(&b, " vs %s", strings.Join(brief.Parties.Opposing, ", "))
	}
	if brief.Jurisdiction != "" {
		fmt.Fprintf(&b, " in %s", brief.Jurisdiction)
	}
	b.WriteString(".")

	if len(brief.Issues) > 0 {
		fmt.Fprintf(&b, " Issues: %s.", strings.Join(brief.Issues, "; "))
	}

	if n := len(stillNeededDocs(brief)); n > 0 {
		fmt.Fprintf(&b, " %d document(s) outstanding.", n)
	}

	return b.String()
}

// stillNeededDocs returns docs needed but not yet received.
func stillNeededDocs(brief *CaseBrief) []string {
	received := make(map[string]bool, len(brief.DocsReceived))
	for _, doc := range brief.DocsReceived {
		received[strings.ToLower(doc)] = true
	}
	var out []string
	for _, doc := range brief.DocsNeeded {
		if !received[strings.ToLower(doc)] {
			out = append(out, doc)
		}
	}
	return out
}

// union appends value to list unless an equal entry already exists.
func union(list []string, value string) []string {
	for _, v := range list {
		if strings.EqualFold(v, value) {
			return list
		}
	}
	return append(list, value)
}

// stringField returns the first non-empty string under any of the keys.
func stringField(data map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := data[key].(string); ok {
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		}
	}
	return ""
}

// stringList coerces a data field into a string slice. Accepts both JSON
// arrays and a single string value.
func stringList(data map[string]any, key string) []string {
	switch v := data[key].(type) {
	case []any:
		var out []string
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	case []string:
		return v
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		return []string{strings.TrimSpace(v)}
	default:
		return nil
	}
}

// boolField reads a boolean data flag, accepting bool or "true".
func boolField(data map[string]any, keys ...string) bool {
	for _, key := range keys {
		switch v := data[key].(type) {
		case bool:
			if v {
				return true
			}
		case string:
			if strings.EqualFold(v, "true") {
				return true
			}
		}
	}
	return false
}

func conflictFound(data map[string]any) bool {
	return boolField(data, "conflict_found", "conflict")
}
