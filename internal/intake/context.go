package intake

// Facts is the flat record of client details pulled from a conversation.
// Empty string means the detail has not been extracted yet.
type Facts struct {
	Name          string `json:"name"`
	LegalIssue    string `json:"legal_issue"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Location      string `json:"location"`
	OpposingParty string `json:"opposing_party"`
}

// Context is the snapshot of extracted facts for one conversation turn.
// It is rebuilt fresh every turn, never partially mutated. Each presence
// flag is true if and only if its paired value is non-empty.
type Context struct {
	HasName          bool   `json:"has_name"`
	Name             string `json:"name,omitempty"`
	HasLegalIssue    bool   `json:"has_legal_issue"`
	LegalIssue       string `json:"legal_issue,omitempty"`
	HasEmail         bool   `json:"has_email"`
	Email            string `json:"email,omitempty"`
	HasPhone         bool   `json:"has_phone"`
	Phone            string `json:"phone,omitempty"`
	HasLocation      bool   `json:"has_location"`
	Location         string `json:"location,omitempty"`
	HasOpposingParty bool   `json:"has_opposing_party"`
	OpposingParty    string `json:"opposing_party,omitempty"`

	SensitiveMatter    bool  `json:"is_sensitive_matter"`
	GeneralInquiry     bool  `json:"is_general_inquiry"`
	ShouldCreateMatter bool  `json:"should_create_matter"`
	State              State `json:"state"`
}

// BuildContext derives a full conversation context from extracted facts.
// transcript is the raw conversation text used for the sensitive-matter
// classifier; matterCreated pins the state once a matter exists.
func BuildContext(f Facts, transcript string, matterCreated bool) Context {
	c := Context{
		HasName:          f.Name != "",
		Name:             f.Name,
		HasLegalIssue:    f.LegalIssue != "",
		LegalIssue:       f.LegalIssue,
		HasEmail:         f.Email != "",
		Email:            f.Email,
		HasPhone:         f.Phone != "",
		Phone:            f.Phone,
		HasLocation:      f.Location != "",
		Location:         f.Location,
		HasOpposingParty: f.OpposingParty != "",
		OpposingParty:    f.OpposingParty,
	}

	c.GeneralInquiry = !c.HasLegalIssue
	c.SensitiveMatter = Sensitive(transcript) || Sensitive(f.LegalIssue)
	c.State = Evaluate(c, matterCreated)
	c.ShouldCreateMatter = c.State == StateReadyToCreateMatter

	return c
}

// EmptyContext is the fallback when extraction is unavailable: all presence
// flags false, so the conversation degrades to clarifying questions.
func EmptyContext(matterCreated bool) Context {
	return BuildContext(Facts{}, "", matterCreated)
}
