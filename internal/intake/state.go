package intake

// State is the conversation-level intake state.
type State string

const (
	StateGathering           State = "GATHERING_INFORMATION"
	StateReadyToCreateMatter State = "READY_TO_CREATE_MATTER"
	StateMatterCreated       State = "MATTER_CREATED"
)

// Evaluate maps a context to its conversation state.
//
// Once a create_matter call has succeeded in the transcript the state is
// sticky at MATTER_CREATED regardless of the extracted facts, so a single
// logical conversation can never create duplicate matters. Otherwise the
// conversation is ready to create a matter when a name, a legal issue, and
// at least one contact channel are present.
func Evaluate(c Context, matterCreated bool) State {
	if matterCreated {
		return StateMatterCreated
	}
	if c.HasName && c.HasLegalIssue && (c.HasEmail || c.HasPhone) {
		return StateReadyToCreateMatter
	}
	return StateGathering
}
