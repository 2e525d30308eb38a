package matter

// checklistTemplates defines the fresh checklist for each stage. The
// checklist is replaced, never merged, when the stage changes.
var checklistTemplates = map[Stage][]ChecklistItem{
	StageCollectParties: {
		{ID: "client_identity", Title: "Record client name and details", Required: true},
		{ID: "contact_channel", Title: "Confirm an email or phone contact", Required: false},
		{ID: "opposing_party", Title: "Identify the opposing party", Required: false},
		{ID: "matter_type", Title: "Classify the matter type", Required: false},
	},
	StageConflictsCheck: {
		{ID: "run_conflicts_search", Title: "Run conflict-of-interest search", Required: true},
		{ID: "review_results", Title: "Review conflict search results", Required: true},
	},
	StageDocumentsNeeded: {
		{ID: "intake_questionnaire", Title: "Completed intake questionnaire", Required: true},
		{ID: "supporting_documents", Title: "Supporting documents for the claim", Required: true},
		{ID: "id_verification", Title: "Government ID verification", Required: false},
	},
	StageFeeScope: {
		{ID: "fee_agreement_drafted", Title: "Draft fee agreement and scope", Required: true},
		{ID: "scope_confirmed", Title: "Client confirmed scope of representation", Required: true},
		{ID: "payment_collected", Title: "Collect retainer payment", Required: true},
	},
	StageEngagement: {
		{ID: "engagement_letter_sent", Title: "Send engagement letter", Required: true},
		{ID: "engagement_letter_signed", Title: "Client signed engagement letter", Required: true},
	},
	StageFilingPrep: {
		{ID: "draft_filings", Title: "Draft initial filings", Required: true},
		{ID: "final_review", Title: "Attorney final review", Required: true},
		{ID: "calendar_deadlines", Title: "Calendar filing deadlines", Required: false},
	},
	StageCompleted: {},
}

// newChecklist returns a fresh pending checklist for the stage.
func newChecklist(stage Stage) []ChecklistItem {
	tmpl := checklistTemplates[stage]
	items := make([]ChecklistItem, len(tmpl))
	for i, item := range tmpl {
		item.Status = ItemPending
		items[i] = item
	}
	return items
}

// requiredComplete reports whether every required item is completed.
func requiredComplete(items []ChecklistItem) bool {
	for _, item := range items {
		if item.Required && item.Status != ItemCompleted {
			return false
		}
	}
	return true
}

// allComplete reports whether every item, required or not, is completed.
func allComplete(items []ChecklistItem) bool {
	for _, item := range items {
		if item.Status != ItemCompleted {
			return false
		}
	}
	return len(items) > 0
}

// completeItems marks the items with the given IDs completed.
func completeItems(items []ChecklistItem, ids ...string) {
	for _, id := range ids {
		for i := range items {
			if items[i].ID == id {
				items[i].Status = ItemCompleted
			}
		}
	}
}

// completeRequired marks every required item completed. Used when the
// triggering event itself is the completion evidence for the stage.
func completeRequired(items []ChecklistItem) {
	for i := range items {
		if items[i].Required {
			items[i].Status = ItemCompleted
		}
	}
}

// pendingRequired returns the IDs of required items not yet completed.
func pendingRequired(items []ChecklistItem) []string {
	var ids []string
	for _, item := range items {
		if item.Required && item.Status != ItemCompleted {
			ids = append(ids, item.ID)
		}
	}
	return ids
}

// pendingTitles returns the titles of items not yet completed, required
// first.
func pendingTitles(items []ChecklistItem) []string {
	var titles []string
	for _, item := range items {
		if item.Required && item.Status != ItemCompleted {
			titles = append(titles, item.Title)
		}
	}
	for _, item := range items {
		if !item.Required && item.Status != ItemCompleted {
			titles = append(titles, item.Title)
		}
	}
	return titles
}
