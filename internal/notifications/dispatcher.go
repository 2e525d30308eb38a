package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/lexflowhq/lexflow/internal/matter"
)

// Dispatcher persists handoff alerts and delivers them to a team's webhook
// subscribers. It satisfies the workflow engine's Notifier seam, and the
// whole path is best-effort: a delivery failure is logged, never raised.
type Dispatcher struct {
	store  *Store
	client *http.Client
}

// NewDispatcher creates a Dispatcher backed by the given store.
func NewDispatcher(store *Store) *Dispatcher {
	return &Dispatcher{
		store: store,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// HandoffRecommended records the handoff alert and fans it out to webhooks.
func (d *Dispatcher) HandoffRecommended(ctx context.Context, notice matter.HandoffNotice) {
	n := &Notification{
		Severity: severityFor(notice.Reason),
		Reason:   string(notice.Reason),
		Title:    fmt.Sprintf("Handoff recommended for matter %s", notice.MatterID),
		Message:  notice.Message,
		TeamID:   notice.TeamID,
		MatterID: notice.MatterID,
	}
	if notice.Summary != "" {
		n.Message = notice.Message + " " + notice.Summary
	}

	if err := d.store.Create(ctx, n); err != nil {
		log.Printf("notifications: storing handoff alert for %s/%s: %v", notice.TeamID, notice.MatterID, err)
		return
	}

	d.deliver(ctx, n)
}

// deliver posts the notification to every matching subscription and marks
// it delivered once any webhook accepts it.
func (d *Dispatcher) deliver(ctx context.Context, n *Notification) {
	subs, err := d.store.Subscriptions(ctx, n.TeamID)
	if err != nil {
		log.Printf("notifications: loading subscriptions for %s: %v", n.TeamID, err)
		return
	}

	payload, err := json.Marshal(n)
	if err != nil {
		log.Printf("notifications: encoding alert %s: %v", n.ID, err)
		return
	}

	delivered := false
	for _, sub := range subs {
		if !severityMatches(n.Severity, sub.SeverityFilter) {
			continue
		}
		if err := d.sendWebhook(ctx, sub.URL, payload); err != nil {
			log.Printf("notifications: webhook %s: %v", sub.URL, err)
			continue
		}
		delivered = true
	}

	if delivered {
		if err := d.store.MarkDelivered(ctx, n.ID); err != nil {
			log.Printf("notifications: marking %s delivered: %v", n.ID, err)
		}
	}
}

// RetryPending re-attempts delivery of undelivered alerts. Intended for a
// periodic sweep.
func (d *Dispatcher) RetryPending(ctx context.Context) error {
	pending, err := d.store.GetPending(ctx)
	if err != nil {
		return fmt.Errorf("loading pending notifications: %w", err)
	}
	for i := range pending {
		d.deliver(ctx, &pending[i])
	}
	return nil
}

func (d *Dispatcher) sendWebhook(ctx context.Context, url string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// severityFor maps a handoff reason onto an alert severity.
func severityFor(reason matter.HandoffReason) Severity {
	switch reason {
	case matter.ReasonHardTrigger:
		return SeverityCritical
	case matter.ReasonHighRisk:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// severityMatches reports whether actual meets or exceeds the filter.
func severityMatches(actual, filter Severity) bool {
	levels := map[Severity]int{
		SeverityInfo:     0,
		SeverityWarning:  1,
		SeverityCritical: 2,
	}
	return levels[actual] >= levels[filter]
}
