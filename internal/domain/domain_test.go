package domain

import "testing"

func TestLabels(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"status", TicketStatusInProgress.Label(), "In Progress"},
		{"priority", TicketPriorityUrgent.Label(), "Urgent"},
		{"category", TicketCategoryFeatureRequest.Label(), "Feature Request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestEnumValidity(t *testing.T) {
	if !TicketStatusResolved.Valid() || TicketStatus("pending").Valid() {
		t.Error("status validity mismatch")
	}
	if !TicketPriorityLow.Valid() || TicketPriority("LOW").Valid() {
		t.Error("priority validity mismatch")
	}
	if !TicketCategoryBugReport.Valid() || TicketCategory("other").Valid() {
		t.Error("category validity mismatch")
	}
	if !SenderAI.Valid() || SenderType("bot").Valid() {
		t.Error("sender validity mismatch")
	}
	if len(TicketStatuses()) != 4 || len(TicketPriorities()) != 4 || len(TicketCategories()) != 5 {
		t.Error("unexpected enum set sizes")
	}
}

func TestAgentDisplayName(t *testing.T) {
	var nilAgent *Agent
	if nilAgent.DisplayName() != DefaultAgentName {
		t.Error("nil agent should fall back to default name")
	}
	if (&Agent{Name: "Dana"}).DisplayName() != "Dana" {
		t.Error("expected agent name")
	}
}
