package domain

import "time"

// Agent is a support operator who signs in to the dashboard.
type Agent struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DisplayName returns the name used on outgoing replies.
func (a *Agent) DisplayName() string {
	if a == nil || a.Name == "" {
		return DefaultAgentName
	}
	return a.Name
}
