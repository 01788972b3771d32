package events

import "strings"

// Broadcast is an email the organizer sends to everyone registered.
type Broadcast struct {
	Subject             string `json:"subject"`
	Message             string `json:"message"`
	IncludeEventDetails bool   `json:"includeEventDetails"`
}

func (b Broadcast) Validate() error {
	if strings.TrimSpace(b.Subject) == "" || strings.TrimSpace(b.Message) == "" {
		return NewInvalidBroadcastError("Please fill in both subject and message")
	}
	return nil
}
