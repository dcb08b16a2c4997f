package model

import "time"

// LeadStatus is the processing state of a lead in the back office.
type LeadStatus string

const (
	LeadStatusNew        LeadStatus = "new"
	LeadStatusInProgress LeadStatus = "in_progress"
	LeadStatusDone       LeadStatus = "done"
)

// Valid reports whether s is one of the known statuses.
func (s LeadStatus) Valid() bool {
	switch s {
	case LeadStatusNew, LeadStatusInProgress, LeadStatusDone:
		return true
	}
	return false
}

// Lead is one request submitted through the site form.
// ID and CreatedAt are assigned by the store and never change afterwards.
type Lead struct {
	ID           int64      `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	Organization string     `json:"organization" db:"organization"`
	Phone        string     `json:"phone" db:"phone"`
	Email        string     `json:"email" db:"email"`
	Message      string     `json:"message" db:"message"`
	Item         string     `json:"item" db:"item"`
	Source       string     `json:"source" db:"source"`
	IP           string     `json:"ip" db:"ip"`
	UserAgent    string     `json:"user_agent" db:"user_agent"`
	Status       LeadStatus `json:"status" db:"status"`
	ManagerNote  string     `json:"manager_note" db:"manager_note"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// LeadSubmission is the untrusted payload of the public request form plus
// the transport metadata the handler attaches to it.
type LeadSubmission struct {
	Name         string `json:"name"`
	Organization string `json:"organization"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Message      string `json:"message"`
	Item         string `json:"item"`
	Source       string `json:"source"`
	// Website is the honeypot field; people never see it, bots fill it in.
	Website string `json:"website"`

	IP        string `json:"-"`
	UserAgent string `json:"-"`
}
