package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Lead is a prospective customer tracked through the sales pipeline.
// Timestamps are kept as the ISO 8601 strings the store hands us; date
// parsing tolerance is a per-consumer decision, so no field is a time.Time.
type Lead struct {
	ID          string  `json:"id"`
	Name        string  `json:"name,omitempty"`
	Email       string  `json:"email,omitempty"`
	Phone       string  `json:"phone,omitempty"`
	Company     string  `json:"company,omitempty"`
	Stage       string  `json:"stage,omitempty"`
	Status      string  `json:"status,omitempty"`
	Priority    string  `json:"priority,omitempty"` // low | medium | high, advisory
	Source      string  `json:"source,omitempty"`
	AssignedTo  string  `json:"assignedTo,omitempty"`
	CreatedAt   string  `json:"createdAt,omitempty"`
	LastContact string  `json:"lastContact,omitempty"`
	Notes       string  `json:"notes,omitempty"`
	Value       float64 `json:"value,omitempty"`
	Prorated    float64 `json:"prorated,omitempty"`
	IsDuplicate bool    `json:"isDuplicate,omitempty"`
}

func NewLead(name, email, phone, company string) (*Lead, error) {
	lead := &Lead{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		Phone:     phone,
		Company:   company,
		Stage:     "new",
		Status:    "new",
		CreatedAt: time.Now().Format(time.RFC3339),
	}

	if err := lead.Validate(); err != nil {
		return nil, err
	}

	return lead, nil
}

func (l *Lead) Validate() error {
	if l.ID == "" {
		return errors.New("id is required")
	}
	if l.Name == "" && l.Email == "" && l.Phone == "" {
		return errors.New("lead needs at least a name, email or phone")
	}
	return nil
}

// LastActionAt is the canonical "when did we last touch this lead" field:
// lastContact when present, createdAt otherwise. Every date-sensitive
// consumer (range filters, delay classifier) goes through this one mapping.
func (l *Lead) LastActionAt() string {
	if l.LastContact != "" {
		return l.LastContact
	}
	return l.CreatedAt
}
