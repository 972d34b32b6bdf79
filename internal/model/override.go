package model

import (
	"slices"

	"github.com/rotisserie/eris"
)

// LeadStatus is the relationship-management stage of a lead.
type LeadStatus string

const (
	StatusNew       LeadStatus = "new"
	StatusContacted LeadStatus = "contacted"
	StatusQualified LeadStatus = "qualified"
	StatusProposal  LeadStatus = "proposal"
	StatusWon       LeadStatus = "won"
	StatusLost      LeadStatus = "lost"
)

// LeadStatuses lists every accepted status in pipeline order.
var LeadStatuses = []LeadStatus{
	StatusNew, StatusContacted, StatusQualified, StatusProposal, StatusWon, StatusLost,
}

// Valid reports whether s is a known status.
func (s LeadStatus) Valid() bool {
	return slices.Contains(LeadStatuses, s)
}

// Override holds user-entered fields for one institution. Nil fields are
// absent; a present field always wins over computed data.
type Override struct {
	ContactName     *string     `json:"contact_name,omitempty"`
	ContactEmail    *string     `json:"contact_email,omitempty"`
	ContactPhone    *string     `json:"contact_phone,omitempty"`
	Status          *LeadStatus `json:"status,omitempty"`
	Notes           *string     `json:"notes,omitempty"`
	ScoreOverride   *int        `json:"score_override,omitempty"`
	LastContactDate *string     `json:"last_contact_date,omitempty"`
}

// IsEmpty reports whether no field is present.
func (o Override) IsEmpty() bool {
	return o.ContactName == nil && o.ContactEmail == nil && o.ContactPhone == nil &&
		o.Status == nil && o.Notes == nil && o.ScoreOverride == nil && o.LastContactDate == nil
}

// Validate rejects out-of-range values on the write path.
func (o Override) Validate() error {
	if o.Status != nil && !o.Status.Valid() {
		return eris.Errorf("override: unknown status %q", *o.Status)
	}
	if o.ScoreOverride != nil && (*o.ScoreOverride < 0 || *o.ScoreOverride > 100) {
		return eris.Errorf("override: score_override %d out of range [0,100]", *o.ScoreOverride)
	}
	return nil
}

// Merge returns o with every present field of patch applied on top.
// Fields absent from patch keep their value in o.
func (o Override) Merge(patch Override) Override {
	if patch.ContactName != nil {
		o.ContactName = patch.ContactName
	}
	if patch.ContactEmail != nil {
		o.ContactEmail = patch.ContactEmail
	}
	if patch.ContactPhone != nil {
		o.ContactPhone = patch.ContactPhone
	}
	if patch.Status != nil {
		o.Status = patch.Status
	}
	if patch.Notes != nil {
		o.Notes = patch.Notes
	}
	if patch.ScoreOverride != nil {
		o.ScoreOverride = patch.ScoreOverride
	}
	if patch.LastContactDate != nil {
		o.LastContactDate = patch.LastContactDate
	}
	return o
}

// Ptr returns a pointer to v. Convenience for building overrides.
func Ptr[T any](v T) *T {
	return &v
}
