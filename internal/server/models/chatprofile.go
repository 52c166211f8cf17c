package models

import "time"

// ChatProfile is the phone-keyed chat identity. It is not linked to an
// Account.
type ChatProfile struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Qualification string    `json:"qualification"`
	Phone         string    `json:"phone"`
	DOB           Date      `json:"dob"`
	About         string    `json:"about"`
	Skills        []string  `json:"skills"`
	ProfilePhoto  *string   `json:"profilePhoto,omitempty"`
	Document      *string   `json:"document,omitempty"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Clone returns a deep copy.
func (p *ChatProfile) Clone() *ChatProfile {
	c := *p
	c.Skills = append([]string(nil), p.Skills...)
	if p.ProfilePhoto != nil {
		v := *p.ProfilePhoto
		c.ProfilePhoto = &v
	}
	if p.Document != nil {
		v := *p.Document
		c.Document = &v
	}
	return &c
}

// Merge fills the optional references of p that are unset from existing.
func (p *ChatProfile) Merge(existing *ChatProfile) {
	if p.ProfilePhoto == nil && existing.ProfilePhoto != nil {
		v := *existing.ProfilePhoto
		p.ProfilePhoto = &v
	}
	if p.Document == nil && existing.Document != nil {
		v := *existing.Document
		p.Document = &v
	}
}
