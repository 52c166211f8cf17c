// Package models holds the records persisted by the repositories.
package models

import "time"

// Account is a registered user. PasswordHash never leaves the server.
type Account struct {
	ID           string    `json:"id"`
	Salutation   string    `json:"salutation"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PhoneNumber  string    `json:"phoneNumber"`
	DateOfBirth  Date      `json:"dateOfBirth"`
	Address      string    `json:"address"`
	PasswordHash string    `json:"-"`
	ProfilePhoto *string   `json:"profilePhoto,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// MissingFields lists the required fields that are empty.
func (a *Account) MissingFields() []string {
	var missing []string
	check := func(name, v string) {
		if v == "" {
			missing = append(missing, name)
		}
	}
	check("salutation", a.Salutation)
	check("name", a.Name)
	check("email", a.Email)
	check("phoneNumber", a.PhoneNumber)
	if a.DateOfBirth.IsZero() {
		missing = append(missing, "dateOfBirth")
	}
	check("address", a.Address)
	check("password", a.PasswordHash)
	return missing
}

// Clone returns a deep copy.
func (a *Account) Clone() *Account {
	c := *a
	if a.ProfilePhoto != nil {
		p := *a.ProfilePhoto
		c.ProfilePhoto = &p
	}
	return &c
}

// AccountPatch is a partial account update. Nil fields stay unchanged.
type AccountPatch struct {
	Salutation   *string
	Name         *string
	Address      *string
	DateOfBirth  *Date
	ProfilePhoto *string
}

// IsEmpty reports whether the patch changes nothing.
func (p AccountPatch) IsEmpty() bool {
	return p.Salutation == nil && p.Name == nil && p.Address == nil &&
		p.DateOfBirth == nil && p.ProfilePhoto == nil
}

// Apply copies the set fields of p onto a.
func (p AccountPatch) Apply(a *Account) {
	if p.Salutation != nil {
		a.Salutation = *p.Salutation
	}
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Address != nil {
		a.Address = *p.Address
	}
	if p.DateOfBirth != nil {
		a.DateOfBirth = *p.DateOfBirth
	}
	if p.ProfilePhoto != nil {
		v := *p.ProfilePhoto
		a.ProfilePhoto = &v
	}
}
