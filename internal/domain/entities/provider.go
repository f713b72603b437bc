package entities

import (
	"errors"
	"strings"
)

// ErrMalformedRow marks a registry row missing a required field. Loaders skip
// such rows instead of failing.
var ErrMalformedRow = errors.New("malformed registry row")

// ProviderRecord is one normalized row of the provider registry.
// Records are immutable once the registry has been loaded.
type ProviderRecord struct {
	NationalID           string `json:"national_id" db:"national_id"`
	FacilityName         string `json:"facility_name" db:"facility_name"`
	FirstName            string `json:"first_name" db:"first_name"`
	LastName             string `json:"last_name" db:"last_name"`
	Credentials          string `json:"credentials,omitempty" db:"credentials"`
	Gender               string `json:"gender,omitempty" db:"gender"`
	GraduationYear       *int   `json:"graduation_year,omitempty" db:"graduation_year"`
	PrimarySpecialty     string `json:"primary_specialty" db:"primary_specialty"`
	AddressLine1         string `json:"address_line1" db:"address_line1"`
	AddressIsSynthesized bool   `json:"address_is_synthesized" db:"-"`
	City                 string `json:"city" db:"city"`
	State                string `json:"state" db:"state"`
	PostalCode           string `json:"postal_code" db:"postal_code"`
	Phone                string `json:"phone,omitempty" db:"phone"`
}

// Normalize trims every field, uppercases specialty and state, and synthesizes
// an address line when the registry left it blank.
func (p *ProviderRecord) Normalize() {
	p.NationalID = strings.TrimSpace(p.NationalID)
	p.FacilityName = strings.TrimSpace(p.FacilityName)
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Credentials = strings.TrimSpace(p.Credentials)
	p.Gender = strings.ToUpper(strings.TrimSpace(p.Gender))
	p.PrimarySpecialty = strings.ToUpper(strings.Join(strings.Fields(p.PrimarySpecialty), " "))
	p.AddressLine1 = strings.TrimSpace(p.AddressLine1)
	p.City = strings.TrimSpace(p.City)
	p.State = strings.ToUpper(strings.TrimSpace(p.State))
	p.PostalCode = strings.TrimSpace(p.PostalCode)
	p.Phone = strings.TrimSpace(p.Phone)

	if p.AddressLine1 == "" {
		p.AddressIsSynthesized = true
		if p.FacilityName != "" {
			p.AddressLine1 = p.FacilityName
		} else {
			p.AddressLine1 = "Main Office"
		}
	}
}

// Validate reports ErrMalformedRow when identity, name or specialty is missing.
func (p *ProviderRecord) Validate() error {
	switch {
	case p.NationalID == "":
		return errors.Join(ErrMalformedRow, errors.New("national id is empty"))
	case p.FirstName == "":
		return errors.Join(ErrMalformedRow, errors.New("first name is empty"))
	case p.LastName == "":
		return errors.Join(ErrMalformedRow, errors.New("last name is empty"))
	case p.PrimarySpecialty == "":
		return errors.Join(ErrMalformedRow, errors.New("primary specialty is empty"))
	}
	return nil
}

// UniqueKey identifies the same practitioner at the same facility.
func (p *ProviderRecord) UniqueKey() string {
	return p.NationalID + "|" + p.FacilityName + "|" + p.City
}

// YearsExperience estimates years in practice from the graduation year.
// It returns false when the registry carries no graduation year.
func (p *ProviderRecord) YearsExperience(currentYear int) (int, bool) {
	if p.GraduationYear == nil || *p.GraduationYear <= 0 || *p.GraduationYear > currentYear {
		return 0, false
	}
	return currentYear - *p.GraduationYear, true
}
