package ingest

import "strings"

// UnconfirmedContact stands in for a contact name the sheet did not provide.
const UnconfirmedContact = "미확인"

// CanonicalLead is one row mapped onto the fixed lead schema. Empty means absent.
type CanonicalLead struct {
	CompanyName string `json:"company_name"`
	Department  string `json:"department"`
	Position    string `json:"position"`
	ContactName string `json:"contact_name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	Notes       string `json:"notes"`
}

func (l *CanonicalLead) set(field Field, value string) {
	switch field {
	case FieldCompanyName:
		l.CompanyName = value
	case FieldDepartment:
		l.Department = value
	case FieldPosition:
		l.Position = value
	case FieldContactName:
		l.ContactName = value
	case FieldPhone:
		l.Phone = value
	case FieldEmail:
		l.Email = value
	case FieldAddress:
		l.Address = value
	case FieldNotes:
		l.Notes = value
	}
}

// Blank reports whether every field is empty after trimming.
func (l CanonicalLead) Blank() bool {
	for _, v := range []string{l.CompanyName, l.Department, l.Position, l.ContactName, l.Phone, l.Email, l.Address, l.Notes} {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Canonicalizer maps raw rows onto CanonicalLead using an alias table.
type Canonicalizer struct {
	aliases AliasTable
}

// NewCanonicalizer creates a canonicalizer over aliases.
func NewCanonicalizer(aliases AliasTable) *Canonicalizer {
	return &Canonicalizer{aliases: aliases}
}

// Canonicalize maps row by label first. When company, contact and phone all
// come out empty the row is re-read by position instead. It is a pure function
// of row and the alias table.
func (c *Canonicalizer) Canonicalize(row RawRow) CanonicalLead {
	var lead CanonicalLead
	for _, field := range Fields {
		lead.set(field, row.Lookup(c.aliases[field]...))
	}

	if lead.CompanyName != "" || lead.ContactName != "" || lead.Phone != "" {
		return lead
	}
	// A fully blank row stays blank so the row filter drops it.
	if row.Blank() {
		return lead
	}
	return positionalLead(row)
}

// positionalLead reads a row whose labels told us nothing. Values are taken in
// column order; phone and email are rescued by pattern wherever they sit.
func positionalLead(row RawRow) CanonicalLead {
	values := row.Values()
	at := func(i int) string {
		if i < len(values) {
			return values[i]
		}
		return ""
	}

	lead := CanonicalLead{
		CompanyName: firstNonEmpty(row.Lookup(fallbackCompanyLabel), at(0)),
		Department:  at(1),
		Position:    at(2),
		ContactName: firstNonEmpty(row.Lookup(fallbackContactLabel), at(3), UnconfirmedContact),
		Phone:       at(4),
		Email:       at(5),
		Address:     at(6),
	}
	if len(values) > 7 {
		lead.Notes = strings.Join(values[7:], " ")
	}

	for _, value := range values {
		if LooksLikePhone(value) {
			lead.Phone = value
			break
		}
	}
	for _, value := range values {
		if strings.Contains(value, "@") {
			lead.Email = value
			break
		}
	}
	return lead
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
