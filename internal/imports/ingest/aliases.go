package ingest

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Field is a canonical lead attribute.
type Field string

const (
	FieldCompanyName Field = "company_name"
	FieldDepartment  Field = "department"
	FieldPosition    Field = "position"
	FieldContactName Field = "contact_name"
	FieldPhone       Field = "phone"
	FieldEmail       Field = "email"
	FieldAddress     Field = "address"
	FieldNotes       Field = "notes"
)

// Fields lists the canonical fields in mapping order.
var Fields = []Field{
	FieldCompanyName,
	FieldDepartment,
	FieldPosition,
	FieldContactName,
	FieldPhone,
	FieldEmail,
	FieldAddress,
	FieldNotes,
}

// AliasTable maps each canonical field to the header labels accepted for it,
// in priority order.
type AliasTable map[Field][]string

// defaultAliases holds the labels seen in customer exports. Some labels are
// reused by different sheet conventions: 비고 feeds both position and notes.
var defaultAliases = AliasTable{
	FieldCompanyName: {"업데이트일", "회사명", "Company", "업체명"},
	FieldDepartment:  {"기업별", "부서", "Department", "소속"},
	FieldPosition:    {"비고", "직급", "Position", "직위"},
	FieldContactName: {"사업자번호", "담당자명", "Contact", "담당자", "이름"},
	FieldPhone:       {"연락처", "전화번호", "Phone", "휴대폰", "전화"},
	FieldEmail:       {"이메일", "Email", "메일"},
	FieldAddress:     {"신업본부", "주소", "Address", "위치"},
	FieldNotes:       {"지역", "메모", "Notes", "비고", "기타"},
}

// Labels consulted before position when a row falls back to positional mapping.
const (
	fallbackCompanyLabel = "*작업일 기재"
	fallbackContactLabel = "개인'인 경우 기재"
)

// DefaultAliases returns a copy of the built-in alias table.
func DefaultAliases() AliasTable {
	return AliasTable{}.Merge(defaultAliases)
}

// Merge returns a new table with extra's labels appended after t's for every
// field. Labels already present are not repeated.
func (t AliasTable) Merge(extra AliasTable) AliasTable {
	out := make(AliasTable, len(Fields))
	for _, field := range Fields {
		labels := append([]string(nil), t[field]...)
		for _, label := range extra[field] {
			label = strings.TrimSpace(label)
			if label == "" || contains(labels, label) {
				continue
			}
			labels = append(labels, label)
		}
		if len(labels) > 0 {
			out[field] = labels
		}
	}
	return out
}

// LoadAliasFile reads additional labels from a YAML document keyed by field name:
//
//	phone: ["핸드폰", "Mobile"]
//	company_name: ["거래처"]
//
// The result extends the built-in table; unknown field names are an error.
func LoadAliasFile(path string) (AliasTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read alias file: %w", err)
	}
	return ParseAliases(data)
}

// ParseAliases decodes the YAML alias document used by LoadAliasFile and merges
// it onto the built-in table.
func ParseAliases(data []byte) (AliasTable, error) {
	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse alias file: %w", err)
	}

	extra := make(AliasTable, len(raw))
	for name, labels := range raw {
		field := Field(name)
		if !knownField(field) {
			return nil, fmt.Errorf("parse alias file: unknown field %q", name)
		}
		extra[field] = labels
	}
	return DefaultAliases().Merge(extra), nil
}

func knownField(field Field) bool {
	for _, f := range Fields {
		if f == field {
			return true
		}
	}
	return false
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
