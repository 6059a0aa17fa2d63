package ingest

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateHeadersCoverEveryField(t *testing.T) {
	require.Len(t, TemplateHeaders, len(Fields))

	aliases := DefaultAliases()
	for i, field := range Fields {
		assert.Contains(t, aliases[field], TemplateHeaders[i], "label for %s", field)
	}
}

func TestWriteTemplateRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTemplate(&buf))

	grid, err := LoadGrid(buf.Bytes(), "template.xlsx")
	require.NoError(t, err)
	require.Len(t, grid, 1)
	assert.Equal(t, TemplateHeaders, []string(grid[0]))

	filled := Grid{
		grid[0],
		{"Acme", "영업", "과장", "김민수", "010-1234-5678", "kim@acme.kr", "서울", "재연락"},
	}
	result, err := NewEngine(nil).ParseGrid(filled)
	require.NoError(t, err)
	require.Len(t, result.Leads, 1)
	assert.Equal(t, CanonicalLead{
		CompanyName: "Acme",
		Department:  "영업",
		Position:    "과장",
		ContactName: "김민수",
		Phone:       "010-1234-5678",
		Email:       "kim@acme.kr",
		Address:     "서울",
		Notes:       "재연락",
	}, result.Leads[0])
}
