package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterNeverKeepsBlankLeads(t *testing.T) {
	leads := []CanonicalLead{
		{},
		{CompanyName: "Acme"},
		{Notes: "   ", Email: "\t"},
		{Phone: "010-1234-5678"},
	}

	filtered := Filter(leads)

	assert.Len(t, filtered, 2)
	for _, lead := range filtered {
		assert.False(t, lead.Blank())
	}
	assert.Equal(t, "Acme", filtered[0].CompanyName)
}

func TestHeadBoundsPreviewOnly(t *testing.T) {
	leads := make([]CanonicalLead, 25)
	for i := range leads {
		leads[i] = CanonicalLead{ContactName: "c"}
	}

	assert.Len(t, Head(leads, PreviewSize), 10)
	assert.Len(t, leads, 25)
	assert.Len(t, Head(leads[:3], PreviewSize), 3)
}
