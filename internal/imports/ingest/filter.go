package ingest

// PreviewSize is how many leads a preview shows. It never limits a commit.
const PreviewSize = 10

// Filter drops blank leads, keeping order.
func Filter(leads []CanonicalLead) []CanonicalLead {
	out := make([]CanonicalLead, 0, len(leads))
	for _, lead := range leads {
		if !lead.Blank() {
			out = append(out, lead)
		}
	}
	return out
}

// Head returns at most n leading leads.
func Head(leads []CanonicalLead, n int) []CanonicalLead {
	if n < 0 || len(leads) <= n {
		return leads
	}
	return leads[:n]
}
