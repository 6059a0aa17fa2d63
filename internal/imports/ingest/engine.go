package ingest

import "fmt"

// Result is the outcome of parsing one upload.
type Result struct {
	// Leads is the full filtered set; a commit writes all of it.
	Leads []CanonicalLead
	// Strategy names the extraction strategy that produced the rows.
	Strategy string
	// DataStart is the index of the first extracted row treated as data.
	DataStart int
	// RowsRead counts extracted rows before data-start trimming and filtering.
	RowsRead int
}

// Preview returns the first PreviewSize leads.
func (r *Result) Preview() []CanonicalLead {
	return Head(r.Leads, PreviewSize)
}

// Engine runs the ingestion pipeline.
type Engine struct {
	strategies    []Strategy
	canonicalizer *Canonicalizer
}

// NewEngine creates an engine with the default strategy cascade and aliases.
func NewEngine(aliases AliasTable) *Engine {
	if aliases == nil {
		aliases = DefaultAliases()
	}
	return &Engine{
		strategies:    DefaultStrategies,
		canonicalizer: NewCanonicalizer(aliases),
	}
}

// Parse decodes an upload and runs it through the pipeline.
func (e *Engine) Parse(data []byte, fileName string) (*Result, error) {
	grid, err := LoadGrid(data, fileName)
	if err != nil {
		return nil, err
	}
	return e.ParseGrid(grid)
}

// ParseGrid runs an already decoded grid through the pipeline. It returns
// ErrUnreadableSheet when nothing could be extracted and ErrNoData when every
// row turned out blank.
func (e *Engine) ParseGrid(grid Grid) (*Result, error) {
	rows, strategy, err := Extract(grid, e.strategies)
	if err != nil {
		return nil, err
	}

	start := LocateDataStart(rows)
	leads := make([]CanonicalLead, 0, len(rows)-start)
	for _, row := range rows[start:] {
		leads = append(leads, e.canonicalizer.Canonicalize(row))
	}

	filtered := Filter(leads)
	if len(filtered) == 0 {
		return nil, fmt.Errorf("%w: %d rows read", ErrNoData, len(rows))
	}

	return &Result{
		Leads:     filtered,
		Strategy:  strategy,
		DataStart: start,
		RowsRead:  len(rows),
	}, nil
}
