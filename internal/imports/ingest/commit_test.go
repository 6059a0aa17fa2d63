package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	calls int
	got   []PersistableLead
	err   error
}

func (w *recordingWriter) WriteLeads(_ context.Context, leads []PersistableLead) (int, error) {
	w.calls++
	w.got = leads
	if w.err != nil {
		return 0, w.err
	}
	return len(leads), nil
}

func TestCommitRejectsEmptyBatchBeforeStore(t *testing.T) {
	w := &recordingWriter{}

	n, err := Commit(context.Background(), w, uuid.New(), nil)

	assert.ErrorIs(t, err, ErrEmptyBatch)
	assert.Zero(t, n)
	assert.Zero(t, w.calls)
}

func TestCommitWritesWholeBatchOnce(t *testing.T) {
	tenant := uuid.New()
	w := &recordingWriter{}
	leads := make([]CanonicalLead, 15)
	for i := range leads {
		leads[i] = CanonicalLead{CompanyName: "Acme"}
	}

	n, err := Commit(context.Background(), w, tenant, leads)

	require.NoError(t, err)
	assert.Equal(t, 15, n)
	assert.Equal(t, 1, w.calls)
	for _, lead := range w.got {
		assert.Equal(t, tenant, lead.CompanyID)
	}
}

func TestCommitSurfacesStoreFailure(t *testing.T) {
	storeErr := errors.New(`duplicate key value violates unique constraint "leads_pkey"`)
	w := &recordingWriter{err: storeErr}

	_, err := Commit(context.Background(), w, uuid.New(), []CanonicalLead{{Phone: "010-1234-5678"}})

	assert.ErrorIs(t, err, storeErr)
}

func TestProjectAppliesStorageDefaults(t *testing.T) {
	tenant := uuid.New()
	p := Project(CanonicalLead{Phone: "010-1234-5678"}, tenant)

	assert.Equal(t, tenant, p.CompanyID)
	assert.Equal(t, UnconfirmedContact, p.ContactName)
	assert.Equal(t, "010-1234-5678", p.Phone)
	assert.Nil(t, p.Email)
	assert.Nil(t, p.CompanyName)
	assert.Nil(t, p.Notes)
	assert.Equal(t, StatusNew, p.Status)
	assert.Equal(t, DefaultPriority, p.PriorityLevel)
}

func TestProjectSynthesizesNotes(t *testing.T) {
	p := Project(CanonicalLead{
		CompanyName: "Acme",
		ContactName: "김민수",
		Email:       "kim@acme.kr",
		Department:  "영업부",
		Address:     "서울시 강남구",
		Notes:       "재통화 요망",
	}, uuid.New())

	require.NotNil(t, p.Notes)
	assert.Equal(t, "부서: 영업부\n주소: 서울시 강남구\n재통화 요망", *p.Notes)
	require.NotNil(t, p.Email)
	assert.Equal(t, "kim@acme.kr", *p.Email)
	assert.Equal(t, "김민수", p.ContactName)
	assert.Equal(t, "", Project(CanonicalLead{CompanyName: "x"}, uuid.New()).Phone)
}

func TestProjectTrimsTrailingNoteNewline(t *testing.T) {
	p := Project(CanonicalLead{Position: "과장"}, uuid.New())

	require.NotNil(t, p.Notes)
	assert.Equal(t, "직급: 과장", *p.Notes)
}
