package record_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/ganot/interview-etl/internal/domain/record"
	"github.com/ganot/interview-etl/internal/domain/schema"
	"github.com/stretchr/testify/require"
)

func backlogSchema() *schema.Schema {
	return &schema.Schema{
		Name:     "backlog",
		IDPrefix: "US",
		Fields: []schema.Field{
			{Name: "priority", Kind: schema.KindEnum, Values: []string{"High", "Medium", "Low"}},
			{Name: "epic", Kind: schema.KindText},
			{Name: "confidence", Kind: schema.KindScore, Min: 0, Max: 1},
			{Name: "tags", Kind: schema.KindTagSet},
		},
		Searchable: []string{"epic"},
	}
}

func story(id, priority, epic string) record.Record {
	return record.Record{ID: id, Fields: map[string]schema.Value{
		"priority": schema.String(priority),
		"epic":     schema.String(epic),
	}}
}

func newStore(t *testing.T, records ...record.Record) *record.Store {
	t.Helper()
	st, err := record.NewStore(backlogSchema(), record.StaticSeed(records...))
	require.NoError(t, err)
	return st
}

func TestAddRecord(t *testing.T) {
	st := newStore(t)

	rec, err := st.AddRecord(story("US-1", "High", "Auth"))
	require.NoError(t, err)
	require.Equal(t, 0.0, rec.Fields["confidence"].Num(), "missing score takes the field minimum")
	require.Empty(t, rec.Fields["tags"].TagList())

	_, err = st.AddRecord(story("US-1", "Low", "Billing"))
	require.ErrorIs(t, err, record.ErrDuplicateID)
	require.Equal(t, 1, st.Len())
}

func TestAddRecordValidation(t *testing.T) {
	st := newStore(t)

	_, err := st.AddRecord(story("US-1", "Urgent", "Auth"))
	var vErr *schema.ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "priority", vErr.Field)

	_, err = st.AddRecord(record.Record{ID: "US-2", Fields: map[string]schema.Value{"owner": schema.String("x")}})
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "owner", vErr.Field)

	_, err = st.AddRecord(record.Record{ID: " "})
	require.ErrorIs(t, err, schema.ErrValidation)

	require.Zero(t, st.Len())
}

func TestAddRecordKeepsInsertionOrder(t *testing.T) {
	st := newStore(t, story("US-2", "Low", "Billing"), story("US-1", "High", "Auth"))
	_, err := st.AddRecord(story("US-0", "Medium", "Search"))
	require.NoError(t, err)
	require.Equal(t, []string{"US-2", "US-1", "US-0"}, record.IDs(st.Records()))
}

func TestUpdateRecord(t *testing.T) {
	st := newStore(t, story("US-1", "High", "Auth"))

	rec, err := st.UpdateRecord("US-1", record.Patch{"epic": schema.String("Login")})
	require.NoError(t, err)
	require.Equal(t, "Login", rec.Fields["epic"].Str())
	require.Equal(t, "High", rec.Fields["priority"].Str(), "unpatched fields are kept")

	_, err = st.UpdateRecord("US-9", record.Patch{"epic": schema.String("x")})
	require.ErrorIs(t, err, record.ErrNotFound)
}

func TestUpdateRecordRejectsOutOfRangeScore(t *testing.T) {
	st := newStore(t, story("US-1", "High", "Auth"))
	before := st.Records()

	_, err := st.UpdateRecord("US-1", record.Patch{
		"epic":       schema.String("changed"),
		"confidence": schema.Number(1.5),
	})
	var vErr *schema.ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "confidence", vErr.Field)

	after := st.Records()
	require.Len(t, after, 1)
	require.True(t, before[0].Equal(after[0]), "store must be unchanged")
}

func TestUpdateRecordRejectsIDAndUnknownFields(t *testing.T) {
	st := newStore(t, story("US-1", "High", "Auth"))

	_, err := st.UpdateRecord("US-1", record.Patch{schema.IDField: schema.String("US-7")})
	require.ErrorIs(t, err, schema.ErrValidation)

	_, err = st.UpdateRecord("US-1", record.Patch{"owner": schema.String("x")})
	require.ErrorIs(t, err, schema.ErrValidation)

	_, err = st.Get("US-1")
	require.NoError(t, err)
}

func TestRemoveRecord(t *testing.T) {
	st := newStore(t, story("US-1", "High", "Auth"), story("US-2", "Low", "Billing"), story("US-3", "Low", "Search"))

	require.NoError(t, st.RemoveRecord("US-2"))
	require.Equal(t, []string{"US-1", "US-3"}, record.IDs(st.Records()))
	require.ErrorIs(t, st.RemoveRecord("US-2"), record.ErrNotFound)

	rec, err := st.Get("US-3")
	require.NoError(t, err)
	require.Equal(t, "Search", rec.Fields["epic"].Str())
}

func TestReplaceAllIsAllOrNothing(t *testing.T) {
	st := newStore(t, story("US-1", "High", "Auth"))

	err := st.ReplaceAll([]record.Record{story("US-5", "Low", "A"), story("US-6", "Bogus", "B")})
	require.ErrorIs(t, err, schema.ErrValidation)
	require.Equal(t, []string{"US-1"}, record.IDs(st.Records()))

	err = st.ReplaceAll([]record.Record{story("US-5", "Low", "A"), story("US-5", "High", "B")})
	require.ErrorIs(t, err, record.ErrDuplicateID)
	require.Equal(t, []string{"US-1"}, record.IDs(st.Records()))

	require.NoError(t, st.ReplaceAll([]record.Record{story("US-5", "Low", "A"), story("US-6", "High", "B")}))
	require.Equal(t, []string{"US-5", "US-6"}, record.IDs(st.Records()))
	_, err = st.Get("US-1")
	require.ErrorIs(t, err, record.ErrNotFound)
}

func TestRecordsReturnsCopies(t *testing.T) {
	st := newStore(t, story("US-1", "High", "Auth"))

	recs := st.Records()
	recs[0].Fields["epic"] = schema.String("mutated")

	rec, err := st.Get("US-1")
	require.NoError(t, err)
	require.Equal(t, "Auth", rec.Fields["epic"].Str())
}

func generateID(t *testing.T, st *record.Store, prefix string) string {
	t.Helper()
	id, err := st.GenerateID(prefix)
	require.NoError(t, err)
	return id
}

func TestGenerateIDSequence(t *testing.T) {
	st := newStore(t)

	for i := 1; i <= 5; i++ {
		require.Equal(t, fmt.Sprintf("US-%d", i), generateID(t, st, "US"))
	}
}

func TestGenerateIDAfterDeletions(t *testing.T) {
	st := newStore(t)
	seen := map[string]bool{}

	for i := 0; i < 20; i++ {
		id := generateID(t, st, "US")
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
		_, err := st.AddRecord(story(id, "Low", "x"))
		require.NoError(t, err)
		if i%3 == 0 {
			require.NoError(t, st.RemoveRecord(id))
		}
	}
	require.Equal(t, "US-21", generateID(t, st, "US"))
}

func TestGenerateIDFollowsExistingSuffixes(t *testing.T) {
	st := newStore(t, story("US-7", "High", "Auth"), story("REQ-40", "Low", "Billing"), story("legacy", "Low", "x"))

	require.Equal(t, "US-8", generateID(t, st, "US"))
	require.Equal(t, "REQ-41", generateID(t, st, "REQ"))
	require.Equal(t, "TASK-1", generateID(t, st, "TASK"))
	require.Equal(t, "US-9", generateID(t, st, ""), "empty prefix uses the schema prefix")
}

func TestGenerateIDAtSuffixLimit(t *testing.T) {
	st := newStore(t, story(fmt.Sprintf("US-%d", math.MaxInt), "High", "Auth"))

	_, err := st.GenerateID("US")
	require.ErrorIs(t, err, record.ErrIDsExhausted)
	require.Equal(t, "REQ-1", generateID(t, st, "REQ"))

	_, err = st.AddRecord(record.Record{Fields: map[string]schema.Value{"priority": schema.String("Low")}})
	require.ErrorIs(t, err, record.ErrIDsExhausted)
	require.Equal(t, 1, st.Len())
}

func TestAddRecordGeneratesMissingID(t *testing.T) {
	st := newStore(t, story("US-2", "High", "Auth"))

	_, err := st.AddRecord(record.Record{Fields: map[string]schema.Value{"priority": schema.String("Urgent")}})
	require.ErrorIs(t, err, schema.ErrValidation)

	rec, err := st.AddRecord(record.Record{Fields: map[string]schema.Value{"priority": schema.String("Low")}})
	require.NoError(t, err)
	require.Equal(t, "US-3", rec.ID, "a rejected add does not use up a number")
	require.Equal(t, "US-4", generateID(t, st, ""))
}

func TestNewStoreSeeds(t *testing.T) {
	st, err := record.NewStore(backlogSchema(), record.EmptySeed)
	require.NoError(t, err)
	require.Zero(t, st.Len())

	_, err = record.NewStore(backlogSchema(), record.StaticSeed(story("US-1", "nope", "x")))
	require.ErrorIs(t, err, schema.ErrValidation)

	sample, err := record.NewStore(schema.UserStory(), record.SampleSeed())
	require.NoError(t, err)
	require.Equal(t, []string{"US-1", "US-2", "US-3"}, record.IDs(sample.Records()))

	req, err := record.NewStore(schema.Requirement(), record.SampleSeed())
	require.NoError(t, err)
	require.Equal(t, 2, req.Len())
}

type sourceStub struct {
	records []record.Record
	err     error
}

func (s sourceStub) Results(_ context.Context, _ string) ([]record.Record, error) {
	return s.records, s.err
}

func TestSourceSeed(t *testing.T) {
	ctx := context.Background()

	st, err := record.NewStore(backlogSchema(), record.SourceSeed(ctx, sourceStub{records: []record.Record{story("US-3", "Low", "x")}}, "job1"))
	require.NoError(t, err)
	require.Equal(t, []string{"US-3"}, record.IDs(st.Records()))
	require.Equal(t, "US-4", generateID(t, st, "US"))

	boom := errors.New("boom")
	_, err = record.NewStore(backlogSchema(), record.SourceSeed(ctx, sourceStub{err: boom}, "job1"))
	require.ErrorIs(t, err, boom)
}
