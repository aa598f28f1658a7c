package csvcodec_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ganot/interview-etl/internal/csvcodec"
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
			{Name: "notes", Label: "Notes, free form", Kind: schema.KindLongText},
			{Name: "confidence", Kind: schema.KindScore, Min: 0, Max: 1},
			{Name: "tags", Kind: schema.KindTagSet},
		},
	}
}

func rec(id string, fields map[string]schema.Value) record.Record {
	return record.Record{ID: id, Fields: fields}
}

func TestEncodeConcreteScenario(t *testing.T) {
	records := []record.Record{
		rec("US-1", map[string]schema.Value{"priority": schema.String("High"), "epic": schema.String("Auth")}),
		rec("US-2", map[string]schema.Value{"priority": schema.String("Low"), "epic": schema.String("Billing")}),
	}

	out, err := csvcodec.Encode(records, backlogSchema(), []string{"id", "priority", "epic"})
	require.NoError(t, err)
	require.Equal(t, "id,priority,epic\nUS-1,High,Auth\nUS-2,Low,Billing", out)
}

func TestEncodeQuoting(t *testing.T) {
	records := []record.Record{
		rec("US-1", map[string]schema.Value{"epic": schema.String(`say "hi", then leave`)}),
		rec("US-2", map[string]schema.Value{"epic": schema.String("two\nlines")}),
		rec("US-3", map[string]schema.Value{"epic": schema.String(" padded ")}),
	}

	out, err := csvcodec.Encode(records, backlogSchema(), []string{"id", "epic"})
	require.NoError(t, err)
	require.Equal(t, "id,epic\nUS-1,\"say \"\"hi\"\", then leave\"\nUS-2,\"two\nlines\"\nUS-3, padded ", out)
}

func TestEncodeFieldKinds(t *testing.T) {
	records := []record.Record{
		rec("US-1", map[string]schema.Value{
			"confidence": schema.Number(0.92),
			"tags":       schema.Tags("workflow", "approval"),
		}),
		rec("US-2", map[string]schema.Value{
			"confidence": schema.Number(1),
			"tags":       schema.Tags(),
		}),
	}

	out, err := csvcodec.Encode(records, backlogSchema(), []string{"id", "confidence", "tags", "notes"})
	require.NoError(t, err)
	require.Equal(t, "id,confidence,tags,\"Notes, free form\"\nUS-1,0.92,workflow;approval,\nUS-2,1,,", out)
}

func TestEncodeDefaultFieldOrder(t *testing.T) {
	out, err := csvcodec.Encode(nil, backlogSchema(), nil)
	require.NoError(t, err)
	require.Equal(t, `id,priority,epic,"Notes, free form",confidence,tags`, out)
}

func TestEncodeUnknownField(t *testing.T) {
	_, err := csvcodec.Encode(nil, backlogSchema(), []string{"id", "owner"})
	require.ErrorIs(t, err, schema.ErrInvalidField)
}

func TestEncodeToMatchesEncode(t *testing.T) {
	records := []record.Record{rec("US-1", map[string]schema.Value{"epic": schema.String("a,b")})}

	var buf bytes.Buffer
	require.NoError(t, csvcodec.EncodeTo(&buf, records, backlogSchema(), nil))
	out, err := csvcodec.Encode(records, backlogSchema(), nil)
	require.NoError(t, err)
	require.Equal(t, out, buf.String())
	require.False(t, strings.HasSuffix(out, "\n"))
}

func TestEncodeMissingFieldsUseDefaults(t *testing.T) {
	s := backlogSchema()
	records := []record.Record{rec("US-1", map[string]schema.Value{"priority": schema.String("Low")})}

	text, err := csvcodec.Encode(records, s, nil)
	require.NoError(t, err)
	require.Equal(t, "id,priority,epic,\"Notes, free form\",confidence,tags\nUS-1,Low,,,0,", text)

	decoded, err := csvcodec.Decode(text, s, nil)
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	require.Equal(t, 0.0, decoded[0].Fields["confidence"].Num())
	require.Empty(t, decoded[0].Fields["tags"].TagList())
}

func TestRoundTrip(t *testing.T) {
	s := backlogSchema()
	records := []record.Record{
		rec("US-1", map[string]schema.Value{
			"priority":   schema.String("High"),
			"epic":       schema.String(`Auth, "SSO" edition`),
			"notes":      schema.String("line one\nline two, with comma\n\"quoted\" line"),
			"confidence": schema.Number(0.125),
			"tags":       schema.Tags("security", "sso"),
		}),
		rec("US-2", map[string]schema.Value{
			"priority":   schema.String("Low"),
			"epic":       schema.String(""),
			"notes":      schema.String(`"`),
			"confidence": schema.Number(0),
			"tags":       schema.Tags(),
		}),
		rec("US-3", map[string]schema.Value{
			"priority":   schema.String("Medium"),
			"epic":       schema.String("  leading and trailing  "),
			"notes":      schema.String("\n"),
			"confidence": schema.Number(1),
			"tags":       schema.Tags("a b", "c,d"),
		}),
	}

	text, err := csvcodec.Encode(records, s, nil)
	require.NoError(t, err)

	decoded, err := csvcodec.Decode(text, s, nil)
	require.NoError(t, err)
	require.Len(t, decoded, len(records))
	for i := range records {
		require.True(t, records[i].Equal(decoded[i]), "record %d: %#v", i, decoded[i])
	}
}

func TestRoundTripSingleEmptyColumn(t *testing.T) {
	s := backlogSchema()
	records := []record.Record{rec("", nil), rec("US-2", nil)}

	text, err := csvcodec.Encode(records, s, []string{"id"})
	require.NoError(t, err)
	require.Equal(t, "id\n\"\"\nUS-2", text)

	decoded, err := csvcodec.Decode(text, s, []string{"id"})
	require.NoError(t, err)
	require.Equal(t, []string{"", "US-2"}, record.IDs(decoded))
}

func TestDecodeToleratesTrailingNewline(t *testing.T) {
	decoded, err := csvcodec.Decode("id,epic\nUS-1,Auth\n", backlogSchema(), []string{"id", "epic"})
	require.NoError(t, err)
	require.Equal(t, []string{"US-1"}, record.IDs(decoded))
	require.Equal(t, "Auth", decoded[0].Fields["epic"].Str())
}

func TestDecodeSchemaMismatch(t *testing.T) {
	s := backlogSchema()
	order := []string{"id", "priority", "epic"}

	cases := map[string]string{
		"empty":          "",
		"renamed column": "id,priority,theme\nUS-1,High,Auth",
		"reordered":      "id,epic,priority\nUS-1,Auth,High",
		"short header":   "id,priority\nUS-1,High",
		"short row":      "id,priority,epic\nUS-1,High",
		"long row":       "id,priority,epic\nUS-1,High,Auth,extra",
		"bad quoting":    "id,priority,epic\nUS-1,High,\"Auth",
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := csvcodec.Decode(text, s, order)
			require.ErrorIs(t, err, csvcodec.ErrSchemaMismatch)
		})
	}

	_, err := csvcodec.Decode("priority\nHigh", s, []string{"priority"})
	require.ErrorIs(t, err, csvcodec.ErrSchemaMismatch, "id column is required")
}

func TestDecodeInvalidScore(t *testing.T) {
	_, err := csvcodec.Decode("id,confidence\nUS-1,92%", backlogSchema(), []string{"id", "confidence"})
	require.ErrorIs(t, err, schema.ErrValidation)
}

func TestDecodeHeaderOnly(t *testing.T) {
	decoded, err := csvcodec.Decode("id,priority", backlogSchema(), []string{"id", "priority"})
	require.NoError(t, err)
	require.Empty(t, decoded)
}
