package sie

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFile = `#FLAGGA 0
#FNAMN "Test AB"
#ORGNR 556000-0001
#VALUTA SEK
#RAR 0 20250101 20251231
#KONTO 1930 "Företagskonto"
#KONTO 3000 "Försäljning"
#IB 0 1930 5000.00
#UB 0 1930 6000.00
#RES 0 3000 -1000.00
#VER A 1 20250310 "Faktura 42"
{
#TRANS 1930 {} 1000.00
#TRANS 3000 {} -1000.00
}
`

func TestParse(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleFile))
	require.NoError(t, err)
	assert.Empty(t, doc.Errors)

	assert.Equal(t, "Test AB", doc.CompanyName)
	assert.Equal(t, "556000-0001", doc.OrgNumber)
	assert.Equal(t, "SEK", doc.Currency)

	yr, ok := doc.Years[0]
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), yr.Start)
	assert.Equal(t, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), yr.End)

	assert.Equal(t, map[string]string{"1930": "Företagskonto", "3000": "Försäljning"}, doc.Accounts)

	require.Len(t, doc.Opening, 1)
	assert.Equal(t, "1930", doc.Opening[0].Account)
	assert.True(t, doc.Opening[0].Amount.Equal(decimal.RequireFromString("5000.00")))
	require.Len(t, doc.Closing, 1)
	require.Len(t, doc.Results, 1)
	assert.True(t, doc.Results[0].Amount.Equal(decimal.RequireFromString("-1000.00")))

	require.Len(t, doc.Verifications, 1)
	v := doc.Verifications[0]
	assert.Equal(t, "A", v.Series)
	assert.Equal(t, 1, v.Number)
	assert.Equal(t, "Faktura 42", v.Text)
	require.Len(t, v.Rows, 2)
	assert.Equal(t, "1930", v.Rows[0].Account)
	assert.True(t, v.Rows[0].Amount.Equal(decimal.RequireFromString("1000.00")))
	assert.True(t, v.Rows[1].Amount.Equal(decimal.RequireFromString("-1000.00")))
	// Rows inherit the verification date when none of their own is given.
	assert.Equal(t, v.Date, v.Rows[0].Date)
}

func TestParseEmpty(t *testing.T) {
	doc, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, doc.Errors)
	assert.Empty(t, doc.Verifications)
	assert.Empty(t, doc.Accounts)
}

func TestParseUnknownTagIgnored(t *testing.T) {
	doc, err := Parse(strings.NewReader("#SRU 1930 7281\n#KONTO 1930 \"Bank\"\n"))
	require.NoError(t, err)
	assert.Empty(t, doc.Errors)
	assert.Equal(t, "Bank", doc.Accounts["1930"])
}

func TestParseCollectsErrors(t *testing.T) {
	input := `#KONTO 1930 "Bank
#KONTO 3000 "Försäljning"
#RAR x 20250101 20251231
`
	doc, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, doc.Errors, 2)
	assert.Equal(t, 1, doc.Errors[0].Line)
	assert.Contains(t, doc.Errors[0].Reason, "unterminated quote")
	assert.Equal(t, 3, doc.Errors[1].Line)

	// The good line between the bad ones still lands.
	assert.Equal(t, "Försäljning", doc.Accounts["3000"])
}

func TestParseUnterminatedVerification(t *testing.T) {
	input := "#VER A 7 20250310 \"Öppen\"\n{\n#TRANS 1930 {} 100.00\n"
	doc, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Empty(t, doc.Verifications)
	require.Len(t, doc.Errors, 1)
	assert.Contains(t, doc.Errors[0].Reason, "unterminated verification A 7")
}

func TestSplitFields(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"plain", "#KONTO 1930 Bank", []string{"#KONTO", "1930", "Bank"}},
		{"quoted with spaces", `#FNAMN "Test AB"`, []string{"#FNAMN", "Test AB"}},
		{"escaped quote", `#FNAMN "Say \"hi\""`, []string{"#FNAMN", `Say "hi"`}},
		{"empty group", "#TRANS 1930 {} 100.00", []string{"#TRANS", "1930", "", "100.00"}},
		{"group content", `#TRANS 1930 {1 "Avd"} 100.00`, []string{"#TRANS", "1930", `1 "Avd"`, "100.00"}},
		{"tabs", "#KONTO\t1930\tBank", []string{"#KONTO", "1930", "Bank"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := splitFields(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := splitFields(`#FNAMN "oops`)
	assert.Error(t, err)
	_, err = splitFields("#TRANS 1930 {oops")
	assert.Error(t, err)
}

func TestSerializeRoundTrip(t *testing.T) {
	first, err := Parse(strings.NewReader(sampleFile))
	require.NoError(t, err)
	require.Empty(t, first.Errors)

	var buf bytes.Buffer
	require.NoError(t, Serialize(&buf, first))

	second, err := Parse(&buf)
	require.NoError(t, err)
	require.Empty(t, second.Errors)

	assert.Equal(t, first.CompanyName, second.CompanyName)
	assert.Equal(t, first.OrgNumber, second.OrgNumber)
	assert.Equal(t, first.Currency, second.Currency)
	assert.Equal(t, first.Years, second.Years)
	assert.Equal(t, first.Accounts, second.Accounts)
	require.Len(t, second.Verifications, len(first.Verifications))
	for i, v := range first.Verifications {
		got := second.Verifications[i]
		assert.Equal(t, v.Series, got.Series)
		assert.Equal(t, v.Number, got.Number)
		assert.Equal(t, v.Text, got.Text)
		require.Len(t, got.Rows, len(v.Rows))
		for j, r := range v.Rows {
			assert.Equal(t, r.Account, got.Rows[j].Account)
			assert.True(t, r.Amount.Equal(got.Rows[j].Amount))
		}
	}
	require.Len(t, second.Opening, 1)
	assert.True(t, second.Opening[0].Amount.Equal(first.Opening[0].Amount))
	require.Len(t, second.Closing, 1)
	require.Len(t, second.Results, 1)
}
