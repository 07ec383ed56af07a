package sie

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

// Serialize writes a document as SIE4 text in canonical order: header tags,
// #RAR, #KONTO sorted by number, declared balances, then #VER blocks sorted
// by series and number. parse(Serialize(doc)) is semantically idempotent
// even though the bytes need not match the original input.
func Serialize(w io.Writer, doc *Document) error {
	var sb strings.Builder

	sb.WriteString("#FLAGGA 0\n")
	sb.WriteString("#PROGRAM \"bokfor\" 1.0\n")
	sb.WriteString("#FORMAT PC8\n")
	fmt.Fprintf(&sb, "#GEN %s\n", time.Now().Format(sieDateFormat))
	sb.WriteString("#SIETYP 4\n")
	if doc.OrgNumber != "" {
		fmt.Fprintf(&sb, "#ORGNR %s\n", doc.OrgNumber)
	}
	if doc.CompanyName != "" {
		fmt.Fprintf(&sb, "#FNAMN %s\n", quote(doc.CompanyName))
	}
	if doc.Currency != "" {
		fmt.Fprintf(&sb, "#VALUTA %s\n", doc.Currency)
	}

	offsets := make([]int, 0, len(doc.Years))
	for o := range doc.Years {
		offsets = append(offsets, o)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(offsets)))
	for _, o := range offsets {
		yr := doc.Years[o]
		fmt.Fprintf(&sb, "#RAR %d %s %s\n", o, yr.Start.Format(sieDateFormat), yr.End.Format(sieDateFormat))
	}

	numbers := make([]string, 0, len(doc.Accounts))
	for n := range doc.Accounts {
		numbers = append(numbers, n)
	}
	sort.Strings(numbers)
	for _, n := range numbers {
		fmt.Fprintf(&sb, "#KONTO %s %s\n", n, quote(doc.Accounts[n]))
	}

	writeBalances(&sb, "#IB", doc.Opening)
	writeBalances(&sb, "#UB", doc.Closing)
	writeBalances(&sb, "#RES", doc.Results)

	verifications := make([]Verification, len(doc.Verifications))
	copy(verifications, doc.Verifications)
	sort.Slice(verifications, func(i, j int) bool {
		if verifications[i].Series != verifications[j].Series {
			return verifications[i].Series < verifications[j].Series
		}
		return verifications[i].Number < verifications[j].Number
	})
	for _, v := range verifications {
		fmt.Fprintf(&sb, "#VER %s %d %s %s\n{\n", v.Series, v.Number, v.Date.Format(sieDateFormat), quote(v.Text))
		for _, r := range v.Rows {
			fmt.Fprintf(&sb, "#TRANS %s {} %s %s %s\n", r.Account, r.Amount.StringFixed(2), r.Date.Format(sieDateFormat), quote(r.Text))
		}
		sb.WriteString("}\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func writeBalances(sb *strings.Builder, tag string, lines []BalanceLine) {
	sorted := make([]BalanceLine, len(lines))
	copy(sorted, lines)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].YearOffset != sorted[j].YearOffset {
			return sorted[i].YearOffset > sorted[j].YearOffset
		}
		return sorted[i].Account < sorted[j].Account
	})
	for _, l := range sorted {
		fmt.Fprintf(sb, "%s %d %s %s\n", tag, l.YearOffset, l.Account, l.Amount.StringFixed(2))
	}
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
