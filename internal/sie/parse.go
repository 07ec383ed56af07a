package sie

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const sieDateFormat = "20060102"

// Parse reads SIE4 text into a Document. Unknown tags are skipped for
// forward compatibility; structurally invalid lines are collected in
// Document.Errors without aborting the file. An empty input yields an empty
// document. The returned error is only non-nil when the reader itself fails.
func Parse(r io.Reader) (*Document, error) {
	doc := NewDocument()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		lineNo  int
		current *Verification // non-nil while inside a #VER brace block
		inBlock bool
	)

	fail := func(raw, reason string) {
		doc.Errors = append(doc.Errors, ParseError{Line: lineNo, Text: raw, Reason: reason})
	}

	for scanner.Scan() {
		lineNo++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		if raw == "{" {
			if current == nil {
				fail(raw, "unexpected block open")
				continue
			}
			inBlock = true
			continue
		}
		if raw == "}" {
			if current == nil || !inBlock {
				fail(raw, "unexpected block close")
				continue
			}
			doc.Verifications = append(doc.Verifications, *current)
			current = nil
			inBlock = false
			continue
		}

		fields, err := splitFields(raw)
		if err != nil {
			fail(raw, err.Error())
			continue
		}
		if len(fields) == 0 || !strings.HasPrefix(fields[0], "#") {
			fail(raw, "directive must start with #")
			continue
		}
		tag := strings.ToUpper(fields[0])
		args := fields[1:]

		// A new directive while a #VER block is still pending its rows
		// means the block was never opened or closed.
		if current != nil && !inBlock && tag != "#TRANS" {
			fail(raw, fmt.Sprintf("verification %s %d has no transaction block", current.Series, current.Number))
			current = nil
		}

		switch tag {
		case "#FNAMN":
			if len(args) < 1 {
				fail(raw, "missing company name")
				continue
			}
			doc.CompanyName = args[0]

		case "#ORGNR":
			if len(args) < 1 {
				fail(raw, "missing org number")
				continue
			}
			doc.OrgNumber = args[0]

		case "#VALUTA":
			if len(args) < 1 {
				fail(raw, "missing currency code")
				continue
			}
			doc.Currency = args[0]

		case "#RAR":
			if len(args) < 3 {
				fail(raw, "expected offset, start and end date")
				continue
			}
			offset, err := strconv.Atoi(args[0])
			if err != nil {
				fail(raw, "invalid year offset")
				continue
			}
			start, err := time.Parse(sieDateFormat, args[1])
			if err != nil {
				fail(raw, "invalid start date")
				continue
			}
			end, err := time.Parse(sieDateFormat, args[2])
			if err != nil {
				fail(raw, "invalid end date")
				continue
			}
			doc.Years[offset] = YearRange{Start: start, End: end}

		case "#KONTO":
			if len(args) < 2 {
				fail(raw, "expected account number and name")
				continue
			}
			doc.Accounts[args[0]] = args[1]

		case "#IB", "#UB", "#RES":
			line, err := parseBalanceLine(args)
			if err != nil {
				fail(raw, err.Error())
				continue
			}
			switch tag {
			case "#IB":
				doc.Opening = append(doc.Opening, line)
			case "#UB":
				doc.Closing = append(doc.Closing, line)
			case "#RES":
				doc.Results = append(doc.Results, line)
			}

		case "#VER":
			if len(args) < 3 {
				fail(raw, "expected series, number and date")
				continue
			}
			number, err := strconv.Atoi(args[1])
			if err != nil {
				fail(raw, "invalid verification number")
				continue
			}
			date, err := time.Parse(sieDateFormat, args[2])
			if err != nil {
				fail(raw, "invalid verification date")
				continue
			}
			v := Verification{Series: args[0], Number: number, Date: date}
			if len(args) > 3 {
				v.Text = args[3]
			}
			current = &v

		case "#TRANS":
			if current == nil || !inBlock {
				fail(raw, "#TRANS outside verification block")
				continue
			}
			if len(args) < 3 {
				fail(raw, "expected account, dimensions and amount")
				continue
			}
			amount, err := decimal.NewFromString(args[2])
			if err != nil {
				fail(raw, "invalid amount")
				continue
			}
			row := Row{Account: args[0], Amount: amount, Date: current.Date}
			if len(args) > 3 && args[3] != "" {
				d, err := time.Parse(sieDateFormat, args[3])
				if err != nil {
					fail(raw, "invalid transaction date")
					continue
				}
				row.Date = d
			}
			if len(args) > 4 {
				row.Text = args[4]
			}
			current.Rows = append(current.Rows, row)

		default:
			// Unknown tags are ignored, never rejected.
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading SIE input: %w", err)
	}

	if current != nil {
		lineNo++
		fail("", fmt.Sprintf("unterminated verification %s %d", current.Series, current.Number))
	}

	return doc, nil
}

func parseBalanceLine(args []string) (BalanceLine, error) {
	if len(args) < 3 {
		return BalanceLine{}, fmt.Errorf("expected offset, account and amount")
	}
	offset, err := strconv.Atoi(args[0])
	if err != nil {
		return BalanceLine{}, fmt.Errorf("invalid year offset")
	}
	amount, err := decimal.NewFromString(args[2])
	if err != nil {
		return BalanceLine{}, fmt.Errorf("invalid amount")
	}
	return BalanceLine{YearOffset: offset, Account: args[1], Amount: amount}, nil
}

// splitFields tokenizes one SIE line. Unquoted fields are whitespace
// delimited; quoted fields may contain any character except an unescaped
// quote (backslash escapes); {...} groups become a single field holding the
// inner text ("" for the empty dimension marker).
func splitFields(line string) ([]string, error) {
	var fields []string
	i := 0
	n := len(line)
	for i < n {
		// Skip separating whitespace.
		for i < n && (line[i] == ' ' || line[i] == '\t') {
			i++
		}
		if i >= n {
			break
		}

		switch line[i] {
		case '"':
			i++
			var sb strings.Builder
			closed := false
			for i < n {
				c := line[i]
				if c == '\\' && i+1 < n && line[i+1] == '"' {
					sb.WriteByte('"')
					i += 2
					continue
				}
				if c == '"' {
					closed = true
					i++
					break
				}
				sb.WriteByte(c)
				i++
			}
			if !closed {
				return nil, fmt.Errorf("unterminated quote")
			}
			fields = append(fields, sb.String())

		case '{':
			depth := 1
			j := i + 1
			for j < n && depth > 0 {
				switch line[j] {
				case '{':
					depth++
				case '}':
					depth--
				}
				j++
			}
			if depth != 0 {
				return nil, fmt.Errorf("unterminated group")
			}
			fields = append(fields, strings.TrimSpace(line[i+1:j-1]))
			i = j

		default:
			j := i
			for j < n && line[j] != ' ' && line[j] != '\t' {
				j++
			}
			fields = append(fields, line[i:j])
			i = j
		}
	}
	return fields, nil
}
