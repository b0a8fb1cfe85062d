// Package statement reads bank statements in ISO 20022 CAMT.053 format.
package statement

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
)

// ErrInvalidStatement is returned when the document is not a readable CAMT.053 statement.
var ErrInvalidStatement = errors.New("invalid camt.053 statement")

// Entry is a single booked statement line. Amount is in cents and always
// positive; Debit tells the direction.
type Entry struct {
	Ref         string
	Amount      int64
	Currency    string
	Debit       bool
	BookedAt    time.Time
	Counterpart string
	Description string
}

// Text is the free text used to categorize the entry.
func (e Entry) Text() string {
	return strings.TrimSpace(e.Counterpart + " " + e.Description)
}

// Parse reads every booked entry of a CAMT.053 document.
func Parse(data []byte) ([]Entry, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStatement, err)
	}
	if doc.FindElement("//BkToCstmrStmt") == nil {
		return nil, fmt.Errorf("%w: missing BkToCstmrStmt", ErrInvalidStatement)
	}

	var entries []Entry
	for i, ntry := range doc.FindElements("//Stmt/Ntry") {
		if sts := text(ntry, "./Sts/Cd", "./Sts"); sts != "" && sts != "BOOK" {
			continue
		}
		e, err := parseEntry(ntry)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrInvalidStatement, i+1, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func parseEntry(ntry *etree.Element) (Entry, error) {
	amt := ntry.FindElement("./Amt")
	if amt == nil {
		return Entry{}, errors.New("missing Amt")
	}
	value, err := decimal.NewFromString(strings.TrimSpace(amt.Text()))
	if err != nil {
		return Entry{}, fmt.Errorf("amount %q: %v", amt.Text(), err)
	}

	var e Entry
	e.Amount = value.Abs().Shift(2).Round(0).IntPart()
	e.Currency = amt.SelectAttrValue("Ccy", "")

	switch ind := text(ntry, "./CdtDbtInd"); ind {
	case "DBIT":
		e.Debit = true
	case "CRDT":
	default:
		return Entry{}, fmt.Errorf("credit/debit indicator %q", ind)
	}

	booked := text(ntry, "./BookgDt/Dt", "./BookgDt/DtTm", "./ValDt/Dt")
	if e.BookedAt, err = parseDate(booked); err != nil {
		return Entry{}, err
	}

	e.Ref = text(ntry, "./AcctSvcrRef", "./NtryRef", "./NtryDtls/TxDtls/Refs/EndToEndId")
	if e.Debit {
		e.Counterpart = text(ntry, "./NtryDtls/TxDtls/RltdPties/Cdtr/Nm", "./NtryDtls/TxDtls/RltdPties/Cdtr/Pty/Nm")
	} else {
		e.Counterpart = text(ntry, "./NtryDtls/TxDtls/RltdPties/Dbtr/Nm", "./NtryDtls/TxDtls/RltdPties/Dbtr/Pty/Nm")
	}
	e.Description = text(ntry, "./NtryDtls/TxDtls/RmtInf/Ustrd", "./AddtlNtryInf")
	return e, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("booking date %q", s)
}

// text returns the trimmed text of the first path that exists under el.
func text(el *etree.Element, paths ...string) string {
	for _, p := range paths {
		if found := el.FindElement(p); found != nil {
			if t := strings.TrimSpace(found.Text()); t != "" {
				return t
			}
		}
	}
	return ""
}
