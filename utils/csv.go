package utils

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// UTF8BOM prefixes every export so spreadsheets detect the encoding
const UTF8BOM = "\uFEFF"

// CSVBuilder accumulates rows and blank-line separated sections of a CSV export
type CSVBuilder struct {
	buf bytes.Buffer
	w   *csv.Writer
}

// NewCSVBuilder starts an export with the byte-order mark already written
func NewCSVBuilder() *CSVBuilder {
	b := &CSVBuilder{}
	b.buf.WriteString(UTF8BOM)
	b.w = csv.NewWriter(&b.buf)
	return b
}

// Row appends one record; quoting of commas, quotes and newlines is handled by encoding/csv
func (b *CSVBuilder) Row(fields ...string) error {
	return b.w.Write(fields)
}

// Blank appends an empty line between sections
func (b *CSVBuilder) Blank() error {
	b.w.Flush()
	if err := b.w.Error(); err != nil {
		return err
	}
	b.buf.WriteString("\n")
	return nil
}

// Bytes flushes and returns the encoded export
func (b *CSVBuilder) Bytes() ([]byte, error) {
	b.w.Flush()
	if err := b.w.Error(); err != nil {
		return nil, fmt.Errorf("failed to encode csv: %w", err)
	}
	return b.buf.Bytes(), nil
}

// OrDefault substitutes def for an empty value; used only when presenting data
func OrDefault(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}

// FormatMoney renders an amount as $0.00
func FormatMoney(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// SafeFileComponent turns free text into something usable inside a file name
func SafeFileComponent(s string) string {
	s = unsafeFileChars.ReplaceAllString(strings.TrimSpace(s), "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return "unknown"
	}
	return s
}
