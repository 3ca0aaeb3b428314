package rets

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Row is one decoded COMPACT record keyed by column name.
type Row map[string]string

var (
	reDelimiter = regexp.MustCompile(`(?i)<DELIMITER\s+value\s*=\s*"([^"]+)"`)
	reColumns   = regexp.MustCompile(`(?is)<COLUMNS>(.*?)</COLUMNS>`)
	reData      = regexp.MustCompile(`(?is)<DATA>(.*?)</DATA>`)
)

// DecodeCompact parses a COMPACT-DECODED body into ordered columns and rows.
//
// The delimiter defaults to tab and may be overridden by a
// <DELIMITER value="XX"/> marker carrying a hex character code. Each <DATA>
// block is one row; a leading or trailing empty token from a delimiter right
// after <DATA> or before </DATA> is dropped before zipping with the columns.
// Missing trailing values map to empty strings. A body without a <COLUMNS>
// block decodes to zero rows; reply-code checks upstream distinguish that
// from a genuinely empty result.
func DecodeCompact(body string) ([]string, []Row) {
	delim := compactDelimiter(body)

	colMatch := reColumns.FindStringSubmatch(body)
	if colMatch == nil {
		return nil, nil
	}
	var columns []string
	for _, c := range strings.Split(colMatch[1], delim) {
		if c != "" {
			columns = append(columns, c)
		}
	}

	var rows []Row
	for _, m := range reData.FindAllStringSubmatch(body, -1) {
		values := strings.Split(m[1], delim)
		if len(values) > 0 && values[0] == "" {
			values = values[1:]
		}
		if len(values) > 0 && values[len(values)-1] == "" {
			values = values[:len(values)-1]
		}
		row := make(Row, len(columns))
		for i, col := range columns {
			if i < len(values) {
				row[col] = values[i]
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}
	return columns, rows
}

// EncodeCompact serializes columns and rows back into the COMPACT format
// using the given delimiter.
func EncodeCompact(columns []string, rows []Row, delim byte) string {
	d := string(delim)
	var b strings.Builder
	fmt.Fprintf(&b, "<DELIMITER value=\"%02X\"/>\n", delim)
	b.WriteString("<COLUMNS>" + d + strings.Join(columns, d) + d + "</COLUMNS>\n")
	for _, row := range rows {
		b.WriteString("<DATA>" + d)
		for i, col := range columns {
			if i > 0 {
				b.WriteString(d)
			}
			b.WriteString(row[col])
		}
		b.WriteString(d + "</DATA>\n")
	}
	return b.String()
}

func compactDelimiter(body string) string {
	m := reDelimiter.FindStringSubmatch(body)
	if m == nil {
		return "\t"
	}
	code, err := strconv.ParseUint(m[1], 16, 8)
	if err != nil {
		return "\t"
	}
	return string(rune(code))
}

// replyCode extracts the ReplyCode="N" attribute, if present. The second
// return is false when the body carries no reply code at all.
func replyCode(body string) (int, string, bool) {
	m := reReplyCode.FindStringSubmatch(body)
	if m == nil {
		return 0, "", false
	}
	code, _ := strconv.Atoi(m[1])
	text := ""
	if t := reReplyText.FindStringSubmatch(body); t != nil {
		text = t[1]
	}
	return code, text, true
}

var (
	reReplyCode = regexp.MustCompile(`(?i)ReplyCode\s*=\s*"(\d+)"`)
	reReplyText = regexp.MustCompile(`(?i)ReplyText\s*=\s*"([^"]*)"`)
)
