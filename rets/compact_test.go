package rets

import (
	"strings"
	"testing"
)

const tabBody = `<RETS ReplyCode="0" ReplyText="Operation Successful">
<COUNT Records="2"/>
<DELIMITER value="09"/>
<COLUMNS>	L_ListingID	L_City	L_AskingPrice	</COLUMNS>
<DATA>	1001	Sea Isle City	1250000	</DATA>
<DATA>	1002	Avalon	980000	</DATA>
</RETS>`

func TestDecodeCompact(t *testing.T) {
	columns, rows := DecodeCompact(tabBody)

	if got, want := len(columns), 3; got != want {
		t.Fatalf("columns = %d, want %d", got, want)
	}
	if got, want := len(rows), 2; got != want {
		t.Fatalf("rows = %d, want %d", got, want)
	}
	if rows[0]["L_ListingID"] != "1001" || rows[0]["L_City"] != "Sea Isle City" {
		t.Errorf("row 0 = %v", rows[0])
	}
	if rows[1]["L_AskingPrice"] != "980000" {
		t.Errorf("row 1 price = %q", rows[1]["L_AskingPrice"])
	}
}

func TestDecodeCompactCustomDelimiter(t *testing.T) {
	// 2C = comma. Same logical values as the tab body must decode
	// identically.
	commaBody := `<DELIMITER value="2C"/>
<COLUMNS>,L_ListingID,L_City,L_AskingPrice,</COLUMNS>
<DATA>,1001,Sea Isle City,1250000,</DATA>
<DATA>,1002,Avalon,980000,</DATA>`

	_, fromTab := DecodeCompact(tabBody)
	_, fromComma := DecodeCompact(commaBody)

	if len(fromTab) != len(fromComma) {
		t.Fatalf("row counts differ: %d vs %d", len(fromTab), len(fromComma))
	}
	for i := range fromTab {
		for col, want := range fromTab[i] {
			if got := fromComma[i][col]; got != want {
				t.Errorf("row %d %s = %q, want %q", i, col, got, want)
			}
		}
	}
}

func TestDecodeCompactMissingColumns(t *testing.T) {
	columns, rows := DecodeCompact(`<RETS ReplyCode="0"/>`)
	if columns != nil || rows != nil {
		t.Errorf("decode without COLUMNS = (%v, %v), want zero rows", columns, rows)
	}
}

func TestDecodeCompactMissingTrailingValues(t *testing.T) {
	body := "<COLUMNS>\tA\tB\tC\t</COLUMNS>\n<DATA>\tone\t</DATA>"
	_, rows := DecodeCompact(body)
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0]["A"] != "one" || rows[0]["B"] != "" || rows[0]["C"] != "" {
		t.Errorf("row = %v, want missing trailing values as empty strings", rows[0])
	}
}

func TestDecodeCompactEmptyMiddleValue(t *testing.T) {
	body := "<COLUMNS>\tA\tB\tC\t</COLUMNS>\n<DATA>\tone\t\tthree\t</DATA>"
	_, rows := DecodeCompact(body)
	if rows[0]["B"] != "" || rows[0]["C"] != "three" {
		t.Errorf("row = %v, want empty B preserved positionally", rows[0])
	}
}

func TestEncodeCompactRoundTrip(t *testing.T) {
	columns := []string{"L_ListingID", "L_City", "L_Zip"}
	rows := []Row{
		{"L_ListingID": "77", "L_City": "Stone Harbor", "L_Zip": "08247"},
		{"L_ListingID": "78", "L_City": "", "L_Zip": "08243"},
	}

	for _, delim := range []byte{'\t', ','} {
		encoded := EncodeCompact(columns, rows, delim)
		gotCols, gotRows := DecodeCompact(encoded)

		if strings.Join(gotCols, "|") != strings.Join(columns, "|") {
			t.Fatalf("delim %q: columns = %v, want %v", delim, gotCols, columns)
		}
		if len(gotRows) != len(rows) {
			t.Fatalf("delim %q: rows = %d, want %d", delim, len(gotRows), len(rows))
		}
		for i := range rows {
			for _, col := range columns {
				if gotRows[i][col] != rows[i][col] {
					t.Errorf("delim %q: row %d %s = %q, want %q", delim, i, col, gotRows[i][col], rows[i][col])
				}
			}
		}
	}
}

func TestReplyCode(t *testing.T) {
	tests := []struct {
		body    string
		code    int
		text    string
		present bool
	}{
		{`<RETS ReplyCode="0" ReplyText="Operation Successful">`, 0, "Operation Successful", true},
		{`<RETS ReplyCode="20201" ReplyText="No Records Found.">`, 20201, "No Records Found.", true},
		{`<RETS replycode="20036" replytext="Miscellaneous error">`, 20036, "Miscellaneous error", true},
		{`plain body`, 0, "", false},
	}
	for _, tt := range tests {
		code, text, ok := replyCode(tt.body)
		if code != tt.code || text != tt.text || ok != tt.present {
			t.Errorf("replyCode(%q) = (%d, %q, %v), want (%d, %q, %v)",
				tt.body, code, text, ok, tt.code, tt.text, tt.present)
		}
	}
}
