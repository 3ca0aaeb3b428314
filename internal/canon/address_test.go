package canon

import "testing"

func TestKey(t *testing.T) {
	tests := []struct {
		name                      string
		address, city, state, zip string
		want                      string
	}{
		{
			"basic",
			"123 Dune Drive", "Avalon", "NJ", "08202",
			"123 dune dr|avalon|nj|08202",
		},
		{
			"case and whitespace insensitive",
			"  123  DUNE   drive ", " avalon ", "nj", "08202",
			"123 dune dr|avalon|nj|08202",
		},
		{
			"unit stripped",
			"123 Dune Drive Apt 4B", "Avalon", "NJ", "08202",
			"123 dune dr|avalon|nj|08202",
		},
		{
			"hash unit stripped",
			"123 Dune Drive #4B", "Avalon", "NJ", "08202",
			"123 dune dr|avalon|nj|08202",
		},
		{
			"punctuation dropped",
			"123 Dune Drive.", "Avalon", "NJ", "08202",
			"123 dune dr|avalon|nj|08202",
		},
		{
			"zip+4 truncated",
			"123 Dune Drive", "Avalon", "NJ", "08202-1234",
			"123 dune dr|avalon|nj|08202",
		},
		{
			"street suffix",
			"8 Ocean Street", "Cape May", "NJ", "08204",
			"8 ocean st|cape may|nj|08204",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Key(tt.address, tt.city, tt.state, tt.zip); got != tt.want {
				t.Errorf("Key = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKeyEquivalentFormsCollide(t *testing.T) {
	a := Key("123 Dune Drive", "Avalon", "NJ", "08202")
	b := Key("123 dune dr, Unit 2", "AVALON", "nj", "08202-9999")
	if a != b {
		t.Errorf("equivalent addresses keyed differently: %q vs %q", a, b)
	}
}
