package ingredient

import (
	"reflect"
	"testing"
)

func TestNormalize_Equivalence(t *testing.T) {
	inputs := []string{"Olive Oil", "olive_oil", "  OLIVE   OIL ", "olive-oil", "Olive\tOil", "_olive__oil_"}
	for _, in := range inputs {
		if got := Normalize(in); got != "olive_oil" {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, "olive_oil")
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"rice",
		"Parmesan Cheese",
		"  green   chillies  ",
		"BÉCHAMEL sauce",
		"ｆｕｌｌｗｉｄｔｈ　ＲＩＣＥ",
		"a - b _ c",
		"İstanbul spice",
		"x y",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(string(once))
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestNormalize_Unicode(t *testing.T) {
	if got := Normalize("BÉCHAMEL Sauce"); got != "béchamel_sauce" {
		t.Fatalf("got %q", got)
	}
	if got := Normalize("ｒｉｃｅ"); got != "rice" {
		t.Fatalf("fullwidth input: got %q", got)
	}
}

func TestNormalize_Empty(t *testing.T) {
	if got := Normalize(""); got != "" {
		t.Fatalf("expected empty token, got %q", got)
	}
	if got := Normalize(" \t "); got != "" {
		t.Fatalf("expected empty token for whitespace, got %q", got)
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Token
	}{
		{name: "empty", in: "", want: nil},
		{name: "only commas", in: " , ,, ", want: []Token{}},
		{name: "simple", in: "rice, tomatoes", want: []Token{"rice", "tomatoes"}},
		{name: "keeps duplicates", in: "Rice,rice", want: []Token{"rice", "rice"}},
		{name: "multi word", in: "Olive Oil,  green chillies ", want: []Token{"olive_oil", "green_chillies"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.in)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Split(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDisplay(t *testing.T) {
	if got := Display("olive_oil"); got != "Olive Oil" {
		t.Fatalf("got %q", got)
	}
}
