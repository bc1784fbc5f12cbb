package domain

import "strings"

// KnownBrands lists appliance manufacturers recognised by the label parser
// and the manufacturer-site search strategy. Order matters: the label
// parser takes the first brand found in the text, so multi-word names
// precede their prefixes.
var KnownBrands = []string{
	"SPEED QUEEN",
	"FISHER & PAYKEL",
	"WHIRLPOOL",
	"SAMSUNG",
	"LG",
	"GE",
	"FRIGIDAIRE",
	"MAYTAG",
	"KITCHENAID",
	"BOSCH",
	"KENMORE",
	"ELECTROLUX",
	"HAIER",
	"PANASONIC",
	"SHARP",
	"TOSHIBA",
	"MIELE",
	"AMANA",
	"HOTPOINT",
	"MAGIC CHEF",
	"INSIGNIA",
	"DANBY",
	"HISENSE",
}

// TitleBrand converts an uppercase vocabulary entry into stored title case
// ("MAGIC CHEF" -> "Magic Chef", "LG" -> "Lg").
func TitleBrand(b string) string {
	words := strings.Fields(strings.ToLower(b))
	for i, w := range words {
		r := []rune(w)
		if len(r) > 0 && r[0] >= 'a' && r[0] <= 'z' {
			r[0] = r[0] - 'a' + 'A'
		}
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
