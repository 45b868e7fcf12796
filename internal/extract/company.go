package extract

import (
	"regexp"
	"strings"
)

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_]`)

// cleanWord replaces every rune that is not a letter, digit, or underscore with a space.
func cleanWord(s string) string {
	return nonWord.ReplaceAllString(s, " ")
}

type company struct {
	Name     *string
	Category *string
	Address  *string
}

// parseCompany splits the combined company label into name, category, and
// address. Each marker is followed by one separator rune. A missing marker
// nulls only the sections bounded by it.
func parseCompany(label *string, m CompanyMarkers) company {
	var c company
	if label == nil {
		return c
	}
	info := []rune(cleanWord(*label))

	name, nameOK := runeIndex(info, m.Name)
	cat, catOK := runeIndex(info, m.Category)
	addr, addrOK := runeIndex(info, m.Address)

	if nameOK && catOK {
		s := cleanWord(slice(info, name+runeLen(m.Name)+1, cat-1))
		c.Name = &s
	}
	if catOK && addrOK {
		s := cleanWord(slice(info, cat+runeLen(m.Category)+1, addr-1))
		c.Category = &s
	}
	if addrOK {
		s := slice(info, addr+runeLen(m.Address)+1, len(info))
		c.Address = &s
	}
	return c
}

// runeIndex returns the rune offset of the first occurrence of sub in s.
func runeIndex(s []rune, sub string) (int, bool) {
	if sub == "" {
		return 0, false
	}
	i := strings.Index(string(s), sub)
	if i < 0 {
		return 0, false
	}
	return len([]rune(string(s)[:i])), true
}

func runeLen(s string) int {
	return len([]rune(s))
}

// slice returns s[from:to]. A negative index counts back from the end, so a
// category marker at offset 0 ends the name one rune before the label ends.
// Indexes are then clamped to bounds, and an inverted range is empty.
func slice(s []rune, from, to int) string {
	from, to = wrapIndex(from, len(s)), wrapIndex(to, len(s))
	if from >= to {
		return ""
	}
	return string(s[from:to])
}

func wrapIndex(i, n int) int {
	if i < 0 {
		i += n
	}
	return max(0, min(i, n))
}
