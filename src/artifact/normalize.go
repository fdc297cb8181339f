package artifact

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"
)

var fullWidth = map[rune]rune{
	'＋': '+', '，': ',', '。': '.', '．': '.', '％': '%',
	'０': '0', '１': '1', '２': '2', '３': '3', '４': '4',
	'５': '5', '６': '6', '７': '7', '８': '8', '９': '9',
}

// digitLookalikes are letters the recognizer confuses with digits. They are
// only replaced inside a span that already holds a real digit.
var digitLookalikes = map[rune]rune{
	'O': '0', 'o': '0', 'l': '1', 'I': '1', '|': '1', 'S': '5', 'B': '8', 'Z': '2',
}

// Normalize applies the OCR correction table: full-width forms become ASCII,
// whitespace and '·' are dropped, and digit lookalikes inside numeric spans
// become digits.
func Normalize(s string) string {
	rs := make([]rune, 0, len(s))
	for _, r := range s {
		if m, ok := fullWidth[r]; ok {
			r = m
		}
		if r == '·' || unicode.IsSpace(r) {
			continue
		}
		rs = append(rs, r)
	}

	for i := 0; i < len(rs); {
		if !numericRune(rs[i]) {
			i++
			continue
		}
		j := i
		hasDigit := false
		for j < len(rs) && numericRune(rs[j]) {
			if rs[j] >= '0' && rs[j] <= '9' {
				hasDigit = true
			}
			j++
		}
		if hasDigit {
			for k := i; k < j; k++ {
				if m, ok := digitLookalikes[rs[k]]; ok {
					rs[k] = m
				}
			}
		}
		i = j
	}
	return string(rs)
}

func numericRune(r rune) bool {
	if r >= '0' && r <= '9' {
		return true
	}
	switch r {
	case '.', ',', '%':
		return true
	}
	_, ok := digitLookalikes[r]
	return ok
}

var (
	errEmpty     = errors.New("empty text")
	errNotNumber = errors.New("not a number")
)

// parseNumber reads a normalized number with optional '%' and separators.
// A single comma followed by one or two digits and no dot is a decimal comma;
// any other comma is a thousands separator.
func parseNumber(s string) (value float64, percent bool, err error) {
	percent = strings.Contains(s, "%")
	s = strings.ReplaceAll(s, "%", "")
	if s == "" {
		return 0, percent, errEmpty
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		idx := strings.IndexByte(s, ',')
		if tail := len(s) - idx - 1; tail == 1 || tail == 2 {
			s = s[:idx] + "." + s[idx+1:]
		}
	}
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, percent, errNotNumber
	}
	return v, percent, nil
}
