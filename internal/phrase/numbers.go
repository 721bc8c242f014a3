package phrase

import (
	"strconv"
	"strings"
)

// Spelled-out counts accepted when written numbers are enabled:
// one..twenty, then multiples of ten up to ninety. No compounding.
var writtenNumbers = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14,
	"fifteen": 15, "sixteen": 16, "seventeen": 17, "eighteen": 18,
	"nineteen": 19, "twenty": 20,
	"thirty": 30, "forty": 40, "fifty": 50, "sixty": 60,
	"seventy": 70, "eighty": 80, "ninety": 90,
}

var writtenNumberAlt = func() string {
	words := make([]string, 0, len(writtenNumbers))
	for w := range writtenNumbers {
		words = append(words, w)
	}
	// Longest first so alternation submatches prefer full words.
	for i := range words {
		for j := i + 1; j < len(words); j++ {
			if len(words[j]) > len(words[i]) {
				words[i], words[j] = words[j], words[i]
			}
		}
	}
	return strings.Join(words, "|")
}()

// parseCount parses a digit or spelled-out count. Spelled words are
// only accepted when written is true.
func parseCount(s string, written bool) (int, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	if !written {
		return 0, false
	}
	n, ok := writtenNumbers[strings.ToLower(s)]
	return n, ok
}
