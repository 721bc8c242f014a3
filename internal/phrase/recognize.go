// Package phrase recognizes natural-language time expressions in a
// line of text and resolves them to a granularity and date.
package phrase

// Match describes a recognized time expression ending at the cursor.
type Match struct {
	// Text is the matched expression with its original casing.
	Text string
	// Delimiter is the whitespace/punctuation run between the end of
	// Text and the cursor.
	Delimiter string
	// Start is the byte offset of Text within the line; End is the end
	// of the full span, which is always the cursor offset.
	Start int
	End   int
}

// Options controls recognition behavior.
type Options struct {
	// WrittenNumbers accepts spelled-out counts ("three days ago").
	WrittenNumbers bool
}

// FindPhrase finds the most specific recognizable time expression
// immediately preceding the cursor, bounded by a trailing delimiter.
// Strategies are tried in fixed priority order: static idioms first,
// then weekday grammars, then generic durations, so a shorter dynamic
// match never shadows a recognized idiom.
func FindPhrase(line string, cursor int, opts Options) (Match, bool) {
	if cursor < 0 || cursor > len(line) {
		return Match{}, false
	}
	prefix := line[:cursor]
	g := grammarFor(opts.WrittenNumbers)

	for _, re := range g.cursorStrategies {
		loc := re.FindStringSubmatchIndex(prefix)
		if loc == nil {
			continue
		}
		start, end := loc[2], loc[3]
		return Match{
			Text:      prefix[start:end],
			Delimiter: prefix[loc[4]:loc[5]],
			Start:     start,
			End:       cursor,
		}, true
	}
	return Match{}, false
}
