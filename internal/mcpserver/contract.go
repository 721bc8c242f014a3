package mcpserver

// PhraseGrammar describes the time expressions the resolver
// understands, for LLM consumers of the resolve_phrase tool.
const PhraseGrammar = `# Jera Phrase Grammar

Expressions the resolver understands, case-insensitive.

## Fixed phrases

- ` + "`" + `yesterday` + "`" + `, ` + "`" + `today` + "`" + `, ` + "`" + `tomorrow` + "`" + ` — day targets
- ` + "`" + `last week` + "`" + `, ` + "`" + `this week` + "`" + `, ` + "`" + `next week` + "`" + ` — likewise for
  ` + "`" + `month` + "`" + `, ` + "`" + `quarter` + "`" + `, ` + "`" + `year` + "`" + `

## Weekdays

- ` + "`" + `this monday` + "`" + ` — that weekday inside the anchor's Monday-based week
  (may be the anchor day itself)
- ` + "`" + `next friday` + "`" + ` / ` + "`" + `last friday` + "`" + ` — nearest occurrence strictly
  after/before the anchor; a same-weekday anchor rolls a full week
- ` + "`" + `2 fridays ago` + "`" + ` — the count-th occurrence backward from the anchor
- ` + "`" + `in 2 fridays` + "`" + ` — the count-th occurrence forward from the anchor
- ` + "`" + `2 fridays from now` + "`" + ` — forward from the wall clock, ignoring the anchor

## Durations

- ` + "`" + `3 days ago` + "`" + `, ` + "`" + `in 2 weeks` + "`" + `, ` + "`" + `1 month from now` + "`" + ` —
  units: day, week, month, quarter, year
- Counts are digits, or written words (one..ninety-nine) when the
  written-numbers option is enabled
- Pluralization is strict: any count other than 1 requires the plural
  unit (` + "`" + `2 day ago` + "`" + ` does not resolve)
- ` + "`" + `from now` + "`" + ` is always relative to the wall clock; ` + "`" + `ago` + "`" + ` and
  ` + "`" + `in` + "`" + ` are relative to the anchor (the current periodic note's date,
  or the wall clock outside a periodic note)

## Scope

Depending on configuration, targets may be limited to granularities at
or coarser than the current document's (the coarseness ladder is
day < week < month < quarter < year). Year targets are always allowed.
`
