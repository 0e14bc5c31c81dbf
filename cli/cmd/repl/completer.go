package repl

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/jslight/lang"
)

// ctrlCommands are the available command-mode commands.
var ctrlCommands = []string{"help", "vars", "query", "reset", "clear", "quit"}

// isIdentRune reports whether r may appear in an identifier. Every other
// rune delimits words for completion.
func isIdentRune(r rune) bool {
	return r == '_' || r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r))
}

// wordBounds returns the identifier touching the cursor and its byte
// boundaries within input. The word is empty when the cursor is not
// adjacent to an identifier rune.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(max(cursor, 0), len(input))

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if !isIdentRune(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if !isIdentRune(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// inString reports whether offset falls inside a string literal of input.
func inString(input string, offset int) bool {
	quoted := false

	for i := 0; i < offset && i < len(input); i++ {
		switch input[i] {
		case '\\':
			if quoted {
				i++
			}
		case '"':
			quoted = !quoted
		}
	}

	return quoted
}

// evalCandidates returns the names that may complete an identifier in eval
// mode: bound variables, builtin functions, and keywords.
func evalCandidates(runner *lang.Runner) []string {
	var names []string

	for _, b := range runner.Bindings() {
		names = append(names, b.Name)
	}

	names = append(names, runner.Builtins().Names()...)
	names = append(names, lang.Keywords()...)

	slices.Sort(names)

	return slices.Compact(names)
}

// computeMatches ranks the candidates for the word at the cursor. No
// matches are returned for an empty word, a word starting with a digit, or
// a cursor inside a string literal.
func (m model) computeMatches() (matches fuzzy.Matches, wordStart, wordEnd int) {
	input := m.input.Value()

	word, wordStart, wordEnd := wordBounds(input, m.input.Position())
	if word == "" || unicode.IsDigit(rune(word[0])) {
		return nil, wordStart, wordEnd
	}

	var candidates []string

	if m.mode == modeCtrl {
		candidates = ctrlCommands
	} else {
		if inString(input, wordStart) {
			return nil, wordStart, wordEnd
		}

		candidates = evalCandidates(m.runner)
	}

	return fuzzy.Find(word, candidates), wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, cut short with
// an ellipsis to fit within width.
func renderCandidateBar(
	matches fuzzy.Matches,
	builtins lang.Builtins,
	selected int,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	ellipsis := hintStyle.Render("...")
	reserve := lipgloss.Width(sep) + lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, builtins, i == selected)
		w := lipgloss.Width(rendered)

		if i > 0 {
			w += lipgloss.Width(sep)
		}

		last := i == len(matches)-1
		if i > 0 && (used+w > width || !last && used+w+reserve > width) {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += w
	}

	return b.String()
}

// renderCandidate renders a candidate with its matched runes highlighted.
// Builtin functions get a "()" suffix.
func renderCandidate(match fuzzy.Match, builtins lang.Builtins, selected bool) string {
	base, highlight := suggestionStyle, matchStyle
	if selected {
		base, highlight = selectedStyle, selectedMatchStyle
	}

	var b strings.Builder

	for i, r := range match.Str {
		if slices.Contains(match.MatchedIndexes, i) {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	if _, ok := builtins[match.Str]; ok {
		b.WriteString(base.Render("()"))
	}

	return b.String()
}
