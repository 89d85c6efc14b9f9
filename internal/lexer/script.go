package lexer

// Mathematical script and bold script letters used for metavariables. The
// plain script alphabet has holes that Unicode fills from the Letterlike
// Symbols block.
const (
	scriptUpper     = 0x1D49C
	scriptLower     = 0x1D4B6
	boldScriptUpper = 0x1D4D0
	boldScriptLower = 0x1D4EA
)

var letterlike = map[rune]rune{
	'ℬ': 'B', 'ℰ': 'E', 'ℱ': 'F', 'ℋ': 'H', 'ℐ': 'I', 'ℒ': 'L', 'ℳ': 'M', 'ℛ': 'R',
	'ℯ': 'e', 'ℊ': 'g', 'ℴ': 'o',
}

func isScript(r rune) bool {
	_, _, ok := scriptLetter(r)
	return ok
}

// scriptLetter maps a script letter to its latin letter
func scriptLetter(r rune) (letter rune, upper bool, ok bool) {
	if l, found := letterlike[r]; found {
		return l, l >= 'A' && l <= 'Z', true
	}
	switch {
	case r >= scriptUpper && r < scriptUpper+26:
		return 'A' + (r - scriptUpper), true, true
	case r >= scriptLower && r < scriptLower+26:
		return 'a' + (r - scriptLower), false, true
	case r >= boldScriptUpper && r < boldScriptUpper+26:
		return 'A' + (r - boldScriptUpper), true, true
	case r >= boldScriptLower && r < boldScriptLower+26:
		return 'a' + (r - boldScriptLower), false, true
	}
	return 0, false, false
}
