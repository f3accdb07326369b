package params

import (
	"strings"

	"github.com/aledsdavies/invariant/params/expr"
)

// interpSegment is either a literal text run or an embedded expression.
type interpSegment struct {
	text   string
	isExpr bool
}

// splitInterpolation breaks s into literal and "${...}" expression
// segments. A malformed (unterminated) "${" is treated as literal text,
// matching a permissive textual-template convention rather than failing
// the whole param tree over a string that merely contains a literal "${".
func splitInterpolation(s string) []interpSegment {
	var segments []interpSegment
	var lit strings.Builder
	i := 0
	for i < len(s) {
		if i+1 < len(s) && s[i] == '$' && s[i+1] == '{' {
			end := strings.IndexByte(s[i+2:], '}')
			if end < 0 {
				lit.WriteByte(s[i])
				i++
				continue
			}
			if lit.Len() > 0 {
				segments = append(segments, interpSegment{text: lit.String()})
				lit.Reset()
			}
			exprText := s[i+2 : i+2+end]
			segments = append(segments, interpSegment{text: exprText, isExpr: true})
			i = i + 2 + end + 1
			continue
		}
		lit.WriteByte(s[i])
		i++
	}
	if lit.Len() > 0 {
		segments = append(segments, interpSegment{text: lit.String()})
	}
	return segments
}

// hasInterpolation reports whether s contains at least one well-formed
// "${...}" segment.
func hasInterpolation(s string) bool {
	for _, seg := range splitInterpolation(s) {
		if seg.isExpr {
			return true
		}
	}
	return false
}

// ExprFreeVariables returns the free variables of a restricted-language
// expression string.
func ExprFreeVariables(text string) ([]string, error) {
	return expr.FreeVariables(text)
}

func collectInterpolationVariables(s string, out map[string]bool) error {
	for _, seg := range splitInterpolation(s) {
		if !seg.isExpr {
			continue
		}
		vars, err := expr.FreeVariables(seg.text)
		if err != nil {
			return err
		}
		for _, v := range vars {
			out[v] = true
		}
	}
	return nil
}
