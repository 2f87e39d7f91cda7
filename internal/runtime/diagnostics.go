package runtime

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/gopher-lua/parse"

	"luasense/internal/protocol"
)

// maxParsePasses caps how many times analysis resumes after a parse error.
// The parser stops at the first error, so analysis re-parses the remainder
// of the buffer after each reported error line to surface independent later
// errors. Best effort: resumed fragments can mis-report constructs that
// span the cut.
const maxParsePasses = 5

// parseDiagnostics runs the Lua parser over code and maps every reported
// parse error to an error-severity diagnostic. It never panics on broken
// input; unexpected parser failures yield no diagnostics.
func parseDiagnostics(code string) []protocol.Diagnostic {
	lines := strings.Split(code, "\n")
	var diags []protocol.Diagnostic

	base := 0
	for pass := 0; pass < maxParsePasses; pass++ {
		err := tolerantParse(strings.Join(lines[base:], "\n"))
		if err == nil {
			break
		}

		var perr *parse.Error
		if !errors.As(err, &perr) {
			break
		}

		line := perr.Pos.Line
		if line < 1 || line > len(lines)-base {
			line = len(lines) - base
		}
		diags = append(diags, protocol.Diagnostic{
			Line:     base + line,
			Column:   perr.Pos.Column,
			Message:  parseMessage(perr),
			Severity: protocol.SeverityError,
		})

		next := base + line
		if next <= base || next >= len(lines) {
			break
		}
		base = next
	}

	return diags
}

// tolerantParse parses source text, converting parser panics to errors.
func tolerantParse(src string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parser panic: %v", r)
		}
	}()
	_, err = parse.Parse(strings.NewReader(src), "buffer")
	return err
}

func parseMessage(perr *parse.Error) string {
	msg := strings.TrimSpace(perr.Message)
	if msg == "" {
		msg = "syntax error"
	}
	if perr.Token != "" {
		return fmt.Sprintf("%s near '%s'", msg, perr.Token)
	}
	return msg
}
