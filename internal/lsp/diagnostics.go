package lsp

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"formulight/internal/diagnostics"
	"formulight/internal/scanner"
	"formulight/token"
)

// ConvertFormulaErrors transforms detector output into LSP diagnostics. Each
// diagnostic covers the token that starts at (or ends on) the flagged
// position, falling back to a single character.
func ConvertFormulaErrors(doc *document, errs []diagnostics.FormulaError) []protocol.Diagnostic {
	diags := []protocol.Diagnostic{}
	if len(errs) == 0 {
		return diags
	}

	tokens := scanner.Tokenize(doc.text)
	for _, fe := range errs {
		start, end := flaggedSpan(tokens, fe.Position, len(doc.text))
		diags = append(diags, protocol.Diagnostic{
			Range:    doc.rangeOf(start, end),
			Severity: ptrSeverity(protocol.DiagnosticSeverityError),
			Code:     &protocol.IntegerOrString{Value: fe.Code},
			Source:   ptrString("formula-" + string(fe.Kind)),
			Message:  fe.Message,
		})
	}
	return diags
}

func flaggedSpan(tokens []token.Token, pos, textLen int) (int, int) {
	for _, tok := range tokens {
		if tok.Start == pos || tok.End-1 == pos {
			return tok.Start, tok.End
		}
	}
	end := pos + 1
	if end > textLen {
		end = textLen
	}
	return pos, end
}

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

func ptrString(s string) *string {
	return &s
}
