package completion

import (
	"context"
	"encoding/json"
	"regexp"

	lsp "go.lsp.dev/protocol"

	"tsserver-gateway/src/internal/common"
	"tsserver-gateway/src/server/protocol"
	"tsserver-gateway/src/utils/snippet"
)

// An identifier continuation followed by an opening parenthesis: the call
// parentheses already exist after the cursor, so synthesizing a second pair
// would double them up.
var callAfterCursorRe = regexp.MustCompile(`^[a-zA-Z_$0-9]*\s*\(`)

// callCompletionEligible decides whether the accepted item should expand to a
// call snippet. The symbol check fails open: when the backend cannot classify
// the symbol, the snippet is still synthesized.
func (p *Provider) callCompletionEligible(ctx context.Context, data *ResolveData) bool {
	if kind, ok := p.symbolKindAt(ctx, data); ok {
		switch kind {
		case protocol.KindVariable, protocol.KindConst, protocol.KindAlias:
			// A variable of function type may be reassigned to something
			// that is not callable; leave the plain insertion alone.
			return false
		}
	}

	if data.CurrentLine != "" && data.Offset >= 1 && data.Offset <= len(data.CurrentLine)+1 {
		after := data.CurrentLine[data.Offset-1:]
		if callAfterCursorRe.MatchString(after) {
			return false
		}
	}

	return true
}

func (p *Provider) symbolKindAt(ctx context.Context, data *ResolveData) (string, bool) {
	raw, err := p.client.Execute(ctx, protocol.CommandQuickInfo, protocol.QuickInfoArgs{
		FileLocationArgs: protocol.FileLocationArgs{
			File:   data.File,
			Line:   data.Line,
			Offset: data.Offset,
		},
	})
	if err != nil {
		common.ProviderLogger.Debug("quickinfo for %q failed: %v", data.Name, err)
		return "", false
	}

	var body protocol.QuickInfoBody
	if err := json.Unmarshal(raw, &body); err != nil || body.Kind == "" {
		return "", false
	}
	return body.Kind, true
}

// synthesizeCallSnippet rewrites the item's insertion to a call snippet built
// from the parameter names in the resolved display parts.
func synthesizeCallSnippet(item *lsp.CompletionItem, displayParts []protocol.SymbolDisplayPart) {
	text := item.InsertText
	if text == "" {
		text = item.Label
	}

	params, hasOptional := parameterListParts(displayParts)
	item.InsertText = snippetFor(text, params, hasOptional)
	item.InsertTextFormat = lsp.InsertTextFormatSnippet

	if item.TextEdit != nil {
		item.TextEdit.NewText = item.InsertText
	}
}

// parameterListParts extracts the required parameter names of the signature
// rendered in displayParts, and whether the signature has optional or rest
// parameters beyond them. Only the first signature's top-level parameter list
// is walked; nested parentheses and braces are skipped over.
func parameterListParts(displayParts []protocol.SymbolDisplayPart) ([]string, bool) {
	var params []string
	hasOptional := false

	parenCount := 0
	braceCount := 0
	isInMethod := false

	for i, part := range displayParts {
		switch part.Kind {
		case "methodName", "functionName", "text", "propertyName":
			// The signature name at top level opens the parameter list that
			// follows; names at depth belong to parameter types.
			if parenCount == 0 && braceCount == 0 {
				isInMethod = true
			}

		case "parameterName":
			if parenCount == 1 && braceCount == 0 && isInMethod {
				// A '?' immediately after the name marks it optional; the
				// snippet stops at the first optional parameter.
				next := i + 1
				nameIsFollowedByOptionalIndicator := next < len(displayParts) && displayParts[next].Text == "?"
				nameIsThis := part.Text == "this"
				if !nameIsFollowedByOptionalIndicator && !nameIsThis {
					params = append(params, part.Text)
				}
				if nameIsFollowedByOptionalIndicator {
					hasOptional = true
				}
			}

		case "punctuation":
			switch part.Text {
			case "(":
				parenCount++
			case ")":
				parenCount--
				if parenCount <= 0 && isInMethod {
					return params, hasOptional
				}
			case "...":
				if parenCount == 1 {
					// Rest parameters are never pre-filled.
					hasOptional = true
					return params, hasOptional
				}
			case "{":
				braceCount++
			case "}":
				braceCount--
			}
		}
	}

	return params, hasOptional
}

// snippetFor renders "name(${1:a}, ${2:b}$3)$0"-shaped insertion text. With no
// optional parameters the extra tab stop inside the parentheses is omitted.
func snippetFor(text string, params []string, hasOptional bool) string {
	b := snippet.NewBuilder()
	b.AppendText(text)
	b.AppendText("(")
	for i, param := range params {
		if i > 0 {
			b.AppendText(", ")
		}
		b.AppendPlaceholder(param)
	}
	if hasOptional {
		b.AppendTabStop()
	}
	b.AppendText(")")
	b.AppendTabStop()
	return b.String()
}
