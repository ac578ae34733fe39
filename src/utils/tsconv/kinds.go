package tsconv

import (
	lsp "go.lsp.dev/protocol"

	"tsserver-gateway/src/server/protocol"
)

// ItemKind maps a backend entry kind tag to an LSP completion item kind.
func ItemKind(kind string) lsp.CompletionItemKind {
	switch kind {
	case "keyword":
		return lsp.CompletionItemKindKeyword
	case protocol.KindConst, "let", protocol.KindVariable, "local var", protocol.KindAlias, "parameter":
		return lsp.CompletionItemKindVariable
	case "property", "getter", "setter":
		return lsp.CompletionItemKindField
	case "function", "local function":
		return lsp.CompletionItemKindFunction
	case "method", "construct", "call", "index":
		return lsp.CompletionItemKindMethod
	case "enum":
		return lsp.CompletionItemKindEnum
	case "enum member":
		return lsp.CompletionItemKindEnumMember
	case "module", protocol.KindExternalModuleName:
		return lsp.CompletionItemKindModule
	case "class", "type":
		return lsp.CompletionItemKindClass
	case "interface":
		return lsp.CompletionItemKindInterface
	case protocol.KindWarning:
		return lsp.CompletionItemKindText
	case protocol.KindScript:
		return lsp.CompletionItemKindFile
	case protocol.KindDirectory:
		return lsp.CompletionItemKindFolder
	case "string":
		return lsp.CompletionItemKindConstant
	default:
		return lsp.CompletionItemKindProperty
	}
}

// IsFunctionKind reports whether the entry kind denotes something callable.
func IsFunctionKind(kind string) bool {
	switch kind {
	case "function", "method", "construct", "call", "index", "local function":
		return true
	default:
		return false
	}
}
