// Package protocol defines the backend server wire protocol: command names,
// typed request arguments and response bodies, and the header-framed codec.
package protocol

// Backend command names consumed by the gateway.
const (
	CommandConfigure              = "configure"
	CommandCompletions            = "completions"
	CommandCompletionInfo         = "completionInfo"
	CommandCompletionDetails      = "completionEntryDetails"
	CommandQuickInfo              = "quickinfo"
	CommandApplyCodeActionCommand = "applyCodeActionCommand"
	CommandStatus                 = "status"
	CommandExit                   = "exit"
)

// Backend-initiated event names.
const (
	EventBeginInstallTypes = "beginInstallTypes"
	EventEndInstallTypes   = "endInstallTypes"
)

// Message type discriminators.
const (
	TypeRequest  = "request"
	TypeResponse = "response"
	TypeEvent    = "event"
)

// Completion entry kinds with dedicated handling in the entry filter.
const (
	KindWarning            = "warning"
	KindDirectory          = "directory"
	KindScript             = "script"
	KindExternalModuleName = "external module name"
)

// Symbol kinds reported by quickinfo that never get a call snippet.
const (
	KindVariable = "var"
	KindConst    = "const"
	KindAlias    = "alias"
)
