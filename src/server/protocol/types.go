package protocol

import "encoding/json"

// Request is a client-to-backend command with a sequence number used to
// correlate the response.
type Request struct {
	Seq       int         `json:"seq"`
	Type      string      `json:"type"`
	Command   string      `json:"command"`
	Arguments interface{} `json:"arguments,omitempty"`
}

// Response is the backend's answer to a single request. A response with
// Success=false carries the failure reason in Message; Body is only present
// on success.
type Response struct {
	Seq        int             `json:"seq"`
	Type       string          `json:"type"`
	Command    string          `json:"command"`
	RequestSeq int             `json:"request_seq"`
	Success    bool            `json:"success"`
	Message    string          `json:"message,omitempty"`
	Body       json.RawMessage `json:"body,omitempty"`
}

// Event is a backend-initiated message not tied to any request.
type Event struct {
	Seq   int             `json:"seq"`
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Body  json.RawMessage `json:"body,omitempty"`
}

// message is the union shape used when reading from the wire.
type message struct {
	Seq        int             `json:"seq"`
	Type       string          `json:"type"`
	Command    string          `json:"command,omitempty"`
	RequestSeq int             `json:"request_seq,omitempty"`
	Success    *bool           `json:"success,omitempty"`
	Message    string          `json:"message,omitempty"`
	Event      string          `json:"event,omitempty"`
	Body       json.RawMessage `json:"body,omitempty"`
}

// Location is a 1-based line/offset position in a file.
type Location struct {
	Line   int `json:"line"`
	Offset int `json:"offset"`
}

// TextSpan is a contiguous region of a file.
type TextSpan struct {
	Start Location `json:"start"`
	End   Location `json:"end"`
}

// FileLocationArgs identifies a position in a file for location-based
// commands.
type FileLocationArgs struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Offset int    `json:"offset"`
}

// CompletionsArgs are the arguments for the completions/completionInfo
// round trip.
type CompletionsArgs struct {
	FileLocationArgs
	TriggerCharacter             string `json:"triggerCharacter,omitempty"`
	IncludeExternalModuleExports bool   `json:"includeExternalModuleExports"`
	IncludeInsertTextCompletions bool   `json:"includeInsertTextCompletions"`
}

// CompletionEntry is one backend-reported suggestion.
type CompletionEntry struct {
	Name            string          `json:"name"`
	Kind            string          `json:"kind"`
	KindModifiers   string          `json:"kindModifiers,omitempty"`
	SortText        string          `json:"sortText,omitempty"`
	InsertText      string          `json:"insertText,omitempty"`
	ReplacementSpan *TextSpan       `json:"replacementSpan,omitempty"`
	HasAction       bool            `json:"hasAction,omitempty"`
	Source          string          `json:"source,omitempty"`
	IsRecommended   bool            `json:"isRecommended,omitempty"`
	Data            json.RawMessage `json:"data,omitempty"`
}

// CompletionInfoBody is the structured completion response body. Older
// backends return a bare []CompletionEntry instead; see the provider for the
// variant selection.
type CompletionInfoBody struct {
	IsNewIdentifierLocation bool                `json:"isNewIdentifierLocation"`
	IsMemberCompletion      bool                `json:"isMemberCompletion"`
	IsIncomplete            bool                `json:"isIncomplete,omitempty"`
	Metadata                *CompletionMetadata `json:"metadata,omitempty"`
	Entries                 []CompletionEntry   `json:"entries"`
}

// CompletionMetadata nests flags some backend releases report under a
// metadata field instead of the body itself.
type CompletionMetadata struct {
	IsIncomplete bool `json:"isIncomplete,omitempty"`
}

// CompletionDetailsArgs requests full details for specific entries.
type CompletionDetailsArgs struct {
	FileLocationArgs
	EntryNames []CompletionEntryIdentifier `json:"entryNames"`
}

// CompletionEntryIdentifier disambiguates entries sharing a display name.
// Name alone is not a key: source and the opaque data must round-trip too.
type CompletionEntryIdentifier struct {
	Name   string          `json:"name"`
	Source string          `json:"source,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// SymbolDisplayPart is one styled fragment of a rendered signature or
// documentation string.
type SymbolDisplayPart struct {
	Text string `json:"text"`
	Kind string `json:"kind"`
}

// JSDocTagInfo is a structured documentation tag such as @param or @returns.
type JSDocTagInfo struct {
	Name string `json:"name"`
	Text string `json:"text,omitempty"`
}

// CompletionEntryDetails is the full detail body for one completion entry.
type CompletionEntryDetails struct {
	Name          string              `json:"name"`
	Kind          string              `json:"kind"`
	KindModifiers string              `json:"kindModifiers,omitempty"`
	DisplayParts  []SymbolDisplayPart `json:"displayParts"`
	Documentation []SymbolDisplayPart `json:"documentation,omitempty"`
	Tags          []JSDocTagInfo      `json:"tags,omitempty"`
	CodeActions   []CodeAction        `json:"codeActions,omitempty"`
	Source        []SymbolDisplayPart `json:"source,omitempty"`
}

// CodeEdit is a single text replacement within one file.
type CodeEdit struct {
	Start   Location `json:"start"`
	End     Location `json:"end"`
	NewText string   `json:"newText"`
}

// FileCodeEdits groups the edits belonging to one file.
type FileCodeEdits struct {
	FileName    string     `json:"fileName"`
	TextChanges []CodeEdit `json:"textChanges"`
}

// CodeAction is an attached fix: a description, per-file changes, and
// optional opaque follow-up commands the backend knows how to execute.
type CodeAction struct {
	Description string            `json:"description"`
	Changes     []FileCodeEdits   `json:"changes"`
	Commands    []json.RawMessage `json:"commands,omitempty"`
}

// QuickInfoArgs are the arguments for the quickinfo lookup.
type QuickInfoArgs struct {
	FileLocationArgs
}

// QuickInfoBody is the quickinfo response body. Only Kind is consulted by
// the completion pipeline.
type QuickInfoBody struct {
	Kind          string              `json:"kind"`
	KindModifiers string              `json:"kindModifiers,omitempty"`
	Start         Location            `json:"start"`
	End           Location            `json:"end"`
	DisplayString string              `json:"displayString,omitempty"`
	Documentation string              `json:"documentation,omitempty"`
	Tags          []JSDocTagInfo      `json:"tags,omitempty"`
	DisplayParts  []SymbolDisplayPart `json:"displayParts,omitempty"`
}

// StatusBody is the response body of the status command.
type StatusBody struct {
	Version string `json:"version"`
}

// ConfigureArgs pushes per-document formatting and preference options to the
// backend ahead of a completion round trip.
type ConfigureArgs struct {
	File          string      `json:"file,omitempty"`
	FormatOptions interface{} `json:"formatOptions,omitempty"`
	Preferences   interface{} `json:"preferences,omitempty"`
}
