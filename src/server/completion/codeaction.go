package completion

import (
	lsp "go.lsp.dev/protocol"

	"tsserver-gateway/src/server/protocol"
	"tsserver-gateway/src/utils/tsconv"
)

// splitCodeActions partitions the code actions attached to an entry's details
// into edits the editor applies inline on accept (changes to the completed
// file itself) and remaining work that needs the deferred command (changes to
// other files, or backend commands). When any remaining work exists, the
// returned command carries every action with the current-file changes
// stripped out, so the handler never re-applies what the editor already did.
func splitCodeActions(actions []protocol.CodeAction, file string) (*lsp.Command, []lsp.TextEdit) {
	if len(actions) == 0 {
		return nil, nil
	}

	var edits []lsp.TextEdit
	hasRemaining := false

	remaining := make([]protocol.CodeAction, 0, len(actions))
	for _, action := range actions {
		if len(action.Commands) > 0 {
			hasRemaining = true
		}

		stripped := action
		stripped.Changes = nil
		for _, change := range action.Changes {
			if change.FileName == file {
				edits = append(edits, tsconv.TextEditsFromCodeEdits(change.TextChanges)...)
			} else {
				hasRemaining = true
				stripped.Changes = append(stripped.Changes, change)
			}
		}
		remaining = append(remaining, stripped)
	}

	var command *lsp.Command
	if hasRemaining {
		command = &lsp.Command{
			Title:     "",
			Command:   ApplyCompletionCodeActionID,
			Arguments: []interface{}{remaining},
		}
	}

	return command, edits
}
