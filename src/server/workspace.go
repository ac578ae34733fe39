package server

import (
	"context"
	"os"
	"sort"
	"strings"

	"tsserver-gateway/src/internal/common"
	"tsserver-gateway/src/server/protocol"
)

// FileEditApplier applies workspace edits straight to files on disk. It is
// the headless counterpart of an editor's workspace-edit support, used for
// the deferred code-action command's changes to files the editor has not
// opened.
type FileEditApplier struct{}

func NewFileEditApplier() *FileEditApplier {
	return &FileEditApplier{}
}

// Apply writes each file's edits. Edits within a file are applied last to
// first so earlier locations stay valid.
func (a *FileEditApplier) Apply(ctx context.Context, changes []protocol.FileCodeEdits) error {
	for _, change := range changes {
		if err := applyFileEdits(change); err != nil {
			return common.WrapProcessingError("apply edits to "+change.FileName, err)
		}
		common.TSLogger.Debug("Applied %d edits to %s", len(change.TextChanges), change.FileName)
	}
	return nil
}

func applyFileEdits(change protocol.FileCodeEdits) error {
	data, err := os.ReadFile(change.FileName)
	if err != nil {
		return err
	}
	text := string(data)

	edits := make([]protocol.CodeEdit, len(change.TextChanges))
	copy(edits, change.TextChanges)
	sort.SliceStable(edits, func(i, j int) bool {
		if edits[i].Start.Line != edits[j].Start.Line {
			return edits[i].Start.Line > edits[j].Start.Line
		}
		return edits[i].Start.Offset > edits[j].Start.Offset
	})

	for _, edit := range edits {
		text = applyEdit(text, edit)
	}

	info, err := os.Stat(change.FileName)
	if err != nil {
		return err
	}
	return os.WriteFile(change.FileName, []byte(text), info.Mode().Perm())
}

// applyEdit replaces the 1-based line/offset span with the edit's new text.
// Out-of-range locations clamp to the document bounds.
func applyEdit(text string, edit protocol.CodeEdit) string {
	start := byteOffset(text, edit.Start)
	end := byteOffset(text, edit.End)
	if end < start {
		end = start
	}
	return text[:start] + edit.NewText + text[end:]
}

func byteOffset(text string, loc protocol.Location) int {
	line := loc.Line - 1
	offset := 0
	for line > 0 {
		idx := strings.IndexByte(text[offset:], '\n')
		if idx < 0 {
			return len(text)
		}
		offset += idx + 1
		line--
	}

	col := loc.Offset - 1
	if col < 0 {
		col = 0
	}
	lineEnd := strings.IndexByte(text[offset:], '\n')
	if lineEnd < 0 {
		lineEnd = len(text) - offset
	}
	if col > lineEnd {
		col = lineEnd
	}
	return offset + col
}

// FirstActionChooser picks the first offered action without prompting. The
// headless gateway has no interactive surface to present a choice on.
type FirstActionChooser struct{}

func (FirstActionChooser) Choose(ctx context.Context, descriptions []string) (int, error) {
	if len(descriptions) == 0 {
		return -1, nil
	}
	return 0, nil
}
