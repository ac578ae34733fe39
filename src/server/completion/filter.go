package completion

import (
	"tsserver-gateway/src/config"
	"tsserver-gateway/src/server/protocol"
)

// filterEntries drops entries excluded by the configuration snapshot.
// Order-preserving: entries are only removed, never reordered.
func filterEntries(entries []protocol.CompletionEntry, cfg config.CompletionConfiguration) []protocol.CompletionEntry {
	kept := make([]protocol.CompletionEntry, 0, len(entries))
	for _, entry := range entries {
		if excludeEntry(entry, cfg) {
			continue
		}
		kept = append(kept, entry)
	}
	return kept
}

func excludeEntry(entry protocol.CompletionEntry, cfg config.CompletionConfiguration) bool {
	if entry.Kind == protocol.KindWarning && !cfg.NameSuggestions {
		return true
	}
	if !cfg.PathSuggestions {
		switch entry.Kind {
		case protocol.KindDirectory, protocol.KindScript, protocol.KindExternalModuleName:
			return true
		}
	}
	if entry.HasAction && !cfg.AutoImportSuggestions {
		return true
	}
	return false
}
