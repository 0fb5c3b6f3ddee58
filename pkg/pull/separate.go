package pull

import "strings"

// separateEntries splits a concatenated multi-entry response body into the
// individual entries, each trimmed. How entries are delimited depends on the
// entry field: flat files and KCF records end with a "///" line, mol files
// end with "$$$$", and sequence formats start each entry with ">".
func separateEntries(body, entryField string) []string {
	var entries []string
	switch entryField {
	case "aaseq", "ntseq":
		entries = splitDropFirst(body, ">")
	case "mol":
		entries = splitDropLast(body, "$$$$")
	default:
		entries = splitDropLast(body, "///")
	}
	for i, entry := range entries {
		entries[i] = strings.TrimSpace(entry)
	}
	return entries
}

// splitDropLast splits on the trailing delimiter, dropping the empty piece
// after the final one. A body with no delimiter comes back whole.
func splitDropLast(body, delim string) []string {
	parts := strings.Split(body, delim)
	if len(parts) > 1 {
		return parts[:len(parts)-1]
	}
	return parts
}

// splitDropFirst splits on the leading delimiter, dropping the empty piece
// before the first one.
func splitDropFirst(body, delim string) []string {
	parts := strings.Split(body, delim)
	if len(parts) > 1 {
		return parts[1:]
	}
	return parts
}
