package graph

import "strings"

const (
	contextMarker = "CONTEXT_BLOCK:"
	draftMarker   = "---DRAFT_BLOCK---"

	// escapeWord never appears unescaped inside an encoded context, which
	// keeps the first draftMarker in an encoded blob the real separator.
	escapeWord    = "DRAFT_BLOCK"
	escapedSuffix = "_"

	UnknownContext = "UNKNOWN"
)

// EncodeDraft packs retrieved context and a draft answer into one assistant
// turn body.
func EncodeDraft(context, draft string) string {
	var b strings.Builder
	b.WriteString(contextMarker)
	b.WriteString("\n")
	b.WriteString(escapeContext(context))
	b.WriteString("\n\n")
	b.WriteString(draftMarker)
	b.WriteString("\n")
	b.WriteString(draft)
	return b.String()
}

// DecodeDraft splits an encoded turn body back into trimmed context and draft.
// ok is false when either marker is missing.
func DecodeDraft(content string) (context, draft string, ok bool) {
	sep := strings.Index(content, draftMarker)
	if sep < 0 {
		return "", "", false
	}
	head := content[:sep]
	start := strings.Index(head, contextMarker)
	if start < 0 {
		return "", "", false
	}
	context = strings.TrimSpace(unescapeContext(head[start+len(contextMarker):]))
	draft = strings.TrimSpace(content[sep+len(draftMarker):])
	return context, draft, true
}

// DecodeDraftOrRaw is DecodeDraft with the reviewer's fallback: the whole
// content becomes the draft and the context is UnknownContext.
func DecodeDraftOrRaw(content string) (context, draft string, ok bool) {
	context, draft, ok = DecodeDraft(content)
	if !ok {
		return UnknownContext, content, false
	}
	return context, draft, true
}

func escapeContext(s string) string {
	return strings.ReplaceAll(s, escapeWord, escapeWord+escapedSuffix)
}

func unescapeContext(s string) string {
	return strings.ReplaceAll(s, escapeWord+escapedSuffix, escapeWord)
}
