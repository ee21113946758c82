package keys

// Package keys centralizes Redis key construction for tracking records.
// It is kept in internal to avoid leaking key formats to public API.

import "strings"

// DefaultPrefix is the leading key segment used when none is configured.
const DefaultPrefix = "rbserror"

// Queue holds the precomputed key base for one prefix/queue pair so that
// per-message keys need a single concatenation.
type Queue struct {
	// Base is "<prefix>:<queue>:", shared by every record of the queue.
	Base string
}

// For returns the key set for the provided prefix and queue.
func For(prefix, queue string) Queue {
	return Queue{Base: prefix + ":" + queue + ":"}
}

// Message returns the record key for messageID: "<prefix>:<queue>:<messageID>".
func (q Queue) Message(messageID string) string { return q.Base + messageID }

// Pattern returns a SCAN MATCH pattern selecting every record of the queue.
// Glob metacharacters in the base are escaped so queue names like "orders[eu]" match literally.
func (q Queue) Pattern() string { return escapeGlob(q.Base) + "*" }

func escapeGlob(s string) string {
	if !strings.ContainsAny(s, `*?[]\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
