package chat

import (
	"zipto/internal/models"
	"zipto/internal/storage"
)

// dedupeWindowMS bounds how far apart two timestamps may be for the
// role+content duplicate rule. The same assistant reply can arrive once
// over HTTP and once over the push channel, in either order, with
// slightly different receipt times.
const dedupeWindowMS = 1500

// isDuplicate reports whether incoming is the same message as existing.
// Two messages match on backend id when both carry one, or on identical
// role and content within the dedupe window. The second rule can in
// rare cases collapse two legitimate identical short replies sent
// within the window; that trade-off is accepted to keep the
// HTTP/push race simple.
func isDuplicate(existing, incoming models.ChatMessage) bool {
	if incoming.BackendMessageID != "" && existing.BackendMessageID == incoming.BackendMessageID {
		return true
	}

	delta := existing.Timestamp - incoming.Timestamp
	if delta < 0 {
		delta = -delta
	}

	return existing.Role == incoming.Role &&
		existing.Content == incoming.Content &&
		delta <= dedupeWindowMS
}

// appendLocked is the single gate through which every message source
// (optimistic insert, HTTP reply, push delivery, history seed) adds to
// the log. Duplicates are dropped; accepted messages go to the end of
// the log, which is then mirrored to storage. The log is never
// re-sorted: reordering on append would visibly reshuffle history.
// Caller holds s.mu.
func (s *Store) appendLocked(candidate models.ChatMessage) bool {
	// Most recent first, matches are overwhelmingly near the tail
	for i := len(s.messages) - 1; i >= 0; i-- {
		if isDuplicate(s.messages[i], candidate) {
			return false
		}
	}

	s.messages = append(s.messages, candidate)
	storage.SaveMessages(s.storage, s.messages, s.logger)
	return true
}
