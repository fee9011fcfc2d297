// Package mailbox derives the per-user views over the shared file store: which
// records a viewer may see, grouped by counterparty and ordered for display.
// Everything here is a pure function over already-loaded records; the store is
// re-queried and the view re-derived on every request.
package mailbox

import (
	"sort"
	"time"

	"github.com/labshare/server/internal/models"
)

// Conversation is the ordered exchange between the viewer and one sender.
type Conversation struct {
	Counterparty string              `json:"counterparty"`
	Files        []models.FileRecord `json:"files"`
	UnreadCount  int                 `json:"unreadCount"`
	LatestAt     time.Time           `json:"latestAt"`
}

// Inbox returns the records addressed to viewer. There is no role filtering
// beyond the recipient list: a user sees exactly what was sent to them.
func Inbox(records []models.FileRecord, viewer string) []models.FileRecord {
	out := make([]models.FileRecord, 0, len(records))
	for _, r := range records {
		if r.AddressedTo(viewer) {
			out = append(out, r)
		}
	}
	return out
}

// Outbox returns the records uploaded by viewer.
func Outbox(records []models.FileRecord, viewer string) []models.FileRecord {
	out := make([]models.FileRecord, 0, len(records))
	for _, r := range records {
		if r.UploadedBy == viewer {
			out = append(out, r)
		}
	}
	return out
}

// GroupBySender maps sender username to that sender's records, preserving the
// input order within each group.
func GroupBySender(records []models.FileRecord) map[string][]models.FileRecord {
	groups := make(map[string][]models.FileRecord)
	for _, r := range records {
		groups[r.UploadedBy] = append(groups[r.UploadedBy], r)
	}
	return groups
}

// OrderConversations returns the group keys sorted by descending most-recent
// upload time. Equal timestamps fall back to ascending username so the order
// is deterministic.
func OrderConversations(groups map[string][]models.FileRecord) []string {
	senders := make([]string, 0, len(groups))
	for sender := range groups {
		senders = append(senders, sender)
	}

	sort.Slice(senders, func(i, j int) bool {
		latestI := latestUpload(groups[senders[i]])
		latestJ := latestUpload(groups[senders[j]])
		if !latestI.Equal(latestJ) {
			return latestI.After(latestJ)
		}
		return senders[i] < senders[j]
	})

	return senders
}

// OrderMessages returns a copy of records sorted newest first. Records that
// share an upload timestamp sort by descending creation time, then by id, so
// repeated derivations of the same store agree.
func OrderMessages(records []models.FileRecord) []models.FileRecord {
	out := make([]models.FileRecord, len(records))
	copy(out, records)

	sort.Slice(out, func(i, j int) bool {
		if !out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].UploadedAt.After(out[j].UploadedAt)
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})

	return out
}

// UnreadCount counts records not yet acknowledged by a recipient.
func UnreadCount(records []models.FileRecord) int {
	count := 0
	for _, r := range records {
		if !r.IsRead {
			count++
		}
	}
	return count
}

// Conversations builds the full two-level inbox view for viewer: the ordered
// conversation list, each with its messages newest first.
func Conversations(records []models.FileRecord, viewer string) []Conversation {
	groups := GroupBySender(Inbox(records, viewer))
	ordered := OrderConversations(groups)

	out := make([]Conversation, 0, len(ordered))
	for _, sender := range ordered {
		files := OrderMessages(groups[sender])
		out = append(out, Conversation{
			Counterparty: sender,
			Files:        files,
			UnreadCount:  UnreadCount(files),
			LatestAt:     latestUpload(files),
		})
	}
	return out
}

func latestUpload(records []models.FileRecord) time.Time {
	var latest time.Time
	for _, r := range records {
		if r.UploadedAt.After(latest) {
			latest = r.UploadedAt
		}
	}
	return latest
}
