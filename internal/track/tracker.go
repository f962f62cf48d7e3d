package track

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// timeNow is swapped in tests that exercise expiry.
var timeNow = time.Now

// Confirmation links a sent message back to its intended recipient.
type Confirmation struct {
	RecipientID string
	Name        string
	CreatedAt   time.Time
}

// ConfirmationTracker remembers which message timestamp belongs to which
// recipient so a later reaction event can be correlated with the original
// send. Entries expire after the retention window to bound memory; losing one
// only forfeits the confirmation relay for that message.
type ConfirmationTracker struct {
	mu        sync.Mutex
	entries   map[string]Confirmation
	retention time.Duration
	logger    *zap.SugaredLogger
	done      chan struct{}
	stopOnce  sync.Once
}

func NewConfirmationTracker(retention time.Duration, logger *zap.SugaredLogger) *ConfirmationTracker {
	t := &ConfirmationTracker{
		entries:   make(map[string]Confirmation),
		retention: retention,
		logger:    logger,
		done:      make(chan struct{}),
	}
	go t.janitor()
	return t
}

// Track registers a successfully sent message. Exactly one entry per send.
func (t *ConfirmationTracker) Track(messageID, recipientID, name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[messageID] = Confirmation{
		RecipientID: recipientID,
		Name:        name,
		CreatedAt:   timeNow(),
	}
}

// Resolve returns the confirmation for messageID only when the reacting user
// is the tracked recipient. A hit consumes the entry, so a second reaction on
// the same message is a no-op. Misses are logged, never errors.
func (t *ConfirmationTracker) Resolve(messageID, reactingUserID string) (Confirmation, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[messageID]
	if !ok {
		t.logger.Debugw("no tracked send for message", "message_id", messageID)
		return Confirmation{}, false
	}
	if timeNow().Sub(entry.CreatedAt) >= t.retention {
		delete(t.entries, messageID)
		t.logger.Debugw("tracked send expired", "message_id", messageID)
		return Confirmation{}, false
	}
	if reactingUserID != entry.RecipientID {
		t.logger.Infow("reaction from a different user, ignoring",
			"message_id", messageID, "reacting_user", reactingUserID)
		return Confirmation{}, false
	}

	delete(t.entries, messageID)
	return entry, true
}

// Stop halts the expiry janitor. Pending entries are dropped with the process.
func (t *ConfirmationTracker) Stop() {
	t.stopOnce.Do(func() { close(t.done) })
}

func (t *ConfirmationTracker) janitor() {
	ticker := time.NewTicker(sweepInterval(t.retention))
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			t.sweep()
		case <-t.done:
			return
		}
	}
}

func (t *ConfirmationTracker) sweep() {
	now := timeNow()
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, entry := range t.entries {
		if now.Sub(entry.CreatedAt) >= t.retention {
			delete(t.entries, id)
		}
	}
}

func (t *ConfirmationTracker) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// sweepInterval keeps the janitor responsive for short test retentions
// without waking up constantly for the week-long production one.
func sweepInterval(retention time.Duration) time.Duration {
	interval := retention / 4
	if interval < time.Second {
		return time.Second
	}
	if interval > time.Hour {
		return time.Hour
	}
	return interval
}
