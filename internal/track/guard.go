package track

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// FileGuard prevents reprocessing an inbound payroll file when the platform
// redelivers its triggering event. Purely advisory: single-process, in-memory,
// entries expire after the retention window.
type FileGuard struct {
	mu        sync.Mutex
	seen      map[string]time.Time
	retention time.Duration
	logger    *zap.SugaredLogger
	done      chan struct{}
	stopOnce  sync.Once
}

func NewFileGuard(retention time.Duration, logger *zap.SugaredLogger) *FileGuard {
	g := &FileGuard{
		seen:      make(map[string]time.Time),
		retention: retention,
		logger:    logger,
		done:      make(chan struct{}),
	}
	go g.janitor()
	return g
}

// ShouldProcess reports whether fileID is new. The first call marks it
// processed; repeats before expiry return false.
func (g *FileGuard) ShouldProcess(fileID string) bool {
	now := timeNow()
	g.mu.Lock()
	defer g.mu.Unlock()

	if at, ok := g.seen[fileID]; ok && now.Sub(at) < g.retention {
		g.logger.Infow("skipping already processed file", "file_id", fileID)
		return false
	}
	g.seen[fileID] = now
	return true
}

func (g *FileGuard) Stop() {
	g.stopOnce.Do(func() { close(g.done) })
}

func (g *FileGuard) janitor() {
	ticker := time.NewTicker(sweepInterval(g.retention))
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			g.sweep()
		case <-g.done:
			return
		}
	}
}

func (g *FileGuard) sweep() {
	now := timeNow()
	g.mu.Lock()
	defer g.mu.Unlock()
	for id, at := range g.seen {
		if now.Sub(at) >= g.retention {
			delete(g.seen, id)
		}
	}
}
