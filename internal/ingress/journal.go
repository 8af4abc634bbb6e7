package ingress

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// JournalEntry is one journaled invalid message.
type JournalEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Reason    string    `json:"reason"`
}

// Journal appends invalid inbound messages to a dated file on disk so they
// can be inspected and replayed. Journaling failures are logged, never
// propagated; a broken journal must not stop the feed.
type Journal struct {
	dir    string
	mu     sync.Mutex
	logger *zap.Logger
}

// NewJournal creates a journal writing into dir.
func NewJournal(dir string, logger *zap.Logger) *Journal {
	return &Journal{dir: dir, logger: logger}
}

// Record writes one entry for a rejected payload.
func (j *Journal) Record(raw []byte, reason string) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := os.MkdirAll(j.dir, 0o755); err != nil {
		j.logger.Error("Failed to create journal directory", zap.Error(err))
		return
	}

	entry := JournalEntry{
		Timestamp: time.Now(),
		Message:   string(raw),
		Reason:    reason,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		j.logger.Error("Failed to marshal journal entry", zap.Error(err))
		return
	}

	filename := filepath.Join(j.dir, fmt.Sprintf("invalid_messages_%s.json", time.Now().Format("20060102")))
	file, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		j.logger.Error("Failed to open journal file", zap.String("file", filename), zap.Error(err))
		return
	}
	defer file.Close()

	if _, err := file.Write(append(data, '\n')); err != nil {
		j.logger.Error("Failed to write journal entry", zap.String("file", filename), zap.Error(err))
		return
	}
	j.logger.Info("Journaled invalid message", zap.String("file", filename))
}
