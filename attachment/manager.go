// Package attachment keeps the files attached to a report during a wizard
// session and decides which new files are admitted.
package attachment

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrFileTooLarge    = errors.New("file exceeds maximum size")
	ErrInvalidFileType = errors.New("invalid file type")
	ErrMaxFilesReached = errors.New("maximum number of files reached")
	ErrInvalidSize     = errors.New("file size is negative")
	ErrIndexOutOfRange = errors.New("attachment index out of range")
	ErrBusy            = errors.New("attachments are locked while a submission is in flight")
)

const (
	DefaultMaxAttachments = 10
	DefaultMaxSize        = 10 * 1024 * 1024
)

type Config struct {
	// Accept lists allowed MIME types. Entries may be "type/*" or "*/*".
	Accept []string
	// MaxSize is the per-file ceiling in bytes.
	MaxSize int64
	// MaxAttachments caps the number of files held at once.
	MaxAttachments int
}

func DefaultConfig() Config {
	return Config{
		Accept:         []string{"image/*", "video/*", "application/pdf"},
		MaxSize:        DefaultMaxSize,
		MaxAttachments: DefaultMaxAttachments,
	}
}

// File is what an attachment source hands over. Handle is opaque.
type File struct {
	Name     string
	Handle   string
	MIMEType string
	Size     int64
}

type Attachment struct {
	ID       string `json:"id" msgpack:"id"`
	Name     string `json:"name" msgpack:"name"`
	Handle   string `json:"handle" msgpack:"handle"`
	MIMEType string `json:"mime_type" msgpack:"mime_type"`
	Size     int64  `json:"size" msgpack:"size"`
}

type Rejection struct {
	File   File
	Reason error
}

func (r Rejection) Error() string {
	return fmt.Sprintf("%s: %v", r.File.Name, r.Reason)
}

type Result struct {
	Accepted []Attachment
	Rejected []Rejection
}

type Manager struct {
	config Config
	mu     sync.RWMutex
	items  []Attachment
	busy   bool
}

func NewManager(config Config) *Manager {
	def := DefaultConfig()
	if config.MaxSize <= 0 {
		config.MaxSize = def.MaxSize
	}
	if config.MaxAttachments <= 0 {
		config.MaxAttachments = def.MaxAttachments
	}
	if len(config.Accept) == 0 {
		config.Accept = def.Accept
	}
	config.Accept = append([]string(nil), config.Accept...)
	return &Manager{config: config}
}

func (m *Manager) Config() Config {
	cfg := m.config
	cfg.Accept = append([]string(nil), cfg.Accept...)
	return cfg
}

// Add admits files in order. Type and size are checked per file; once the
// count cap is reached the remaining files of this batch are rejected.
// Attachments already held are never evicted.
func (m *Manager) Add(files []File) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.busy {
		return Result{}, ErrBusy
	}

	var res Result
	for _, f := range files {
		if err := m.admit(f); err != nil {
			res.Rejected = append(res.Rejected, Rejection{File: f, Reason: err})
			continue
		}
		a := Attachment{
			ID:       uuid.NewString(),
			Name:     f.Name,
			Handle:   f.Handle,
			MIMEType: f.MIMEType,
			Size:     f.Size,
		}
		m.items = append(m.items, a)
		res.Accepted = append(res.Accepted, a)
	}
	if len(res.Rejected) > 0 {
		slog.Debug("attachments rejected", "accepted", len(res.Accepted), "rejected", len(res.Rejected))
	}
	return res, nil
}

func (m *Manager) admit(f File) error {
	if f.Size < 0 {
		return ErrInvalidSize
	}
	if f.Size > m.config.MaxSize {
		return ErrFileTooLarge
	}
	if !m.isAllowedType(f.MIMEType) {
		return ErrInvalidFileType
	}
	if len(m.items) >= m.config.MaxAttachments {
		return ErrMaxFilesReached
	}
	return nil
}

func (m *Manager) isAllowedType(mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if mimeType == "" {
		return false
	}
	for _, accept := range m.config.Accept {
		accept = strings.ToLower(strings.TrimSpace(accept))
		if accept == "*/*" || accept == mimeType {
			return true
		}
		if prefix, ok := strings.CutSuffix(accept, "/*"); ok && strings.HasPrefix(mimeType, prefix+"/") {
			return true
		}
	}
	return false
}

// Remove drops exactly one attachment. Indices shift after a removal.
func (m *Manager) Remove(index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.busy {
		return ErrBusy
	}
	if index < 0 || index >= len(m.items) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	m.items = append(m.items[:index], m.items[index+1:]...)
	return nil
}

func (m *Manager) List() []Attachment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Attachment(nil), m.items...)
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Restore replaces the held attachments, e.g. from a saved draft. Entries
// beyond the count cap are dropped.
func (m *Manager) Restore(items []Attachment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(items) > m.config.MaxAttachments {
		items = items[:m.config.MaxAttachments]
	}
	m.items = append([]Attachment(nil), items...)
}

// SetBusy locks or unlocks mutation while a submission is in flight.
func (m *Manager) SetBusy(busy bool) {
	m.mu.Lock()
	m.busy = busy
	m.mu.Unlock()
}
