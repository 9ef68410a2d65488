package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/sethvargo/go-retry"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/compozy/tagrelease/internal/domain"
)

const (
	// JournalDirName is the journal directory inside the git directory.
	JournalDirName = "tag-release"
	// JournalSchemaVersion is the current schema version of journal files
	JournalSchemaVersion = "1.0.0"
	// JournalFilePermissions defines the permissions for journal files
	JournalFilePermissions = 0o600
	// JournalDirPermissions defines the permissions for the journal directory
	JournalDirPermissions = 0o700
	// LockTimeout defines the maximum time to wait for a lock
	LockTimeout = 5 * time.Second
	// LockRetryInterval defines the interval between lock attempts
	LockRetryInterval = 50 * time.Millisecond
)

// ErrNoRuns is returned by LoadLatest when nothing was recorded yet.
var ErrNoRuns = errors.New("no release runs recorded")

var errLockBusy = errors.New("lock is held by another process")

// JournalRepository persists the progress of release runs.
type JournalRepository interface {
	Save(ctx context.Context, record *domain.RunRecord) error
	Load(ctx context.Context, sessionID string) (*domain.RunRecord, error)
	LoadLatest(ctx context.Context) (*domain.RunRecord, error)
}

// JournalMetadata describes a journal file.
type JournalMetadata struct {
	SchemaVersion string    `json:"schema_version"`
	Checksum      string    `json:"checksum"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// JournalEntry is the on-disk form of a run record.
type JournalEntry struct {
	Metadata JournalMetadata   `json:"metadata"`
	Record   *domain.RunRecord `json:"record"`
}

// JSONJournalRepository stores run records as checksummed JSON files guarded
// by file locks.
type JSONJournalRepository struct {
	fs     afero.Fs
	dir    string
	logger *zap.Logger
	mu     sync.RWMutex
}

// NewJSONJournalRepository creates a journal stored under dir. Locks are taken
// on the OS filesystem at the same paths, so fs should be the OS filesystem.
func NewJSONJournalRepository(fs afero.Fs, dir string, logger *zap.Logger) *JSONJournalRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JSONJournalRepository{fs: fs, dir: dir, logger: logger}
}

// JournalDir returns the journal directory for a git directory.
func JournalDir(gitDir string) string {
	return filepath.Join(gitDir, JournalDirName)
}

// Save writes record atomically and points latest.txt at it.
func (r *JSONJournalRepository) Save(ctx context.Context, record *domain.RunRecord) error {
	if err := r.fs.MkdirAll(r.dir, JournalDirPermissions); err != nil {
		return fmt.Errorf("failed to ensure journal directory: %w", err)
	}
	unlock, err := r.lock(ctx, record.SessionID, false)
	if err != nil {
		return err
	}
	defer unlock()
	recordData, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal run record: %w", err)
	}
	entry := JournalEntry{
		Metadata: JournalMetadata{
			SchemaVersion: JournalSchemaVersion,
			Checksum:      checksum(recordData),
			CreatedAt:     record.StartedAt,
			UpdatedAt:     time.Now(),
		},
		Record: record,
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal journal entry: %w", err)
	}
	filename := r.recordFilename(record.SessionID)
	if err := r.writeAtomic(filename, data); err != nil {
		return fmt.Errorf("failed to write run record: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.writeAtomic(r.latestFilename(), []byte(filepath.Base(filename))); err != nil {
		return fmt.Errorf("failed to update latest run: %w", err)
	}
	return nil
}

// Load reads and validates the record of sessionID.
func (r *JSONJournalRepository) Load(ctx context.Context, sessionID string) (*domain.RunRecord, error) {
	filename := r.recordFilename(sessionID)
	if _, err := r.fs.Stat(filename); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("run %s not found", sessionID)
		}
		return nil, fmt.Errorf("failed to stat run record: %w", err)
	}
	unlock, err := r.lock(ctx, sessionID, true)
	if err != nil {
		return nil, err
	}
	defer unlock()
	data, err := afero.ReadFile(r.fs, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read run record: %w", err)
	}
	var entry JournalEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal journal entry: %w", err)
	}
	if entry.Metadata.SchemaVersion != JournalSchemaVersion {
		return nil, fmt.Errorf("incompatible schema version: expected %s, got %s",
			JournalSchemaVersion, entry.Metadata.SchemaVersion)
	}
	if entry.Record == nil {
		return nil, fmt.Errorf("journal entry for %s has no record", sessionID)
	}
	recordData, err := json.Marshal(entry.Record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal run record for checksum validation: %w", err)
	}
	if entry.Metadata.Checksum != checksum(recordData) {
		return nil, fmt.Errorf("run record checksum mismatch: data may be corrupted")
	}
	return entry.Record, nil
}

// LoadLatest returns the most recently saved record, or ErrNoRuns.
func (r *JSONJournalRepository) LoadLatest(ctx context.Context) (*domain.RunRecord, error) {
	r.mu.RLock()
	data, err := afero.ReadFile(r.fs, r.latestFilename())
	r.mu.RUnlock()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoRuns
		}
		return nil, fmt.Errorf("failed to read latest run: %w", err)
	}
	sessionID := extractSessionID(strings.TrimSpace(string(data)))
	if sessionID == "" {
		return nil, fmt.Errorf("invalid latest run pointer: %s", data)
	}
	return r.Load(ctx, sessionID)
}

// lock takes a file lock for sessionID, polling until LockTimeout.
func (r *JSONJournalRepository) lock(ctx context.Context, sessionID string, shared bool) (func(), error) {
	fl := flock.New(r.lockFilename(sessionID))
	try := fl.TryLock
	if shared {
		try = fl.TryRLock
	}
	backoff := retry.WithMaxDuration(LockTimeout, retry.NewConstant(LockRetryInterval))
	err := retry.Do(ctx, backoff, func(_ context.Context) error {
		locked, err := try()
		if err != nil {
			return err
		}
		if !locked {
			return retry.RetryableError(errLockBusy)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to acquire journal lock: %w", err)
	}
	return func() {
		if err := fl.Unlock(); err != nil {
			r.logger.Warn("failed to unlock journal", zap.String("session_id", sessionID), zap.Error(err))
		}
	}, nil
}

func (r *JSONJournalRepository) writeAtomic(filename string, data []byte) error {
	tmp := filename + ".tmp"
	if err := afero.WriteFile(r.fs, tmp, data, JournalFilePermissions); err != nil {
		return err
	}
	if err := r.fs.Rename(tmp, filename); err != nil {
		if removeErr := r.fs.Remove(tmp); removeErr != nil {
			r.logger.Warn("failed to remove temp file", zap.String("path", tmp), zap.Error(removeErr))
		}
		return err
	}
	return nil
}

func (r *JSONJournalRepository) recordFilename(sessionID string) string {
	return filepath.Join(r.dir, fmt.Sprintf("run-%s.json", sessionID))
}

func (r *JSONJournalRepository) lockFilename(sessionID string) string {
	return filepath.Join(r.dir, fmt.Sprintf(".run-%s.lock", sessionID))
}

func (r *JSONJournalRepository) latestFilename() string {
	return filepath.Join(r.dir, "latest.txt")
}

func extractSessionID(filename string) string {
	base := filepath.Base(filename)
	if !strings.HasPrefix(base, "run-") || !strings.HasSuffix(base, ".json") {
		return ""
	}
	return strings.TrimSuffix(strings.TrimPrefix(base, "run-"), ".json")
}

func checksum(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
