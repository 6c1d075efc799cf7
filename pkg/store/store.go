// Package store persists the configuration document with an append-only
// version history, diff metadata, rollback, and retention pruning. Writes
// are serialized; readers always see the last fully-committed version.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mrjrask/desk-display/pkg/models"
	"github.com/mrjrask/desk-display/pkg/schedule"
)

// DefaultRetention is how many historical versions are kept when the
// caller does not specify a window.
const DefaultRetention = 25

// ErrVersionNotFound marks a rollback target that no longer exists.
var ErrVersionNotFound = errors.New("config version not found")

// ErrNoDocument means the store holds no committed configuration yet.
var ErrNoDocument = errors.New("no configuration committed")

type head struct {
	doc     *models.Document
	raw     []byte
	version *models.ConfigVersion
}

// Store owns the persisted document and its version history: the active
// config file, a sqlite ledger of versions, and an archive directory of
// per-version snapshots.
type Store struct {
	writeMu    sync.Mutex
	head       atomic.Pointer[head]
	ledger     *ledger
	configPath string
	archiveDir string
	retention  int
	logger     *slog.Logger

	subsMu sync.Mutex
	subs   []func(*models.Document)
}

// Options configures a Store. Zero values fall back to defaults derived
// from ConfigPath.
type Options struct {
	ConfigPath string
	LedgerPath string
	ArchiveDir string
	Retention  int
}

// Open prepares the store: creates the ledger and archive directory and
// loads the active config file as the committed head if one exists and is
// valid.
func Open(opts Options, logger *slog.Logger) (*Store, error) {
	if opts.ConfigPath == "" {
		return nil, errors.New("store: config path is required")
	}

	if opts.LedgerPath == "" {
		opts.LedgerPath = strings.TrimSuffix(opts.ConfigPath, filepath.Ext(opts.ConfigPath)) + ".history.sqlite3"
	}

	if opts.ArchiveDir == "" {
		opts.ArchiveDir = filepath.Join(filepath.Dir(opts.ConfigPath), "config_versions")
	}

	if opts.Retention < 1 {
		opts.Retention = DefaultRetention
	}

	if err := os.MkdirAll(filepath.Dir(opts.ConfigPath), 0750); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.MkdirAll(opts.ArchiveDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	ledger, err := openLedger(opts.LedgerPath)
	if err != nil {
		return nil, err
	}

	s := &Store{
		ledger:     ledger,
		configPath: opts.ConfigPath,
		archiveDir: opts.ArchiveDir,
		retention:  opts.Retention,
		logger:     logger,
	}

	if err := s.loadHead(); err != nil {
		logger.Warn("active config not loaded", "path", opts.ConfigPath, "error", err)
	}

	return s, nil
}

// Close releases the ledger database.
func (s *Store) Close() error {
	return s.ledger.close()
}

// loadHead reads the active config file into the committed head without
// recording a new version.
func (s *Store) loadHead() error {
	data, err := os.ReadFile(s.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return err
	}

	doc, verrs := schedule.ValidateRaw(data)
	if len(verrs) > 0 {
		return fmt.Errorf("active config is invalid: %w", verrs)
	}

	canonical, err := canonicalJSON(doc)
	if err != nil {
		return err
	}

	latest, err := s.ledger.latestID()
	if err != nil {
		return err
	}

	var version *models.ConfigVersion
	if latest > 0 {
		if v, err := s.ledger.byID(latest); err == nil {
			version = v
		}
	}

	s.head.Store(&head{doc: doc, raw: canonical, version: version})

	return nil
}

// Current returns the latest committed document. It never blocks on
// writers; a save in progress is invisible until fully committed.
func (s *Store) Current() (*models.Document, error) {
	h := s.head.Load()
	if h == nil {
		return nil, ErrNoDocument
	}

	return h.doc, nil
}

// Head returns the metadata of the latest committed version, when known.
func (s *Store) Head() *models.ConfigVersion {
	h := s.head.Load()
	if h == nil {
		return nil
	}

	return h.version
}

// Subscribe registers a callback invoked with every newly committed
// document. Callbacks run on the writer's goroutine and must be quick.
func (s *Store) Subscribe(fn func(*models.Document)) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	s.subs = append(s.subs, fn)
}

// Save validates the document and, on success, commits it: appends a
// ConfigVersion with a diff summary against the current head, writes the
// archive snapshot and the active config file atomically, swaps the head
// pointer, and prunes history past the retention window. On validation
// failure it returns schedule.ValidationErrors with every violation and
// leaves the head untouched.
func (s *Store) Save(doc *models.Document, actor, summary string, metadata map[string]any) (*models.ConfigVersion, error) {
	if errs := schedule.Validate(doc); len(errs) > 0 {
		return nil, errs
	}

	canonical, err := canonicalJSON(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	prev := s.head.Load()

	var (
		prevDoc *models.Document
		prevRaw []byte
	)

	if prev != nil {
		prevDoc = prev.doc
		prevRaw = prev.raw
	}

	if summary == "" {
		summary = summarizeChange(prevDoc, doc)
	}

	if actor == "" {
		actor = "system"
	}

	version := &models.ConfigVersion{
		Document:    json.RawMessage(canonical),
		CreatedAt:   time.Now().UTC(),
		Actor:       actor,
		Summary:     summary,
		DiffSummary: unifiedDiff(string(prevRaw), string(canonical)),
		Metadata:    metadata,
	}

	id, err := s.ledger.append(version)
	if err != nil {
		return nil, err
	}

	version.ID = id

	if err := s.commitFiles(id, canonical); err != nil {
		// Back out the ledger row so no partial commit is visible.
		_ = s.ledger.remove(id)

		return nil, err
	}

	s.head.Store(&head{doc: doc, raw: canonical, version: version})

	if stale, err := s.ledger.prune(s.retention); err != nil {
		s.logger.Warn("history prune failed", "error", err)
	} else {
		s.removeArchives(stale)
	}

	s.logger.Info("configuration saved", "version", id, "actor", actor, "summary", summary)
	s.notify(doc)

	return version, nil
}

// Rollback re-validates a historical document and commits it as a new
// version. Rollback is an audited write, not a silent pointer rewind.
func (s *Store) Rollback(versionID int64, actor string) (*models.ConfigVersion, error) {
	target, err := s.ledger.byID(versionID)
	if err != nil {
		return nil, err
	}

	// The schema may have evolved since the target was written.
	doc, verrs := schedule.ValidateRaw(target.Document)
	if len(verrs) > 0 {
		return nil, verrs
	}

	summary := fmt.Sprintf("Rollback to version %d", versionID)

	return s.Save(doc, actor, summary, map[string]any{"rollback_from": versionID})
}

// ListVersions returns up to limit recent versions, newest first, without
// document payloads.
func (s *Store) ListVersions(limit int) ([]*models.ConfigVersion, error) {
	return s.ledger.recent(limit)
}

// Version fetches a single version including its document.
func (s *Store) Version(id int64) (*models.ConfigVersion, error) {
	return s.ledger.byID(id)
}

// Prune applies the retention window outside a save. The display daemon
// runs this nightly so history shrinks even on devices that rarely save.
// The current head is never pruned.
func (s *Store) Prune() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	stale, err := s.ledger.prune(s.retention)
	if err != nil {
		return err
	}

	s.removeArchives(stale)

	if len(stale) > 0 {
		s.logger.Info("pruned config history", "removed", len(stale))
	}

	return nil
}

// commitFiles writes the archive snapshot and atomically replaces the
// active config file.
func (s *Store) commitFiles(id int64, canonical []byte) error {
	archivePath := filepath.Join(s.archiveDir, fmt.Sprintf("%06d.json", id))
	if err := os.WriteFile(archivePath, canonical, 0600); err != nil {
		return fmt.Errorf("failed to write archive snapshot: %w", err)
	}

	tmpPath := s.configPath + ".tmp"
	if err := os.WriteFile(tmpPath, canonical, 0600); err != nil {
		return fmt.Errorf("failed to stage config file: %w", err)
	}

	if err := os.Rename(tmpPath, s.configPath); err != nil {
		_ = os.Remove(tmpPath)

		return fmt.Errorf("failed to replace config file: %w", err)
	}

	return nil
}

func (s *Store) removeArchives(ids []int64) {
	for _, id := range ids {
		path := filepath.Join(s.archiveDir, fmt.Sprintf("%06d.json", id))
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to remove archived snapshot", "path", path, "error", err)
		}
	}
}

func (s *Store) notify(doc *models.Document) {
	s.subsMu.Lock()
	subs := make([]func(*models.Document), len(s.subs))
	copy(subs, s.subs)
	s.subsMu.Unlock()

	for _, fn := range subs {
		fn(doc)
	}
}

// canonicalJSON is the single rendering used for config files, archive
// snapshots, ledger payloads, and diffs, so byte comparison across them
// is meaningful.
func canonicalJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}

	return append(data, '\n'), nil
}
