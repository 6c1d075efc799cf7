package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // sqlite driver

	"github.com/mrjrask/desk-display/pkg/models"
)

// ledger is the append-only sqlite record of configuration versions. Rows
// are never updated; pruning deletes whole rows past the retention window.
type ledger struct {
	db *sql.DB
}

func openLedger(path string) (*ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open version ledger: %w", err)
	}

	l := &ledger{db: db}
	if err := l.ensureSchema(); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("failed to initialize version ledger: %w", err)
	}

	return l, nil
}

func (l *ledger) ensureSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS config_versions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at TEXT NOT NULL,
			actor TEXT NOT NULL,
			summary TEXT NOT NULL,
			diff_summary TEXT NOT NULL DEFAULT '',
			config_json TEXT NOT NULL,
			metadata_json TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_config_versions_created ON config_versions(created_at);
	`
	_, err := l.db.Exec(schema)

	return err
}

func (l *ledger) close() error {
	return l.db.Close()
}

func (l *ledger) append(version *models.ConfigVersion) (int64, error) {
	metadataJSON, err := json.Marshal(version.Metadata)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal version metadata: %w", err)
	}

	result, err := l.db.Exec(`
		INSERT INTO config_versions (created_at, actor, summary, diff_summary, config_json, metadata_json)
		VALUES (?, ?, ?, ?, ?, ?)`,
		version.CreatedAt.UTC().Format(time.RFC3339),
		version.Actor,
		version.Summary,
		version.DiffSummary,
		string(version.Document),
		string(metadataJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to append config version: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read appended version id: %w", err)
	}

	return id, nil
}

func (l *ledger) remove(id int64) error {
	_, err := l.db.Exec("DELETE FROM config_versions WHERE id = ?", id)

	return err
}

// recent returns version metadata newest first, without document payloads.
func (l *ledger) recent(limit int) ([]*models.ConfigVersion, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := l.db.Query(`
		SELECT id, created_at, actor, summary, diff_summary
		FROM config_versions
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list config versions: %w", err)
	}
	defer rows.Close()

	var versions []*models.ConfigVersion

	for rows.Next() {
		var (
			version   models.ConfigVersion
			createdAt string
		)

		if err := rows.Scan(&version.ID, &createdAt, &version.Actor, &version.Summary, &version.DiffSummary); err != nil {
			return nil, fmt.Errorf("failed to scan config version: %w", err)
		}

		version.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		versions = append(versions, &version)
	}

	return versions, rows.Err()
}

func (l *ledger) byID(id int64) (*models.ConfigVersion, error) {
	row := l.db.QueryRow(`
		SELECT id, created_at, actor, summary, diff_summary, config_json, metadata_json
		FROM config_versions
		WHERE id = ?`, id)

	var (
		version      models.ConfigVersion
		createdAt    string
		configJSON   string
		metadataJSON sql.NullString
	)

	err := row.Scan(&version.ID, &createdAt, &version.Actor, &version.Summary,
		&version.DiffSummary, &configJSON, &metadataJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrVersionNotFound, id)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to fetch config version %d: %w", id, err)
	}

	version.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	version.Document = json.RawMessage(configJSON)

	if metadataJSON.Valid && metadataJSON.String != "" {
		_ = json.Unmarshal([]byte(metadataJSON.String), &version.Metadata)
	}

	return &version, nil
}

func (l *ledger) latestID() (int64, error) {
	row := l.db.QueryRow("SELECT COALESCE(MAX(id), 0) FROM config_versions")

	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, err
	}

	return id, nil
}

// prune deletes every row older than the newest keep rows.
func (l *ledger) prune(keep int) ([]int64, error) {
	if keep < 1 {
		keep = 1
	}

	rows, err := l.db.Query(`
		SELECT id FROM config_versions
		WHERE id NOT IN (SELECT id FROM config_versions ORDER BY id DESC LIMIT ?)`, keep)
	if err != nil {
		return nil, fmt.Errorf("failed to find prunable versions: %w", err)
	}
	defer rows.Close()

	var stale []int64

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}

		stale = append(stale, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, id := range stale {
		if err := l.remove(id); err != nil {
			return nil, fmt.Errorf("failed to prune version %d: %w", id, err)
		}
	}

	return stale, nil
}
