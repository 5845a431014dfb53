// Package storage provides SQLite persistence for the overlap engine.
package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"overlap/internal/models"
	"overlap/internal/structures"
)

// StoreInterface is the relational boundary the writer and scheduler use.
type StoreInterface interface {
	UpsertChannels(channels []*models.Channel) error
	UpdateChannelActivity(channels []*models.Channel) error
	ChannelIDs(logins []string) (map[string]int, error)
	LatestChannelUpdate() (time.Time, bool, error)
	InsertHistory(rows []models.ChannelHistory) error
	PruneHistory(before time.Time) error
	InsertOverlap(window models.WindowSpec, rows []models.OverlapRow) error
	PruneOverlap(window models.WindowSpec, before time.Time) error
	HasRows(window models.WindowSpec, key time.Time) (bool, error)
	Close() error
}

// Store wraps a SQLite database. All timestamps are stored in UTC.
type Store struct {
	db *sql.DB
}

// NewStorageProvider is the injector-facing constructor.
func NewStorageProvider(conf *structures.Config) (StoreInterface, error) {
	return Open(conf.Database.Path)
}

func Open(path string) (*Store, error) {
	connStr := path
	if path == ":memory:" {
		// Shared cache so every pooled connection sees the same database.
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return s, nil
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS channels (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		login_name TEXT UNIQUE NOT NULL,
		display_name TEXT,
		avatar TEXT,
		game TEXT,
		viewers INTEGER DEFAULT 0,
		chatters INTEGER DEFAULT 0,
		shared INTEGER DEFAULT 0,
		last_update DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_channels_last_update ON channels(last_update DESC);

	CREATE TABLE IF NOT EXISTS channel_history (
		channel INTEGER NOT NULL,
		timestamp DATETIME NOT NULL,
		viewers INTEGER DEFAULT 0,
		chatters INTEGER DEFAULT 0,
		shared INTEGER DEFAULT 0,
		PRIMARY KEY (channel, timestamp)
	);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}

	windows := append([]models.WindowSpec{models.TickWindow}, models.DailyWindows...)
	for _, w := range windows {
		table := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			timestamp DATETIME NOT NULL,
			channel INTEGER NOT NULL,
			total_unique INTEGER DEFAULT 0,
			total_overlap INTEGER DEFAULT 0,
			shared TEXT NOT NULL,
			PRIMARY KEY (timestamp, channel)
		);
		CREATE INDEX IF NOT EXISTS idx_%s_channel ON %s(channel);
		`, w.Table, w.Table, w.Table)
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("create %s: %w", w.Table, err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertChannels inserts newly discovered channels and refreshes the display
// metadata of known ones.
func (s *Store) UpsertChannels(channels []*models.Channel) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO channels (login_name, display_name, avatar, game, viewers, last_update)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(login_name) DO UPDATE SET
			display_name = excluded.display_name,
			avatar = excluded.avatar,
			game = excluded.game,
			viewers = excluded.viewers,
			last_update = excluded.last_update`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, ch := range channels {
		if _, err := stmt.Exec(ch.LoginName, ch.DisplayName, ch.Avatar, ch.Game, ch.Viewers, ch.LastUpdate.UTC()); err != nil {
			return fmt.Errorf("upsert channel %s: %w", ch.LoginName, err)
		}
	}
	return tx.Commit()
}

// UpdateChannelActivity writes back the per-tick chatter and total-shared
// counts computed by the aggregation.
func (s *Store) UpdateChannelActivity(channels []*models.Channel) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`UPDATE channels SET chatters = ?, shared = ?, last_update = ? WHERE login_name = ?`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, ch := range channels {
		if _, err := stmt.Exec(ch.Chatters, ch.Shared, ch.LastUpdate.UTC(), ch.LoginName); err != nil {
			return fmt.Errorf("update channel %s: %w", ch.LoginName, err)
		}
	}
	return tx.Commit()
}

// ChannelIDs resolves login names to internal channel ids. Unknown logins
// are simply absent from the result.
func (s *Store) ChannelIDs(logins []string) (map[string]int, error) {
	ids := make(map[string]int, len(logins))
	if len(logins) == 0 {
		return ids, nil
	}

	// SQLite's default variable limit is 999; resolve in chunks.
	for start := 0; start < len(logins); start += 500 {
		end := min(start+500, len(logins))
		chunk := logins[start:end]

		placeholders := strings.Repeat("?,", len(chunk))
		placeholders = placeholders[:len(placeholders)-1]
		args := make([]interface{}, len(chunk))
		for i, l := range chunk {
			args[i] = l
		}

		rows, err := s.db.Query(
			fmt.Sprintf("SELECT login_name, id FROM channels WHERE login_name IN (%s)", placeholders), args...)
		if err != nil {
			return nil, err
		}

		for rows.Next() {
			var login string
			var id int
			if err := rows.Scan(&login, &id); err != nil {
				rows.Close()
				return nil, err
			}
			ids[login] = id
		}
		if err := rows.Close(); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

// LatestChannelUpdate reports when any channel was last touched by a tick.
// The second return is false when the channels table is empty (first-ever
// run).
func (s *Store) LatestChannelUpdate() (time.Time, bool, error) {
	var latest time.Time
	err := s.db.QueryRow("SELECT last_update FROM channels ORDER BY last_update DESC LIMIT 1").Scan(&latest)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return latest.UTC(), true, nil
}

func (s *Store) InsertHistory(rows []models.ChannelHistory) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO channel_history (channel, timestamp, viewers, chatters, shared)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.Exec(row.ChannelID, row.Timestamp.UTC(), row.Viewers, row.Chatters, row.Shared); err != nil {
			return fmt.Errorf("insert history for channel %d: %w", row.ChannelID, err)
		}
	}
	return tx.Commit()
}

func (s *Store) PruneHistory(before time.Time) error {
	_, err := s.db.Exec("DELETE FROM channel_history WHERE timestamp <= ?", before.UTC())
	return err
}

// InsertOverlap bulk-writes one window's rows. INSERT OR REPLACE makes a
// re-run of the same window a logical overwrite on (timestamp, channel).
func (s *Store) InsertOverlap(window models.WindowSpec, rows []models.OverlapRow) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(fmt.Sprintf(`
		INSERT OR REPLACE INTO %s (timestamp, channel, total_unique, total_overlap, shared)
		VALUES (?, ?, ?, ?, ?)`, window.Table))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range rows {
		shared, err := json.Marshal(row.Shared)
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(row.Key.UTC(), row.Channel, row.TotalUnique, row.TotalOverlap, string(shared)); err != nil {
			return fmt.Errorf("insert %s row for channel %d: %w", window.Table, row.Channel, err)
		}
	}
	return tx.Commit()
}

func (s *Store) PruneOverlap(window models.WindowSpec, before time.Time) error {
	_, err := s.db.Exec(fmt.Sprintf("DELETE FROM %s WHERE timestamp <= ?", window.Table), before.UTC())
	return err
}

// HasRows reports whether any row exists for the window key. The daily
// rollup uses it as its idempotency guard.
func (s *Store) HasRows(window models.WindowSpec, key time.Time) (bool, error) {
	var exists int
	err := s.db.QueryRow(
		fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE timestamp = ?)", window.Table), key.UTC()).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists == 1, nil
}
