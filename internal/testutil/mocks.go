package testutil

import (
	"context"
	"sync"
	"time"

	"overlap/internal/models"
	"overlap/internal/providers"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// CountLevel returns how many entries were recorded at the given level.
func (m *MockLogger) CountLevel(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Logs {
		if e.Level == level {
			n++
		}
	}
	return n
}

// MockMetrics implements providers.MetricsProviderInterface.
type MockMetrics struct {
	mu             sync.Mutex
	RostersFetched int
	RosterFailures int
	Chatters       int
	Rows           map[string]int
	Pushed         int
}

func (m *MockMetrics) IncRostersFetched() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RostersFetched++
}

func (m *MockMetrics) IncRosterFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RosterFailures++
}

func (m *MockMetrics) AddChattersCollected(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Chatters += count
}

func (m *MockMetrics) AddRowsWritten(window string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Rows == nil {
		m.Rows = make(map[string]int)
	}
	m.Rows[window] += count
}

func (m *MockMetrics) ObserveStageDuration(_ string, _ time.Duration) {}

func (m *MockMetrics) Push() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Pushed++
	return nil
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = make(map[string][]byte)
	}
	m.data[key] = value
}

// MockRosterClient implements services.RosterClient from a fixed roster
// table; logins listed in Fail return an error.
type MockRosterClient struct {
	Rosters map[string]*models.Roster
	Fail    map[string]error

	mu    sync.Mutex
	Calls []string
}

func (m *MockRosterClient) GetChatters(_ context.Context, login string) (*models.Roster, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, login)
	m.mu.Unlock()

	if err, ok := m.Fail[login]; ok {
		return nil, err
	}
	if roster, ok := m.Rosters[login]; ok {
		return roster, nil
	}
	return &models.Roster{}, nil
}

// MockOverlapStore implements storage.StoreInterface in memory.
type MockOverlapStore struct {
	mu         sync.Mutex
	Channels   map[string]*models.Channel
	nextID     int
	History    []models.ChannelHistory
	Overlap    map[string][]models.OverlapRow // keyed by table name
	LastUpdate time.Time
	HasLast    bool
	Err        error
}

func (m *MockOverlapStore) UpsertChannels(channels []*models.Channel) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Channels == nil {
		m.Channels = make(map[string]*models.Channel)
	}
	for _, ch := range channels {
		if existing, ok := m.Channels[ch.LoginName]; ok {
			existing.DisplayName = ch.DisplayName
			existing.Game = ch.Game
			existing.Viewers = ch.Viewers
			existing.LastUpdate = ch.LastUpdate
			continue
		}
		m.nextID++
		stored := *ch
		stored.ID = m.nextID
		m.Channels[ch.LoginName] = &stored
	}
	return nil
}

func (m *MockOverlapStore) UpdateChannelActivity(channels []*models.Channel) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range channels {
		if existing, ok := m.Channels[ch.LoginName]; ok {
			existing.Chatters = ch.Chatters
			existing.Shared = ch.Shared
			existing.LastUpdate = ch.LastUpdate
		}
	}
	return nil
}

func (m *MockOverlapStore) ChannelIDs(logins []string) (map[string]int, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make(map[string]int)
	for _, login := range logins {
		if ch, ok := m.Channels[login]; ok {
			ids[login] = ch.ID
		}
	}
	return ids, nil
}

func (m *MockOverlapStore) LatestChannelUpdate() (time.Time, bool, error) {
	if m.Err != nil {
		return time.Time{}, false, m.Err
	}
	return m.LastUpdate, m.HasLast, nil
}

func (m *MockOverlapStore) InsertHistory(rows []models.ChannelHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.History = append(m.History, rows...)
	return nil
}

func (m *MockOverlapStore) PruneHistory(before time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.History[:0]
	for _, row := range m.History {
		if row.Timestamp.After(before) {
			kept = append(kept, row)
		}
	}
	m.History = kept
	return nil
}

func (m *MockOverlapStore) InsertOverlap(window models.WindowSpec, rows []models.OverlapRow) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Overlap == nil {
		m.Overlap = make(map[string][]models.OverlapRow)
	}
	m.Overlap[window.Table] = append(m.Overlap[window.Table], rows...)
	return nil
}

func (m *MockOverlapStore) PruneOverlap(window models.WindowSpec, before time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := make([]models.OverlapRow, 0, len(m.Overlap[window.Table]))
	for _, row := range m.Overlap[window.Table] {
		if row.Key.After(before) {
			kept = append(kept, row)
		}
	}
	if m.Overlap == nil {
		m.Overlap = make(map[string][]models.OverlapRow)
	}
	m.Overlap[window.Table] = kept
	return nil
}

func (m *MockOverlapStore) HasRows(window models.WindowSpec, key time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.Overlap[window.Table] {
		if row.Key.Equal(key) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockOverlapStore) Close() error { return nil }

// MockSnapshotStore implements snapshot.StoreInterface in memory, keyed by
// calendar date.
type MockSnapshotStore struct {
	mu        sync.Mutex
	Snapshots map[string]models.ChatterMap
	GetErr    error
	PutErr    error
}

func dateKey(date time.Time) string {
	return date.Format("2006-01-02")
}

func (m *MockSnapshotStore) Put(date time.Time, chatters models.ChatterMap) error {
	if m.PutErr != nil {
		return m.PutErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Snapshots == nil {
		m.Snapshots = make(map[string]models.ChatterMap)
	}
	m.Snapshots[dateKey(date)] = chatters
	return nil
}

func (m *MockSnapshotStore) Get(date time.Time) (models.ChatterMap, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Snapshots[dateKey(date)], nil
}

func (m *MockSnapshotStore) Delete(date time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Snapshots, dateKey(date))
	return nil
}

func (m *MockSnapshotStore) Prune(before time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	cutoff := before.Truncate(24 * time.Hour)
	for key := range m.Snapshots {
		date, err := time.Parse("2006-01-02", key)
		if err != nil {
			continue
		}
		if date.Before(cutoff) {
			delete(m.Snapshots, key)
			removed++
		}
	}
	return removed, nil
}
