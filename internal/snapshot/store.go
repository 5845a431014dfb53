package snapshot

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"overlap/internal/models"
	"overlap/internal/providers"
	"overlap/internal/structures"
)

const (
	dateLayout = "2006-01-02"
	extension  = ".json.gz"
)

// StoreInterface is the durable per-day chatter snapshot store.
// Get returns (nil, nil) when no snapshot exists for the date: permanent
// absence is a legitimate state, not an error.
type StoreInterface interface {
	Put(date time.Time, chatters models.ChatterMap) error
	Get(date time.Time) (models.ChatterMap, error)
	Delete(date time.Time) error
	Prune(before time.Time) (int, error)
}

// Store keeps one gzip-compressed JSON file per calendar day.
type Store struct {
	dir        string
	compressor CompressorInterface
	logger     providers.Logger
}

// NewSnapshotStore is the injector-facing constructor.
func NewSnapshotStore(conf *structures.Config, compressor CompressorInterface, logger providers.Logger) (StoreInterface, error) {
	return NewStore(conf.Snapshot.Dir, compressor, logger)
}

func NewStore(dir string, compressor CompressorInterface, logger providers.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Store{
		dir:        dir,
		compressor: compressor,
		logger:     logger,
	}, nil
}

func (s *Store) Put(date time.Time, chatters models.ChatterMap) error {
	jsonData, err := json.Marshal(chatters)
	if err != nil {
		return err
	}

	data, err := s.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	path := s.path(date)
	tmpFile := path + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	if _, err = file.Write(data); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, path)
}

func (s *Store) Get(date time.Time) (models.ChatterMap, error) {
	data, err := os.ReadFile(s.path(date))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	decompressed, err := s.compressor.Decompress(data)
	if err != nil {
		return nil, err
	}

	var chatters models.ChatterMap
	if err := json.Unmarshal(decompressed, &chatters); err != nil {
		return nil, err
	}
	if chatters == nil {
		chatters = make(models.ChatterMap)
	}
	return chatters, nil
}

func (s *Store) Delete(date time.Time) error {
	err := os.Remove(s.path(date))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Prune removes every snapshot dated strictly before the cutoff and returns
// the number of files deleted. Unparseable file names are left alone.
func (s *Store) Prune(before time.Time) (int, error) {
	files, err := filepath.Glob(filepath.Join(s.dir, "*"+extension))
	if err != nil {
		return 0, err
	}

	removed := 0
	cutoff := before.Truncate(24 * time.Hour)
	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), extension)
		date, err := time.Parse(dateLayout, name)
		if err != nil {
			s.logger.Warnf(providers.TypeStore, "Skipping unrecognized snapshot file %s", file)
			continue
		}
		if date.Before(cutoff) {
			if err := os.Remove(file); err != nil {
				s.logger.Errorf(providers.TypeStore, "Failed to prune snapshot %s: %s", file, err)
				continue
			}
			removed++
		}
	}
	return removed, nil
}

func (s *Store) path(date time.Time) string {
	return filepath.Join(s.dir, date.Format(dateLayout)+extension)
}
