package geocache

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/ssbor/jobmap/internal/entities"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

type geoEntry struct {
	Query     string `gorm:"primaryKey"`
	Lat       *float64
	Lon       *float64
	Resolved  bool // false marks a cached permanent failure
	UpdatedAt time.Time
}

// SqliteStore persists cache entries as rows in a local sqlite database,
// one row per query, upserted on save.
type SqliteStore struct {
	db *gorm.DB
}

func NewSqliteStore(connectionString string) (*SqliteStore, error) {
	db, err := gorm.Open(sqlite.Open(connectionString), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Error),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open geo cache db: %w", err)
	}

	if err = db.AutoMigrate(geoEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate geo cache schema: %w", err)
	}

	return &SqliteStore{db: db}, nil
}

func (s *SqliteStore) Load() (map[string]*entities.Coordinate, error) {
	var rows []geoEntry
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, err
	}

	entries := make(map[string]*entities.Coordinate, len(rows))
	for _, row := range rows {
		if row.Resolved && row.Lat != nil && row.Lon != nil {
			entries[row.Query] = &entities.Coordinate{Lat: *row.Lat, Lon: *row.Lon}
		} else {
			entries[row.Query] = nil
		}
	}
	return entries, nil
}

func (s *SqliteStore) Save(entries map[string]*entities.Coordinate) error {
	if len(entries) == 0 {
		return nil
	}

	rows := make([]geoEntry, 0, len(entries))
	now := time.Now()
	for query, coord := range entries {
		row := geoEntry{Query: query, UpdatedAt: now}
		if coord != nil {
			lat, lon := coord.Lat, coord.Lon
			row.Lat, row.Lon, row.Resolved = &lat, &lon, true
		}
		rows = append(rows, row)
	}

	return s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rows).Error
}

func (s *SqliteStore) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
