package dashboard

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/lib/pq"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DefaultConnectTimeout bounds how long OpenPostgres keeps retrying the
// initial ping.
var DefaultConnectTimeout = 30 * time.Second

// Loader yields a fresh dataset snapshot.
type Loader interface {
	Load(ctx context.Context) (*Dataset, error)
}

// SampleLoader generates a sample dataset on first load and serves that same
// snapshot afterwards.
type SampleLoader struct {
	Rand *rand.Rand
	Now  func() time.Time

	mu sync.Mutex
	ds *Dataset
}

func NewSampleLoader() *SampleLoader {
	sl := &SampleLoader{
		Rand: rand.New(rand.NewSource(time.Now().UnixNano())),
		Now:  time.Now,
	}
	return sl
}

func (sl *SampleLoader) Load(_ context.Context) (*Dataset, error) {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	if sl.ds == nil {
		sl.ds = GenerateSample(sl.Rand, sl.Now())
	}
	return sl.ds, nil
}

// Store reads and seeds the dashboard tables through gorm.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

func NewStore(db *gorm.DB) *Store {
	s := &Store{
		db:  db,
		now: time.Now,
	}
	return s
}

// OpenPostgres connects with lib/pq, retrying the first ping with
// exponential backoff, then hands the pool to gorm.
func OpenPostgres(ctx context.Context, dsn string) (*gorm.DB, error) {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %s", err)
	}

	b := newBackoff()
	if err := backoff.RetryNotify(func() error {
		return sqlDB.PingContext(ctx)
	}, backoff.WithContext(b, ctx), func(err error, d time.Duration) {
		log.Warnf("Postgres not reachable: %s; waiting for %s before retrying", err, d)
	}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("connecting to postgres: %s", err)
	}

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormLogger(),
	})
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("initializing gorm: %s", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

func newBackoff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxElapsedTime = DefaultConnectTimeout
	b.MaxInterval = 5 * time.Second
	b.Multiplier = 1.5
	b.RandomizationFactor = 0.5
	return b
}

// gormLogger routes SQL logging through logrus, quiet unless debug is on.
func gormLogger() logger.Interface {
	level := logger.Warn
	if log.IsLevelEnabled(log.DebugLevel) {
		level = logger.Info
	}
	return logger.New(
		log.StandardLogger(),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
		},
	)
}

// CreateTables creates any missing dashboard tables.
func (s *Store) CreateTables() error {
	m := s.db.Migrator()
	for _, model := range Models() {
		if m.HasTable(model) {
			continue
		}
		if err := m.CreateTable(model); err != nil {
			return fmt.Errorf("creating table for %T: %s", model, err)
		}
	}
	return nil
}

// Seed inserts a generated sample dataset when the projects table is empty.
// Returns false when data was already present.
func (s *Store) Seed(ctx context.Context, r *rand.Rand) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&Project{}).Count(&n).Error; err != nil {
		return false, fmt.Errorf("counting projects: %s", err)
	}
	if n > 0 {
		log.WithField("projects", n).Info("Database already seeded")
		return false, nil
	}

	ds := GenerateSample(r, s.now())
	clearIDs(ds)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&ds.Projects).Error; err != nil {
			return fmt.Errorf("inserting projects: %s", err)
		}
		if err := tx.Create(&ds.Resources).Error; err != nil {
			return fmt.Errorf("inserting resources: %s", err)
		}
		if err := tx.Create(&ds.Inventory).Error; err != nil {
			return fmt.Errorf("inserting inventory: %s", err)
		}
		if err := tx.Create(&ds.KPIs).Error; err != nil {
			return fmt.Errorf("inserting kpis: %s", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	log.WithField("projects", len(ds.Projects)).WithField("resources", len(ds.Resources)).WithField("components", len(ds.Inventory)).WithField("months", len(ds.KPIs)).Info("Seeded database with sample data")
	return true, nil
}

func clearIDs(ds *Dataset) {
	for i := range ds.Projects {
		ds.Projects[i].ID = 0
	}
	for i := range ds.Resources {
		ds.Resources[i].ID = 0
	}
	for i := range ds.Inventory {
		ds.Inventory[i].ID = 0
	}
	for i := range ds.KPIs {
		ds.KPIs[i].ID = 0
	}
}

// Load reads every table into a new snapshot.
func (s *Store) Load(ctx context.Context) (*Dataset, error) {
	var (
		db = s.db.WithContext(ctx)
		ds = &Dataset{
			Source:   SourceDatabase,
			LoadedAt: s.now(),
		}
	)
	if err := db.Order("id").Find(&ds.Projects).Error; err != nil {
		return nil, fmt.Errorf("loading projects: %s", err)
	}
	if err := db.Order("id").Find(&ds.Resources).Error; err != nil {
		return nil, fmt.Errorf("loading resources: %s", err)
	}
	if err := db.Order("id").Find(&ds.Inventory).Error; err != nil {
		return nil, fmt.Errorf("loading inventory: %s", err)
	}
	if err := db.Order("date").Find(&ds.KPIs).Error; err != nil {
		return nil, fmt.Errorf("loading kpis: %s", err)
	}
	return ds, nil
}

// FallbackLoader tries Primary and falls back to sample data on error or
// when Primary returns no projects.
type FallbackLoader struct {
	Primary  Loader
	Fallback Loader
}

func (fl *FallbackLoader) Load(ctx context.Context) (*Dataset, error) {
	if fl.Primary != nil {
		ds, err := fl.Primary.Load(ctx)
		if err == nil && len(ds.Projects) > 0 {
			return ds, nil
		}
		if err != nil {
			log.Warnf("Loading dashboard data failed, using sample data: %s", err)
		} else {
			log.Warn("Database has no projects, using sample data")
		}
	}
	return fl.Fallback.Load(ctx)
}
