package recorder

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/1siamBot/rts-combat/engine/core"
)

const defaultBatchSize = 500

// Recorder persists drained events of one match for after-action queries.
// It is fed from the simulation goroutine and is not safe for concurrent use.
type Recorder struct {
	db        *gorm.DB
	match     Match
	pending   []CombatEvent
	BatchSize int
	log       zerolog.Logger
}

// Open creates or appends to the combat log at path and starts a new match.
// An empty path keeps the log in memory.
func Open(path, name string, tickRate float64, log zerolog.Logger) (*Recorder, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Match{}, &Entity{}, &CombatEvent{}); err != nil {
		return nil, fmt.Errorf("migrating combat log: %w", err)
	}
	r := &Recorder{
		db:        db,
		BatchSize: defaultBatchSize,
		log:       log.With().Str("component", "recorder").Logger(),
		match: Match{
			UUID:      uuid.NewString(),
			Name:      name,
			TickRate:  tickRate,
			StartedAt: time.Now().UTC(),
		},
	}
	if err := db.Create(&r.match).Error; err != nil {
		return nil, fmt.Errorf("creating match: %w", err)
	}
	r.log.Info().Str("match", r.match.UUID).Str("path", path).Msg("combat log opened")
	return r, nil
}

func openDB(path string) (*gorm.DB, error) {
	dsn := path
	if dsn == "" {
		dsn = ":memory:"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		CreateBatchSize:        defaultBatchSize,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening combat log: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql interface: %w", err)
	}
	// every pooled connection to :memory: would see its own empty database
	sqlDB.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = MEMORY;",
		"PRAGMA synchronous = OFF;",
		"PRAGMA temp_store = MEMORY;",
	}
	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("error setting PRAGMA: %w", err)
		}
	}
	return db, nil
}

func (r *Recorder) Match() Match { return r.match }

// Attach makes the recorder see every event the bus dispatches.
func (r *Recorder) Attach(bus *core.EventBus) {
	bus.OnAny(r.Capture)
}

// RegisterEntity records ownership so summaries can group by faction.
func (r *Recorder) RegisterEntity(id core.EntityID, faction int, kind, code string) error {
	e := Entity{MatchID: r.match.ID, EntityID: uint64(id), Faction: faction, Kind: kind, Code: code}
	if err := r.db.Create(&e).Error; err != nil {
		return fmt.Errorf("registering entity %d: %w", id, err)
	}
	return nil
}

// Capture buffers one event and writes the buffer out once it is full.
func (r *Recorder) Capture(e core.Event) {
	r.pending = append(r.pending, CombatEvent{
		MatchID:  r.match.ID,
		Tick:     e.Tick,
		Type:     e.Type.String(),
		Source:   uint64(e.Source),
		Target:   uint64(e.Target),
		AttackID: e.AttackID,
		Faction:  e.Faction,
		X:        e.Pos.X,
		Y:        e.Pos.Y,
		Amount:   e.Amount,
		Flag:     e.Flag,
		Text:     e.Text,
	})
	if len(r.pending) >= r.BatchSize {
		if err := r.Flush(); err != nil {
			r.log.Error().Err(err).Msg("flushing combat log")
		}
	}
}

// Flush writes buffered events.
func (r *Recorder) Flush() error {
	if len(r.pending) == 0 {
		return nil
	}
	if err := r.db.CreateInBatches(r.pending, r.BatchSize).Error; err != nil {
		return fmt.Errorf("writing %d events: %w", len(r.pending), err)
	}
	r.log.Debug().Int("events", len(r.pending)).Msg("combat log flushed")
	r.pending = r.pending[:0]
	return nil
}

// Close flushes, stamps the match length and closes the database.
func (r *Recorder) Close(ticks uint64) error {
	if err := r.Flush(); err != nil {
		return err
	}
	if err := r.db.Model(&r.match).Update("ticks", ticks).Error; err != nil {
		return fmt.Errorf("finishing match: %w", err)
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
