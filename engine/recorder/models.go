package recorder

import "time"

// Match is one recorded run.
type Match struct {
	ID        uint   `gorm:"primarykey"`
	UUID      string `gorm:"uniqueIndex;size:36"`
	Name      string
	TickRate  float64
	StartedAt time.Time
	Ticks     uint64
}

// Entity maps a simulation handle to who owned it and what it was.
type Entity struct {
	ID       uint   `gorm:"primarykey"`
	MatchID  uint   `gorm:"uniqueIndex:idx_entity_match,priority:1"`
	EntityID uint64 `gorm:"uniqueIndex:idx_entity_match,priority:2"`
	Faction  int
	Kind     string `gorm:"size:16"`
	Code     string `gorm:"size:64"`
}

// CombatEvent is one drained simulation event.
type CombatEvent struct {
	ID       uint   `gorm:"primarykey"`
	MatchID  uint   `gorm:"index"`
	Tick     uint64 `gorm:"index"`
	Type     string `gorm:"index;size:32"`
	Source   uint64
	Target   uint64
	AttackID int
	Faction  int
	X        float64
	Y        float64
	Amount   int
	Flag     bool
	Text     string `gorm:"size:64"`
}
