package recorder

import (
	"fmt"

	"github.com/1siamBot/rts-combat/engine/core"
)

// Summary is the after-action report of a match.
type Summary struct {
	Events          map[string]int64
	DamageByFaction map[int]int64
	KillsByFaction  map[int]int64
	LossesByFaction map[int]int64
	TopDealers      []Dealer
}

// Dealer is one entity's total damage output.
type Dealer struct {
	EntityID uint64
	Code     string
	Faction  int
	Damage   int64
}

type factionTotal struct {
	Faction int
	Total   int64
}

// Summary flushes pending events and aggregates the match so far.
func (r *Recorder) Summary(top int) (Summary, error) {
	if err := r.Flush(); err != nil {
		return Summary{}, err
	}
	s := Summary{Events: make(map[string]int64)}

	var counts []struct {
		Type string
		N    int64
	}
	err := r.db.Model(&CombatEvent{}).
		Select("type, COUNT(*) AS n").
		Where("match_id = ?", r.match.ID).
		Group("type").
		Scan(&counts).Error
	if err != nil {
		return s, fmt.Errorf("counting events: %w", err)
	}
	for _, c := range counts {
		s.Events[c.Type] = c.N
	}

	if s.DamageByFaction, err = r.byFaction(core.EvtDamageDealt, "source", "SUM(e.amount)"); err != nil {
		return s, err
	}
	// entity_dead carries the victim as source and the killer as target
	if s.KillsByFaction, err = r.byFaction(core.EvtEntityDead, "target", "COUNT(*)"); err != nil {
		return s, err
	}
	if s.LossesByFaction, err = r.byFaction(core.EvtEntityDead, "source", "COUNT(*)"); err != nil {
		return s, err
	}

	err = r.db.Table("combat_events AS e").
		Select("e.source AS entity_id, ent.code AS code, ent.faction AS faction, SUM(e.amount) AS damage").
		Joins("JOIN entities AS ent ON ent.entity_id = e.source AND ent.match_id = e.match_id").
		Where("e.match_id = ? AND e.type = ?", r.match.ID, core.EvtDamageDealt.String()).
		Group("e.source, ent.code, ent.faction").
		Order("damage DESC, e.source").
		Limit(top).
		Scan(&s.TopDealers).Error
	if err != nil {
		return s, fmt.Errorf("ranking dealers: %w", err)
	}
	return s, nil
}

// byFaction aggregates events of type t by the faction owning the entity in column.
func (r *Recorder) byFaction(t core.EventType, column, agg string) (map[int]int64, error) {
	var rows []factionTotal
	err := r.db.Table("combat_events AS e").
		Select("ent.faction AS faction, "+agg+" AS total").
		Joins("JOIN entities AS ent ON ent.entity_id = e."+column+" AND ent.match_id = e.match_id").
		Where("e.match_id = ? AND e.type = ?", r.match.ID, t.String()).
		Group("ent.faction").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("aggregating %s by faction: %w", t, err)
	}
	out := make(map[int]int64, len(rows))
	for _, row := range rows {
		out[row.Faction] = row.Total
	}
	return out, nil
}
