package core

// EconomySink receives resource changes such as destroy awards.
type EconomySink interface {
	UpdateResource(factionID int, resource string, amount int)
}

// Faction represents a side in the match
type Faction struct {
	ID        int
	Name      string
	TeamID    int
	Resources map[string]int
	IsAI      bool
	Defeated  bool
}

// FactionManager manages all factions in a game and the match-wide peace timer.
type FactionManager struct {
	Factions       []*Faction
	LocalFactionID int
	PeaceTime      float64 // seconds left before combat is allowed
	Events         *EventBus
}

func NewFactionManager() *FactionManager {
	return &FactionManager{}
}

func (fm *FactionManager) AddFaction(f *Faction) {
	if f.Resources == nil {
		f.Resources = make(map[string]int)
	}
	fm.Factions = append(fm.Factions, f)
}

func (fm *FactionManager) GetFaction(id int) *Faction {
	for _, f := range fm.Factions {
		if f.ID == id {
			return f
		}
	}
	return nil
}

// AreAllies checks if two factions share a team
func (fm *FactionManager) AreAllies(a, b int) bool {
	fa := fm.GetFaction(a)
	fb := fm.GetFaction(b)
	if fa == nil || fb == nil {
		return false
	}
	return fa.TeamID == fb.TeamID
}

// InPeaceTime reports whether attacks are currently forbidden.
func (fm *FactionManager) InPeaceTime() bool {
	return fm != nil && fm.PeaceTime > 0
}

// Tick counts the peace timer down.
func (fm *FactionManager) Tick(dt float64) {
	if fm.PeaceTime > 0 {
		fm.PeaceTime -= dt
	}
}

// IsLocal reports whether the faction is controlled on this machine.
func (fm *FactionManager) IsLocal(factionID int) bool {
	return fm != nil && fm.LocalFactionID == factionID
}

// UpdateResource adds amount to the faction's stock of the named resource.
func (fm *FactionManager) UpdateResource(factionID int, resource string, amount int) {
	f := fm.GetFaction(factionID)
	if f == nil {
		return
	}
	f.Resources[resource] += amount
	if fm.Events != nil {
		fm.Events.Emit(Event{Type: EvtResourceAwarded, Amount: amount, Text: resource, Faction: factionID})
	}
}
