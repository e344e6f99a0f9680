package config

import (
	"fmt"
	"sort"

	"github.com/spf13/viper"

	"github.com/1siamBot/rts-combat/engine/combat"
	"github.com/1siamBot/rts-combat/engine/movement"
)

// Settings is everything a run needs at load time. Attack, range and mover
// entries start from their package defaults, so a file only lists what differs.
// Map keys are lower-cased by viper.
type Settings struct {
	LogLevel   string `mapstructure:"log_level"`
	LogConsole bool   `mapstructure:"log_console"`

	Sim      SimConfig      `mapstructure:"sim"`
	Net      NetConfig      `mapstructure:"net"`
	Audio    AudioConfig    `mapstructure:"audio"`
	Recorder RecorderConfig `mapstructure:"recorder"`

	Ranges  map[string]combat.RangeSpec `mapstructure:"-"`
	Attacks map[string]combat.Spec      `mapstructure:"-"`
	Movers  map[string]movement.Config  `mapstructure:"-"`

	Scenario Scenario `mapstructure:"scenario"`
}

type SimConfig struct {
	TickRate     float64 `mapstructure:"tick_rate"`
	TimeScale    float64 `mapstructure:"time_scale"`
	PeaceTime    float64 `mapstructure:"peace_time"`
	LocalFaction int     `mapstructure:"local_faction"`
	PathBudget   int     `mapstructure:"path_budget"` // path admissions per tick, 0 disables the queue
	Ticks        int     `mapstructure:"ticks"`       // headless run length
}

type NetConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Host       bool   `mapstructure:"host"`
	Address    string `mapstructure:"address"`
	Port       int    `mapstructure:"port"`
	InputDelay int    `mapstructure:"input_delay"`
	Redundancy int    `mapstructure:"redundancy"`
	ReplayPath string `mapstructure:"replay_path"`
}

type AudioConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	Volume       float64 `mapstructure:"volume"`
	HearingRange float64 `mapstructure:"hearing_range"`
}

type RecorderConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Scenario is the sandbox setup: a text map and the units placed on it.
type Scenario struct {
	Name     string       `mapstructure:"name"`
	Map      []string     `mapstructure:"map"`
	Factions []FactionDef `mapstructure:"factions"`
	Units    []UnitDef    `mapstructure:"units"`
}

type FactionDef struct {
	ID   int    `mapstructure:"id"`
	Name string `mapstructure:"name"`
	Team int    `mapstructure:"team"`
	AI   string `mapstructure:"ai"` // easy, medium or hard; empty leaves the faction to the player
}

type UnitDef struct {
	Faction  int            `mapstructure:"faction"`
	Kind     string         `mapstructure:"kind"` // unit or building
	Code     string         `mapstructure:"code"`
	Category string         `mapstructure:"category"`
	X        float64        `mapstructure:"x"`
	Y        float64        `mapstructure:"y"`
	Radius   float64        `mapstructure:"radius"`
	Health   int            `mapstructure:"health"`
	Armor    int            `mapstructure:"armor"`
	Flying   bool           `mapstructure:"flying"`
	Mover    string         `mapstructure:"mover"`
	Attacks  []string       `mapstructure:"attacks"`
	Award    map[string]int `mapstructure:"award"`
	Count    int            `mapstructure:"count"` // copies placed in a row along x
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_console", true)

	v.SetDefault("sim.tick_rate", 20)
	v.SetDefault("sim.time_scale", 1)
	v.SetDefault("sim.peace_time", 0)
	v.SetDefault("sim.local_faction", 1)
	v.SetDefault("sim.path_budget", 8)
	v.SetDefault("sim.ticks", 1200)

	v.SetDefault("net.enabled", false)
	v.SetDefault("net.host", true)
	v.SetDefault("net.address", "127.0.0.1")
	v.SetDefault("net.port", 7777)
	v.SetDefault("net.input_delay", 2)
	v.SetDefault("net.redundancy", 2)
	v.SetDefault("net.replay_path", "")

	v.SetDefault("audio.enabled", false)
	v.SetDefault("audio.volume", 0.8)
	v.SetDefault("audio.hearing_range", 30)

	v.SetDefault("recorder.enabled", true)
	v.SetDefault("recorder.path", "combat.db")
}

// Load reads the config file at path on top of the defaults. An empty path
// loads the defaults alone.
func Load(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Settings, error) {
	s := &Settings{}
	if err := v.Unmarshal(s); err != nil {
		return nil, fmt.Errorf("decoding settings: %w", err)
	}

	s.Ranges = map[string]combat.RangeSpec{combat.DefaultRangeType: combat.DefaultRange()}
	for _, name := range keys(v, "ranges") {
		r := combat.DefaultRange()
		r.Code = name
		if err := v.UnmarshalKey("ranges."+name, &r); err != nil {
			return nil, fmt.Errorf("decoding range type %q: %w", name, err)
		}
		s.Ranges[name] = r
	}

	s.Attacks = make(map[string]combat.Spec)
	for _, name := range keys(v, "attacks") {
		spec := combat.DefaultSpec()
		spec.Code = name
		if err := v.UnmarshalKey("attacks."+name, &spec); err != nil {
			return nil, fmt.Errorf("decoding attack %q: %w", name, err)
		}
		if _, ok := s.Ranges[spec.RangeType]; !ok {
			return nil, fmt.Errorf("attack %q: unknown range type %q", name, spec.RangeType)
		}
		s.Attacks[name] = spec
	}

	s.Movers = make(map[string]movement.Config)
	for _, name := range keys(v, "movers") {
		cfg := movement.DefaultConfig()
		if err := v.UnmarshalKey("movers."+name, &cfg); err != nil {
			return nil, fmt.Errorf("decoding mover %q: %w", name, err)
		}
		s.Movers[name] = cfg
	}

	for i, u := range s.Scenario.Units {
		for _, a := range u.Attacks {
			if _, ok := s.Attacks[a]; !ok {
				return nil, fmt.Errorf("scenario unit %d: unknown attack %q", i, a)
			}
		}
		if _, ok := s.Movers[u.Mover]; u.Mover != "" && !ok {
			return nil, fmt.Errorf("scenario unit %d: unknown mover %q", i, u.Mover)
		}
	}
	return s, nil
}

// keys lists the entry names under section in a stable order.
func keys(v *viper.Viper, section string) []string {
	m := v.GetStringMap(section)
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// AttackNames returns the configured attack codes, sorted.
func (s *Settings) AttackNames() []string {
	out := make([]string, 0, len(s.Attacks))
	for k := range s.Attacks {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
