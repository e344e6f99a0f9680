package core

// RelayMode names a two-phase simulation command.
type RelayMode uint8

const (
	RelaySetTarget RelayMode = iota + 1
	RelayEnableAttack
	RelayAddHealth
	RelayDestroy
	RelayMove
	RelayToggleLock
)

func (m RelayMode) String() string {
	switch m {
	case RelaySetTarget:
		return "set_target"
	case RelayEnableAttack:
		return "enable_attack"
	case RelayAddHealth:
		return "add_health"
	case RelayDestroy:
		return "destroy"
	case RelayMove:
		return "move"
	case RelayToggleLock:
		return "toggle_lock"
	}
	return "unknown"
}

// RelayCommand is a simulation mutation that must be applied on every replica.
type RelayCommand struct {
	Mode     RelayMode
	Source   EntityID
	Target   EntityID
	AttackID int
	Pos      Vec
	Amount   int
	Code     string
	Flag     bool
}

// InputRelay routes commands through the network. Commands come back through
// the relay's delivery path and are applied locally only then.
type InputRelay interface {
	SendCommand(cmd RelayCommand) error
}

// AudioSink plays a named cue at a world position.
type AudioSink interface {
	Play(sound string, at Vec)
}
