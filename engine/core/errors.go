package core

// Code is a simulation result code. Validation failures are returned as values
// and never mutate state; CodeNone means success.
type Code uint8

const (
	CodeNone Code = iota
	CodePeaceTime
	CodeTargetRequired
	CodeSameFactionTarget
	CodeTargetUnattackable
	CodeTargetNotAllowed
	CodeTargetDead
	CodeTargetOutOfRange
	CodePathInvalid
	CodeAttackLocked
	CodeAttackInCooldown
	CodeAttackTypeNotFound
)

var codeNames = [...]string{
	CodeNone:               "none",
	CodePeaceTime:          "peace time",
	CodeTargetRequired:     "target required",
	CodeSameFactionTarget:  "same faction target",
	CodeTargetUnattackable: "target unattackable",
	CodeTargetNotAllowed:   "target not allowed by filter",
	CodeTargetDead:         "target dead",
	CodeTargetOutOfRange:   "target out of range",
	CodePathInvalid:        "path invalid",
	CodeAttackLocked:       "attack locked",
	CodeAttackInCooldown:   "attack in cooldown",
	CodeAttackTypeNotFound: "attack type not found",
}

func (c Code) String() string {
	if int(c) < len(codeNames) {
		return codeNames[c]
	}
	return "unknown"
}

func (c Code) Error() string { return c.String() }

// Err converts the code into an error, nil for CodeNone.
func (c Code) Err() error {
	if c == CodeNone {
		return nil
	}
	return c
}

func (c Code) OK() bool { return c == CodeNone }
