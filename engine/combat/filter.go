package combat

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/1siamBot/rts-combat/engine/core"
)

// TargetEnv is what an engage filter expression sees about a candidate target.
// Example: `Kind == "unit" && HealthRatio < 0.5 && Category != "worker"`.
type TargetEnv struct {
	Code        string  `expr:"Code"`
	Category    string  `expr:"Category"`
	Kind        string  `expr:"Kind"`
	Flying      bool    `expr:"Flying"`
	Radius      float64 `expr:"Radius"`
	Health      int     `expr:"Health"`
	MaxHealth   int     `expr:"MaxHealth"`
	HealthRatio float64 `expr:"HealthRatio"`
	Armor       int     `expr:"Armor"`
	Faction     int     `expr:"Faction"`
	Free        bool    `expr:"Free"`
	Distance    float64 `expr:"Distance"`
}

// Filter is a compiled engage filter. A nil Filter accepts everything.
type Filter struct {
	src     string
	program *vm.Program
}

func CompileFilter(src string) (*Filter, error) {
	if src == "" {
		return nil, nil
	}
	prog, err := expr.Compile(src, expr.Env(TargetEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile engage filter %q: %w", src, err)
	}
	return &Filter{src: src, program: prog}, nil
}

func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.src
}

// Match evaluates the filter. Evaluation errors reject the target.
func (f *Filter) Match(env TargetEnv) (bool, error) {
	if f == nil {
		return true, nil
	}
	result, err := vm.Run(f.program, env)
	if err != nil {
		return false, fmt.Errorf("run engage filter %q: %w", f.src, err)
	}
	ok, _ := result.(bool)
	return ok, nil
}

func targetEnv(w *core.World, target core.EntityID, from core.Vec) TargetEnv {
	env := TargetEnv{}
	if b := w.Body(target); b != nil {
		env.Code = b.Code
		env.Category = b.Category
		env.Kind = b.Kind.String()
		env.Flying = b.Flying
		env.Radius = b.Radius
	}
	if h := w.Health(target); h != nil {
		env.Health = h.Current
		env.MaxHealth = h.Max
		env.HealthRatio = h.Ratio()
	}
	if a, ok := w.Get(target, core.CompArmor).(*core.Armor); ok {
		env.Armor = a.Value
	}
	if o := w.Owner(target); o != nil {
		env.Faction = o.FactionID
		env.Free = o.Free
	}
	if p, ok := w.CommittedPosition(target); ok {
		env.Distance = from.Dist(p)
	}
	return env
}
