package core

import "time"

// GameState represents the overall simulation state
type GameState uint8

const (
	StatePaused GameState = iota
	StatePlaying
	StateFinished
)

// GameLoop manages the fixed-timestep loop for deterministic simulation
type GameLoop struct {
	World       *World
	State       GameState
	TickRate    float64        // fixed ticks per second
	OnTick      func(w *World) // runs after every tick, typically to dispatch events
	accumulator float64
	lastTime    time.Time
}

// NewGameLoop creates a game loop with fixed tick rate
func NewGameLoop(tickRate float64) *GameLoop {
	return &GameLoop{
		World:    NewWorld(tickRate),
		TickRate: tickRate,
		lastTime: time.Now(),
	}
}

// Update should be called every render frame. It runs the simulation
// at fixed timestep and returns the interpolation alpha for rendering.
func (gl *GameLoop) Update() float64 {
	now := time.Now()
	frameTime := now.Sub(gl.lastTime).Seconds()
	gl.lastTime = now

	// Cap frame time to avoid spiral of death
	if frameTime > 0.25 {
		frameTime = 0.25
	}

	dt := 1.0 / gl.TickRate
	gl.accumulator += frameTime

	for gl.accumulator >= dt {
		if gl.State == StatePlaying {
			gl.Step()
		}
		gl.accumulator -= dt
	}

	return gl.accumulator / dt
}

// Step advances exactly one fixed tick regardless of wall time.
func (gl *GameLoop) Step() {
	gl.World.Tick(1.0 / gl.TickRate)
	if gl.OnTick != nil {
		gl.OnTick(gl.World)
	}
}

// Run advances n ticks back to back. Used by headless runs and tests.
func (gl *GameLoop) Run(n int) {
	for i := 0; i < n && gl.State != StateFinished; i++ {
		gl.Step()
	}
}

// Play starts or resumes the simulation
func (gl *GameLoop) Play() {
	gl.State = StatePlaying
	gl.lastTime = time.Now()
}

// Pause pauses the simulation
func (gl *GameLoop) Pause() {
	gl.State = StatePaused
}

// CurrentTick returns the current simulation tick
func (gl *GameLoop) CurrentTick() uint64 {
	return gl.World.TickCount
}
