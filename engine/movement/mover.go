package movement

import (
	"errors"
	"math"

	"github.com/1siamBot/rts-combat/engine/core"
)

type Mode uint8

const (
	ModeNormal Mode = iota
	ModeAttack
	ModeEscape
)

func (m Mode) String() string {
	switch m {
	case ModeAttack:
		return "attack"
	case ModeEscape:
		return "escape"
	}
	return "normal"
}

// InvalidPathPolicy decides what a failed path computation does to the mover.
type InvalidPathPolicy struct {
	PlayAudio bool
	ToIdle    bool
}

// Request is one movement order.
type Request struct {
	Destination      core.Vec
	StoppingDistance float64
	Target           core.EntityID // entity to face once arrived
	Receiver         core.EntityID // transport or portal to enter on arrival
	Mode             Mode
	PlayAudio        bool
	OnInvalid        InvalidPathPolicy
}

var errNoNavigator = errors.New("no navigation provider")

// Mover is the per-entity movement state machine: it follows a corner queue toward a
// destination and stops within the requested stopping distance.
type Mover struct {
	id  core.EntityID
	cfg Config
	env *Env

	speed        float64 // time-scaled
	escapeSpeed  float64
	acceleration float64
	maxSpeed     float64
	currentSpeed float64

	corners            []core.Vec
	final              core.Vec
	stopping           float64
	mode               Mode
	isMoving           bool
	destinationReached bool
	facingCorner       bool

	pending    bool
	pendingReq Request

	lookAt        core.EntityID
	idleFacing    float64
	hasIdleFacing bool

	stuckTimer float64
	stuckFrom  core.Vec

	heightTimer float64

	receiver      core.EntityID
	receiverPoint core.Vec
}

// NewMover creates the movement component for id. Speeds and acceleration are
// multiplied by timeScale once, here.
func NewMover(id core.EntityID, cfg Config, env *Env, timeScale float64) *Mover {
	if timeScale <= 0 {
		timeScale = 1
	}
	m := &Mover{
		id:           id,
		cfg:          cfg,
		env:          env,
		speed:        cfg.Speed * timeScale,
		escapeSpeed:  cfg.EscapeSpeed * timeScale,
		acceleration: cfg.Acceleration * timeScale,
		stopping:     cfg.StoppingDistance,
	}
	m.maxSpeed = m.speed
	return m
}

func (m *Mover) Type() core.ComponentType { return core.CompMover }

func (m *Mover) ID() core.EntityID          { return m.id }
func (m *Mover) Config() Config             { return m.cfg }
func (m *Mover) CanMove() bool              { return m.cfg.CanMove }
func (m *Mover) Pending() bool              { return m.pending }
func (m *Mover) CurrentSpeed() float64      { return m.currentSpeed }
func (m *Mover) MaxSpeed() float64          { return m.maxSpeed }
func (m *Mover) FinalDestination() core.Vec { return m.final }
func (m *Mover) StoppingDistance() float64  { return m.stopping }
func (m *Mover) DestinationReached() bool   { return m.destinationReached }
func (m *Mover) LookTarget() core.EntityID  { return m.lookAt }

// ClearDestinationReached forgets an earlier arrival, for callers about to retarget.
func (m *Mover) ClearDestinationReached() { m.destinationReached = false }

// IsMoving is true while following a path or waiting for admission.
func (m *Mover) IsMoving() bool { return m.isMoving || m.pending }

// Corners returns a copy of the remaining corner queue.
func (m *Mover) Corners() []core.Vec {
	out := make([]core.Vec, len(m.corners))
	copy(out, m.corners)
	return out
}

// LookAt makes the idle rotation track an entity, re-resolved every tick.
func (m *Mover) LookAt(id core.EntityID) { m.lookAt = id }

// FaceTowards fixes the idle rotation target on a point.
func (m *Mover) FaceTowards(p core.Vec) {
	pos := m.env.World.Position(m.id)
	if pos == nil {
		return
	}
	m.lookAt = 0
	m.idleFacing = pos.Vec().AngleTo(p)
	m.hasIdleFacing = true
}

// RequestMove orders the mover toward req.Destination. With an admission queue the
// request stays pending until granted; otherwise the path is computed immediately.
func (m *Mover) RequestMove(req Request) core.Code {
	if !m.cfg.CanMove || m.env.World.Dead(m.id) {
		return core.CodePathInvalid
	}
	m.emit(core.EvtMoveAttempt, req.Destination)
	if q := m.env.Queue; q != nil {
		m.pending = true
		m.pendingReq = req
		q.Enqueue(m.id)
		return core.CodeNone
	}
	return m.start(req)
}

// MoveToReceiver orders the mover into a transport or through a portal.
func (m *Mover) MoveToReceiver(receiver core.EntityID, playAudio bool) core.Code {
	w := m.env.World
	r := receiverOf(w, receiver)
	if r == nil || w.Dead(receiver) || !r.CanReceive(w, receiver, m.id) {
		return core.CodeTargetNotAllowed
	}
	return m.RequestMove(Request{
		Destination:      r.InteractionPoint(w, receiver),
		StoppingDistance: m.receiverStopping(receiver),
		Receiver:         receiver,
		PlayAudio:        playAudio,
		OnInvalid:        InvalidPathPolicy{PlayAudio: playAudio, ToIdle: true},
	})
}

func (m *Mover) receiverStopping(receiver core.EntityID) float64 {
	d := m.cfg.StoppingDistance
	if b := m.env.World.Body(receiver); b != nil {
		d += b.Radius
	}
	return d
}

func (m *Mover) start(req Request) core.Code {
	pos := m.env.World.Position(m.id)
	if pos == nil {
		return core.CodePathInvalid
	}
	from := pos.Vec()
	path, err := m.computePath(from, req.Destination, req.StoppingDistance)
	if err != nil {
		m.env.Log.Debug().Err(err).Uint64("entity", uint64(m.id)).Msg("path computation failed")
		m.mode = req.Mode
		m.OnInvalidPath(req.OnInvalid.PlayAudio, req.OnInvalid.ToIdle)
		return core.CodePathInvalid
	}

	m.corners = BuildCorners(path, m.cfg.MinCornerDistance)
	m.final = m.corners[len(m.corners)-1]
	m.stopping = math.Max(0, req.StoppingDistance)
	m.mode = req.Mode
	m.lookAt = req.Target
	m.receiver = req.Receiver
	m.receiverPoint = req.Destination
	m.destinationReached = false
	m.facingCorner = false
	m.isMoving = true
	m.maxSpeed = m.speed
	if req.Mode == ModeEscape && m.escapeSpeed > 0 {
		m.maxSpeed = m.escapeSpeed
	}
	m.resetStuck(from)
	m.heightTimer = 0

	if req.PlayAudio && m.env.isLocal(m.id) {
		m.env.play(SoundMoveOrder, from)
	}
	m.env.Log.Debug().Uint64("entity", uint64(m.id)).Int("corners", len(m.corners)).Msg("path computed")
	return core.CodeNone
}

// computePath retries with the destination pulled back toward the mover, since a
// destination inside an obstacle usually has a reachable point next to it.
func (m *Mover) computePath(from, to core.Vec, stopping float64) ([]core.Vec, error) {
	nav := m.env.Nav
	if m.cfg.CanFly && m.env.AirNav != nil {
		nav = m.env.AirNav
	}
	if nav == nil {
		return nil, errNoNavigator
	}
	step := math.Max(math.Max(stopping, m.cfg.AgentRadius*2), 0.5)
	var lastErr error
	for attempt := 0; attempt <= m.cfg.PathRetries; attempt++ {
		dest := to
		if attempt > 0 {
			dest = to.MoveTowards(from, float64(attempt)*step)
		}
		path, err := nav.ComputePath(from, dest, m.cfg.AgentRadius)
		if err == nil && len(path) > 0 {
			return path, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("empty path")
	}
	return nil, lastErr
}

// OnInvalidPath reports a failed path. toIdle stops the mover and cancels its jobs;
// playAudio cues the local player.
func (m *Mover) OnInvalidPath(playAudio, toIdle bool) {
	pos := m.position()
	m.emit(core.EvtInvalidPath, pos)
	m.env.Metrics.invalidPath(m.mode)
	m.env.Log.Warn().Uint64("entity", uint64(m.id)).Msg("invalid path")
	if toIdle {
		m.Stop(false)
		m.cancelJobs()
	}
	if playAudio && m.env.isLocal(m.id) {
		m.env.play(SoundInvalidPath, pos)
	}
}

// Stop halts motion. prepareNext skips the idle bookkeeping because another move
// follows immediately.
func (m *Mover) Stop(prepareNext bool) {
	if m.pending {
		m.pending = false
		if m.env.Queue != nil {
			m.env.Queue.Cancel(m.id)
		}
	}
	if !m.isMoving {
		return
	}
	m.isMoving = false
	m.facingCorner = false
	m.maxSpeed = m.speed
	m.receiver = 0
	m.corners = m.corners[:0]
	if prepareNext {
		return
	}
	if pos := m.env.World.Position(m.id); pos != nil && m.lookAt == 0 {
		m.idleFacing = pos.Facing
		m.hasIdleFacing = true
	}
	m.emit(core.EvtMoveStopped, m.position())
}

// Update advances the mover by one tick.
func (m *Mover) Update(dt float64) {
	w := m.env.World
	if w.Dead(m.id) {
		return
	}
	pos := w.Position(m.id)
	if pos == nil {
		return
	}
	if m.pending && m.env.Queue != nil && m.env.Queue.Take(m.id) {
		m.pending = false
		m.start(m.pendingReq)
	}

	if !m.isMoving || m.facingCorner {
		m.decelerate(dt)
	}
	if !m.isMoving {
		if m.cfg.CanIdleRotate {
			m.rotateIdle(pos, dt)
		}
		return
	}

	if m.facingCorner {
		m.resetStuck(pos.Vec())
	} else if m.checkStuck(pos, dt) {
		return
	}
	if m.arrived(pos) {
		m.arrive()
		return
	}
	m.advance(pos, dt)
	m.sampleHeight(pos, dt)
	if m.repathToReceiver() {
		return
	}
	if m.arrived(pos) {
		m.arrive()
	}
}

func (m *Mover) advance(pos *core.Position, dt float64) {
	for len(m.corners) > 0 && pos.Vec().Dist(m.corners[0]) <= m.cfg.CornerThreshold {
		m.corners = m.corners[1:]
	}
	if len(m.corners) == 0 {
		return
	}
	corner := m.corners[0]
	desired := pos.Vec().AngleTo(corner)
	pos.Facing = core.RotateTowards(pos.Facing, desired, rotationStep(m.cfg.AngularSpeed, dt))
	if m.cfg.CanMoveRotate && math.Abs(core.AngleDiff(pos.Facing, desired)) > core.Deg(m.cfg.MinMoveAngle) {
		m.facingCorner = true
		return
	}
	m.facingCorner = false
	m.accelerate(dt)
	next := pos.Vec().MoveTowards(corner, m.currentSpeed*dt)
	pos.Set(next)
	if next.Dist(corner) <= m.cfg.CornerThreshold {
		m.corners = m.corners[1:]
	}
}

// arrived is true once the path left is within the stopping distance. An exhausted
// queue counts as arrived.
func (m *Mover) arrived(pos *core.Position) bool {
	return pathLength(pos.Vec(), m.corners) <= m.stopping
}

func (m *Mover) arrive() {
	w := m.env.World
	m.destinationReached = true
	if m.receiver != 0 {
		if r := receiverOf(w, m.receiver); r != nil && !w.Dead(m.receiver) {
			r.Receive(w, m.receiver, m.id)
		}
	}
	m.Stop(false)
}

func (m *Mover) checkStuck(pos *core.Position, dt float64) bool {
	m.stuckTimer -= dt
	if m.stuckTimer > 0 {
		return false
	}
	if pos.Vec().Dist(m.stuckFrom) <= m.cfg.StuckEpsilon {
		m.env.Log.Warn().Uint64("entity", uint64(m.id)).Msg("mover stuck, stopping")
		m.env.Metrics.stuck()
		m.emit(core.EvtStuck, pos.Vec())
		m.Stop(false)
		m.cancelJobs()
		return true
	}
	m.resetStuck(pos.Vec())
	return false
}

func (m *Mover) resetStuck(from core.Vec) {
	m.stuckFrom = from
	m.stuckTimer = m.cfg.StuckWindow
}

func (m *Mover) sampleHeight(pos *core.Position, dt float64) {
	if m.env.Heights == nil {
		return
	}
	m.heightTimer -= dt
	if m.heightTimer > 0 {
		return
	}
	m.heightTimer = m.cfg.HeightCheckInterval
	z := m.env.Heights.SampleHeight(pos.Vec())
	if m.cfg.CanFly {
		z += m.cfg.FlyHeight
	}
	pos.Z = z
}

// repathToReceiver recomputes the path when the receiver's interaction point drifted.
func (m *Mover) repathToReceiver() bool {
	if m.receiver == 0 {
		return false
	}
	w := m.env.World
	r := receiverOf(w, m.receiver)
	if r == nil || w.Dead(m.receiver) {
		m.Stop(false)
		return true
	}
	point := r.InteractionPoint(w, m.receiver)
	if point.Dist(m.receiverPoint) <= math.Max(m.stopping, m.cfg.MinCornerDistance) {
		return false
	}
	req := Request{
		Destination:      point,
		StoppingDistance: m.stopping,
		Target:           m.lookAt,
		Receiver:         m.receiver,
		Mode:             m.mode,
		OnInvalid:        InvalidPathPolicy{ToIdle: true},
	}
	m.Stop(true)
	m.start(req)
	return true
}

func (m *Mover) rotateIdle(pos *core.Position, dt float64) {
	var desired float64
	switch {
	case m.lookAt != 0:
		tp, ok := m.env.World.CommittedPosition(m.lookAt)
		if !ok || m.env.World.Dead(m.lookAt) {
			m.lookAt = 0
			return
		}
		desired = pos.Vec().AngleTo(tp)
	case m.hasIdleFacing:
		desired = m.idleFacing
	default:
		return
	}
	pos.Facing = core.RotateTowards(pos.Facing, desired, rotationStep(m.cfg.IdleAngularSpeed, dt))
}

func (m *Mover) accelerate(dt float64) {
	if m.acceleration <= 0 {
		m.currentSpeed = m.maxSpeed
		return
	}
	m.currentSpeed = math.Min(m.maxSpeed, m.currentSpeed+m.acceleration*dt)
}

func (m *Mover) decelerate(dt float64) {
	if m.acceleration <= 0 {
		m.currentSpeed = 0
		return
	}
	m.currentSpeed = math.Max(0, m.currentSpeed-m.acceleration*dt)
}

// rotationStep converts degrees per second into this tick's radians. Zero means instant.
func rotationStep(degPerSec, dt float64) float64 {
	if degPerSec <= 0 {
		return 2 * math.Pi
	}
	return core.Deg(degPerSec) * dt
}

func (m *Mover) cancelJobs() {
	if m.env.Jobs != nil {
		m.env.Jobs.CancelJobs(m.id)
	}
}

func (m *Mover) position() core.Vec {
	if pos := m.env.World.Position(m.id); pos != nil {
		return pos.Vec()
	}
	return core.Vec{}
}

func (m *Mover) emit(t core.EventType, at core.Vec) {
	m.env.World.Events.Emit(core.Event{Type: t, Source: m.id, Pos: at, Flag: m.mode == ModeAttack})
}
