package network

import (
	"bytes"
	"cmp"
	"fmt"
	"net"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/1siamBot/rts-combat/engine/core"
)

// Lockstep is the relay between the local simulation and its peers. Commands are
// scheduled inputDelay ticks ahead and handed back to every replica, the sender
// included, through TakeCommands. UDP delivery is at-least-once: each command is
// sent Redundancy times and duplicates are dropped by ID.
type Lockstep struct {
	mu         sync.Mutex
	faction    int
	tick       uint64 // next tick to be taken
	seq        uint32
	pending    map[uint64][]Command
	seen       map[uuid.UUID]uint64
	inputDelay int
	Redundancy int

	conn       *net.UDPConn
	remoteAddr *net.UDPAddr
	isHost     bool
	connected  bool
	done       chan struct{}
	log        zerolog.Logger
}

func NewLockstep(faction int, isHost bool, inputDelay int, log zerolog.Logger) *Lockstep {
	if inputDelay < 1 {
		inputDelay = 1
	}
	return &Lockstep{
		faction:    faction,
		pending:    make(map[uint64][]Command),
		seen:       make(map[uuid.UUID]uint64),
		inputDelay: inputDelay,
		Redundancy: 2,
		isHost:     isHost,
		done:       make(chan struct{}),
		log:        log.With().Str("component", "lockstep").Logger(),
	}
}

// Host starts listening for a peer
func (l *Lockstep) Host(port int) error {
	addr, err := net.ResolveUDPAddr("udp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}
	l.conn, err = net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	l.connected = true
	go l.receiveLoop()
	return nil
}

// Join connects to a host
func (l *Lockstep) Join(host string, port int) error {
	remote, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return fmt.Errorf("resolve host address: %w", err)
	}
	l.conn, err = net.ListenUDP("udp", &net.UDPAddr{})
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	l.remoteAddr = remote
	l.connected = true
	go l.receiveLoop()
	return nil
}

// LocalAddr is the bound UDP address, nil before Host or Join.
func (l *Lockstep) LocalAddr() *net.UDPAddr {
	if l.conn == nil {
		return nil
	}
	return l.conn.LocalAddr().(*net.UDPAddr)
}

// SendCommand schedules cmd for every replica.
func (l *Lockstep) SendCommand(rc core.RelayCommand) error {
	l.mu.Lock()
	l.seq++
	cmd := Command{
		ID:      uuid.New(),
		Tick:    l.tick + uint64(l.inputDelay),
		Faction: l.faction,
		Seq:     l.seq,
		Relay:   rc,
	}
	l.acceptLocked(cmd)
	remote := l.remoteAddr
	l.mu.Unlock()

	if l.conn == nil || remote == nil {
		return nil
	}
	var buf bytes.Buffer
	if err := cmd.Encode(&buf); err != nil {
		return fmt.Errorf("encode %s command: %w", rc.Mode, err)
	}
	for i := 0; i < max(1, l.Redundancy); i++ {
		if _, err := l.conn.WriteToUDP(buf.Bytes(), remote); err != nil {
			return fmt.Errorf("send %s command: %w", rc.Mode, err)
		}
	}
	return nil
}

// Receive accepts a command from a peer. It reports false for duplicates and for
// commands whose tick has already been simulated.
func (l *Lockstep) Receive(cmd Command) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.acceptLocked(cmd)
}

func (l *Lockstep) acceptLocked(cmd Command) bool {
	if _, dup := l.seen[cmd.ID]; dup {
		return false
	}
	l.seen[cmd.ID] = cmd.Tick
	if cmd.Tick < l.tick {
		l.log.Warn().Uint64("tick", cmd.Tick).Uint64("now", l.tick).Str("mode", cmd.Relay.Mode.String()).Msg("late command dropped")
		return false
	}
	l.pending[cmd.Tick] = append(l.pending[cmd.Tick], cmd)
	return true
}

// TakeCommands returns the commands scheduled for tick in their apply order and
// advances the schedule past it.
func (l *Lockstep) TakeCommands(tick uint64) []Command {
	l.mu.Lock()
	defer l.mu.Unlock()
	cmds := l.pending[tick]
	delete(l.pending, tick)
	if tick+1 > l.tick {
		l.tick = tick + 1
	}
	slices.SortFunc(cmds, func(a, b Command) int {
		if c := cmp.Compare(a.Faction, b.Faction); c != 0 {
			return c
		}
		return cmp.Compare(a.Seq, b.Seq)
	})
	for id, t := range l.seen {
		if t+uint64(l.inputDelay)*4 < tick {
			delete(l.seen, id)
		}
	}
	return cmds
}

// IsConnected returns true if network is active
func (l *Lockstep) IsConnected() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.connected
}

func (l *Lockstep) receiveLoop() {
	buf := make([]byte, 2048)
	for {
		select {
		case <-l.done:
			return
		default:
		}
		_ = l.conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
		n, addr, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			continue
		}
		var cmd Command
		if err := cmd.Decode(bytes.NewReader(buf[:n])); err != nil {
			l.log.Error().Err(err).Str("from", addr.String()).Msg("bad command packet")
			continue
		}
		l.mu.Lock()
		if l.isHost && l.remoteAddr == nil {
			l.remoteAddr = addr
		}
		l.acceptLocked(cmd)
		l.mu.Unlock()
	}
}

// Close shuts down the network connection
func (l *Lockstep) Close() error {
	l.mu.Lock()
	if !l.connected {
		l.mu.Unlock()
		return nil
	}
	l.connected = false
	l.mu.Unlock()
	close(l.done)
	return l.conn.Close()
}
