package network

import (
	"bufio"
	"fmt"
	"os"
	"slices"

	"github.com/1siamBot/rts-combat/engine/core"
)

// Replay records applied commands and plays them back in a later run.
// Loaded replays are drained tick by tick through TakeCommands.
type Replay struct {
	Commands []Command
	file     *os.File
	writer   *bufio.Writer
	next     int
}

// NewReplayRecorder creates a replay file for recording
func NewReplayRecorder(path string) (*Replay, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create replay: %w", err)
	}
	return &Replay{
		file:   f,
		writer: bufio.NewWriter(f),
	}, nil
}

// Record writes a command to the replay file
func (r *Replay) Record(cmd Command) error {
	r.Commands = append(r.Commands, cmd)
	if r.writer == nil {
		return nil
	}
	return cmd.Encode(r.writer)
}

// Close flushes and closes the replay file
func (r *Replay) Close() error {
	if r.writer != nil {
		if err := r.writer.Flush(); err != nil {
			return fmt.Errorf("flush replay: %w", err)
		}
	}
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// LoadReplay loads a replay file
func LoadReplay(path string) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay: %w", err)
	}
	defer f.Close()

	replay := &Replay{}
	reader := bufio.NewReader(f)
	for {
		var cmd Command
		if err := cmd.Decode(reader); err != nil {
			break
		}
		replay.Commands = append(replay.Commands, cmd)
	}
	slices.SortStableFunc(replay.Commands, func(a, b Command) int {
		switch {
		case a.Tick < b.Tick:
			return -1
		case a.Tick > b.Tick:
			return 1
		}
		return 0
	})
	return replay, nil
}

// CommandsForTick returns all commands at a given tick during playback
func (r *Replay) CommandsForTick(tick uint64) []Command {
	var result []Command
	for _, c := range r.Commands {
		if c.Tick == tick {
			result = append(result, c)
		}
	}
	return result
}

// TakeCommands hands back the recorded commands of tick. Commands are consumed in
// order, so ticks must be taken ascending.
func (r *Replay) TakeCommands(tick uint64) []Command {
	for r.next < len(r.Commands) && r.Commands[r.next].Tick < tick {
		r.next++
	}
	start := r.next
	for r.next < len(r.Commands) && r.Commands[r.next].Tick == tick {
		r.next++
	}
	return r.Commands[start:r.next]
}

// Done reports whether every recorded command has been taken.
func (r *Replay) Done() bool { return r.next >= len(r.Commands) }

// SendCommand drops commands issued during playback; the recording is authoritative.
func (r *Replay) SendCommand(cmd core.RelayCommand) error { return nil }
