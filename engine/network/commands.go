package network

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/1siamBot/rts-combat/engine/core"
)

// maxPayload bounds a single command body on the wire.
const maxPayload = 1024

var ErrPayloadTooLarge = errors.New("command payload too large")

// Command is one relay command scheduled for a simulation tick. Replicas apply the
// commands of a tick sorted by (Faction, Seq), so every peer sees the same order.
type Command struct {
	ID      uuid.UUID
	Tick    uint64
	Faction int
	Seq     uint32
	Relay   core.RelayCommand
}

// payload is the msgpack body of a command.
type payload struct {
	Mode     core.RelayMode `msgpack:"m"`
	Source   uint64         `msgpack:"s"`
	Target   uint64         `msgpack:"t,omitempty"`
	AttackID int            `msgpack:"a,omitempty"`
	X        float64        `msgpack:"x,omitempty"`
	Y        float64        `msgpack:"y,omitempty"`
	Amount   int            `msgpack:"n,omitempty"`
	Code     string         `msgpack:"c,omitempty"`
	Flag     bool           `msgpack:"f,omitempty"`
}

func toPayload(r core.RelayCommand) payload {
	return payload{
		Mode:     r.Mode,
		Source:   uint64(r.Source),
		Target:   uint64(r.Target),
		AttackID: r.AttackID,
		X:        r.Pos.X,
		Y:        r.Pos.Y,
		Amount:   r.Amount,
		Code:     r.Code,
		Flag:     r.Flag,
	}
}

func (p payload) relay() core.RelayCommand {
	return core.RelayCommand{
		Mode:     p.Mode,
		Source:   core.EntityID(p.Source),
		Target:   core.EntityID(p.Target),
		AttackID: p.AttackID,
		Pos:      core.Vec{X: p.X, Y: p.Y},
		Amount:   p.Amount,
		Code:     p.Code,
		Flag:     p.Flag,
	}
}

// Encode writes a command: fixed binary header, then the length-prefixed msgpack body.
func (c *Command) Encode(w io.Writer) error {
	body, err := msgpack.Marshal(toPayload(c.Relay))
	if err != nil {
		return fmt.Errorf("marshal command payload: %w", err)
	}
	if len(body) > maxPayload {
		return ErrPayloadTooLarge
	}
	if _, err := w.Write(c.ID[:]); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, c.Tick); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, int32(c.Faction)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, c.Seq); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(body))); err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}

// Decode reads a command written by Encode.
func (c *Command) Decode(r io.Reader) error {
	if _, err := io.ReadFull(r, c.ID[:]); err != nil {
		return err
	}
	if err := binary.Read(r, binary.LittleEndian, &c.Tick); err != nil {
		return err
	}
	var faction int32
	if err := binary.Read(r, binary.LittleEndian, &faction); err != nil {
		return err
	}
	c.Faction = int(faction)
	if err := binary.Read(r, binary.LittleEndian, &c.Seq); err != nil {
		return err
	}
	var plen uint16
	if err := binary.Read(r, binary.LittleEndian, &plen); err != nil {
		return err
	}
	if plen > maxPayload {
		return ErrPayloadTooLarge
	}
	buf := make([]byte, plen)
	if _, err := io.ReadFull(r, buf); err != nil {
		return err
	}
	var p payload
	if err := msgpack.Unmarshal(buf, &p); err != nil {
		return fmt.Errorf("unmarshal command payload: %w", err)
	}
	c.Relay = p.relay()
	return nil
}
