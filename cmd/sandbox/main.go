package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"

	"github.com/1siamBot/rts-combat/engine/audio"
	"github.com/1siamBot/rts-combat/engine/config"
	"github.com/1siamBot/rts-combat/engine/logging"
	"github.com/1siamBot/rts-combat/engine/network"
	"github.com/1siamBot/rts-combat/engine/recorder"
	"github.com/1siamBot/rts-combat/engine/scenario"
)

const (
	ScreenWidth  = 1280
	ScreenHeight = 720
)

// app owns the match and every resource that needs closing.
type app struct {
	match    *scenario.Match
	rec      *recorder.Recorder
	audio    *audio.Manager
	lockstep *network.Lockstep
	replay   *network.Replay
	log      zerolog.Logger
}

// newApp builds the match and its collaborators. Headless runs stay silent and
// hand every faction to the ai.
func newApp(s *config.Settings, playback string, headless bool, log zerolog.Logger) (*app, error) {
	a := &app{log: log}
	opts := scenario.Options{Log: log, AutoPlay: headless}

	if s.Recorder.Enabled {
		rec, err := recorder.Open(s.Recorder.Path, s.Scenario.Name, s.Sim.TickRate, log)
		if err != nil {
			return nil, err
		}
		a.rec = rec
		opts.Recorder = rec
	}

	if !headless && s.Audio.Enabled {
		mgr := audio.NewManager(log)
		mgr.SetVolume(s.Audio.Volume)
		mgr.HearingRange = s.Audio.HearingRange
		if err := mgr.Initialize(); err != nil {
			log.Warn().Err(err).Msg("audio device unavailable, running silent")
		} else {
			a.audio = mgr
			opts.Audio = mgr
		}
	}

	switch {
	case playback != "":
		rp, err := network.LoadReplay(playback)
		if err != nil {
			a.Close()
			return nil, err
		}
		opts.Relay = rp
		opts.Commands = rp
		log.Info().Str("path", playback).Int("commands", len(rp.Commands)).Msg("replaying command log")
	case s.Net.Enabled:
		ls := network.NewLockstep(s.Sim.LocalFaction, s.Net.Host, s.Net.InputDelay, log)
		ls.Redundancy = s.Net.Redundancy
		var err error
		if s.Net.Host {
			err = ls.Host(s.Net.Port)
		} else {
			err = ls.Join(s.Net.Address, s.Net.Port)
		}
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("starting lockstep: %w", err)
		}
		a.lockstep = ls
		opts.Relay = ls
		opts.Commands = ls
		if s.Net.ReplayPath != "" {
			rp, err := network.NewReplayRecorder(s.Net.ReplayPath)
			if err != nil {
				a.Close()
				return nil, err
			}
			a.replay = rp
			opts.Replay = rp
		}
	}

	m, err := scenario.Build(s, opts)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.match = m
	return a, nil
}

// Close releases everything in reverse order of acquisition.
func (a *app) Close() {
	if a.replay != nil {
		if err := a.replay.Close(); err != nil {
			a.log.Error().Err(err).Msg("closing replay")
		}
	}
	if a.lockstep != nil {
		if err := a.lockstep.Close(); err != nil {
			a.log.Error().Err(err).Msg("closing lockstep")
		}
	}
	if a.audio != nil {
		a.audio.Close()
	}
	if a.rec != nil {
		var ticks uint64
		if a.match != nil {
			ticks = a.match.World.TickCount
		}
		if err := a.rec.Close(ticks); err != nil {
			a.log.Error().Err(err).Msg("closing combat log")
		}
	}
}

func (a *app) runHeadless(ticks int, out io.Writer) error {
	taken := a.match.Run(ticks)
	fmt.Fprintf(out, "%s: %d ticks (%.1fs simulated)\n", a.match.Settings.Scenario.Name, taken, float64(taken)/a.match.Settings.Sim.TickRate)
	if f, ok := a.match.Winner(); ok {
		fmt.Fprintf(out, "winner: faction %d\n", f)
	} else {
		fmt.Fprintf(out, "undecided, alive by faction: %v\n", a.match.Alive())
	}
	if a.rec == nil {
		return nil
	}
	sum, err := a.rec.Summary(5)
	if err != nil {
		return err
	}
	printSummary(out, sum)
	return nil
}

func printSummary(out io.Writer, sum recorder.Summary) {
	types := make([]string, 0, len(sum.Events))
	for t := range sum.Events {
		types = append(types, t)
	}
	sort.Strings(types)
	fmt.Fprintln(out, "events:")
	for _, t := range types {
		fmt.Fprintf(out, "  %-18s %d\n", t, sum.Events[t])
	}
	fmt.Fprintf(out, "damage by faction: %v\n", sum.DamageByFaction)
	fmt.Fprintf(out, "kills by faction:  %v\n", sum.KillsByFaction)
	fmt.Fprintf(out, "losses by faction: %v\n", sum.LossesByFaction)
	fmt.Fprintln(out, "top dealers:")
	for _, d := range sum.TopDealers {
		fmt.Fprintf(out, "  #%-4d %-10s faction %d  %d\n", d.EntityID, d.Code, d.Faction, d.Damage)
	}
}

func main() {
	cfgPath := flag.String("config", "configs/sandbox.yaml", "Path to the sandbox config")
	headless := flag.Bool("headless", false, "Run without a window and print the after-action summary")
	ticks := flag.Int("ticks", 0, "Headless run length in ticks, 0 uses sim.ticks")
	playback := flag.String("replay", "", "Play back a recorded command log")
	flag.Parse()

	settings, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logging.New(settings.LogLevel, os.Stderr, settings.LogConsole)

	a, err := newApp(settings, *playback, *headless, log)
	if err != nil {
		log.Fatal().Err(err).Msg("building sandbox")
	}
	defer a.Close()

	if *headless {
		n := *ticks
		if n <= 0 {
			n = settings.Sim.Ticks
		}
		if err := a.runHeadless(n, os.Stdout); err != nil {
			log.Error().Err(err).Msg("summarizing match")
		}
		return
	}

	ebiten.SetWindowSize(ScreenWidth, ScreenHeight)
	ebiten.SetWindowTitle("RTS Combat Sandbox: " + settings.Scenario.Name)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetVsyncEnabled(true)

	if err := ebiten.RunGame(newViewer(a, ScreenWidth, ScreenHeight)); err != nil && err != ebiten.Termination {
		log.Error().Err(err).Msg("viewer stopped")
	}
}
