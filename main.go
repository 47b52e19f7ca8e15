package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"

	"go-phasewheel/capture"
	"go-phasewheel/config"
	"go-phasewheel/debug"
	"go-phasewheel/engine"
	"go-phasewheel/midi"
	"go-phasewheel/playback"
	"go-phasewheel/source"
	"go-phasewheel/theme"
	"go-phasewheel/tui"
	"go-phasewheel/tuning"
	"go-phasewheel/wheel"
	"go-phasewheel/widgets"
)

func main() {
	configPath := flag.String("config", "", "config file (default ~/.config/go-phasewheel/config.json)")
	rings := flag.Float64("rings", 0, "number of rings, clamped to 3..10")
	debugLog := flag.Bool("debug", false, "write a debug log to ~/.config/go-phasewheel/debug.log")
	debugOnly := flag.String("debug-only", "", "comma separated log categories (default all)")
	headless := flag.Duration("headless", 0, "run without the TUI for this long and print frame stats")
	wavPath := flag.String("wav", "", "analyse a WAV file instead of the synthetic chirp")
	writeConfig := flag.Bool("write-config", false, "write the effective config and exit")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name != "rings" {
			return
		}
		if r, ok := wheel.ParseRings(*rings); ok {
			cfg.Rings = r
		}
	})

	if *debugLog {
		if err := debug.Enable(debug.DefaultPath(), debug.ParseCategories(*debugOnly)...); err != nil {
			fmt.Printf("Error enabling debug log: %v\n", err)
		}
		defer debug.Disable()
	}

	if *writeConfig {
		if err := saveConfig(cfg, *configPath); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	var palette *theme.Palette
	if cfg.Palette != "" {
		if palette, err = theme.LoadGPL(cfg.Palette); err != nil {
			debug.Log("main", "palette: %v", err)
		}
	}
	th := theme.New(palette)

	w := widgets.NewWheel(40, 20)
	sess, err := engine.NewSession(w, tuning.NewState(cfg.ReferenceHz, cfg.A4), settings(cfg))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	var file source.Source
	if *wavPath != "" {
		f, err := source.LoadWAV(*wavPath)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		file = f
		sess.SetSource(file, engine.SourceFile)
	}

	driver := engine.NewDriver(sess)

	if *headless > 0 {
		runHeadless(driver, cfg.FPS, *headless)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var deviceMgr *midi.DeviceManager
	if cfg.MIDI.AutoConnect {
		deviceMgr = midi.NewDeviceManager(cfg.MIDI.PortFilter)
		go deviceMgr.Run(ctx)
	}

	m := tui.NewModel(tui.Options{
		Driver:    driver,
		Wheel:     w,
		Theme:     th,
		DeviceMgr: deviceMgr,
		Player:    playback.NewPlayer(0.5, 0),
		Capture: func() (*capture.Stream, error) {
			return capture.Open(capture.Options{
				SampleRate:      cfg.Signal.SampleRate,
				FramesPerBuffer: cfg.Capture.FramesPerBuffer,
				Window:          cfg.Capture.Window,
			})
		},
		File:     file,
		Defaults: settings(cfg),
		A4:       cfg.A4,
		FPS:      cfg.FPS,
	})
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFile(path)
}

func saveConfig(cfg *config.Config, path string) error {
	if path == "" {
		p, err := config.ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := cfg.SaveFile(path); err != nil {
		return err
	}
	fmt.Println("wrote", path)
	return nil
}

func settings(cfg *config.Config) engine.Settings {
	return engine.Settings{
		Rings:    cfg.WheelConfig().Rings,
		Synth:    cfg.SynthParams(),
		Mode:     cfg.MapperMode(),
		Power:    cfg.Mapper.PowerExponent,
		Doubling: cfg.Mapper.OctaveDoubling,
	}
}

// runHeadless drives the scheduler loop without a terminal and prints one
// line per second.
func runHeadless(d *engine.Driver, fps int, dur time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), dur)
	defer cancel()

	d.Start()
	go d.Run(ctx, fps)

	report := time.NewTicker(time.Second)
	defer report.Stop()
	for {
		select {
		case <-ctx.Done():
			d.Stop()
			st := d.Stats()
			fmt.Printf("done: %s frames in %s\n",
				humanize.Comma(int64(st.Frames)), durafmt.Parse(st.Elapsed).LimitFirstN(2))
			return
		case <-d.Updates():
		case <-report.C:
			printStats(d)
		}
	}
}

func printStats(d *engine.Driver) {
	st := d.Stats()
	d.WithSession(func(s *engine.Session) {
		var peak float64
		peakQuant := -1
		if rings := s.Wheel.Opacities(); len(rings) > 0 {
			for q, v := range rings[0] {
				if v > peak {
					peak, peakQuant = v, q
				}
			}
		}
		fmt.Printf("%6.2fs  fps %5.1f  %s %s  peak quant %d (%.4f)",
			st.Elapsed.Seconds(), st.FPS, s.Tuning.Hz(), s.Tuning.Note(), peakQuant, peak)
	})
	if st.Err != nil {
		fmt.Printf("  %v", st.Err)
	}
	fmt.Println()
}
