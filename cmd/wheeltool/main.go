package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"

	"go-phasewheel/config"
	"go-phasewheel/midi"
	"go-phasewheel/note"
	"go-phasewheel/synth"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	var err error
	switch os.Args[1] {
	case "chirp":
		err = writeChirp(os.Args[2:])
	case "note":
		err = printNote(os.Args[2:])
	case "ports":
		err = listPorts()
	default:
		usage()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("go-phasewheel tools")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  chirp [flags] out.wav  - Render the test chirp to a WAV file")
	fmt.Println("  note [-a4 Hz] freq...  - Name the note nearest to each frequency")
	fmt.Println("  ports                  - List MIDI input ports")
}

func writeChirp(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	p := cfg.SynthParams()

	fs := flag.NewFlagSet("chirp", flag.ExitOnError)
	fs.Float64Var(&p.Center, "fundamental", p.Center, "centre of the fundamental sweep in Hz")
	fs.Float64Var(&p.Radius, "radius", p.Radius, "half width of the sweep in Hz")
	fs.BoolVar(&p.Normalize, "normalize", p.Normalize, "peak-normalise the mix")
	seconds := fs.Float64("seconds", cfg.Signal.Seconds, "length of the forward sweep")
	rate := fs.Int("rate", int(p.SampleRate), "sample rate")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("chirp: expected one output file")
	}
	p.SampleRate = float64(*rate)
	p.Length = int(*seconds * p.SampleRate)

	samples, err := synth.Generate(p)
	if err != nil {
		return err
	}
	f, err := os.Create(fs.Arg(0))
	if err != nil {
		return err
	}
	defer f.Close()
	if err := synth.WriteWAV(f, samples, *rate); err != nil {
		return err
	}

	start, stop := p.Band()
	fmt.Printf("wrote %s: %.1f-%.1f-%.1f Hz, %s samples at %s\n",
		fs.Arg(0), start, stop, start, humanize.Comma(int64(len(samples))), humanize.SI(float64(*rate), "Hz"))
	return nil
}

func printNote(args []string) error {
	fs := flag.NewFlagSet("note", flag.ExitOnError)
	a4 := fs.Float64("a4", note.DefaultA4, "pitch of A4 in Hz")
	fs.Parse(args)

	for _, arg := range fs.Args() {
		freq, err := strconv.ParseFloat(arg, 64)
		if err != nil || freq <= 0 {
			return fmt.Errorf("note: bad frequency %q", arg)
		}
		octave, n, cents := note.Recognize(freq, *a4)
		fmt.Printf("%10.3f Hz  %-10s octave %d  note %2d  cents %+6.2f  midi %3d\n",
			freq, note.Name(freq, *a4), octave, n, cents, note.ToMIDI(freq, *a4))
	}
	return nil
}

func listPorts() error {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")
	names, err := midi.InputPorts()
	if err != nil {
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
		return err
	}
	for i, name := range names {
		fmt.Printf("  %d: %s\n", i, name)
	}
	return nil
}
