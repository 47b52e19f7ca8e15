package tui

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"

	"go-phasewheel/capture"
	"go-phasewheel/debug"
	"go-phasewheel/engine"
	"go-phasewheel/midi"
	"go-phasewheel/phase"
	"go-phasewheel/playback"
	"go-phasewheel/source"
	"go-phasewheel/synth"
	"go-phasewheel/theme"
	"go-phasewheel/tuning"
	"go-phasewheel/widgets"
)

// Options wires the model to its collaborators. Everything but Driver,
// Wheel and Theme may be nil.
type Options struct {
	Driver    *engine.Driver
	Wheel     *widgets.Wheel
	Theme     *theme.Theme
	DeviceMgr *midi.DeviceManager
	Player    *playback.Player
	Capture   func() (*capture.Stream, error)
	File      source.Source // loaded WAV, if any
	Defaults  engine.Settings // restored by the reset key
	A4        float64
	FPS       int
}

type Model struct {
	opts Options

	origin   time.Time
	spring   harmonica.Spring
	fps      float64
	fpsVel   float64
	stream   *capture.Stream
	micFrom  engine.SourceKind // source to go back to when the mic stops
	harmonic int               // weight edited by -/+
	keyboard string
	status   string
	warn     bool
	showHelp bool
	width    int
	height   int
	quitting bool
}

type frameMsg time.Time

type DeviceEventMsg midi.DeviceEvent

type NoteMsg midi.NoteEvent

func NewModel(opts Options) Model {
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	if opts.A4 <= 0 {
		opts.A4 = 440
	}
	return Model{
		opts:   opts,
		origin: time.Now(),
		spring: harmonica.NewSpring(harmonica.FPS(opts.FPS), 4.0, 1.0),
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.opts.FPS), func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func ListenForNotes(deviceMgr *midi.DeviceManager) tea.Cmd {
	return func() tea.Msg {
		return NoteMsg(<-deviceMgr.Notes())
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.tick()}
	if m.opts.DeviceMgr != nil {
		cmds = append(cmds, ListenForDevices(m.opts.DeviceMgr), ListenForNotes(m.opts.DeviceMgr))
	}
	return tea.Batch(cmds...)
}

var tuningKeys = map[string]tuning.Intent{
	"left":  tuning.CentiHertzDown,
	"right": tuning.CentiHertzUp,
	"down":  tuning.HertzDown,
	"up":    tuning.HertzUp,
	"o":     tuning.OctaveDown,
	"O":     tuning.OctaveUp,
	"s":     tuning.SemitoneDown,
	"S":     tuning.SemitoneUp,
	"c":     tuning.CentDown,
	"C":     tuning.CentUp,
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	d := m.opts.Driver

	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		if intent, ok := tuningKeys[key]; ok {
			d.WithSession(func(s *engine.Session) { s.Tuning.Apply(intent) })
			return m, nil
		}

		switch key {
		case "q", "ctrl+c":
			m.quitting = true
			m.shutdown()
			return m, tea.Quit

		case " ":
			if d.State() == engine.Running {
				d.Stop()
			} else {
				d.Start()
			}

		case "[", "]":
			set := d.Session().Settings()
			if key == "[" {
				set.Rings--
			} else {
				set.Rings++
			}
			m.apply(set)

		case "t":
			set := d.Session().Settings()
			if set.Mode == phase.Threshold {
				set.Mode = phase.Power
			} else {
				set.Mode = phase.Threshold
			}
			m.apply(set)

		case "d":
			set := d.Session().Settings()
			set.Doubling = !set.Doubling
			m.apply(set)

		case "f":
			// Centre the chirp on the current reference.
			set := d.Session().Settings()
			set.Synth.Center = d.Session().Tuning.Freq()
			m.apply(set)

		case "r", "R":
			set := d.Session().Settings()
			if key == "r" {
				set.Synth.Radius = max(set.Synth.Radius-1, 0)
			} else {
				set.Synth.Radius++
			}
			m.apply(set)

		case "h":
			m.harmonic = (m.harmonic + 1) % synth.Harmonics

		case "-", "+", "=":
			set := d.Session().Settings()
			weights := make([]float64, max(len(set.Synth.Weights), synth.Harmonics))
			copy(weights, set.Synth.Weights)
			step := 0.05
			if key == "-" {
				step = -step
			}
			weights[m.harmonic] = math.Round(math.Min(math.Max(weights[m.harmonic]+step, 0), 1)*100) / 100
			set.Synth.Weights = weights
			m.apply(set)

		case "x":
			if m.opts.Defaults.Synth.Length == 0 {
				m.setStatus(true, "no defaults to reset to")
				break
			}
			set := m.opts.Defaults
			set.Synth.Weights = append([]float64(nil), set.Synth.Weights...)
			m.apply(set)

		case "m":
			m.toggleMic()

		case "w":
			m.toggleFile()

		case "l":
			m.toggleListen()

		case "?":
			m.showHelp = !m.showHelp
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		h := max(m.height-6, 5)
		m.opts.Wheel.Height = h
		m.opts.Wheel.Width = min(2*h, max(m.width/2, 10))

	case frameMsg:
		d.Frame(time.Time(msg).Sub(m.origin))
		if st := d.Stats(); d.State() == engine.Running && st.FPS > 0 {
			m.fps, m.fpsVel = m.spring.Update(m.fps, m.fpsVel, st.FPS)
		}
		return m, m.tick()

	case DeviceEventMsg:
		event := midi.DeviceEvent(msg)
		if event.Type == midi.DeviceConnected {
			m.keyboard = event.ID
		} else if m.keyboard == event.ID {
			m.keyboard = ""
		}
		m.setStatus(false, "MIDI %s %s", event.ID, event.Type)
		return m, ListenForDevices(m.opts.DeviceMgr)

	case NoteMsg:
		ev := midi.NoteEvent(msg)
		d.WithSession(func(s *engine.Session) { s.Tuning.Set(ev.Frequency(m.opts.A4)) })
		m.setStatus(false, "MIDI %s", ev.Label(m.opts.A4))
		return m, ListenForNotes(m.opts.DeviceMgr)
	}

	return m, nil
}

func (m *Model) setStatus(warn bool, format string, args ...any) {
	m.warn = warn
	m.status = fmt.Sprintf(format, args...)
	if warn {
		debug.Log("tui", "%s", m.status)
	}
}

func (m *Model) apply(set engine.Settings) {
	if err := m.opts.Driver.Apply(set); err != nil {
		m.setStatus(true, "%v", err)
		return
	}
	set = m.opts.Driver.Session().Settings()
	m.setStatus(false, "rings %d, %s, doubling %v, synth %s", set.Rings, set.Mode, set.Doubling, synthSummary(set.Synth))
}

func synthSummary(p synth.Params) string {
	return fmt.Sprintf("%.1f±%.1f Hz", p.Center, p.Radius)
}

// weightsView lists the harmonic weights with the selected one bracketed
func weightsView(weights []float64, selected int) string {
	parts := make([]string, synth.Harmonics)
	for i := range parts {
		w := 0.0
		if i < len(weights) {
			w = weights[i]
		}
		parts[i] = strconv.FormatFloat(w, 'f', -1, 64)
		if i == selected {
			parts[i] = "[" + parts[i] + "]"
		}
	}
	return strings.Join(parts, " ")
}

// useSource switches back to kind, falling back to the synthetic signal.
// Errors go to the status line.
func (m *Model) useSource(kind engine.SourceKind) bool {
	var err error
	m.opts.Driver.WithSession(func(s *engine.Session) {
		if kind == engine.SourceFile && m.opts.File != nil {
			s.SetSource(m.opts.File, engine.SourceFile)
			return
		}
		err = s.UseSynthetic()
	})
	if err != nil {
		m.setStatus(true, "%v", err)
		return false
	}
	return true
}

func (m *Model) toggleMic() {
	d := m.opts.Driver
	if m.stream != nil {
		m.stream.Close()
		m.stream = nil
		if !m.useSource(m.micFrom) {
			return
		}
		m.restartListen()
		m.setStatus(false, "microphone off, source %s", d.Session().Kind())
		return
	}
	if m.opts.Capture == nil {
		m.setStatus(true, "no capture device")
		return
	}
	stream, err := m.opts.Capture()
	if err != nil {
		m.setStatus(true, "microphone: %v", err)
		return
	}
	m.stream = stream
	m.micFrom = d.Session().Kind()
	if m.opts.Player != nil {
		m.opts.Player.Stop()
	}
	d.WithSession(func(s *engine.Session) { s.SetSource(stream.Source(), engine.SourceLive) })
	m.setStatus(false, "microphone on")
}

func (m *Model) toggleFile() {
	d := m.opts.Driver
	if m.opts.File == nil {
		m.setStatus(true, "no file loaded (-wav)")
		return
	}
	if d.Session().Kind() == engine.SourceFile {
		if !m.useSource(engine.SourceSynthetic) {
			return
		}
	} else {
		if m.stream != nil {
			m.stream.Close()
			m.stream = nil
		}
		d.WithSession(func(s *engine.Session) { s.SetSource(m.opts.File, engine.SourceFile) })
	}
	m.restartListen()
	m.setStatus(false, "source %s", d.Session().Kind())
}

func (m *Model) toggleListen() {
	p := m.opts.Player
	if p == nil {
		m.setStatus(true, "no audio output")
		return
	}
	if p.Playing() {
		p.Stop()
		return
	}
	m.listen()
}

func (m *Model) listen() {
	looped, ok := m.opts.Driver.Session().Source().(source.Looped)
	if !ok {
		m.setStatus(true, "live input cannot be played back")
		return
	}
	if err := m.opts.Player.Play(looped, m.opts.Driver.Stats().Start); err != nil {
		m.setStatus(true, "%v", err)
	}
}

func (m *Model) restartListen() {
	if m.opts.Player != nil && m.opts.Player.Playing() {
		m.listen()
	}
}

func (m *Model) shutdown() {
	m.opts.Driver.Stop()
	if m.stream != nil {
		m.stream.Close()
		m.stream = nil
	}
	if m.opts.Player != nil {
		m.opts.Player.Close()
	}
}

func helpSections() []widgets.KeySection {
	return []widgets.KeySection{
		{Title: "Tuning", Keys: []widgets.KeyBinding{
			{Key: "←/→", Desc: "-/+ 0.01 Hz"},
			{Key: "↓/↑", Desc: "-/+ 1 Hz"},
			{Key: "o/O", Desc: "octave down/up"},
			{Key: "s/S", Desc: "semitone down/up"},
			{Key: "c/C", Desc: "cent down/up"},
		}},
		{Title: "Wheel", Keys: []widgets.KeyBinding{
			{Key: "space", Desc: "start/stop"},
			{Key: "[/]", Desc: "fewer/more rings"},
			{Key: "t", Desc: "threshold/power"},
			{Key: "d", Desc: "octave doubling"},
			{Key: "f", Desc: "centre chirp on reference"},
		}},
		{Title: "Synth", Keys: []widgets.KeyBinding{
			{Key: "r/R", Desc: "radius -/+ 1 Hz"},
			{Key: "h", Desc: "next harmonic"},
			{Key: "-/+", Desc: "harmonic weight -/+ 0.05"},
			{Key: "x", Desc: "reset to defaults"},
		}},
		{Title: "Source", Keys: []widgets.KeyBinding{
			{Key: "m", Desc: "microphone"},
			{Key: "w", Desc: "wav file"},
			{Key: "l", Desc: "listen"},
		}},
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	d := m.opts.Driver
	th := m.opts.Theme
	sess := d.Session()
	set := sess.Settings()
	st := d.Stats()

	headerStyle := lipgloss.NewStyle().Foreground(th.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(th.Muted())
	stateStyle := lipgloss.NewStyle().Foreground(th.Muted())
	if d.State() == engine.Running {
		stateStyle = lipgloss.NewStyle().Foreground(th.Active())
	}

	header := headerStyle.Render(fmt.Sprintf("go-phasewheel  %s  %s  rings:%d  src:%s  %s",
		sess.Tuning.Hz(), sess.Tuning.Note(), set.Rings, sess.Kind(), set.Mode))
	header += "  " + stateStyle.Render(d.State().String())
	if m.keyboard != "" {
		header += dimStyle.Render("  midi:" + m.keyboard)
	}

	stats := dimStyle.Render(fmt.Sprintf("fps %5.1f  t %6.2fs  window %d@%d  play %3.0f%%",
		m.fps, st.Elapsed.Seconds(), st.Count, st.Start, st.Playback*100))
	stats += "\n" + dimStyle.Render(fmt.Sprintf("synth %s  weights %s",
		synthSummary(set.Synth), weightsView(set.Synth.Weights, m.harmonic)))

	wheelView := m.opts.Wheel.View(th)
	traceWidth := max(m.width-m.opts.Wheel.Width-2, 10)
	traceView := widgets.Trace(d.Trace(), traceWidth, max(m.opts.Wheel.Height/2, 3), th)
	body := lipgloss.JoinHorizontal(lipgloss.Top, wheelView, "  ", traceView)

	help := dimStyle.Render("space:run  arrows:tune  o/s/c:octave/semi/cent  [/]:rings  m:mic  l:listen  ?:keys  q:quit")
	if m.showHelp {
		help = widgets.RenderKeyHelp(helpSections(), th)
	}

	var out strings.Builder
	out.WriteString(header)
	out.WriteString("\n")
	out.WriteString(stats)
	out.WriteString("\n\n")
	out.WriteString(body)
	out.WriteString("\n\n")
	out.WriteString(help)

	status := m.status
	if status == "" && st.Err != nil {
		status = st.Err.Error()
	}
	if status != "" {
		style := lipgloss.NewStyle().Foreground(th.Success())
		if m.warn || (m.status == "" && st.Err != nil) {
			style = lipgloss.NewStyle().Foreground(th.Warning())
		}
		out.WriteString("\n")
		out.WriteString(style.Render(status))
	}

	return out.String()
}
