package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver

	"strumboli/lib/actions"
	"strumboli/lib/config"
	"strumboli/lib/device"
	"strumboli/lib/midiin"
	"strumboli/lib/midiout"
	"strumboli/lib/notes"
	"strumboli/lib/session"
	"strumboli/lib/strum"
)

func init() {
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the strummer server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func runServer() error {
	defer midi.CloseDriver()

	cfg, err := config.Load(settingsFile, driversDir)
	if err != nil {
		return err
	}

	engine := strum.NewEngine(1.0)
	engine.Configure(cfg.Strumming.PressureThreshold)
	if err := setInitialNotes(cfg, engine); err != nil {
		return err
	}

	sched := midiout.NewScheduler(openOutput(cfg), cfg.Strumming.MidiChannel)
	defer sched.Close()

	dispatcher := actions.NewDispatcher(cfg, engine)
	sess := session.New(cfg, engine, sched, dispatcher)

	stopInput, err := listenInput(cfg, engine)
	if err != nil {
		slog.Warn("MIDI input unavailable", "err", err)
	} else if stopInput != nil {
		defer stopInput()
	}

	reports := make(chan device.Report, 64)
	go func() {
		// one consumer keeps samples strictly ordered
		for r := range reports {
			sess.HandleReport(r.Data)
		}
	}()

	// open is shared between this goroutine and the monitor-event one
	var (
		openMu sync.Mutex
		open   []*device.Device
	)
	closeOpen := func() {
		openMu.Lock()
		defer openMu.Unlock()
		for _, d := range open {
			d.Close()
		}
		open = nil
	}
	defer closeOpen()

	startReaders := func(t config.Tablet) bool {
		devs, err := device.Open(t)
		if err != nil {
			slog.Warn("tablet not available, waiting for hotplug", "err", err)
			return false
		}
		sess.SetTablet(t)
		openMu.Lock()
		open = devs
		openMu.Unlock()
		for _, d := range devs {
			slog.Info("reading tablet reports", "product", d.Product(), "serial", d.SerialNumber())
			go func(d *device.Device) {
				if err := d.ReadReports(reports); err != nil {
					slog.Warn("tablet reader stopped", "err", err)
				}
			}(d)
		}
		return true
	}

	profiles, err := config.AvailableDrivers(driversDir)
	if err != nil {
		slog.Warn("could not scan driver profiles", "err", err)
	}
	monitorProfiles := make([]config.Tablet, 0, len(profiles)+1)
	monitorProfiles = append(monitorProfiles, cfg.Startup.DrawingTablet.Tablet)
	for _, p := range profiles {
		monitorProfiles = append(monitorProfiles, *p)
	}

	monitor := device.NewMonitor(monitorProfiles, 0)
	if startReaders(cfg.Startup.DrawingTablet.Tablet) {
		monitor.SetConnected(cfg.Startup.DrawingTablet.Tablet)
	}
	monitor.Start()
	defer monitor.Stop()

	go func() {
		for ev := range monitor.Events() {
			if ev.Connected {
				closeOpen()
				startReaders(ev.Tablet)
			} else {
				slog.Info("tablet gone, MIDI-only mode until reconnect")
			}
		}
	}()

	slog.Info("strumboli running", "strings", len(engine.Notes()))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	fmt.Println()
	return nil
}

// openOutput resolves the MIDI output port. Running without one is allowed;
// the scheduler stays silent until a port exists.
func openOutput(cfg *config.Config) midiout.Port {
	var (
		port drivers.Out
		err  error
	)
	if name := cfg.Startup.MidiOutput; name != "" {
		port, err = midiout.FindOutPort(name)
	} else {
		port, err = midiout.FirstOutPort()
	}
	if err != nil {
		slog.Warn("no MIDI output, running silent", "err", err)
		return nil
	}

	send, err := midi.SendTo(port)
	if err != nil {
		slog.Warn("could not open MIDI output", "port", port.String(), "err", err)
		return nil
	}
	slog.Info("MIDI output connected", "port", port.String())
	return midiout.PortFunc(func(msg []byte) error {
		return send(midi.Message(msg))
	})
}

// listenInput follows an external keyboard: its held notes, spread per the
// strumming config, replace the strum layout live.
func listenInput(cfg *config.Config, engine *strum.Engine) (func(), error) {
	name := cfg.Startup.MidiInput
	if name == "" {
		return nil, nil
	}
	port, err := midiout.FindInPort(name)
	if err != nil {
		return nil, err
	}

	tracker := midiin.NewTracker()
	stop, err := midi.ListenTo(port, tracker.Handle)
	if err != nil {
		return nil, err
	}
	slog.Info("following MIDI input", "port", port.String())

	go func() {
		for held := range tracker.Updates() {
			if len(held) == 0 {
				continue
			}
			engine.SetNotes(notes.FillSpread(held,
				cfg.Strumming.LowerNoteSpread, cfg.Strumming.UpperNoteSpread))
		}
	}()
	return stop, nil
}

func setInitialNotes(cfg *config.Config, engine *strum.Engine) error {
	if len(cfg.Strumming.InitialNotes) == 0 {
		return nil
	}
	base := make([]notes.Note, 0, len(cfg.Strumming.InitialNotes))
	for _, s := range cfg.Strumming.InitialNotes {
		n, err := notes.Parse(s)
		if err != nil {
			return fmt.Errorf("initial note %q: %w", s, err)
		}
		base = append(base, n)
	}
	engine.SetNotes(notes.FillSpread(base,
		cfg.Strumming.LowerNoteSpread, cfg.Strumming.UpperNoteSpread))
	return nil
}
