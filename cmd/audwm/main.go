// Command audwm runs the auditory working-memory task: tone sequence pairs,
// a hover response on a same/diff target and a per-trial CSV log.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/google/uuid"

	"audwm/internal/config"
	"audwm/internal/desktop"
	"audwm/internal/hw"
	"audwm/internal/task"
	"audwm/internal/triallog"
)

var (
	configPath  = flag.String("config", "", "JSON config overlaid on the variant preset")
	variant     = flag.String("variant", config.DefaultVariant, "Task variant preset (shell, new_timing, wm_delay)")
	participant = flag.String("participant", "", "Participant identifier (required)")
	seed        = flag.Uint64("seed", 12345, "Session seed for trial order and tone sequences")
	tablePath   = flag.String("table", "soundslist.csv", "Stimulus table CSV")
	dataDir     = flag.String("data-dir", "data", "Directory for trial logs")
	reps        = flag.Int("reps", 0, "Repetitions of the stimulus table (0 keeps the config value)")
	method      = flag.String("method", "", "Trial order: random, sequential or fullRandom (empty keeps the config value)")
	serialPort  = flag.String("serial", "", "Serial device for reward and triggers (overrides config)")
	sqlitePath  = flag.String("sqlite", "", "Also mirror trials into this SQLite database")
	fullscreen  = flag.Bool("fullscreen", false, "Open the stimulus window fullscreen")
)

func main() {
	flag.Parse()
	// glfw and GL must stay on the main thread.
	runtime.LockOSThread()

	if err := run(); err != nil {
		log.Fatalf("%v", err)
	}
}

func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.Load(*configPath, *variant)
	} else {
		cfg, err = config.Preset(*variant)
	}
	if err != nil {
		return nil, err
	}
	if *reps > 0 {
		cfg.NReps = *reps
	}
	if *method != "" {
		cfg.Method = *method
	}
	if *serialPort != "" {
		cfg.Serial.Port = *serialPort
	}
	if *fullscreen {
		cfg.Window.Fullscreen = true
	}
	return cfg, cfg.Validate()
}

func run() error {
	if *participant == "" {
		return fmt.Errorf("%w: -participant is required", task.ErrConfiguration)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rows, err := task.LoadTableFile(*tablePath)
	if err != nil {
		return err
	}
	trials, err := task.Schedule(rows, cfg.NReps, task.Method(cfg.Method), *seed)
	if err != nil {
		return err
	}
	settings := cfg.Settings(*participant, *seed)
	if err := settings.Validate(); err != nil {
		return err
	}

	started := time.Now()
	sessionID := uuid.New()
	csvPath := filepath.Join(*dataDir, fmt.Sprintf("%s_%s.csv", *participant, started.Format("20060102-150405")))
	sinks := triallog.Multi{&triallog.CSVSink{Path: csvPath}}
	if *sqlitePath != "" {
		db, err := triallog.OpenSQLite(*sqlitePath, triallog.Session{
			ID:          sessionID,
			Participant: *participant,
			Variant:     cfg.Variant,
			Seed:        *seed,
			StartedAt:   started,
		})
		if err != nil {
			return fmt.Errorf("failed to open trial database: %w", err)
		}
		defer db.Close()
		sinks = append(sinks, db)
	}

	channel := hw.OpenOrDisable(cfg.Serial.Port, cfg.Serial.PortOptions, cfg.Serial.RewardPayload)
	defer channel.Close()

	audio, err := desktop.NewAudio(cfg.SampleRate)
	if err != nil {
		return err
	}
	defer audio.Wait()

	window, err := desktop.OpenWindow(desktop.WindowOptions{
		Title:      "audwm",
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
	})
	if err != nil {
		return err
	}
	defer desktop.CloseWindow(window)

	rend, err := desktop.NewRenderer()
	if err != nil {
		return err
	}
	defer rend.Destroy()

	ctrl, err := task.NewController(settings, task.Deps{
		Display:  desktop.NewDisplay(window, rend),
		Audio:    audio,
		Hardware: channel,
		Sink:     sinks,
	})
	if err != nil {
		return err
	}
	for _, st := range []task.State{task.StateTimedOut, task.StateDone, task.StateAborting} {
		ctrl.Events().Subscribe(st, func(e task.TransitionEvent) {
			log.Printf("trial %d/%d: %s -> %s at %v", e.Trial+1, len(trials), e.From, e.To, e.At.Round(time.Millisecond))
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("session %s: participant %s, variant %s, %d trials, log %s",
		sessionID, *participant, cfg.Variant, len(trials), csvPath)
	err = ctrl.Run(ctx, trials)
	switch {
	case errors.Is(err, task.ErrAborted):
		log.Printf("session aborted after %d trial(s); log saved to %s", len(ctrl.Records()), csvPath)
		if err == task.ErrAborted {
			return nil
		}
		// the abort itself is clean; only a failed final save is fatal
		return err
	case err != nil:
		return err
	}
	log.Printf("session complete: %d trial(s) saved to %s", len(ctrl.Records()), csvPath)
	return nil
}
