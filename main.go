package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"sync"
	"time"

	"hark/audio"
	"hark/config"
	"hark/log"
	"hark/scorer"
	"hark/shutdown"
)

var version = "dev"

// Startup exit codes, distinguishable by service managers: a schema error
// needs the user to fix their config file, anything else is environmental.
const (
	exitSchema  = 3
	exitStartup = 4
)

func main() {
	os.Exit(run())
}

func run() int {
	configFlag := flag.String("config", "", "Config file path (default: OS config dir)")
	logLevelFlag := flag.String("log-level", "", "Override the config log level (debug, info, warn, error)")
	onceFlag := flag.Bool("once", false, "Exit after the first wakeword fires or a short listen window")
	setupFlag := flag.Bool("setup", false, "Select a microphone and save it to the config")
	noNotifyFlag := flag.Bool("no-notify", false, "Disable systemd readiness notification")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Println("hark", version)
		return 0
	}

	path := *configFlag
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return exitStartup
		}
		path = p
	}
	if err := config.Ensure(path); err != nil {
		fmt.Fprintf(os.Stderr, "Error: writing default config: %v\n", err)
		return exitStartup
	}

	snap, err := config.Read(path)
	if err == nil {
		err = snap.Validate(true)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var se *config.SchemaError
		if errors.As(err, &se) {
			return exitSchema
		}
		return exitStartup
	}

	level := snap.General.LogLevel
	if *logLevelFlag != "" {
		level = *logLevelFlag
	}
	if err := log.Init(level); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitStartup
	}

	ctx, err := audio.NewContext()
	if err != nil {
		log.Errorf("initializing audio: %v", err)
		return exitStartup
	}
	defer ctx.Close()

	if *setupFlag {
		dev, err := selectDevice(ctx)
		if err != nil {
			log.Errorf("device selection: %v", err)
			return exitStartup
		}
		snap.Audio.Device = dev.Name
		if err := config.Write(path, snap); err != nil {
			log.Errorf("saving config: %v", err)
			return exitStartup
		}
		log.Infof("capture device %q saved to %s", dev.Name, path)
	}

	if snap.Audio.SampleRate != scorer.RequiredSampleRate {
		log.Warnf("audio.sample_rate is %d but the wakeword engine expects %d",
			snap.Audio.SampleRate, scorer.RequiredSampleRate)
	}

	buildScorer := func(s *config.Snapshot) (scorer.Scorer, error) {
		return scorer.NewPorcupine(s.General.ModelPaths, s.General.Sensitivities, s.General.Sensitivity)
	}
	sc, err := buildScorer(snap)
	if err != nil {
		log.Errorf("initializing wakeword engine: %v", err)
		return exitStartup
	}

	buildSource := func(s *config.Snapshot) (frameSource, error) {
		dev, ok := audio.FindDevice(ctx, s.Audio.Device)
		if !ok {
			log.Warnf("capture device %q not found, using system default", s.Audio.Device)
		}
		return audio.NewSource(ctx, dev, audio.CaptureConfig{
			SampleRate: uint32(s.Audio.SampleRate),
			Channels:   uint32(s.Audio.Channels),
		}, s.Audio.ChunkSize)
	}
	src, err := buildSource(snap)
	if err != nil {
		log.Errorf("starting capture: %v", err)
		sc.Close()
		return exitStartup
	}

	gate, err := buildGate(snap)
	if err != nil {
		log.Errorf("initializing speech gate: %v", err)
		src.Close()
		sc.Close()
		return exitStartup
	}

	// SIGHUP and the file watcher converge on one reload request; a pending
	// request is applied at the next cycle boundary.
	reload := make(chan struct{}, 1)
	reloadSig := make(chan os.Signal, 1)
	shutdown.NotifyReload(reloadSig)
	go func() {
		for range reloadSig {
			select {
			case reload <- struct{}{}:
			default:
			}
		}
	}()
	watcher, err := config.Watch(path, reload)
	if err != nil {
		log.Warnf("config file watching disabled: %v", err)
	} else {
		defer watcher.Close()
	}

	stop := make(chan struct{})
	var stopOnce sync.Once
	sigCh := make(chan os.Signal, 1)
	shutdown.Notify(sigCh)
	go func() {
		<-sigCh
		log.Info("shutdown signal received")
		stopOnce.Do(func() { close(stop) })
	}()

	e := &engine{
		ctrl:        config.NewController(snap),
		source:      src,
		sc:          sc,
		gate:        gate,
		det:         newDetector(),
		disp:        newDispatcher(),
		now:         time.Now,
		configPath:  path,
		reload:      reload,
		stop:        stop,
		once:        *onceFlag,
		buildScorer: buildScorer,
		buildSource: buildSource,
	}

	notify := notifier{enabled: !*noNotifyFlag}
	notify.Ready()
	notify.Status(fmt.Sprintf("listening for %d wakewords", len(snap.Wakewords)))
	log.Infof("hark %s listening: %d models, config %s", version, len(snap.General.ModelPaths), path)

	err = e.run()
	notify.Stopping()
	e.source.Close()
	e.sc.Close()
	if err != nil {
		return 1
	}
	log.Info("shutdown complete")
	return 0
}
