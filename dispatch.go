package main

import (
	"errors"
	"os/exec"

	"github.com/google/shlex"

	"hark/log"
)

// dispatcher launches the command lines bound to a fired wakeword. Each line
// is shell-split into one argv and started detached; the daemon never waits
// for completion and a failed launch is logged, not fatal.
type dispatcher struct {
	start func(argv []string) error
}

func newDispatcher() *dispatcher {
	return &dispatcher{start: startDetached}
}

func (d *dispatcher) Dispatch(label string, commands []string) {
	for _, line := range commands {
		argv, err := shlex.Split(line)
		if err != nil {
			log.DispatchFailed(label, line, err)
			continue
		}
		if len(argv) == 0 {
			log.DispatchFailed(label, line, errors.New("empty command"))
			continue
		}
		if err := d.start(argv); err != nil {
			log.DispatchFailed(label, line, err)
			continue
		}
		log.Dispatch(label, line)
	}
}

// startDetached resolves argv[0] on PATH, starts the process, and reaps it
// in the background so finished children do not linger as zombies.
func startDetached(argv []string) error {
	path, err := exec.LookPath(argv[0])
	if err != nil {
		return err
	}
	cmd := exec.Command(path, argv[1:]...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
