package main

import (
	"errors"
	"reflect"
	"testing"
)

// recordingDispatcher captures started argvs instead of exec'ing them.
func recordingDispatcher(started *[][]string) *dispatcher {
	return &dispatcher{start: func(argv []string) error {
		*started = append(*started, argv)
		return nil
	}}
}

func TestDispatchSplitsCommandLine(t *testing.T) {
	var started [][]string
	d := recordingDispatcher(&started)

	d.Dispatch("Open_Terminal", []string{"wezterm start --always-new-process"})

	want := [][]string{{"wezterm", "start", "--always-new-process"}}
	if !reflect.DeepEqual(started, want) {
		t.Fatalf("started %v, want %v", started, want)
	}
}

func TestDispatchHonorsQuoting(t *testing.T) {
	var started [][]string
	d := recordingDispatcher(&started)

	d.Dispatch("Open_Editor", []string{`code "my project"`})

	want := [][]string{{"code", "my project"}}
	if !reflect.DeepEqual(started, want) {
		t.Fatalf("started %v, want %v", started, want)
	}
}

func TestDispatchRunsEveryCommandForLabel(t *testing.T) {
	var started [][]string
	d := recordingDispatcher(&started)

	d.Dispatch("Open_Browser", []string{"firefox", "notify-send launched"})

	if len(started) != 2 {
		t.Fatalf("started %d commands, want 2", len(started))
	}
}

func TestDispatchContinuesAfterFailure(t *testing.T) {
	var started [][]string
	d := &dispatcher{start: func(argv []string) error {
		if argv[0] == "missing-binary" {
			return errors.New("not found")
		}
		started = append(started, argv)
		return nil
	}}

	d.Dispatch("Open_Browser", []string{"missing-binary", "firefox"})

	if len(started) != 1 || started[0][0] != "firefox" {
		t.Fatalf("started %v, want just firefox", started)
	}
}

func TestDispatchSkipsUnparsableAndEmpty(t *testing.T) {
	var started [][]string
	d := recordingDispatcher(&started)

	d.Dispatch("Open_Browser", []string{`firefox "unterminated`, "", "   "})

	if len(started) != 0 {
		t.Fatalf("started %v, want none", started)
	}
}
