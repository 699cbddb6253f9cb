package audio

import (
	"errors"
	"testing"
	"time"
)

func TestPollFaultsFiresOnCheckFailure(t *testing.T) {
	calls := 0
	check := func() error {
		calls++
		if calls >= 3 {
			return ErrDeviceLost
		}
		return nil
	}

	faultCh := make(chan error, 1)
	done := make(chan struct{})
	go func() {
		pollFaults(make(chan struct{}), time.Millisecond, check, func(err error) { faultCh <- err })
		close(done)
	}()

	select {
	case err := <-faultCh:
		if !errors.Is(err, ErrDeviceLost) {
			t.Fatalf("got %v, want ErrDeviceLost", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("fault never fired")
	}
	<-done
}

func TestPollFaultsStopsWithoutFault(t *testing.T) {
	stop := make(chan struct{})
	faultCh := make(chan error, 1)
	done := make(chan struct{})
	go func() {
		pollFaults(stop, time.Millisecond, func() error { return nil }, func(err error) { faultCh <- err })
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	close(stop)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("pollFaults did not return after stop")
	}
	select {
	case err := <-faultCh:
		t.Fatalf("unexpected fault %v", err)
	default:
	}
}
