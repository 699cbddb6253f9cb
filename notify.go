package main

import "github.com/coreos/go-systemd/v22/daemon"

// notifier wraps sd_notify so the daemon works as a systemd Type=notify
// service. SdNotify is a no-op when NOTIFY_SOCKET is unset, so running in a
// plain terminal costs nothing; -no-notify disables it outright.
type notifier struct {
	enabled bool
}

func (n notifier) Ready() {
	if n.enabled {
		_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)
	}
}

func (n notifier) Status(msg string) {
	if n.enabled {
		_, _ = daemon.SdNotify(false, "STATUS="+msg)
	}
}

func (n notifier) Stopping() {
	if n.enabled {
		_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
	}
}
