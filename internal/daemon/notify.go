package daemon

import (
	sd "github.com/coreos/go-systemd/v22/daemon"
	"github.com/pkg/errors"
)

// NotifyReady tells systemd the tracker is about to start sampling. It is
// sent after the PID file is written and paired with NotifyStopping once the
// sampling loop returns. Outside a Type=notify unit NOTIFY_SOCKET is unset
// and this does nothing.
func NotifyReady() error {
	if _, err := sd.SdNotify(false, sd.SdNotifyReady); err != nil {
		return errors.Wrap(err, "failed to send sd_notify")
	}
	return nil
}

// NotifyStopping tells systemd the sampling loop has ended, whether by
// signal or by a fatal sampling error.
func NotifyStopping() error {
	if _, err := sd.SdNotify(false, sd.SdNotifyStopping); err != nil {
		return errors.Wrap(err, "failed to send sd_notify stopping")
	}
	return nil
}
