//go:build !linux

package reload

import (
	"errors"
	"net"
)

var errNoPeerCred = errors.New("socket peer credentials are not supported on this platform")

func peerPID(*net.UnixConn) (int, error) {
	return 0, errNoPeerCred
}

func signalReload(int) error {
	return errNoPeerCred
}
