package reload

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strings"
)

// Kitty copies the selected colors file over File and signals the kitty
// instance listening on Socket to reload its config.
type Kitty struct {
	File     string
	Selector string
	// Socket is kitty's remote control socket, with or without the
	// "unix:" prefix kitty's listen_on uses.
	Socket string
	// Signal delivers the reload signal to pid; nil means SIGUSR1.
	Signal func(pid int) error
}

func (k *Kitty) Name() string { return "kitty" }

func (k *Kitty) Reload(ctx context.Context, scheme string) error {
	src, err := resolve(k.Selector, scheme)
	if err != nil {
		return err
	}
	if err := copyFile(src, k.File); err != nil {
		return err
	}
	socket := strings.TrimPrefix(k.Socket, "unix:")
	if socket == "" {
		return nil
	}
	if _, err := os.Stat(socket); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	pid, err := socketPeer(ctx, socket)
	if err != nil {
		return fmt.Errorf("kitty socket %s: %w", socket, err)
	}
	signal := k.Signal
	if signal == nil {
		signal = signalReload
	}
	return signal(pid)
}

// socketPeer returns the pid of the process serving the unix socket.
func socketPeer(ctx context.Context, path string) (int, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		return 0, err
	}
	defer conn.Close()
	uc, ok := conn.(*net.UnixConn)
	if !ok {
		return 0, fmt.Errorf("not a unix socket")
	}
	return peerPID(uc)
}
