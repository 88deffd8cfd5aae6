package reload

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/neovim/go-client/nvim"
)

// NvimClient is the part of a neovim RPC connection Neovim uses.
type NvimClient interface {
	Command(cmd string) error
	Close() error
}

// Neovim runs Commands in every neovim instance whose RPC socket matches
// Sockets.
type Neovim struct {
	// Sockets is a glob such as /tmp/nvim*/0.
	Sockets  string
	Commands []string
	// Dial connects to one socket; nil uses the neovim RPC client.
	Dial func(addr string) (NvimClient, error)
}

func (n *Neovim) Name() string { return "neovim" }

func (n *Neovim) Reload(ctx context.Context, _ string) error {
	if n.Sockets == "" || len(n.Commands) == 0 {
		return nil
	}
	addrs, err := filepath.Glob(n.Sockets)
	if err != nil {
		return err
	}
	dial := n.Dial
	if dial == nil {
		dial = dialNvim
	}
	var errs []error
	for _, addr := range addrs {
		if err := ctx.Err(); err != nil {
			return errors.Join(append(errs, err)...)
		}
		if err := n.run(dial, addr); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", addr, err))
		}
	}
	return errors.Join(errs...)
}

func (n *Neovim) run(dial func(string) (NvimClient, error), addr string) error {
	v, err := dial(addr)
	if err != nil {
		return err
	}
	defer v.Close()
	for _, cmd := range n.Commands {
		if err := v.Command(cmd); err != nil {
			return fmt.Errorf("%q: %w", cmd, err)
		}
	}
	return nil
}

func dialNvim(addr string) (NvimClient, error) {
	v, err := nvim.Dial(addr)
	if err != nil {
		return nil, err
	}
	return v, nil
}
