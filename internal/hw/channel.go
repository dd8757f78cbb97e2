// Package hw drives the reward pump and TTL trigger box over a serial line.
package hw

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"go.bug.st/serial"

	"audwm/internal/monitoring"
)

// ErrUnavailable is returned when the configured device cannot be opened.
// Callers degrade to a disabled channel.
var ErrUnavailable = errors.New("hardware channel unavailable")

// Port is the part of a serial port the channel needs.
type Port interface {
	io.Writer
	io.Closer
}

// Channel writes trigger codes and reward commands to a port. A Channel
// without a port is disabled and every call is a no-op.
type Channel struct {
	mu     sync.Mutex
	port   Port
	reward []byte
}

// New wraps an already open port. reward is the payload sent by Reward.
func New(port Port, reward string) *Channel {
	return &Channel{port: port, reward: []byte(reward)}
}

// Disabled returns a channel that drops everything.
func Disabled() *Channel {
	return &Channel{}
}

// Open opens the serial device at path.
func Open(path string, opts PortOptions, reward string) (*Channel, error) {
	mode, err := opts.SerialMode()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrUnavailable, path, err)
	}
	return New(port, reward), nil
}

// OpenOrDisable opens path, or logs the failure and returns a disabled
// channel. An empty path disables the channel silently.
func OpenOrDisable(path string, opts PortOptions, reward string) *Channel {
	if path == "" {
		return Disabled()
	}
	ch, err := Open(path, opts, reward)
	if err != nil {
		monitoring.Logf("hardware disabled: %v", err)
		return Disabled()
	}
	monitoring.Logf("hardware channel open on %s", path)
	return ch
}

// Enabled reports whether writes reach a device.
func (c *Channel) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.port != nil
}

// Mark sends a single-byte trigger code. Code 0 is not sent.
func (c *Channel) Mark(code byte) error {
	if code == 0 {
		return nil
	}
	return c.write([]byte{code})
}

// Reward sends the reward payload.
func (c *Channel) Reward() error {
	if len(c.reward) == 0 {
		return nil
	}
	return c.write(c.reward)
}

func (c *Channel) write(p []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.port == nil {
		return nil
	}
	if _, err := c.port.Write(p); err != nil {
		return fmt.Errorf("serial write: %w", err)
	}
	return nil
}

// Close releases the port. Closing a disabled channel is a no-op.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.port == nil {
		return nil
	}
	err := c.port.Close()
	c.port = nil
	return err
}
