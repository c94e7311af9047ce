// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package recording

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"sync"
)

// Device is a source of encoded audio.
type Device interface {
	// Acquire opens the device. It fails with a device error when the
	// device is missing or access is denied.
	Acquire(ctx context.Context) (Stream, error)
}

// Stream delivers encoded audio until it is stopped.
type Stream interface {
	io.Reader

	// Stop asks the device to finish. Remaining data, including any
	// container trailer, is still delivered before Read returns io.EOF.
	Stop() error

	// Close releases the device immediately. It is safe to call more than
	// once and after Stop.
	Close() error
}

// =============================================================================
// COMMAND DEVICE
// =============================================================================

// CommandDevice records by running an external encoder that writes the
// container to stdout, e.g. ffmpeg capturing from PulseAudio.
type CommandDevice struct {
	Argv []string
}

// NewCommandDevice returns a device running argv.
func NewCommandDevice(argv []string) *CommandDevice {
	return &CommandDevice{Argv: argv}
}

// Acquire starts the encoder process.
func (d *CommandDevice) Acquire(ctx context.Context) (Stream, error) {
	if len(d.Argv) == 0 {
		return nil, &Error{Type: ErrTypeDevice, Message: "no recording command configured"}
	}
	if _, err := exec.LookPath(d.Argv[0]); err != nil {
		return nil, &Error{Type: ErrTypeDevice, Message: fmt.Sprintf("recorder %q not found", d.Argv[0]), Cause: err}
	}

	cmd := exec.Command(d.Argv[0], d.Argv[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &Error{Type: ErrTypeDevice, Message: "failed to open recorder output", Cause: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, &Error{Type: ErrTypeDevice, Message: "recording cancelled", Cause: err}
	}
	if err := cmd.Start(); err != nil {
		if errors.Is(err, os.ErrPermission) {
			return nil, &Error{Type: ErrTypeDevice, Message: "permission denied", Cause: err}
		}
		return nil, &Error{Type: ErrTypeDevice, Message: "failed to start recorder", Cause: err}
	}
	return &commandStream{cmd: cmd, out: stdout}, nil
}

type commandStream struct {
	cmd *exec.Cmd
	out io.ReadCloser

	once sync.Once
}

func (s *commandStream) Read(p []byte) (int, error) {
	return s.out.Read(p)
}

// Stop interrupts the encoder so it writes its trailer and exits.
func (s *commandStream) Stop() error {
	if s.cmd.Process == nil {
		return nil
	}
	if runtime.GOOS == "windows" {
		return s.cmd.Process.Kill()
	}
	return s.cmd.Process.Signal(os.Interrupt)
}

func (s *commandStream) Close() error {
	s.once.Do(func() {
		if s.cmd.ProcessState == nil && s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
		}
		_ = s.cmd.Wait()
	})
	return nil
}
