// whdprep
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of whdprep.
//
// whdprep is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// whdprep is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with whdprep.  If not, see <http://www.gnu.org/licenses/>.

// Package command provides an abstraction over exec.Command for testability.
package command

import (
	"bytes"
	"context"
	"os"
	"os/exec"
)

// Options configures how a command is run.
type Options struct {
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Env is appended to the current process environment.
	Env []string
}

// Executor provides an abstraction over exec.Command for testability.
// This allows the extraction tool and slave analyzer to be mocked in tests
// without executing real system commands.
type Executor interface {
	// Run executes a command and waits for it to complete.
	// Returns an error if the command fails to start or exits with non-zero status.
	Run(ctx context.Context, opts Options, name string, args ...string) error

	// Output runs a command and returns its standard output and standard
	// error separately. The error is non-nil on a non-zero exit status.
	Output(ctx context.Context, opts Options, name string, args ...string) (stdout, stderr []byte, err error)
}

// RealExecutor uses actual exec.Command to execute system commands.
// This is the production implementation used in normal operation.
type RealExecutor struct{}

func build(ctx context.Context, opts Options, name string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = opts.Dir
	if len(opts.Env) > 0 {
		cmd.Env = append(os.Environ(), opts.Env...)
	}
	return cmd
}

// Run executes a system command using exec.CommandContext.
//
//nolint:wrapcheck // Wrapping exec errors loses important context
func (*RealExecutor) Run(ctx context.Context, opts Options, name string, args ...string) error {
	return build(ctx, opts, name, args...).Run()
}

// Output runs a command and captures both output streams.
//
//nolint:wrapcheck // Wrapping exec errors loses important context
func (*RealExecutor) Output(
	ctx context.Context,
	opts Options,
	name string,
	args ...string,
) (stdout, stderr []byte, err error) {
	cmd := build(ctx, opts, name, args...)
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	err = cmd.Run()
	return outBuf.Bytes(), errBuf.Bytes(), err
}
