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

package mocks

import (
	"context"

	"github.com/ZaparooProject/whdprep/pkg/helpers/command"
	"github.com/stretchr/testify/mock"
)

// MockCommandExecutor is a testify mock for command.Executor.
// It allows testing code that executes system commands without actually running them.
type MockCommandExecutor struct {
	mock.Mock
}

// Run mocks the execution of a system command.
// Use On() to set expectations and Return() to control the mock behavior.
//
// Example:
//
//	mockCmd := &MockCommandExecutor{}
//	mockCmd.On("Run", mock.Anything, mock.Anything, "lha", mock.Anything).Return(nil)
func (m *MockCommandExecutor) Run(ctx context.Context, opts command.Options, name string, args ...string) error {
	called := m.Called(ctx, opts, name, args)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return called.Error(0)
}

// Output mocks running a command and capturing its output streams.
func (m *MockCommandExecutor) Output(
	ctx context.Context,
	opts command.Options,
	name string,
	args ...string,
) (stdout, stderr []byte, err error) {
	called := m.Called(ctx, opts, name, args)

	if out, ok := called.Get(0).([]byte); ok {
		stdout = out
	}
	if errOut, ok := called.Get(1).([]byte); ok {
		stderr = errOut
	}
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return stdout, stderr, called.Error(2)
}
