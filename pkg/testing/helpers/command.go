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

package helpers

import (
	"path/filepath"
	"strings"

	"github.com/ZaparooProject/whdprep/pkg/helpers/command"
	"github.com/ZaparooProject/whdprep/pkg/testing/mocks"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/mock"
)

// ExpectExtraction makes every "lha" Run call unpack into the scratch
// directory it runs in. layouts maps archive base names to the relative
// files that archive contains; each file's content is the archive name.
//
// Note args is []string, not variadic, in the mock:
//
//	cmd.On("Run", mock.Anything, mock.Anything, "lha", []string{"xq", "/amiga/lha/Foo.lha"})
func ExpectExtraction(cmd *mocks.MockCommandExecutor, fs afero.Fs, layouts map[string][]string) *mock.Call {
	return cmd.On("Run", mock.Anything, mock.Anything, "lha", mock.Anything).
		Run(func(args mock.Arguments) {
			opts, _ := args.Get(1).(command.Options)
			cmdArgs, _ := args.Get(3).([]string)
			if len(cmdArgs) == 0 {
				return
			}
			archive := filepath.Base(cmdArgs[len(cmdArgs)-1])
			for _, rel := range layouts[archive] {
				_ = afero.WriteFile(fs, filepath.Join(opts.Dir, rel), []byte(archive), 0o644)
			}
		}).
		Return(nil)
}

// ExpectAnalyzer makes every "python3" Output call write a catalog with the
// given rows into the output directory, which is the last argument. onRun,
// if set, is called after the catalog is written.
func ExpectAnalyzer(
	cmd *mocks.MockCommandExecutor,
	fs afero.Fs,
	file string,
	rows []string,
	onRun func(),
) *mock.Call {
	var sb strings.Builder
	sb.WriteString(CatalogHeader)
	for _, r := range rows {
		sb.WriteString(r)
		sb.WriteString("\n")
	}
	table := sb.String()

	return cmd.On("Output", mock.Anything, mock.Anything, "python3", mock.Anything).
		Run(func(args mock.Arguments) {
			cmdArgs, _ := args.Get(3).([]string)
			if len(cmdArgs) == 0 {
				return
			}
			_ = afero.WriteFile(fs, filepath.Join(cmdArgs[len(cmdArgs)-1], file), []byte(table), 0o644)
			if onRun != nil {
				onRun()
			}
		}).
		Return([]byte(strings.Join(rows, "\n")), []byte(nil), nil)
}
