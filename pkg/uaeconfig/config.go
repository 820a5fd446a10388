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

// Package uaeconfig holds emulator configuration as an insertion-ordered
// key/value list and renders it to descriptor files. Line order is part of
// the output format, so every operation here preserves it.
package uaeconfig

import (
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Pair is a single configuration entry.
type Pair struct {
	Key   string
	Value string
}

// Config is an insertion-ordered string map. The zero value is not usable,
// use New.
type Config struct {
	m *orderedmap.OrderedMap[string, string]
}

// New returns a config populated with pairs in the given order. A repeated
// key keeps its first position and its last value.
func New(pairs ...Pair) *Config {
	c := &Config{m: orderedmap.New[string, string]()}
	for _, p := range pairs {
		c.Set(p.Key, p.Value)
	}
	return c
}

// Set updates key in place if present, otherwise appends it. Reports
// whether the key already existed.
func (c *Config) Set(key, value string) bool {
	_, present := c.m.Set(key, value)
	return present
}

// Get returns the value stored for key.
func (c *Config) Get(key string) (string, bool) {
	return c.m.Get(key)
}

// Has reports whether key is present.
func (c *Config) Has(key string) bool {
	_, ok := c.m.Get(key)
	return ok
}

// Len returns the number of keys.
func (c *Config) Len() int {
	if c == nil || c.m == nil {
		return 0
	}
	return c.m.Len()
}

// Empty reports whether the config is nil or holds no keys.
func (c *Config) Empty() bool {
	return c.Len() == 0
}

// Keys returns keys in order.
func (c *Config) Keys() []string {
	keys := make([]string, 0, c.Len())
	for _, p := range c.Pairs() {
		keys = append(keys, p.Key)
	}
	return keys
}

// Pairs returns a snapshot of all entries in order.
func (c *Config) Pairs() []Pair {
	if c.Len() == 0 {
		return nil
	}
	pairs := make([]Pair, 0, c.m.Len())
	for p := c.m.Oldest(); p != nil; p = p.Next() {
		pairs = append(pairs, Pair{Key: p.Key, Value: p.Value})
	}
	return pairs
}

// Clone returns an independent copy.
func (c *Config) Clone() *Config {
	return New(c.Pairs()...)
}

// Merge applies other on top of c: keys already in c keep their position
// and take other's value, new keys are appended in other's order. A nil
// other is a no-op.
func (c *Config) Merge(other *Config) {
	for _, p := range other.Pairs() {
		c.Set(p.Key, p.Value)
	}
}

// Render formats the config as key=value lines with a trailing newline.
func (c *Config) Render() string {
	var sb strings.Builder
	for _, p := range c.Pairs() {
		sb.WriteString(p.Key)
		sb.WriteByte('=')
		sb.WriteString(p.Value)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// RenderQuoted formats the config as key = "value" lines with a trailing
// newline.
func (c *Config) RenderQuoted() string {
	var sb strings.Builder
	for _, p := range c.Pairs() {
		sb.WriteString(p.Key)
		sb.WriteString(` = "`)
		sb.WriteString(p.Value)
		sb.WriteString("\"\n")
	}
	return sb.String()
}
