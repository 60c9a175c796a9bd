// This file is part of meta2 - https://github.com/db47h/meta2
//
// Copyright 2017 Denis Bernard <db047h@gmail.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package asm

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

const (
	maxLine = 1024 // longest accepted listing line, in bytes
	maxNBlk = 256  // largest block an ArgNBlk mnemonic may reserve
)

// fixUp records an instruction whose ArgID argument awaits resolution. The
// unresolved label name sits in the instruction's Str field.
type fixUp struct {
	loc  int // index of the instruction to patch
	line int // listing line, for diagnostics
}

type loader struct {
	name   string
	table  map[string]*Descr
	line   int
	instrs []Instr
	labels map[string]int
	fixups []fixUp
}

// Load reads the listing from r and returns the loaded instruction array.
// The name parameter is used only in error messages to name the source of
// the error; if r is a file, name should be the file name. On error the
// returned slice is nil: a partial load is never handed to the caller.
func Load(name string, r io.Reader, table []Descr) ([]Instr, error) {
	l := &loader{
		name:   name,
		table:  make(map[string]*Descr, len(table)),
		line:   1,
		labels: make(map[string]int),
	}
	for i := range table {
		l.table[table[i].Mne] = &table[i]
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, maxLine), maxLine)
	for sc.Scan() {
		s := sc.Text()
		if s != "" {
			var err error
			if isBlank(s[0]) {
				err = l.instruction(s)
			} else {
				err = l.label(s)
			}
			if err != nil {
				return nil, err
			}
		}
		l.line++
	}
	if err := sc.Err(); err != nil {
		if err == bufio.ErrTooLong {
			return nil, l.errorf("line longer than %d bytes", maxLine)
		}
		return nil, errors.Wrapf(err, "%s:%d: read failed", l.name, l.line)
	}

	// second pass: resolve ArgID arguments
	for _, fx := range l.fixups {
		ir := &l.instrs[fx.loc]
		loc, ok := l.labels[ir.Str]
		if !ok {
			return nil, errors.Errorf("%s:%d: label `%s' referenced but never defined", l.name, fx.line, ir.Str)
		}
		ir.Val = loc
		ir.Str = ""
	}
	return l.instrs, nil
}

func (l *loader) errorf(format string, args ...interface{}) error {
	return errors.Errorf("%s:%d: %s", l.name, l.line, fmt.Sprintf(format, args...))
}

func isBlank(c byte) bool { return c == ' ' || c == '\t' }

func isAlpha(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func isAlnum(c byte) bool { return isAlpha(c) || isDigit(c) }

// ident scans a leading-blank-skipped identifier: a letter followed by
// letters and digits.
func ident(s string) (tok, rest string, ok bool) {
	i := 0
	for i < len(s) && isBlank(s[i]) {
		i++
	}
	if i >= len(s) || !isAlpha(s[i]) {
		return "", s, false
	}
	j := i + 1
	for j < len(s) && isAlnum(s[j]) {
		j++
	}
	return s[i:j], s[j:], true
}

// str scans a single-quoted string and strips the quotes. Empty strings are
// rejected, as are strings missing their closing quote.
func str(s string) (tok, rest string, ok bool) {
	i := 0
	for i < len(s) && isBlank(s[i]) {
		i++
	}
	if i >= len(s) || s[i] != '\'' || i+1 >= len(s) || s[i+1] == '\'' {
		return "", s, false
	}
	j := i + 1
	for j < len(s) && s[j] != '\'' {
		j++
	}
	if j >= len(s) {
		return "", s, false
	}
	return s[i+1 : j], s[j+1:], true
}

// num scans an unsigned decimal number.
func num(s string) (tok, rest string, ok bool) {
	i := 0
	for i < len(s) && isBlank(s[i]) {
		i++
	}
	if i >= len(s) || !isDigit(s[i]) {
		return "", s, false
	}
	j := i + 1
	for j < len(s) && isDigit(s[j]) {
		j++
	}
	return s[i:j], s[j:], true
}

// label handles a column-0 line: a label declaration.
func (l *loader) label(s string) error {
	name, _, ok := ident(s)
	if !ok {
		return l.errorf("expecting identifier on label line")
	}
	if _, redef := l.labels[name]; redef {
		return l.errorf("label `%s' redefined", name)
	}
	l.labels[name] = len(l.instrs)
	return nil
}

// instruction handles an indented line: a mnemonic and its argument.
func (l *loader) instruction(s string) error {
	mne, s, ok := ident(s)
	if !ok {
		return l.errorf("expecting mnemonic on instruction line")
	}
	d, ok := l.table[mne]
	if !ok {
		return l.errorf("unknown mnemonic `%s'", mne)
	}

	switch d.Kind {
	case ArgID:
		arg, _, ok := ident(s)
		if !ok {
			return l.errorf("instruction `%s' requires an identifier argument", mne)
		}
		l.fixups = append(l.fixups, fixUp{loc: len(l.instrs), line: l.line})
		l.instrs = append(l.instrs, Instr{Op: d.Op, Str: arg})
	case ArgStr:
		arg, _, ok := str(s)
		if !ok {
			return l.errorf("instruction `%s' requires a string argument", mne)
		}
		l.instrs = append(l.instrs, Instr{Op: d.Op, Str: arg})
	case ArgNum:
		arg, _, ok := num(s)
		if !ok {
			return l.errorf("instruction `%s' requires a number argument", mne)
		}
		n, err := strconv.Atoi(arg)
		if err != nil {
			return l.errorf("instruction `%s': bad number `%s'", mne, arg)
		}
		l.instrs = append(l.instrs, Instr{Op: d.Op, Val: n})
	case ArgNBlk:
		arg, _, ok := num(s)
		if !ok {
			return l.errorf("instruction `%s' requires a number argument", mne)
		}
		n, err := strconv.Atoi(arg)
		if err != nil || n > maxNBlk {
			return l.errorf("instruction `%s': block size `%s' out of range [0,%d]", mne, arg, maxNBlk)
		}
		for ; n > 0; n-- {
			l.instrs = append(l.instrs, Instr{Op: Reserved})
		}
	default:
		l.instrs = append(l.instrs, Instr{Op: d.Op})
	}
	return nil
}
