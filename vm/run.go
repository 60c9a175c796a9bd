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

package vm

import (
	"strconv"

	"github.com/db47h/meta2/internal/m2i"
	"github.com/pkg/errors"
)

// Exec runs the loaded program against input. The name parameter is used
// only in error messages to name the source of the error; if the input came
// from a file, name should be the file name.
//
// In the backtracking variant, staged output is written out in all cases -
// clean termination, parse failure and fatal error - before Exec returns.
func (m *Machine) Exec(name string, input []byte) error {
	m.name = name
	m.input = input
	m.pc = m.prog[0].Val
	m.pos = 0
	m.res = true
	m.last = ""
	m.line = 1
	m.labcnt = 1
	m.indent = true
	m.top = 0
	m.frames[0] = frame{lab1: -1, lab2: -1}
	m.buf.Reset()
	m.w = m2i.NewErrWriter(m.out)

	err := m.run()
	if m.backtrack {
		if _, werr := m.w.Write(m.buf.Bytes()); werr != nil && err == nil {
			err = werr
		}
	} else if m.w.Err != nil && err == nil {
		err = m.w.Err
	}
	return err
}

func (m *Machine) run() error {
	for m.pc < len(m.prog) {
		ir := &m.prog[m.pc]
		switch ir.Op {
		case OpTST:
			if err := m.tst(ir.Str); err != nil {
				return err
			}
		case OpID:
			if err := m.matchID(); err != nil {
				return err
			}
		case OpNUM:
			if err := m.matchNum(); err != nil {
				return err
			}
		case OpSR:
			if err := m.matchStr(); err != nil {
				return err
			}
		case OpCLL:
			if m.top+1 >= MaxFrames {
				return errors.Errorf("%s:%d: frame stack overflow", m.name, m.line)
			}
			m.top++
			f := &m.frames[m.top]
			f.ret = m.pc + 1
			f.lab1, f.lab2 = -1, -1
			if m.backtrack {
				f.pos = m.pos
				f.out = m.buf.Len()
				f.last = m.last
				f.line = m.line
				f.labcnt = m.labcnt
				f.indent = m.indent
			}
			m.pc = ir.Val
			continue
		case OpR:
			if m.top == 0 {
				if !m.res {
					return m.syntaxError()
				}
				return nil
			}
			m.pc = m.frames[m.top].ret
			m.top--
			continue
		case OpSET:
			m.res = true
		case OpB:
			m.pc = ir.Val
			continue
		case OpBT:
			if m.res {
				m.pc = ir.Val
				continue
			}
		case OpBF:
			if !m.res {
				m.pc = ir.Val
				continue
			}
		case OpBE:
			if !m.res {
				if !m.backtrack || m.top == 0 {
					return m.syntaxError()
				}
				f := &m.frames[m.top]
				m.pos = f.pos
				m.buf.Truncate(f.out)
				m.last = f.last
				m.line = f.line
				m.labcnt = f.labcnt
				m.indent = f.indent
				m.pc = f.ret
				m.top--
				continue
			}
		case OpCL:
			m.emit(ir.Str)
		case OpCI:
			m.emit(m.last)
		case OpGN1:
			f := &m.frames[m.top]
			if f.lab1 < 0 {
				f.lab1 = m.labcnt
				m.labcnt++
			}
			m.emit("L" + strconv.Itoa(f.lab1))
		case OpGN2:
			f := &m.frames[m.top]
			if f.lab2 < 0 {
				f.lab2 = m.labcnt
				m.labcnt++
			}
			m.emit("L" + strconv.Itoa(f.lab2))
		case OpLB:
			m.indent = false
		case OpOUT:
			m.write("\n")
			m.indent = true
		default:
			// ADR, END and Reserved cells are metadata, not code.
			return errors.Errorf("%s: attempt to execute non-executable instruction at index %d", m.name, m.pc)
		}
		m.pc++
	}
	return nil
}

func (m *Machine) syntaxError() error {
	return errors.Errorf("%s:%d: syntax error", m.name, m.line)
}

// write appends s to the output: directly in the linear machine, to the
// staging buffer in the backtracking one.
func (m *Machine) write(s string) {
	if m.backtrack {
		m.buf.WriteString(s)
	} else {
		m.w.WriteString(s)
	}
}

// emit writes s as line content, inserting the pending tab if the indent
// flag is set.
func (m *Machine) emit(s string) {
	if m.indent {
		m.write("\t")
	}
	m.write(s)
	m.indent = false
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func isAlpha(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func isAlnum(c byte) bool { return isAlpha(c) || isDigit(c) }

// skipWhite advances the cursor past whitespace, counting newlines so that
// diagnostics report the line the parse actually stopped on.
func (m *Machine) skipWhite() {
	for m.pos < len(m.input) && isSpace(m.input[m.pos]) {
		if m.input[m.pos] == '\n' {
			m.line++
		}
		m.pos++
	}
}

// tst matches the literal lit at the cursor. The matched prefix, complete or
// not, becomes the last token.
func (m *Machine) tst(lit string) error {
	if len(lit) > maxToken {
		return errors.Errorf("%s:%d: token too long", m.name, m.line)
	}
	m.skipWhite()
	n := 0
	for n < len(lit) && m.pos+n < len(m.input) && m.input[m.pos+n] == lit[n] {
		n++
	}
	m.last = lit[:n]
	if n == len(lit) {
		m.pos += n
		m.res = true
	} else {
		m.res = false
	}
	return nil
}

// matchID accepts a letter followed by the maximal letter-digit run.
func (m *Machine) matchID() error {
	m.skipWhite()
	i := m.pos
	if i < len(m.input) && isAlpha(m.input[i]) {
		j := i + 1
		for j < len(m.input) && isAlnum(m.input[j]) {
			j++
		}
		if j-i > maxToken {
			return errors.Errorf("%s:%d: token too long", m.name, m.line)
		}
		m.last = string(m.input[i:j])
		m.pos = j
		m.res = true
	} else {
		m.last = ""
		m.res = false
	}
	return nil
}

// matchNum accepts the maximal digit run.
func (m *Machine) matchNum() error {
	m.skipWhite()
	i := m.pos
	if i < len(m.input) && isDigit(m.input[i]) {
		j := i + 1
		for j < len(m.input) && isDigit(m.input[j]) {
			j++
		}
		if j-i > maxToken {
			return errors.Errorf("%s:%d: token too long", m.name, m.line)
		}
		m.last = string(m.input[i:j])
		m.pos = j
		m.res = true
	} else {
		m.last = ""
		m.res = false
	}
	return nil
}

// matchStr accepts a single-quoted string, quotes included. A string may not
// span lines. On failure the last token holds whatever prefix was scanned.
func (m *Machine) matchStr() error {
	m.skipWhite()
	i := m.pos
	end := i
	ok := false
	if i < len(m.input) && m.input[i] == '\'' {
		end = i + 1
		for end < len(m.input) && m.input[end] != '\'' && m.input[end] != '\n' {
			end++
		}
		if end < len(m.input) && m.input[end] == '\'' {
			end++
			ok = true
		}
	}
	if end-i > maxToken {
		return errors.Errorf("%s:%d: token too long", m.name, m.line)
	}
	m.last = string(m.input[i:end])
	if ok {
		m.pos = end
		m.res = true
	} else {
		m.res = false
	}
	return nil
}
