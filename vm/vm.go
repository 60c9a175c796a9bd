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
	"bytes"
	"io"
	"os"

	"github.com/db47h/meta2/asm"
	"github.com/db47h/meta2/internal/m2i"
	"github.com/pkg/errors"
)

// META II machine opcodes.
const (
	OpTST asm.Opcode = iota // match a literal string
	OpID                    // match an identifier
	OpNUM                   // match a number
	OpSR                    // match a single-quoted string
	OpCLL                   // call a syntax rule
	OpR                     // return from a rule
	OpSET                   // force the match flag true
	OpB                     // branch
	OpBT                    // branch if matched
	OpBF                    // branch if not matched
	OpBE                    // commit: matched, or the parse fails
	OpCL                    // copy a literal to output
	OpCI                    // copy the last matched token to output
	OpGN1                   // emit the frame's first synthetic label
	OpGN2                   // emit the frame's second synthetic label
	OpLB                    // start the next emission in column 0
	OpOUT                   // end the output line
	OpADR                   // entry point marker, never executed
	OpEND                   // end of program marker, never executed
)

// OpcodeTable describes the META II instruction set to the asm loader.
var OpcodeTable = []asm.Descr{
	{Mne: "TST", Op: OpTST, Kind: asm.ArgStr},
	{Mne: "ID", Op: OpID, Kind: asm.ArgNone},
	{Mne: "NUM", Op: OpNUM, Kind: asm.ArgNone},
	{Mne: "SR", Op: OpSR, Kind: asm.ArgNone},
	{Mne: "CLL", Op: OpCLL, Kind: asm.ArgID},
	{Mne: "R", Op: OpR, Kind: asm.ArgNone},
	{Mne: "SET", Op: OpSET, Kind: asm.ArgNone},
	{Mne: "B", Op: OpB, Kind: asm.ArgID},
	{Mne: "BT", Op: OpBT, Kind: asm.ArgID},
	{Mne: "BF", Op: OpBF, Kind: asm.ArgID},
	{Mne: "BE", Op: OpBE, Kind: asm.ArgNone},
	{Mne: "CL", Op: OpCL, Kind: asm.ArgStr},
	{Mne: "CI", Op: OpCI, Kind: asm.ArgNone},
	{Mne: "GN1", Op: OpGN1, Kind: asm.ArgNone},
	{Mne: "GN2", Op: OpGN2, Kind: asm.ArgNone},
	{Mne: "LB", Op: OpLB, Kind: asm.ArgNone},
	{Mne: "OUT", Op: OpOUT, Kind: asm.ArgNone},
	{Mne: "ADR", Op: OpADR, Kind: asm.ArgID},
	{Mne: "END", Op: OpEND, Kind: asm.ArgNone},
}

const (
	// MaxFrames bounds the call stack: the maximum number of frames at any
	// given time, the bottom frame included, so CLL calls nest at most
	// MaxFrames-1 deep.
	MaxFrames = 64

	// maxToken bounds the text a single primitive may accept.
	maxToken = 256
)

// frame is one CLL activation. lab1 and lab2 are the frame's synthetic label
// slots, allocated from the machine's label counter on first use by GN1/GN2.
// The remaining fields are the backtracking snapshot, captured on CLL and
// unused by the linear machine.
type frame struct {
	ret        int
	lab1, lab2 int

	pos    int
	out    int
	last   string
	line   int
	labcnt int
	indent bool
}

// Option interface.
type Option func(*Machine) error

// Output sets the output Writer. It defaults to os.Stdout.
func Output(w io.Writer) Option {
	return func(m *Machine) error { m.out = w; return nil }
}

// Backtrack selects the backtracking variant: a failed commit (BE) rewinds
// input and output to the state of the enclosing call and fails the rule
// instead of ending the parse. Output is staged in memory and written out
// only on termination.
func Backtrack() Option {
	return func(m *Machine) error { m.backtrack = true; return nil }
}

// Machine is a META II machine instance loaded with one program. A Machine
// can execute several inputs in sequence; it is not safe for concurrent use.
type Machine struct {
	prog      []asm.Instr
	out       io.Writer
	backtrack bool

	// execution state, reset by Exec
	name   string
	input  []byte
	pc     int
	pos    int
	res    bool
	last   string
	line   int
	labcnt int
	indent bool
	frames [MaxFrames]frame
	top    int
	w      *m2i.ErrWriter // linear output path
	buf    bytes.Buffer   // backtracking output stage
}

// New creates a Machine executing prog. The program must begin with an ADR
// instruction naming the entry point.
func New(prog []asm.Instr, opts ...Option) (*Machine, error) {
	if len(prog) == 0 || prog[0].Op != OpADR {
		return nil, errors.New("code does not begin with an ADR instruction")
	}
	m := &Machine{prog: prog, out: os.Stdout}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}
