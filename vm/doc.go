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

// Package vm implements the META II machine: the interpreter of the code
// emitted by the META II compiler (see lang/meta2). The machine matches an
// input text against the compiled syntax equations and emits target assembly
// as a side effect of matching.
//
// Instruction set:
//
//	mnemonic	arg	description
//	--------	---	------------------------------------------------------------------
//	TST	str	skip whitespace, then match the literal str and advance past it
//	ID		skip whitespace, then match a letter followed by letters/digits
//	NUM		skip whitespace, then match a digit run
//	SR		skip whitespace, then match a single-quoted string, quotes included
//	CLL	lbl	call the rule at lbl: push a frame with two empty label slots
//	R		return; on the bottommost frame, end execution
//	SET		set the match flag
//	B	lbl	branch always
//	BT	lbl	branch if the match flag is set
//	BF	lbl	branch if the match flag is clear
//	BE		commit: with the flag clear, the parse fails (see below)
//	CL	str	output the literal str
//	CI		output the text accepted by the last TST/ID/NUM/SR
//	GN1		output the frame's first synthetic label, allocating it on first use
//	GN2		as GN1, for the frame's second slot
//	LB		start the next output in column 0 (suppress one tab)
//	OUT		end the output line; the next line starts tab indented
//	ADR	lbl	index 0 only: names the entry point; never executed
//	END		closes the program text; never executed
//
// The four matching primitives record the text they accepted; CI copies that
// text to the output. Output is line oriented: emissions between two OUT
// instructions form one line, indented with a single leading tab unless LB
// was executed first.
//
// Error policy is selected at construction time. The default, linear machine
// writes output directly and ends the parse with a syntax error on the first
// failed BE. With the Backtrack option, a failed BE instead rewinds the
// input cursor, the staged output, the last token, the line and label
// counters and the indent flag to their values at the enclosing CLL, and
// fails the called rule; the caller observes a failed sub-parse. A failed BE
// on the bottommost frame remains fatal. The staged output is written out on
// termination, successful or not.
package vm
