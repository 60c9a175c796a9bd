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

// Package asm loads textual instruction listings into a flat, index
// addressable instruction array with all label references resolved.
//
// The listing format is shared by every target machine; what varies is the
// opcode table, which the machine packages provide (see vm.OpcodeTable and
// valgol.OpcodeTable). A listing looks like:
//
//	LOOP
//		TST 'begin'
//		BF L1
//		CLL BODY
//		BE
//	L1
//		R
//
// Lines starting in column 0 declare a label: an identifier alone on the
// line, bound to the index of the next instruction to be emitted. Redefining
// a label is an error. Lines starting with a space or tab carry one
// instruction: a mnemonic, then the argument its table entry declares:
//
//	ArgNone	no argument
//	ArgID	an identifier, resolved to the index of the label it names
//	ArgStr	a single-quote delimited string; the quotes are stripped, the
//		delimited text may not be empty and may not span lines
//	ArgNum	a decimal integer
//	ArgNBlk	a decimal integer n in [0,256]; reserves n storage cells
//
// Reserved cells carry the distinguished Reserved opcode. They hold machine
// data (see the valgol package) and are never executable.
//
// Loading is done in two passes. The first pass scans lines in order,
// building the label table and the instruction array; label references are
// recorded as fix-ups. The second pass resolves every fix-up to an
// instruction index. Any error - lexical, unknown mnemonic, missing
// argument, duplicate label, unresolved reference - aborts the load.
package asm
