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

// Package meta2 compiles META II syntax notation into META II machine code.
//
// A program in the notation is `.SYNTAX name`, one or more syntax equations,
// then `.END`. A syntax equation `name = expression .,` defines one rule.
// Expressions combine, loosest to tightest binding:
//
//	e1 / e2		alternation
//	e1 e2		sequence
//	$ e		zero or more repetitions
//	( e )		grouping
//
// over the primaries: a rule name (call), a quoted literal, and the
// primitives .ID, .NUMBER, .STRING and .EMPTY. Output directives may appear
// anywhere in a sequence: `.OUT( items )` writes one line built from quoted
// literals, `*` (the last matched token), and `*1`/`*2` (the rule's two
// synthetic labels); `.LABEL item` writes one item in column 0.
//
// The compiler is the hand-written bootstrap translator: its output matches,
// instruction for instruction, the code a self-hosted META II produces from
// the same source. The translation of each construct is documented on the
// corresponding function.
package meta2

import (
	"fmt"
	"io"

	"github.com/db47h/meta2/internal/m2i"
	"github.com/pkg/errors"
)

type token int

const (
	tokKwSyntax token = iota // .SYNTAX
	tokKwEnd                 // .END
	tokKwID                  // .ID
	tokKwNumber              // .NUMBER
	tokKwString              // .STRING
	tokKwEmpty               // .EMPTY
	tokKwOut                 // .OUT
	tokKwLabel               // .LABEL
	tokID                    // identifier
	tokStr                   // 'string', quotes kept in the token text
	tokStar                  // *
	tokStar1                 // *1
	tokStar2                 // *2
	tokDollar                // $
	tokLParen                // (
	tokRParen                // )
	tokEq                    // =
	tokSemi                  // .,
	tokSlash                 // /
	tokEOF
)

// dot-prefixed keywords, tried in order against the input following a `.'.
var keywords = []struct {
	name string
	tok  token
}{
	{"SYNTAX", tokKwSyntax},
	{"END", tokKwEnd},
	{"ID", tokKwID},
	{"NUMBER", tokKwNumber},
	{"STRING", tokKwString},
	{"EMPTY", tokKwEmpty},
	{"OUT", tokKwOut},
	{"LABEL", tokKwLabel},
}

const maxTokenText = 512

type compiler struct {
	name string
	src  []byte
	pos  int
	line int

	tok  token  // look-ahead token
	text string // its literal text

	labels int // fresh label allocator, L1 upwards
	w      *m2i.ErrWriter
}

// Compile translates the META II program in src and writes the resulting
// machine code listing to w. The name parameter is used only in error
// messages to name the source of the error. Compilation stops at the first
// error.
func Compile(name string, src []byte, w io.Writer) error {
	c := &compiler{name: name, src: src, line: 1, labels: 1, w: m2i.NewErrWriter(w)}
	if err := c.next(); err != nil {
		return err
	}
	if err := c.program(); err != nil {
		return err
	}
	return c.w.Err
}

func (c *compiler) errorf(format string, args ...interface{}) error {
	return errors.Errorf("%s:%d: %s", c.name, c.line, fmt.Sprintf(format, args...))
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func isAlpha(b byte) bool {
	return 'a' <= b && b <= 'z' || 'A' <= b && b <= 'Z'
}

func isDigit(b byte) bool { return '0' <= b && b <= '9' }

func isAlnum(b byte) bool { return isAlpha(b) || isDigit(b) }

func (c *compiler) skipWhite() {
	for c.pos < len(c.src) && isSpace(c.src[c.pos]) {
		if c.src[c.pos] == '\n' {
			c.line++
		}
		c.pos++
	}
}

// next scans the look-ahead token. Characters with no role in the notation
// are skipped. A `.' introduces either the `.,' terminator or a keyword;
// anything else after a `.' is an error.
func (c *compiler) next() error {
	for {
		c.skipWhite()
		if c.pos >= len(c.src) {
			c.tok, c.text = tokEOF, ""
			return nil
		}
		b := c.src[c.pos]
		switch {
		case b == '.':
			c.pos++
			if c.pos < len(c.src) && c.src[c.pos] == ',' {
				c.pos++
				c.tok, c.text = tokSemi, ".,"
				return nil
			}
			for _, kw := range keywords {
				if hasPrefix(c.src[c.pos:], kw.name) {
					c.pos += len(kw.name)
					c.tok, c.text = kw.tok, "."+kw.name
					return nil
				}
			}
			return c.errorf("unknown keyword after `.'")
		case isAlpha(b):
			i := c.pos
			j := i + 1
			for j < len(c.src) && isAlnum(c.src[j]) {
				j++
			}
			if j-i > maxTokenText {
				return c.errorf("token too long")
			}
			c.pos = j
			c.tok, c.text = tokID, string(c.src[i:j])
			return nil
		case b == '\'':
			i := c.pos
			j := i + 1
			for j < len(c.src) && c.src[j] != '\'' && c.src[j] != '\n' {
				j++
			}
			if j >= len(c.src) || c.src[j] != '\'' {
				return c.errorf("unterminated string literal")
			}
			j++
			if j-i > maxTokenText {
				return c.errorf("token too long")
			}
			c.pos = j
			c.tok, c.text = tokStr, string(c.src[i:j])
			return nil
		case b == '*':
			c.pos++
			if c.pos < len(c.src) && c.src[c.pos] == '1' {
				c.pos++
				c.tok, c.text = tokStar1, "*1"
			} else if c.pos < len(c.src) && c.src[c.pos] == '2' {
				c.pos++
				c.tok, c.text = tokStar2, "*2"
			} else {
				c.tok, c.text = tokStar, "*"
			}
			return nil
		case b == '$':
			c.pos++
			c.tok, c.text = tokDollar, "$"
			return nil
		case b == '(':
			c.pos++
			c.tok, c.text = tokLParen, "("
			return nil
		case b == ')':
			c.pos++
			c.tok, c.text = tokRParen, ")"
			return nil
		case b == '=':
			c.pos++
			c.tok, c.text = tokEq, "="
			return nil
		case b == '/':
			c.pos++
			c.tok, c.text = tokSlash, "/"
			return nil
		default:
			// no role in the notation
			c.pos++
		}
	}
}

func hasPrefix(s []byte, prefix string) bool {
	if len(s) < len(prefix) {
		return false
	}
	for i := 0; i < len(prefix); i++ {
		if s[i] != prefix[i] {
			return false
		}
	}
	return true
}

func (c *compiler) match(expected token) error {
	if c.tok != expected {
		return c.errorf("unexpected `%s'", c.text)
	}
	return c.next()
}

// newLabel allocates a fresh synthetic label. The allocator is shared by the
// whole translation unit so names never collide.
func (c *compiler) newLabel() int {
	n := c.labels
	c.labels++
	return n
}

func (c *compiler) emitf(format string, args ...interface{}) {
	fmt.Fprintf(c.w, format, args...)
}

// out1 compiles one output item:
//
//	OUT1 = '*1'    .OUT('GN1')  /
//	       '*2'    .OUT('GN2')  /
//	       '*'     .OUT('CI')   /
//	       .STRING .OUT('CL '*) .,
func (c *compiler) out1() error {
	switch c.tok {
	case tokStar1:
		c.emitf("\tGN1\n")
	case tokStar2:
		c.emitf("\tGN2\n")
	case tokStar:
		c.emitf("\tCI\n")
	case tokStr:
		c.emitf("\tCL %s\n", c.text)
	default:
		return c.errorf("unexpected `%s'", c.text)
	}
	return c.match(c.tok)
}

// output compiles an output directive:
//
//	OUTPUT = ('.OUT' '('$OUT1')' /
//	          '.LABEL' .OUT('LB') OUT1)
//	         .OUT('OUT') .,
func (c *compiler) output() error {
	if c.tok == tokKwOut {
		if err := c.match(tokKwOut); err != nil {
			return err
		}
		if err := c.match(tokLParen); err != nil {
			return err
		}
		for c.tok != tokRParen {
			if err := c.out1(); err != nil {
				return err
			}
		}
		if err := c.match(tokRParen); err != nil {
			return err
		}
	} else {
		if err := c.match(tokKwLabel); err != nil {
			return err
		}
		c.emitf("\tLB\n")
		if err := c.out1(); err != nil {
			return err
		}
	}
	c.emitf("\tOUT\n")
	return nil
}

// ex3 compiles a primary:
//
//	EX3 = .ID       .OUT('CLL ' *) /
//	      .STRING   .OUT('TST ' *) /
//	      '.ID'     .OUT('ID')     /
//	      '.NUMBER' .OUT('NUM')    /
//	      '.STRING' .OUT('SR')     /
//	      '(' EX1 ')'              /
//	      '.EMPTY'  .OUT('SET')    /
//	      '$' .LABEL *1 EX3 .OUT('BT ' *1) .OUT('SET') .,
func (c *compiler) ex3() error {
	switch c.tok {
	case tokID:
		c.emitf("\tCLL %s\n", c.text)
		return c.match(tokID)
	case tokStr:
		c.emitf("\tTST %s\n", c.text)
		return c.match(tokStr)
	case tokKwID:
		c.emitf("\tID\n")
		return c.match(tokKwID)
	case tokKwNumber:
		c.emitf("\tNUM\n")
		return c.match(tokKwNumber)
	case tokKwString:
		c.emitf("\tSR\n")
		return c.match(tokKwString)
	case tokKwEmpty:
		c.emitf("\tSET\n")
		return c.match(tokKwEmpty)
	case tokDollar:
		if err := c.match(tokDollar); err != nil {
			return err
		}
		lab1 := c.newLabel()
		c.emitf("L%d\n", lab1)
		if err := c.ex3(); err != nil {
			return err
		}
		c.emitf("\tBT L%d\n", lab1)
		c.emitf("\tSET\n")
		return nil
	case tokLParen:
		if err := c.match(tokLParen); err != nil {
			return err
		}
		if err := c.ex1(); err != nil {
			return err
		}
		return c.match(tokRParen)
	default:
		return c.errorf("unexpected `%s'", c.text)
	}
}

// ex2 compiles a sequence. The leading recognizer branches to the end label
// on failure so the caller can try the next alternative; every later
// recognizer has committed and compiles to a BE check:
//
//	EX2 = (EX3 .OUT('BF ' *1) / OUTPUT)
//	      $(EX3 .OUT('BE') / OUTPUT)
//	      .LABEL *1 .,
func (c *compiler) ex2() error {
	lab1 := -1
	if c.tok == tokKwOut || c.tok == tokKwLabel {
		if err := c.output(); err != nil {
			return err
		}
	} else {
		if err := c.ex3(); err != nil {
			return err
		}
		lab1 = c.newLabel()
		c.emitf("\tBF L%d\n", lab1)
	}
	for c.tok != tokSlash && c.tok != tokSemi && c.tok != tokRParen {
		if c.tok == tokKwOut || c.tok == tokKwLabel {
			if err := c.output(); err != nil {
				return err
			}
		} else {
			if err := c.ex3(); err != nil {
				return err
			}
			c.emitf("\tBE\n")
		}
	}
	// a sequence that began with an output directive still gets an end
	// label, so that the layout matches the self-hosted compiler's
	if lab1 == -1 {
		lab1 = c.newLabel()
	}
	c.emitf("L%d\n", lab1)
	return nil
}

// ex1 compiles an alternation; success in any branch short-circuits to the
// join label:
//
//	EX1 = EX2 $('/' .OUT('BT ' *1) EX2)
//	      .LABEL *1 .,
func (c *compiler) ex1() error {
	if err := c.ex2(); err != nil {
		return err
	}
	lab1 := c.newLabel()
	for c.tok == tokSlash {
		if err := c.match(tokSlash); err != nil {
			return err
		}
		c.emitf("\tBT L%d\n", lab1)
		if err := c.ex2(); err != nil {
			return err
		}
	}
	c.emitf("L%d\n", lab1)
	return nil
}

// st compiles a syntax equation:
//
//	ST = .ID .LABEL * '=' EX1 '.,' .OUT('R') .,
func (c *compiler) st() error {
	if c.tok == tokID {
		c.emitf("%s\n", c.text)
	}
	if err := c.match(tokID); err != nil {
		return err
	}
	if err := c.match(tokEq); err != nil {
		return err
	}
	if err := c.ex1(); err != nil {
		return err
	}
	if err := c.match(tokSemi); err != nil {
		return err
	}
	c.emitf("\tR\n")
	return nil
}

// program compiles a complete translation unit:
//
//	PROGRAM = '.SYNTAX' .ID .OUT('ADR ' *)
//	          $ ST
//	          '.END' .OUT('END') .,
func (c *compiler) program() error {
	if err := c.match(tokKwSyntax); err != nil {
		return err
	}
	if c.tok == tokID {
		c.emitf("\tADR %s\n", c.text)
	}
	if err := c.match(tokID); err != nil {
		return err
	}
	for c.tok != tokKwEnd {
		if err := c.st(); err != nil {
			return err
		}
	}
	if err := c.match(tokKwEnd); err != nil {
		return err
	}
	c.emitf("\tEND\n")
	return c.match(tokEOF)
}
