// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package irgen

// Stmt is the sum of every statement the codec generator emits, mirroring
// the abstract "machine instruction" shape of pkg/asm.Instruction in the
// teacher: a closed, flat set of concrete kinds rather than a nested
// expression tree (see DESIGN.md).
//
// Per §9, the stream is flat with explicit block terminators rather than
// nested blocks: NumForBegin, GenForBegin and BranchBegin each open a
// frame, and a single End closes whichever frame is innermost. An Else may
// appear once, only while a BranchBegin frame is innermost and still open.
// An emitter recovers indentation with a frame counter, pushing on every
// Begin and popping on every End; it never needs to know which kind of
// frame it is closing.
type Stmt interface {
	isStmt()
}

// LocalBind declares one or more new locals: `local a, b = e1, e2`. A
// single-name bind is simply len(Names) == 1.
type LocalBind struct {
	Names  []string
	Values []Expr
}

// Assign writes to one or more existing lvalues: `a, b = e1, e2`.
type Assign struct {
	Targets []Expr
	Values  []Expr
}

// CallStmt is a call used for its side effect, not its result.
type CallStmt struct {
	Call Expr
}

// NumForBegin opens a numeric for-loop frame: `for Var = From, To[, Step] do`.
// Step is nil for the implicit step of 1.
type NumForBegin struct {
	Var      string
	From, To Expr
	Step     Expr
}

// GenForBegin opens a generic for-loop frame: `for v1, v2 in Iter do`.
type GenForBegin struct {
	Vars []string
	Iter Expr
}

// BranchBegin opens a conditional frame: `if Cond then`.
type BranchBegin struct {
	Cond Expr
}

// Else marks the else arm of the innermost open BranchBegin frame.
type Else struct{}

// End closes whichever frame is innermost.
type End struct{}

// Assert raises Message (via Luau's `assert`) when Cond is false. Used for
// write_checks range assertions and the canonical-table/class-predicate
// checks on platform values.
type Assert struct {
	Cond    Expr
	Message string
}

// Raise unconditionally aborts the current message with Message (via
// Luau's `error`). Enum codecs emit it as the final else of their variant
// dispatch: a serializer meeting an unknown variant or enumerator, or a
// deserializer meeting a tag out of range. Range and length checks use
// Assert instead. The deserializer never returns a partially initialized
// aggregate once this has been emitted (§4.3).
type Raise struct {
	Message string
}

// Return yields zero or more values from the enclosing function.
type Return struct {
	Values []Expr
}

// Break exits the innermost open loop frame.
type Break struct{}

func (LocalBind) isStmt()   {}
func (Assign) isStmt()      {}
func (CallStmt) isStmt()    {}
func (NumForBegin) isStmt() {}
func (GenForBegin) isStmt() {}
func (BranchBegin) isStmt() {}
func (Else) isStmt()        {}
func (End) isStmt()         {}
func (Assert) isStmt()      {}
func (Raise) isStmt()       {}
func (Return) isStmt()      {}
func (Break) isStmt()       {}

// Bind builds a single-name LocalBind.
func Bind(name string, value Expr) Stmt {
	return LocalBind{Names: []string{name}, Values: []Expr{value}}
}

// Set builds a single-target Assign.
func Set(target, value Expr) Stmt {
	return Assign{Targets: []Expr{target}, Values: []Expr{value}}
}
