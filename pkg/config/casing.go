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
package config

// MethodName is the closed set of surface method names whose spelling
// varies with the `casing` option. Grounded in zap/src/util.rs's casing()
// helper (SPEC_FULL.md §4): only a fixed set of method names is ever cased,
// so each is a precomputed literal per Casing value rather than a generic
// string transform.
type MethodName uint8

// The surface method names §4.4/§4.2 name by Casing-sensitive spelling.
const (
	MethodFire MethodName = iota
	MethodFireAll
	MethodFireExcept
	MethodFireList
	MethodFireSet
	MethodSetCallback
	MethodOn
	MethodCall
)

var methodNames = map[MethodName]map[Casing]string{
	MethodFire: {
		Pascal: "Fire",
		Camel:  "fire",
		Snake:  "fire",
	},
	MethodFireAll: {
		Pascal: "FireAll",
		Camel:  "fireAll",
		Snake:  "fire_all",
	},
	MethodFireExcept: {
		Pascal: "FireExcept",
		Camel:  "fireExcept",
		Snake:  "fire_except",
	},
	MethodFireList: {
		Pascal: "FireList",
		Camel:  "fireList",
		Snake:  "fire_list",
	},
	MethodFireSet: {
		Pascal: "FireSet",
		Camel:  "fireSet",
		Snake:  "fire_set",
	},
	MethodSetCallback: {
		Pascal: "SetCallback",
		Camel:  "setCallback",
		Snake:  "set_callback",
	},
	MethodOn: {
		Pascal: "On",
		Camel:  "on",
		Snake:  "on",
	},
	MethodCall: {
		Pascal: "Call",
		Camel:  "call",
		Snake:  "call",
	},
}

// Name returns the spelling of m under casing, defaulting to the Pascal
// spelling if casing is somehow unrecognized (the converter already rejects
// any value outside {Pascal, Camel, Snake} at option-resolution time).
func (c Casing) Name(m MethodName) string {
	if s, ok := methodNames[m][c]; ok {
		return s
	}

	return methodNames[m][Pascal]
}
