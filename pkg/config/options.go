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

// Casing selects the identifier casing applied to generated surface method
// names (fire/on/set_callback/...). Values are precomputed per call site
// rather than derived by a generic case-converter (see DESIGN.md).
type Casing string

// Recognized casing values.
const (
	Pascal Casing = "Pascal"
	Camel  Casing = "camel"
	Snake  Casing = "snake_case"
)

// YieldType selects the shape of a function call's return on the caller
// side (§4.2).
type YieldType string

// Recognized yield types.
const (
	YieldYield   YieldType = "yield"
	YieldPromise YieldType = "promise"
	YieldFuture  YieldType = "future"
)

// Options is the flat, enumerated-key record of §9 ("Options as a flat
// record with an enumerated recognized set ... not a dynamic bag").
type Options struct {
	Typescript               bool
	TypescriptMaxTupleLength int
	Tooling                  bool
	ToolingShowInternalData  bool
	WriteChecks              bool
	ManualEventLoop          bool
	RemoteScope              string
	RemoteFolder             string
	ServerOutput             string
	ClientOutput             string
	ToolingOutput            string
	Casing                   Casing
	YieldType                YieldType
	AsyncLib                 string
	DisableFireAll           bool
}

// DefaultOptions returns the option set in effect before any `opt`
// declaration is applied (§4.2 table, "Default" column).
func DefaultOptions() Options {
	return Options{
		TypescriptMaxTupleLength: 10,
		WriteChecks:              true,
		RemoteScope:              "ZAP",
		RemoteFolder:             "ZAP",
		ServerOutput:             "network/server.luau",
		ClientOutput:             "network/client.luau",
		ToolingOutput:            "network/tooling.luau",
		Casing:                   Pascal,
		YieldType:                YieldYield,
	}
}

// recognizedOptions is consulted by the converter to diagnose unknown
// option names (§4.2: "Unknown option names are warnings").
var recognizedOptions = map[string]bool{
	"typescript": true, "typescript_max_tuple_length": true,
	"tooling": true, "tooling_show_internal_data": true,
	"write_checks": true, "manual_event_loop": true,
	"remote_scope": true, "remote_folder": true,
	"server_output": true, "client_output": true, "tooling_output": true,
	"casing": true, "yield_type": true, "async_lib": true,
	"disable_fire_all": true,
}
