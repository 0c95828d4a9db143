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

// Package client emits the Luau module loaded by the client (§4.4): a
// thin wrapper around pkg/output/luau's shared endpoint logic, bound to
// config.Client and this package's embedded Prelude.
package client

import (
	"github.com/netschema/zapc/pkg/config"
	"github.com/netschema/zapc/pkg/output/luau"
)

// Emit renders the complete client module source for cfg.
func Emit(cfg *config.Config) string {
	return luau.Emit(cfg, config.Client, Prelude)
}
