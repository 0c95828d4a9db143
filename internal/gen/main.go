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

// Command gen stamps the runtime preludes embedded verbatim at the top of
// every emitted module (§4.4 item 1) into pkg/output/luau/{server,client},
// the same Entry/Template/BatchGenerator shape
// field/internal/generator/main.go uses to stamp field element files.
// Output is committed; re-run via `go generate ./internal/gen` after
// editing a prelude constant below.
package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/consensys/bavard"
)

const copyrightHolder = "Consensys Software Inc."

//go:generate go run main.go
func main() {
	bgen := bavard.NewBatchGenerator(copyrightHolder, 2025, "zapc")

	specs := []preludeSpec{
		{Package: "server", Prelude: serverPrelude},
		{Package: "client", Prelude: clientPrelude},
	}

	for _, spec := range specs {
		assertNoError(bgen.Generate(spec, spec.Package, "templates",
			bavard.Entry{
				File:      fmt.Sprintf("../../pkg/output/luau/%s/prelude_gen.go", spec.Package),
				Templates: []string{"prelude.go.tmpl"},
				BuildTag:  "",
			},
		), "for prelude %q", spec.Package)
	}

	runCmd("gofmt", "-w", "../../pkg/output/luau")
}

type preludeSpec struct {
	Package string
	Prelude string
}

func runCmd(name string, arg ...string) {
	fmt.Println(name, arg)

	cmd := exec.Command(name, arg...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	assertNoError(cmd.Run(), "running %s", name)
}

func assertNoError(err error, format string, args ...any) {
	if err != nil {
		panic(fmt.Sprintf(format, args...) + ": " + err.Error())
	}
}

// serverPrelude is embedded verbatim at the top of every emitted server
// module: the dev-mode short-circuit (§4.4 item 2) and the side check
// (§4.4 item 3) refusing to load on a client.
const serverPrelude = `--!strict
--!optimize 2
-- This file was generated by zapc. Do not edit it by hand; recompile the
-- schema instead.

local RunService = game:GetService("RunService")

if RunService:IsClient() then
	error("This module can only be required from the server")
end

if not RunService:IsRunning() then
	-- Studio edit mode: the live protocol never starts, so every surface
	-- method becomes a no-op rather than erroring under the cursor.
	local stub = setmetatable({}, {
		__index = function()
			return function() end
		end,
	})

	return stub
end

-- The 24 canonical axis-aligned orientations, indexed by the byte an
-- axis-aligned frame serializes to.
local CFRAME_SPECIAL_CASES = {}
for _, base in {
	CFrame.new(),
	CFrame.Angles(math.pi / 2, 0, 0),
	CFrame.Angles(math.pi, 0, 0),
	CFrame.Angles(-math.pi / 2, 0, 0),
	CFrame.Angles(0, 0, math.pi / 2),
	CFrame.Angles(0, 0, -math.pi / 2),
} do
	for i = 0, 3 do
		table.insert(CFRAME_SPECIAL_CASES, (base * CFrame.Angles(0, i * math.pi / 2, 0)).Rotation)
	end
end
`

// clientPrelude mirrors serverPrelude with the endpoint check inverted.
const clientPrelude = `--!strict
--!optimize 2
-- This file was generated by zapc. Do not edit it by hand; recompile the
-- schema instead.

local RunService = game:GetService("RunService")

if RunService:IsServer() then
	error("This module can only be required from the client")
end

if not RunService:IsRunning() then
	local stub = setmetatable({}, {
		__index = function()
			return function() end
		end,
	})

	return stub
end

-- The 24 canonical axis-aligned orientations, indexed by the byte an
-- axis-aligned frame serializes to.
local CFRAME_SPECIAL_CASES = {}
for _, base in {
	CFrame.new(),
	CFrame.Angles(math.pi / 2, 0, 0),
	CFrame.Angles(math.pi, 0, 0),
	CFrame.Angles(-math.pi / 2, 0, 0),
	CFrame.Angles(0, 0, math.pi / 2),
	CFrame.Angles(0, 0, -math.pi / 2),
} do
	for i = 0, 3 do
		table.insert(CFRAME_SPECIAL_CASES, (base * CFrame.Angles(0, i * math.pi / 2, 0)).Rotation)
	end
end
`
