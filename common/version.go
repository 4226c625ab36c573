// Copyright 2021-2022
// SPDX-License-Identifier: Apache-2.0
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

package common

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

const ProgramName = "hedgelab"

var (
	// commitHash and buildDate are set at link time by the mage build target
	commitHash string
	buildDate  string
)

// CurrentVersion of hedgelab
var CurrentVersion = Version{
	Major:  0,
	Minor:  3,
	Patch:  0,
	Suffix: "dev",
}

// Version is a SemVer 2.0.0 compatible build version. Suffix is empty for
// release builds.
type Version struct {
	Major  int
	Minor  int
	Patch  int
	Suffix string
}

func (v Version) String() string {
	metadata := ""
	preRelease := ""

	if v.Suffix != "" {
		preRelease = fmt.Sprintf("-%s", v.Suffix)
		if commitHash != "" {
			metadata = fmt.Sprintf("+%s", strings.ToLower(commitHash))
		}
	}

	return fmt.Sprintf("%d.%d.%d%s%s", v.Major, v.Minor, v.Patch, preRelease, metadata)
}

// BuildInfo describes the running binary
type BuildInfo struct {
	Program      string   `json:"program"`
	Version      string   `json:"version"`
	OSArch       string   `json:"os_arch"`
	GoVersion    string   `json:"go_version"`
	BuildDate    string   `json:"build_date"`
	Commit       string   `json:"commit"`
	Dependencies []string `json:"dependencies"`
}

func (bi BuildInfo) MarshalZerologObject(e *zerolog.Event) {
	e.Str("Program", bi.Program).
		Str("Version", bi.Version).
		Str("Commit", bi.Commit).
		Str("BuildDate", bi.BuildDate)
}

// dependencyList returns the module dependencies as sorted path="version"
// entries
func dependencyList() []string {
	deps := []string{}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return deps
	}

	for _, dep := range info.Deps {
		deps = append(deps, fmt.Sprintf("%s=%q", dep.Path, dep.Version))
	}

	sort.Strings(deps)
	return deps
}

// CurrentBuild collects the build information of the running binary
func CurrentBuild() BuildInfo {
	date := buildDate
	if date == "" {
		date = "unknown"
	}

	return BuildInfo{
		Program:      ProgramName,
		Version:      "v" + CurrentVersion.String(),
		OSArch:       runtime.GOOS + "/" + runtime.GOARCH,
		GoVersion:    runtime.Version(),
		BuildDate:    date,
		Commit:       commitHash,
		Dependencies: dependencyList(),
	}
}

// String renders the build information as shown by "hedgelab version"
func (bi BuildInfo) String() string {
	out := fmt.Sprintf(`%s %s %s

Build Date: %s
Commit: %s
Built with: %s`, bi.Program, bi.Version, bi.OSArch, bi.BuildDate, bi.Commit, bi.GoVersion)

	if len(bi.Dependencies) > 0 {
		out += "\n\nDependencies:\n\n" + strings.Join(bi.Dependencies, "\n")
	}
	return out
}
