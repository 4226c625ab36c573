//go:build mage

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

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binaryName = "hedgelab"
	modulePath = "github.com/hedgelab/hedgelab"
	coverFile  = "coverage.out"
)

var ldflags = "-X " + modulePath + "/common.commitHash=$COMMIT_HASH -X " + modulePath + "/common.buildDate=$BUILD_DATE"

// GOEXE overrides the go executable
var goexe = "go"

func init() {
	if exe := os.Getenv("GOEXE"); exe != "" {
		goexe = exe
	}
}

// Build the hedgelab binary with the commit hash and build date stamped in
func Build() error {
	fmt.Println("Building...")
	return sh.RunWith(versionEnv(), goexe, "build", "-o", binaryName, "-ldflags", ldflags, ".")
}

// Install hedgelab into GOPATH/bin
func Install() error {
	return sh.RunWith(versionEnv(), goexe, "install", "-ldflags", ldflags, ".")
}

// Clean removes build and coverage artifacts
func Clean() {
	fmt.Println("Cleaning...")
	os.RemoveAll(binaryName)
	os.RemoveAll(coverFile)
}

// Check runs the formatter check, vet and the race enabled tests
func Check() {
	mg.Deps(Fmt, Vet)
	mg.Deps(TestRace)
}

// Test runs the ginkgo suites of every package
func Test() error {
	fmt.Println("Go Test")
	return runQuiet(goexe, "test", "./...")
}

// TestRace runs the tests with the race detector; the hedge command fans out
// over index files
func TestRace() error {
	fmt.Println("Go Test Race")
	return runQuiet(goexe, "test", "-race", "./...")
}

// Fmt fails when a package has files gofmt would change
func Fmt() error {
	fmt.Println("Go Format")

	dirs, err := packageDirs()
	if err != nil {
		return err
	}

	var unformatted []string
	for _, dir := range dirs {
		// gofmt recurses into directories, so pass the package files only
		files, err := filepath.Glob(filepath.Join(dir, "*.go"))
		if err != nil || len(files) == 0 {
			continue
		}
		out, err := sh.Output("gofmt", append([]string{"-l"}, files...)...)
		if err != nil {
			return fmt.Errorf("gofmt %s: %w", dir, err)
		}
		if out != "" {
			unformatted = append(unformatted, strings.Split(out, "\n")...)
		}
	}

	if len(unformatted) > 0 {
		fmt.Println("The following files are not gofmt'ed:")
		fmt.Println(strings.Join(unformatted, "\n"))
		return errors.New("improperly formatted go files")
	}
	return nil
}

// Vet runs go vet over the module
func Vet() error {
	fmt.Println("Go Vet")
	if err := sh.Run(goexe, "vet", "./..."); err != nil {
		return fmt.Errorf("error running go vet: %v", err)
	}
	return nil
}

// TestCoverHTML opens an HTML coverage report of the whole module
func TestCoverHTML() error {
	fmt.Println("Generate Test Coverage HTML")
	if err := runQuiet(goexe, "test", "-coverprofile="+coverFile, "-covermode=count", "-coverpkg=./...", "./..."); err != nil {
		return err
	}
	return sh.Run(goexe, "tool", "cover", "-html="+coverFile)
}

func versionEnv() map[string]string {
	hash, _ := sh.Output("git", "rev-parse", "--short", "HEAD")
	return map[string]string{
		"COMMIT_HASH": hash,
		"BUILD_DATE":  time.Now().Format("2006-01-02T15:04:05Z0700"),
	}
}

// runQuiet only prints the command output when it fails, unless mage runs
// verbose
func runQuiet(cmd string, args ...string) error {
	if mg.Verbose() {
		return sh.Run(cmd, args...)
	}
	out, err := sh.Output(cmd, args...)
	if err != nil {
		fmt.Fprint(os.Stderr, out)
	}
	return err
}

// packageDirs lists the directories of the module's packages relative to
// the module root
func packageDirs() ([]string, error) {
	out, err := sh.Output(goexe, "list", "-f", "{{.Dir}}", "./...")
	if err != nil {
		return nil, err
	}

	root, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	var dirs []string
	for _, dir := range strings.Split(out, "\n") {
		rel, err := filepath.Rel(root, dir)
		if err != nil {
			return nil, err
		}
		dirs = append(dirs, rel)
	}
	return dirs, nil
}
