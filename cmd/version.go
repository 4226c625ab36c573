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

package cmd

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hedgelab/hedgelab/common"
)

var (
	deps        bool
	versionJSON bool
)

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().BoolVar(&deps, "deps", false, "print dependencies")
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "print build information as JSON")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Print the version number`,
	Run: func(cmd *cobra.Command, args []string) {
		info := common.CurrentBuild()
		if !deps {
			info.Dependencies = nil
		}

		if versionJSON {
			out, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				log.Fatal().Err(err).Msg("could not marshal build info")
			}
			fmt.Println(string(out))
			return
		}

		fmt.Println(info.String())
	},
}
