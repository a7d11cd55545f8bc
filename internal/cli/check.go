// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-seaccess.
//
// go-seaccess is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <uid> <package>",
	Short: "Check whether a {uid, package} combination may use the secure element",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		uid, err := strconv.Atoi(args[0])
		if err != nil || uid < 0 {
			handleError(fmt.Errorf("invalid uid %q", args[0]))
		}
		pkg := args[1]

		printVerbose("checking %s uid %d against %s", pkg, uid, serverURL)

		var resp struct {
			UID     int    `json:"uid"`
			Package string `json:"package"`
			Granted bool   `json:"granted"`
		}
		if err := newClient().postJSON("/api/v1/check",
			map[string]any{"uid": uid, "package": pkg}, &resp); err != nil {
			handleError(err)
		}

		if outputFormat == "json" {
			_ = json.NewEncoder(os.Stdout).Encode(resp)
		} else if resp.Granted {
			fmt.Printf("granted: %s (uid %d)\n", resp.Package, resp.UID)
		} else {
			fmt.Printf("denied: %s (uid %d)\n", resp.Package, resp.UID)
		}

		// Shell-friendly: denied checks exit non-zero.
		if !resp.Granted {
			os.Exit(2)
		}
	},
}
