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
	"fmt"

	"github.com/spf13/cobra"
)

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Inspect and reload the access policy",
}

var policyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Dump the active whitelist and verdict cache",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		dump, err := newClient().getText("/api/v1/policy")
		if err != nil {
			handleError(err)
		}
		fmt.Print(dump)
	},
}

var policyReloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Re-read the policy document and swap in the new whitelist",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := newClient().postJSON("/api/v1/policy/reload", nil, nil); err != nil {
			handleError(err)
		}
		fmt.Println("policy reloaded")
	},
}

func init() {
	policyCmd.AddCommand(policyShowCmd)
	policyCmd.AddCommand(policyReloadCmd)
}
