// Copyright (c) 2026 Jeremy Hahn
// Copyright (c) 2026 Automate The Things, LLC
//
// This file is part of go-biometric-storage.
//
// go-biometric-storage is dual-licensed:
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

// biometricCmd manages the simulated biometric enrollment registry.
// Enrolling or removing an identity bumps the enrollment generation,
// which invalidates keys created with invalidate_on_enrollment.
var biometricCmd = &cobra.Command{
	Use:   "biometric",
	Short: "Manage enrolled biometric identities",
}

// biometricEnrollCmd enrolls a biometric identity
var biometricEnrollCmd = &cobra.Command{
	Use:   "enroll <id>",
	Short: "Enroll a biometric identity",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app, err := newApp()
		if err != nil {
			handleError(err)
		}
		defer app.Close()

		if err := app.Enrollment.Enroll(args[0]); err != nil {
			handleError(err)
		}
		fmt.Printf("Enrolled %q\n", args[0])
	},
}

// biometricRemoveCmd removes a biometric identity
var biometricRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove an enrolled biometric identity",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app, err := newApp()
		if err != nil {
			handleError(err)
		}
		defer app.Close()

		if err := app.Enrollment.Remove(args[0]); err != nil {
			handleError(err)
		}
		fmt.Printf("Removed %q\n", args[0])
	},
}

// biometricListCmd lists enrolled identities
var biometricListCmd = &cobra.Command{
	Use:   "list",
	Short: "List enrolled biometric identities",
	Run: func(cmd *cobra.Command, args []string) {
		app, err := newApp()
		if err != nil {
			handleError(err)
		}
		defer app.Close()

		enrolled := app.Enrollment.Enrolled()
		if len(enrolled) == 0 {
			fmt.Println("No biometric identities enrolled")
			return
		}
		for _, id := range enrolled {
			fmt.Println(id)
		}
	},
}

func init() {
	biometricCmd.AddCommand(biometricEnrollCmd)
	biometricCmd.AddCommand(biometricRemoveCmd)
	biometricCmd.AddCommand(biometricListCmd)
}
