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

	"github.com/jeremyhahn/go-biometric-storage/pkg/types"
)

// statusCmd reports authentication availability
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report authentication availability",
	Long: `Report whether an authentication challenge can currently succeed and
which biometric sensor classes are available.`,
	Run: func(cmd *cobra.Command, args []string) {
		app, err := newApp()
		if err != nil {
			handleError(err)
		}
		defer app.Close()

		status := app.Service.CanAuthenticate()
		fmt.Printf("Authentication: %s\n", status)

		biometrics := app.Service.AvailableBiometrics()
		if len(biometrics) == 0 {
			fmt.Println("Biometrics:     none")
			return
		}
		for i, b := range biometrics {
			if i == 0 {
				fmt.Printf("Biometrics:     %s\n", b)
			} else {
				fmt.Printf("                %s\n", b)
			}
		}
	},
}

// passcodeCmd manages the device passcode
var passcodeCmd = &cobra.Command{
	Use:   "passcode",
	Short: "Manage the device passcode",
}

// passcodeSetCmd enrolls or replaces the passcode
var passcodeSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set the device passcode",
	Run: func(cmd *cobra.Command, args []string) {
		app, err := newApp()
		if err != nil {
			handleError(err)
		}
		defer app.Close()

		fmt.Println("Choose a passcode")
		fmt.Print("Passcode: ")
		first, err := readSecret()
		if err != nil {
			handleError(err)
		}
		if first == "" {
			handleError(fmt.Errorf("passcode cannot be empty"))
		}
		fmt.Print("Confirm:  ")
		second, err := readSecret()
		if err != nil {
			handleError(err)
		}
		if first != second {
			handleError(fmt.Errorf("passcodes do not match"))
		}

		if err := app.Gate.SetPasscode(first); err != nil {
			handleError(err)
		}
		fmt.Println("Passcode set")
	},
}

// passcodeClearCmd removes the passcode
var passcodeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the device passcode",
	Run: func(cmd *cobra.Command, args []string) {
		app, err := newApp()
		if err != nil {
			handleError(err)
		}
		defer app.Close()

		if err := app.Gate.ClearPasscode(); err != nil {
			handleError(err)
		}
		fmt.Println("Passcode cleared")

		if app.Service.CanAuthenticate() == types.CanAuthenticatePasscodeNotSet {
			fmt.Println("Warning: stored values are unreadable until a passcode is set")
		}
	},
}

func init() {
	passcodeCmd.AddCommand(passcodeSetCmd)
	passcodeCmd.AddCommand(passcodeClearCmd)
}
