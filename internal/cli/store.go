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
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-biometric-storage/pkg/biostorage"
	"github.com/jeremyhahn/go-biometric-storage/pkg/types"
)

// promptFromFlags builds the prompt configuration for a command.
func promptFromFlags(cmd *cobra.Command, defaultTitle string) *types.PromptConfig {
	title, _ := cmd.Flags().GetString("title")
	subtitle, _ := cmd.Flags().GetString("subtitle")
	description, _ := cmd.Flags().GetString("description")
	if title == "" {
		title = defaultTitle
	}
	prompt := types.DefaultPromptConfig(title)
	prompt.Subtitle = subtitle
	prompt.Description = description
	// The CLI authenticates with the device passcode.
	prompt.AllowDeviceCredential = true
	return prompt
}

func addPromptFlags(cmd *cobra.Command) {
	cmd.Flags().String("title", "", "authentication prompt title")
	cmd.Flags().String("subtitle", "", "authentication prompt subtitle")
	cmd.Flags().String("description", "", "authentication prompt description")
}

// writeCmd stores a value under a name
var writeCmd = &cobra.Command{
	Use:   "write <name> [content]",
	Short: "Encrypt and store a value under a name",
	Long: `Encrypt content under the name's key and persist it. When content is
omitted it is read from stdin. The key is created on first use and an
authentication challenge is presented unless the validity window from
a previous authentication is still open.`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		name := args[0]

		var content string
		if len(args) == 2 {
			content = args[1]
		} else {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				handleError(fmt.Errorf("failed to read content from stdin: %w", err))
			}
			content = string(data)
		}

		app, err := newApp()
		if err != nil {
			handleError(err)
		}
		defer app.Close()

		prompt := promptFromFlags(cmd, fmt.Sprintf("Store %q", name))
		if err := app.Service.Write(context.Background(), name, content, prompt); err != nil {
			handleError(fmt.Errorf("write failed (%s): %w", biostorage.CodeOf(err), err))
		}
		fmt.Printf("Stored %q\n", name)
	},
}

// readCmd retrieves and decrypts a stored value
var readCmd = &cobra.Command{
	Use:   "read <name>",
	Short: "Read and decrypt a stored value",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := args[0]

		app, err := newApp()
		if err != nil {
			handleError(err)
		}
		defer app.Close()

		prompt := promptFromFlags(cmd, fmt.Sprintf("Read %q", name))
		result, err := app.Service.Read(context.Background(), name, prompt)
		if err != nil {
			handleError(fmt.Errorf("read failed (%s): %w", biostorage.CodeOf(err), err))
		}

		switch result.Status {
		case biostorage.ReadSucceeded:
			fmt.Print(result.Content)
		case biostorage.ReadFileNotExist:
			fmt.Fprintf(os.Stderr, "Nothing stored under %q\n", name)
			os.Exit(2)
		case biostorage.ReadBiometricDataChanged:
			fmt.Fprintf(os.Stderr, "Enrollment changed since %q was stored; the value was removed\n", name)
			os.Exit(3)
		}
	},
}

// deleteCmd removes a stored value and its key
var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a stored value and its key",
	Long: `Delete the value stored under name along with its key. Deleting a
name that does not exist succeeds.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := args[0]

		app, err := newApp()
		if err != nil {
			handleError(err)
		}
		defer app.Close()

		if err := app.Service.Delete(context.Background(), name); err != nil {
			handleError(fmt.Errorf("delete failed (%s): %w", biostorage.CodeOf(err), err))
		}
		fmt.Printf("Deleted %q\n", name)
	},
}

// existsCmd reports whether a value is stored under a name
var existsCmd = &cobra.Command{
	Use:   "exists <name>",
	Short: "Check whether a value is stored under a name",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := args[0]

		app, err := newApp()
		if err != nil {
			handleError(err)
		}
		defer app.Close()

		ok, err := app.Service.Exists(context.Background(), name)
		if err != nil {
			handleError(fmt.Errorf("exists check failed (%s): %w", biostorage.CodeOf(err), err))
		}
		if !ok {
			fmt.Println("not found")
			os.Exit(2)
		}
		fmt.Println("exists")
	},
}

func init() {
	addPromptFlags(writeCmd)
	addPromptFlags(readCmd)
}
