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
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/jeremyhahn/go-biometric-storage/pkg/authgate"
	"github.com/jeremyhahn/go-biometric-storage/pkg/authgate/credential"
)

// terminalPasscodeReader collects a passcode attempt from the terminal
// without echoing. An empty line cancels the prompt.
func terminalPasscodeReader(ctx context.Context, challenge *authgate.Challenge, attempt int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if attempt == 1 {
		fmt.Fprintf(os.Stderr, "%s\n", challenge.Title)
		if challenge.Description != "" {
			fmt.Fprintf(os.Stderr, "%s\n", challenge.Description)
		}
	} else {
		fmt.Fprintf(os.Stderr, "Incorrect passcode, try again (attempt %d)\n", attempt)
	}
	fmt.Fprint(os.Stderr, "Passcode (empty to cancel): ")

	passcode, err := readSecret()
	if err != nil {
		return "", err
	}
	if passcode == "" {
		return "", credential.ErrPromptCanceled
	}
	return passcode, nil
}

// readSecret reads one line from stdin, without echo when stdin is a
// terminal.
func readSecret() (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
