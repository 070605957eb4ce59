package auth

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"

	"golang.org/x/term"
)

// CodeHandler supplies a verification code when a login requires a second
// factor. Implementations may prompt a human or fetch from a TOTP source.
type CodeHandler func(username string) (string, error)

var codePattern = regexp.MustCompile(`^\d{6}$`)

// TerminalCodeHandler prompts for the six-digit code on the controlling
// terminal, hiding input when stdin is a TTY.
func TerminalCodeHandler(username string) (string, error) {
	for attempt := 0; attempt < 3; attempt++ {
		fmt.Fprintf(os.Stderr, "Enter the verification code for %s: ", username)
		var code string
		if term.IsTerminal(int(os.Stdin.Fd())) {
			raw, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Fprintln(os.Stderr)
			if err != nil {
				return "", fmt.Errorf("failed to read code: %w", err)
			}
			code = string(raw)
		} else {
			reader := bufio.NewReader(os.Stdin)
			line, err := reader.ReadString('\n')
			if err != nil {
				return "", fmt.Errorf("failed to read code: %w", err)
			}
			code = line
		}
		code = strings.TrimSpace(code)
		if codePattern.MatchString(code) {
			return code, nil
		}
		fmt.Fprintln(os.Stderr, "The code must be six digits.")
	}
	return "", fmt.Errorf("no valid verification code entered")
}
