package vault

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// secretFilePath is where container orchestration mounts the master password.
const secretFilePath = "/run/secrets/master_password"

// MasterPasswordEnv is the environment variable holding the master password.
const MasterPasswordEnv = "LOTTO_MASTER_PASSWORD"

// ResolveMasterPassword finds the master password for non-interactive use.
//
// Resolution order: explicit value (CLI flag) > LOTTO_MASTER_PASSWORD >
// the container secret file. When interactive is true and nothing else
// matched, the user is prompted on the terminal without echo.
func ResolveMasterPassword(explicit string, interactive bool) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	if pw := os.Getenv(MasterPasswordEnv); pw != "" {
		return pw, nil
	}

	if data, err := os.ReadFile(secretFilePath); err == nil {
		if pw := strings.TrimSpace(string(data)); pw != "" {
			return pw, nil
		}
	}

	if interactive && term.IsTerminal(int(os.Stdin.Fd())) {
		return PromptPassword("Master password: ")
	}

	return "", fmt.Errorf("vault: no master password available; set %s or pass --master-password", MasterPasswordEnv)
}

// PromptPassword reads a password from the terminal without echoing it.
func PromptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	data, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("vault: failed to read password: %w", err)
	}
	return string(data), nil
}
