package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/majorcontext/modsync/internal/credential"
	"github.com/majorcontext/modsync/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var loginUsername string

var loginCmd = &cobra.Command{
	Use:   "login <repository>",
	Short: "Store credentials for a private Maven repository",
	Long: `Store a username and password for a Maven repository in the system
keychain. modsync sends them as HTTP basic auth when listing versions from
that repository.

The password is read from the terminal without echo, or from stdin when
stdin is not a terminal.

Examples:
  modsync login https://maven.example.com/releases --username ci
  echo "$TOKEN" | modsync login https://maven.example.com/releases --username ci`,
	Args: cobra.ExactArgs(1),
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout <repository>",
	Short: "Remove stored credentials for a Maven repository",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := credential.NewKeyringStore().Delete(args[0]); err != nil {
			return err
		}
		ui.Printf("Removed credentials for %s\n", credential.NormalizeRepository(args[0]))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "repository username (prompted when omitted)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	repo := credential.NormalizeRepository(args[0])
	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	in := bufio.NewReader(os.Stdin)

	username := loginUsername
	if username == "" {
		if !interactive {
			return errors.New("--username is required when stdin is not a terminal")
		}
		fmt.Fprint(os.Stderr, "Username: ")
		line, err := readLine(in)
		if err != nil {
			return err
		}
		username = line
	}
	if username == "" {
		return errors.New("username must not be empty")
	}

	var password string
	if interactive {
		fmt.Fprint(os.Stderr, "Password: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
		password = string(raw)
	} else {
		line, err := readLine(in)
		if err != nil {
			return err
		}
		password = line
	}
	if password == "" {
		return errors.New("password must not be empty")
	}

	if dryRun {
		ui.Printf("Would store credentials for %s (user %s)\n", repo, username)
		return nil
	}
	if err := credential.NewKeyringStore().Save(credential.Credential{
		Repository: repo,
		Username:   username,
		Password:   password,
	}); err != nil {
		return err
	}
	ui.Printf("Stored credentials for %s\n", repo)
	return nil
}

// readLine reads one line, without its terminator. A final line without a
// newline is accepted.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
