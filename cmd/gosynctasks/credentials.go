package main

import (
	"fmt"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"gosynctasks/internal/config"
	"gosynctasks/internal/credentials"
)

func newCredentialsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Manage provider API tokens",
		Long: `Securely manage the API tokens reconcile uses to authenticate
against a provider, stored using the system keyring.

Tokens can come from three sources (in priority order):
  1. System keyring (most secure) - recommended
  2. Environment variables (good for CI/CD)
  3. The provider's api_token config field (least secure)

Examples:
  # Store a token in the keyring (interactive prompt)
  gosynctasks credentials set work --prompt

  # Check where a provider's token is coming from
  gosynctasks credentials get work

  # Remove a token from the keyring
  gosynctasks credentials delete work`,
	}

	cmd.AddCommand(newCredentialsSetCmd())
	cmd.AddCommand(newCredentialsGetCmd())
	cmd.AddCommand(newCredentialsDeleteCmd())

	return cmd
}

// resolveProviderUsername looks up providerName in the config's
// Providers map and returns its configured Username, falling back to
// "token" (the astridsync convention for bearer-token-only APIs) when
// unset.
func resolveProviderUsername(providerName string) (string, error) {
	cfg := config.GetConfig()
	providerCfg, ok := cfg.Providers[providerName]
	if !ok {
		return "", fmt.Errorf("provider %q not found in configuration", providerName)
	}
	if providerCfg.Username != "" {
		return providerCfg.Username, nil
	}
	return "token", nil
}

func newCredentialsSetCmd() *cobra.Command {
	var promptToken bool

	cmd := &cobra.Command{
		Use:   "set <provider> [username] [token]",
		Short: "Store a provider's API token in the system keyring",
		Long: `Store a provider's API token securely in the system keyring.

If username is not provided, it is taken from the provider's config
entry (or "token" if that is unset too). If --prompt is given, the
token is read interactively instead of appearing on the command line.

Examples:
  # Interactive token prompt (most secure)
  gosynctasks credentials set work --prompt

  # Non-interactive (less secure - token visible in shell history)
  gosynctasks credentials set work token abc123`,
		Args: cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			providerName := args[0]

			username, err := resolveProviderUsername(providerName)
			if err != nil {
				return err
			}
			if len(args) >= 2 {
				username = args[1]
			}

			var token string
			switch {
			case promptToken:
				fmt.Printf("Enter API token for %s@%s: ", username, providerName)
				tokenBytes, err := term.ReadPassword(int(syscall.Stdin))
				fmt.Println()
				if err != nil {
					return fmt.Errorf("failed to read token: %w", err)
				}
				token = string(tokenBytes)
				if token == "" {
					return fmt.Errorf("token cannot be empty")
				}
			case len(args) >= 3:
				token = args[2]
			default:
				return fmt.Errorf("token is required (use --prompt for interactive input)")
			}

			if err := credentials.Set(providerName, username, token); err != nil {
				if !credentials.IsAvailable() {
					envName := strings.ToUpper(strings.ReplaceAll(providerName, "-", "_"))
					return fmt.Errorf("system keyring is not available. Try environment variables instead:\n  export GOSYNCTASKS_%s_USERNAME=%s\n  export GOSYNCTASKS_%s_PASSWORD=<token>",
						envName, username, envName)
				}
				return err
			}

			fmt.Printf("Token stored for %s@%s\n", username, providerName)
			return nil
		},
	}

	cmd.Flags().BoolVar(&promptToken, "prompt", false, "prompt for the token interactively (recommended)")

	return cmd
}

func newCredentialsGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <provider> [username]",
		Short: "Show where a provider's token is coming from",
		Long: `Report whether the keyring or environment variables supply a
provider's token, and which of the two, without printing the token
itself. A token set only in the provider's api_token config field is
not detected here.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			providerName := args[0]

			username, err := resolveProviderUsername(providerName)
			if err != nil {
				return err
			}
			if len(args) >= 2 {
				username = args[1]
			}

			resolver := credentials.NewResolver()
			creds, err := resolver.Resolve(providerName, username, "", nil)
			if err != nil {
				fmt.Printf("No token found for provider %q\n", providerName)
				fmt.Println("\nOptions:")
				fmt.Printf("  1. Store in keyring:      gosynctasks credentials set %s %s --prompt\n", providerName, username)
				envName := strings.ToUpper(strings.ReplaceAll(providerName, "-", "_"))
				fmt.Printf("  2. Set env vars:          export GOSYNCTASKS_%s_USERNAME=%s GOSYNCTASKS_%s_PASSWORD=<token>\n", envName, username, envName)
				fmt.Println("  3. Fall back to config:   set \"api_token\" on the provider entry")
				return err
			}

			fmt.Printf("Token found for provider %q\n", providerName)
			fmt.Printf("  Username: %s\n", creds.Username)
			fmt.Printf("  Source: %s\n", creds.Source)

			switch creds.Source {
			case credentials.SourceKeyring:
				fmt.Println("Using secure keyring storage (recommended)")
			case credentials.SourceEnv:
				fmt.Println("Using environment variables; consider migrating to the keyring:")
				fmt.Printf("  gosynctasks credentials set %s %s --prompt\n", providerName, creds.Username)
			}

			return nil
		},
	}

	return cmd
}

func newCredentialsDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <provider> [username]",
		Short: "Remove a provider's token from the system keyring",
		Long: `Remove a stored token from the system keyring. Tokens supplied
via environment variables or the provider's config entry are unaffected.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			providerName := args[0]

			username, err := resolveProviderUsername(providerName)
			if err != nil {
				return err
			}
			if len(args) >= 2 {
				username = args[1]
			}

			if !force {
				fmt.Printf("Delete keyring token for %s@%s? [y/N]: ", username, providerName)
				var response string
				n, err := fmt.Scanln(&response)
				if err != nil || n == 0 {
					fmt.Println("Cancelled")
					return nil
				}
				response = strings.ToLower(strings.TrimSpace(response))
				if response != "y" && response != "yes" {
					fmt.Println("Cancelled")
					return nil
				}
			}

			if err := credentials.Delete(providerName, username); err != nil {
				return err
			}

			fmt.Printf("Token removed for %s@%s\n", username, providerName)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "skip confirmation prompt")

	return cmd
}
