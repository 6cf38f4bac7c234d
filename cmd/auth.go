package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/teemow/inboxreview/internal/config"
	"github.com/teemow/inboxreview/internal/google"
	"github.com/teemow/inboxreview/internal/review"
)

func newAuthCmd() *cobra.Command {
	var (
		account  string
		code     string
		tokenDir string
	)

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize access to Google Tasks",
		Long: `Run the OAuth flow for the Google Tasks backend and store the resulting
token for the given account. The OAuth client is read from the
GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET credentials.

Open the printed URL, grant access and paste the authorization code back,
or pass it directly with --code.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(path, cmd.Flags())
			if err != nil {
				return err
			}
			if account == "" {
				account = cfg.GTasks.Account
			}
			if tokenDir == "" {
				tokenDir = cfg.GTasks.TokenDir
			}

			store := newSecretStore(cfg)
			creds, err := review.LoadCredentials(store, googleClientIDKey, googleClientSecretKey)
			if err != nil {
				return err
			}
			conf := google.NewOAuthConfig(creds[googleClientIDKey], creds[googleClientSecretKey])

			if code == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Go to the following link in your browser:\n\n%s\n\nEnter the authorization code: ",
					conf.AuthCodeURL("state", oauth2.AccessTypeOffline))
				scanner := bufio.NewScanner(cmd.InOrStdin())
				if !scanner.Scan() {
					if err := scanner.Err(); err != nil {
						return fmt.Errorf("failed to read authorization code: %w", err)
					}
					return fmt.Errorf("no authorization code entered")
				}
				code = strings.TrimSpace(scanner.Text())
			}

			tokens := google.NewTokenStore(tokenDir)
			if err := google.Exchange(cmd.Context(), conf, tokens, account, code); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Token for account %q saved to %s\n", account, tokens.Path(account))
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "Google account name (default: gtasks.account from the configuration)")
	cmd.Flags().StringVar(&code, "code", "", "Authorization code, skips the interactive prompt")
	cmd.Flags().StringVar(&tokenDir, "token-dir", "", "Directory for token files (default: gtasks.token_dir, then the user cache dir)")
	return cmd
}
