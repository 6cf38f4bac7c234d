package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teemow/inboxreview/internal/config"
	"github.com/teemow/inboxreview/internal/secrets"
)

func newConfigCmd() *cobra.Command {
	var checkCredentials bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration after defaults, the config file, INBOXREVIEW_*
environment variables and flags have been applied. Credentials are shown by
name only; --check-credentials reports whether each one can be found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(path, cmd.Flags())
			if err != nil {
				return err
			}

			settings := cfg.Settings()
			if checkCredentials {
				a := &app{cfg: cfg, store: newSecretStore(cfg)}
				status := make(map[string]string)
				for _, name := range a.credentialNames() {
					status[name] = credentialStatus(a.store, name)
				}
				settings["credential_status"] = status
			}

			out, err := yaml.Marshal(settings)
			if err != nil {
				return fmt.Errorf("failed to encode configuration: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().BoolVar(&checkCredentials, "check-credentials", false, "Report whether each required credential is available")
	return cmd
}

func credentialStatus(store secrets.Store, name string) string {
	_, err := store.Get(name)
	switch {
	case err == nil:
		return "found"
	case errors.Is(err, secrets.ErrNotFound):
		return "missing"
	default:
		return "unreadable"
	}
}
