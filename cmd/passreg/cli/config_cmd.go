package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}

	cmd.AddCommand(newConfigShowCmd())

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Long:  "Print the merged configuration (flags, environment, config file) with the signing secret redacted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := "(not set)"
			if jwtSecret() != "" {
				secret = "(redacted)"
			}

			effective := map[string]interface{}{
				"data_dir": resolveDataDir(),
				"server": map[string]interface{}{
					"host": hostSetting(),
					"port": portSetting(),
				},
				"auth": map[string]interface{}{
					"jwt_secret": secret,
					"token_ttl":  tokenTTL().String(),
				},
			}

			out, err := yaml.Marshal(effective)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
