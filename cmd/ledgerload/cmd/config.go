package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

const maskedPassword = "********"

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration a run would use, after defaults, config file, environment and
flags are applied. The password is masked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if c.Fineract.Password != "" {
				c.Fineract.Password = maskedPassword
			}
			out, err := yaml.Marshal(c)
			if err != nil {
				return errors.WithStack(err)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), string(out))
			return err
		},
	}
	addConnectionFlags(cmd.Flags())
	cmd.Flags().StringP("scenario", "s", "", "Scenario to run")
	return cmd
}
