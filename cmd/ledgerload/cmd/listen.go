package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ledgerload/ledgerload/internal/ledgerload/resultstream"
)

func listenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Print the ledger's command result stream",
		Long: `Connect to the websocket endpoint on which the ledger publishes command results,
authenticate with the configured tenant and credentials, and print every message until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if c.ResultStream.Url == "" {
				return errors.New("no result stream url configured, set resultStream.url or --result-stream-url")
			}
			origin, err := cmd.Flags().GetString("origin")
			if err != nil {
				return errors.WithStack(err)
			}
			listener := &resultstream.Listener{
				URL:                c.ResultStream.Url,
				TenantID:           c.Fineract.TenantId,
				Username:           c.Fineract.Username,
				Password:           c.Fineract.Password,
				Origin:             origin,
				InsecureSkipVerify: c.Fineract.InsecureSkipVerify,
			}
			out := cmd.OutOrStdout()
			return listener.Listen(cmd.Context(), func(msg []byte) {
				_, _ = fmt.Fprintln(out, string(msg))
			}, nil)
		},
	}
	addConnectionFlags(cmd.Flags())
	cmd.Flags().String("result-stream-url", "", "Websocket URL of the result stream, e.g. wss://host/fineract-provider/camel/fineract-result")
	cmd.Flags().String("origin", "", "Origin header to send with the handshake")
	return cmd
}
