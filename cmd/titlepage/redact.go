// cmd/titlepage/redact.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/damianoneill/go-titlepage/pkg/domain/redact"
)

func newMaskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mask <value>...",
		Short: "Partially mask values",
		Long: `Print each value partially masked. IPv4 addresses keep their outer digits,
e-mail addresses keep parts of the local name and domain, anything else
keeps a few leading and trailing characters.`,
		Example: `  titlepage mask 192.168.10.234 john.doe@gmail.com`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, value := range args {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), redact.MaskValue(value)); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newObfuscateCmd() *cobra.Command {
	var (
		full        bool
		revealLocal bool
	)

	cmd := &cobra.Command{
		Use:     "obfuscate <connection-string>",
		Short:   "Obfuscate a database connection string",
		Example: `  titlepage obfuscate "Server=tcp:db.example.net,1433;Database=Prod;User Id=admin;Password=x"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o := redact.Obfuscator{RevealLocalPassword: revealLocal}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), o.Obfuscate(args[0], !full))
			return err
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "hide server, database and user instead of masking them")
	cmd.Flags().BoolVar(&revealLocal, "reveal-local-password", false, "show the password when the server is local")

	return cmd
}
