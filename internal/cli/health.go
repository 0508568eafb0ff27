package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/courtside/internal/api/response"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Health
			if err := client.Get("/api/v1/health", &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	}
}

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the stored bearer token",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "save <token>",
		Short: "Store a token issued by the identity service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.SaveToken(args[0]); err != nil {
				return err
			}
			output(cmd).PrintMessage("Token saved to " + cfg.TokenFile)
			return nil
		},
	})
	return cmd
}
