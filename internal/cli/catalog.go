package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/courtside/internal/api/request"
	"github.com/mcoot/courtside/internal/api/response"
	"github.com/mcoot/courtside/internal/model"
)

func newFormatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "format",
		Short: "Game format commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List available game formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Formats
			if err := client.Get("/api/v1/formats", &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show a game format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result model.GameFormatRules
			if err := client.Get("/api/v1/formats/"+args[0], &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	})

	return cmd
}

func newTeamCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "team",
		Short: "Team commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show a team and its players",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result model.Team
			if err := client.Get("/api/v1/teams/"+args[0], &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	})

	var file string
	put := &cobra.Command{
		Use:   "put <id> --file team.json",
		Short: "Create or replace a team from a JSON file",
		Long: `Create or replace a team. The file holds the team name and players:

  {"name": "Hawks", "players": [{"id": "h1", "name": "Ada", "jersey_number": 4}]}`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			var req request.TeamRequest
			if err := json.Unmarshal(data, &req); err != nil {
				return fmt.Errorf("invalid team file: %w", err)
			}

			var result model.Team
			if err := client.Put("/api/v1/teams/"+args[0], req, &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	}
	put.Flags().StringVarP(&file, "file", "f", "", "Team JSON file")
	_ = put.MarkFlagRequired("file")
	cmd.AddCommand(put)

	return cmd
}
