package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/courtside/internal/api/response"
)

func newScorerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scorer",
		Short: "Claim or release a scorer category (shots, fouls, other)",
	}

	for _, action := range []string{"claim", "release"} {
		action := action
		cmd.AddCommand(&cobra.Command{
			Use:   action + " <gameID> <category>",
			Short: "Scorer " + action,
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				var result response.Game
				path := fmt.Sprintf("/api/v1/games/%s/scorers/%s/%s", args[0], args[1], action)
				if err := client.Post(path, nil, &result); err != nil {
					return err
				}
				output(cmd).Print(result)
				return nil
			},
		})
	}

	return cmd
}
