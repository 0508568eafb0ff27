package cli

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/courtside/internal/api/request"
	"github.com/mcoot/courtside/internal/api/response"
	"github.com/mcoot/courtside/internal/model"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game commands",
	}

	cmd.AddCommand(newGameCreateCmd())
	cmd.AddCommand(newGameGetCmd())
	cmd.AddCommand(newGameRosterCmd())
	cmd.AddCommand(newGameEventCmd())
	cmd.AddCommand(newGameSubCmd())
	cmd.AddCommand(newGameEventsCmd())
	cmd.AddCommand(newGameVerifyCmd())

	cmd.AddCommand(newGameTransitionCmd("start", "start", "Start a scheduled game and seed both courts"))
	cmd.AddCommand(newGameTransitionCmd("clock", "clock/toggle", "Start or stop the game clock"))
	cmd.AddCommand(newGameTransitionCmd("end-period", "end-period", "End the current period"))
	cmd.AddCommand(newGameTransitionCmd("complete", "complete", "Mark the game completed"))
	cmd.AddCommand(newGameTransitionCmd("cancel", "cancel", "Cancel the game"))

	return cmd
}

func printGame(cmd *cobra.Command, method, path string, body any) error {
	var result response.Game
	if err := client.Do(method, path, body, &result); err != nil {
		return err
	}
	output(cmd).Print(result)
	return nil
}

func newGameCreateCmd() *cobra.Command {
	var (
		req request.CreateGameRequest
		at  string
	)

	cmd := &cobra.Command{
		Use:   "create --home <team> --away <team>",
		Short: "Schedule a new game",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if at != "" {
				t, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at: %w", err)
				}
				req.ScheduledAt = t
			}
			return printGame(cmd, http.MethodPost, "/api/v1/games", req)
		},
	}

	cmd.Flags().StringVar((*string)(&req.HomeTeamID), "home", "", "Home team id")
	cmd.Flags().StringVar((*string)(&req.AwayTeamID), "away", "", "Away team id")
	cmd.Flags().StringVar((*string)(&req.FormatID), "format", string(model.FormatStandard), "Format id")
	cmd.Flags().StringVar(&at, "at", "", "Scheduled time (RFC3339)")
	_ = cmd.MarkFlagRequired("home")
	_ = cmd.MarkFlagRequired("away")

	return cmd
}

func newGameGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <gameID>",
		Short: "Show the live game state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printGame(cmd, http.MethodGet, "/api/v1/games/"+args[0], nil)
		},
	}
}

func newGameRosterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "roster <gameID> <home|away> <playerID>...",
		Short: "Select a side's game roster, in starting order",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := request.SetRosterRequest{PlayerIDs: make([]model.PlayerID, 0, len(args)-2)}
			for _, id := range args[2:] {
				req.PlayerIDs = append(req.PlayerIDs, model.PlayerID(id))
			}
			return printGame(cmd, http.MethodPut, fmt.Sprintf("/api/v1/games/%s/roster/%s", args[0], args[1]), req)
		},
	}
}

func newGameTransitionCmd(name, path, short string) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <gameID>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printGame(cmd, http.MethodPost, fmt.Sprintf("/api/v1/games/%s/%s", args[0], path), nil)
		},
	}
}

func newGameEventCmd() *cobra.Command {
	var period int

	cmd := &cobra.Command{
		Use:   "event <gameID> <home|away> <action> [playerID]",
		Short: "Record a game action",
		Long: `Record a game action. Team actions (team_foul, timeout) take no player.

Actions: shot_made_1p, shot_miss_1p, shot_made_2p, shot_miss_2p, shot_made_3p,
shot_miss_3p, rebound_offensive, rebound_defensive, assist, steal, block,
turnover, foul, block_against, foul_received, team_foul, timeout`,
		Args: cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := request.RecordEventRequest{
				Side:   model.TeamSide(args[1]),
				Action: model.GameEventAction(args[2]),
				Period: period,
			}
			if len(args) == 4 {
				req.PlayerID = model.PlayerID(args[3])
			}

			var result response.Event
			if err := client.Post(fmt.Sprintf("/api/v1/games/%s/events", args[0]), req, &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	}
	cmd.Flags().IntVar(&period, "period", 0, "Reject the event unless this period is in play")

	return cmd
}

func newGameSubCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sub <gameID> <home|away> <playerIn> [playerOut]",
		Short: "Substitute a player onto the court",
		Args:  cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := request.SubstituteRequest{
				Side:     model.TeamSide(args[1]),
				PlayerIn: model.PlayerID(args[2]),
			}
			if len(args) == 4 {
				req.PlayerOut = model.PlayerID(args[3])
			}
			return printGame(cmd, http.MethodPost, fmt.Sprintf("/api/v1/games/%s/substitutions", args[0]), req)
		},
	}
}

func newGameEventsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "events <gameID>",
		Short: "List the game's event log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Events
			if err := client.Get(fmt.Sprintf("/api/v1/games/%s/events", args[0]), &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	}
}

func newGameVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <gameID>",
		Short: "Replay the event log and compare it with the box scores",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Verification
			if err := client.Get(fmt.Sprintf("/api/v1/games/%s/verify", args[0]), &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			if !result.Consistent {
				return fmt.Errorf("box scores diverge from the event log")
			}
			return nil
		},
	}
}
