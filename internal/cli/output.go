package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mcoot/courtside/internal/api/response"
	"github.com/mcoot/courtside/internal/model"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		o.printJSON(map[string]string{"message": msg})
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.w, format, args...)
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Game:
		o.printGame(v)
	case response.Event:
		o.printEvent(v.Event)
		o.printScoreLine(v.Game.Game)
	case response.Events:
		for _, e := range v.Events {
			o.printEvent(e)
		}
	case response.Verification:
		o.printVerification(v)
	case response.Formats:
		for _, f := range v.Formats {
			o.printFormat(f)
		}
	case model.GameFormatRules:
		o.printFormat(v)
	case model.Team:
		o.printTeam(v)
	case response.Health:
		o.printf("Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printScoreLine(g *model.Game) {
	o.printf("%s %d - %d %s\n", g.Home.Name, g.Home.Score, g.Away.Score, g.Away.Name)
}

func clockText(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func (o *Output) printGame(g response.Game) {
	o.printf("Game: %s [%s]\n", g.ID, g.Status)
	o.printf("Format: %s\n", g.Format.Name)
	o.printScoreLine(g.Game)

	if g.Status == model.GameStatusInProgress {
		running := "stopped"
		if g.Clock.Running {
			running = "running"
		}
		o.printf("Period %d/%d  %s (%s)\n", g.Clock.Period, g.Format.PeriodCount, clockText(g.LiveRemainingSeconds), running)
		o.printf("Timeouts left: home %d, away %d\n", g.TimeoutsRemaining[model.SideHome], g.TimeoutsRemaining[model.SideAway])
	}

	for _, side := range []model.TeamSide{model.SideHome, model.SideAway} {
		team := g.Team(side)
		o.printf("\n%s (%s)  fouls %d\n", team.Name, side, team.Stats.Fouls())
		onCourt := make(map[model.PlayerID]bool, len(team.OnCourt))
		for _, id := range team.OnCourt {
			onCourt[id] = true
		}
		for _, p := range team.Roster {
			marker := " "
			if onCourt[p.ID] {
				marker = "*"
			}
			pts, pm, mins := 0, 0, 0
			if b, ok := g.Players[p.ID]; ok {
				pts, pm, mins = b.Points, b.PlusMinus, b.TimePlayedSeconds
			}
			o.printf(" %s #%-2d %-20s %3d pts  %+3d  %s  PIR %d\n",
				marker, p.JerseyNumber, p.Name, pts, pm, clockText(mins), g.PerformanceIndex[p.ID])
		}
		if below := g.BelowMinimumPlay[side]; len(below) > 0 {
			ids := make([]string, len(below))
			for i, id := range below {
				ids[i] = string(id)
			}
			o.printf(" Below minimum play: %s\n", strings.Join(ids, ", "))
		}
	}

	if len(g.Scorers) > 0 {
		categories := make([]string, 0, len(g.Scorers))
		for c := range g.Scorers {
			categories = append(categories, string(c))
		}
		sort.Strings(categories)
		o.printf("\nScorers:\n")
		for _, c := range categories {
			a := g.Scorers[model.ScorerCategory(c)]
			o.printf("  %s: %s\n", c, a.DisplayName)
		}
	}
}

func (o *Output) printEvent(e model.GameEvent) {
	who := string(e.PlayerID)
	if e.PlayerName != "" {
		who = e.PlayerName
	}
	if who == "" {
		who = "team"
	}
	o.printf("#%-4d Q%d %s  %-5s %-18s %s\n", e.Seq, e.Period, clockText(e.GameTimeSeconds), e.Side, e.Action, who)
}

func (o *Output) printVerification(v response.Verification) {
	if v.Consistent {
		o.printf("Box scores match the event log\n")
		return
	}
	o.printf("Box scores diverge from the event log (%d fields):\n", len(v.Mismatches))
	for _, m := range v.Mismatches {
		o.printf("  %s\n", m.Field)
	}
}

func (o *Output) printFormat(f model.GameFormatRules) {
	o.printf("%s: %s, %d x %s, %d on court, %d timeouts",
		f.ID, f.Name, f.PeriodCount, clockText(f.PeriodDurationSeconds), f.RequiredOnCourt, f.TimeoutAllotment)
	if f.MinimumPeriods > 0 {
		o.printf(", min %d periods", f.MinimumPeriods)
	}
	o.printf("\n")
}

func (o *Output) printTeam(t model.Team) {
	o.printf("Team: %s (%s)\n", t.Name, t.ID)
	for _, p := range t.Players {
		o.printf("  #%-2d %s (%s)\n", p.JerseyNumber, p.Name, p.ID)
	}
}
