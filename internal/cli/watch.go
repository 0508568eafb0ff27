package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/courtside/internal/model"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <gameID>",
		Short: "Stream live updates for a game",
		Long: `Connect to the game's live stream and print updates as they happen.

Events:
  - game-event: a new entry in the event log
  - game-update: the full game snapshot after a change

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return watchGame(ctx, args[0], output(cmd))
		},
	}
}

// SSEEvent is a parsed stream frame
type SSEEvent struct {
	Time  time.Time `json:"time"`
	Event string    `json:"event"`
	Data  string    `json:"data"`
}

func watchGame(ctx context.Context, gameID string, out *Output) error {
	url := fmt.Sprintf("%s/api/v1/games/%s/stream", strings.TrimSuffix(cfg.ServerURL, "/"), gameID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.Token)
	}

	// No timeout for streams
	resp, err := (&http.Client{}).Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	printer := &streamPrinter{out: out}
	err = readStream(resp.Body, printer.print)
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("stream error: %w", err)
	}
	return nil
}

// readStream calls fn for every complete event in an SSE stream
func readStream(r io.Reader, fn func(event, data string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var currentEvent string
	var dataLines []string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			currentEvent = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		case line == "":
			if currentEvent != "" {
				fn(currentEvent, strings.Join(dataLines, "\n"))
			}
			currentEvent = ""
			dataLines = nil
		}
	}
	return scanner.Err()
}

// streamPrinter writes stream frames, skipping snapshots older than one
// already shown
type streamPrinter struct {
	out         *Output
	lastVersion int64
	shown       bool
}

func (p *streamPrinter) print(event, data string) {
	if event == "game-update" {
		var v struct {
			Version int64 `json:"version"`
		}
		if err := json.Unmarshal([]byte(data), &v); err == nil {
			if p.shown && v.Version <= p.lastVersion {
				return
			}
			p.lastVersion = v.Version
			p.shown = true
		}
	}

	out := p.out
	if out.format == "json" {
		out.printJSON(SSEEvent{Time: time.Now(), Event: event, Data: data})
		return
	}

	switch event {
	case "game-event":
		var e model.GameEvent
		if err := json.Unmarshal([]byte(data), &e); err == nil {
			out.printEvent(e)
			return
		}
	case "game-update":
		var g model.GameView
		if err := json.Unmarshal([]byte(data), &g); err == nil && g.Game != nil {
			out.printf("[%s] Q%d %s ", g.Status, g.Clock.Period, clockText(g.LiveRemainingSeconds))
			out.printScoreLine(g.Game)
			return
		}
	}
	out.printf("%s: %s\n", event, data)
}
