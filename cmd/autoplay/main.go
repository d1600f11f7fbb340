// Command autoplay drives a single-player run through the REST API until the
// final floor is cleared, the party gets stuck, or the move budget runs out.
// It is handy as a smoke test against a running server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/dungeon-run-game/game/engine"
)

// Options tune a single autoplay run.
type Options struct {
	Name       string
	Difficulty string
	MaxMoves   int
	Delay      time.Duration
	Verbose    bool
}

// Result summarizes how far the run got.
type Result struct {
	SessionID string
	Moves     int
	Completed bool
	Floor     int
	Health    int
}

func main() {
	cmd := &cli.Command{
		Name:  "autoplay",
		Usage: "play a dungeon run against a live server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "game server URL", Sources: cli.EnvVars("API_URL")},
			&cli.StringFlag{Name: "difficulty", Value: "easy", Usage: "difficulty key"},
			&cli.StringFlag{Name: "name", Value: "Autoplayer", Usage: "player name"},
			&cli.StringFlag{Name: "max-moves", Value: "3000", Usage: "give up after this many moves"},
			&cli.DurationFlag{Name: "delay", Usage: "pause between moves"},
			&cli.BoolFlag{Name: "v", Usage: "verbose output"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			maxMoves, err := strconv.Atoi(cmd.String("max-moves"))
			if err != nil || maxMoves < 1 {
				return fmt.Errorf("--max-moves must be a positive integer")
			}

			log.Printf("Connecting to game server at %s", cmd.String("url"))
			result, err := play(ctx, NewClient(cmd.String("url")), Options{
				Name:       cmd.String("name"),
				Difficulty: cmd.String("difficulty"),
				MaxMoves:   maxMoves,
				Delay:      cmd.Duration("delay"),
				Verbose:    cmd.Bool("v"),
			})
			if err != nil {
				return err
			}

			if !result.Completed {
				log.Printf("❌ Run not finished after %d moves (floor %d, HP %d)", result.Moves, result.Floor+1, result.Health)
				log.Printf("Session: %s", result.SessionID)
				return cli.Exit("", 1)
			}
			log.Printf("🎉 Run complete in %d moves", result.Moves)
			log.Printf("Session: %s", result.SessionID)
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// play creates a run and moves until it completes or no progress is possible.
// Running out of options is reported through Result, not as an error.
func play(ctx context.Context, client *Client, opts Options) (*Result, error) {
	state, err := client.CreateSession(ctx, opts.Name, opts.Difficulty)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	log.Printf("✨ Session created: %s (%s, %d floors)", client.sessionID, state.Difficulty, len(state.Dungeon.Floors))

	strategy := NewStrategy()
	result := &Result{SessionID: client.sessionID}
	hadKey := false

	for state.Status != engine.StatusCompleted && result.Moves < opts.MaxMoves {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		me := findPlayer(state, client.playerID)
		if me == nil {
			return nil, fmt.Errorf("player %s missing from session", client.playerID)
		}
		if key := holdsKey(me.Inventory); key && !hadKey {
			strategy.Reset()
			hadKey = true
		}

		dir, err := strategy.NextMove(state, client.playerID)
		if errors.Is(err, ErrStuck) {
			log.Printf("⚠️  No path forward on floor %d", me.Floor+1)
			break
		}
		if err != nil {
			return nil, err
		}

		moved, err := client.Move(ctx, string(dir))
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusLocked {
			if opts.Verbose {
				log.Printf("Locked door %s of (%d,%d)", dir, me.Position.X, me.Position.Y)
			}
			strategy.Block(me.Floor, dir.Step(me.Position))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("move %s failed: %w", dir, err)
		}

		state = moved.Session
		result.Moves++
		if opts.Verbose {
			for _, event := range moved.Events {
				log.Printf("  %s", event)
			}
		}

		if opts.Delay > 0 {
			time.Sleep(opts.Delay)
		}
	}

	result.Completed = state.Status == engine.StatusCompleted
	if me := findPlayer(state, client.playerID); me != nil {
		result.Floor = me.Floor
		result.Health = me.Health
	}
	return result, nil
}
