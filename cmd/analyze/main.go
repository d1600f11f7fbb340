// Command analyze prints quick, human-readable statistics about the dungeons
// each difficulty generates. For every difficulty it generates a batch of
// dungeons from sequential seeds and summarizes floor counts, basement
// frequency, room-kind averages, entrance-to-stairs distances, and flags any
// floor whose locked rooms have no key reachable from the entrance.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/dungeon-run-game/game/config"
	"github.com/wricardo/dungeon-run-game/game/engine"
)

// Report aggregates the dungeons generated for one difficulty.
type Report struct {
	Difficulty engine.DifficultyDefinition
	Runs       int
	// FloorCounts maps main floor count to how many dungeons had it.
	FloorCounts   map[int]int
	Basements     int
	Floors        int
	RoomKinds     map[engine.RoomKind]int
	LockedFloors  int
	Unsolvable    []string
	TotalDistance int
}

func main() {
	cmd := &cli.Command{
		Name:  "analyze",
		Usage: "summarize dungeon generation per difficulty",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "difficulty-dir", Usage: "difficulty override directory", Sources: cli.EnvVars("DIFFICULTY_DIR")},
			&cli.StringFlag{Name: "seeds", Value: "200", Usage: "dungeons to generate per difficulty"},
			&cli.StringFlag{Name: "difficulty", Usage: "only analyze this difficulty"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			seeds, err := strconv.Atoi(cmd.String("seeds"))
			if err != nil || seeds < 1 {
				return fmt.Errorf("--seeds must be a positive integer")
			}
			manager, err := config.NewManager(cmd.String("difficulty-dir"))
			if err != nil {
				return err
			}
			return run(cmd.Root().Writer, manager, cmd.String("difficulty"), seeds)
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(w io.Writer, manager *config.Manager, only string, seeds int) error {
	for _, def := range manager.List() {
		if only != "" && def.Key != only {
			continue
		}
		_, rules, err := manager.Difficulty(def.Key)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "\n=== Analyzing %s ===\n", def.Key)
		printReport(w, analyzeDifficulty(def, rules, seeds))
	}
	return nil
}

func analyzeDifficulty(def engine.DifficultyDefinition, rules []engine.FloorRoomRule, seeds int) Report {
	report := Report{
		Difficulty:  def,
		Runs:        seeds,
		FloorCounts: make(map[int]int),
		RoomKinds:   make(map[engine.RoomKind]int),
	}

	for i := 0; i < seeds; i++ {
		seed := fmt.Sprintf("analyze-%s-%d", def.Key, i)
		dungeon := engine.GenerateDungeon(def, rules, seed)

		mainFloors := 0
		for _, floor := range dungeon.Floors {
			if floor.IsBasement {
				report.Basements++
			} else {
				mainFloors++
			}
			report.Floors++
			report.TotalDistance += engine.ManhattanDistance(floor.Start, floor.Stairs)
			for kind, n := range engine.RoomKindHistogram(floor) {
				report.RoomKinds[kind] += n
			}

			if engine.CountRoomKind(floor, engine.RoomLocked) > 0 {
				report.LockedFloors++
				if !engine.KeyReachable(floor) {
					report.Unsolvable = append(report.Unsolvable, fmt.Sprintf("%s floor %d", seed, floor.Index+1))
				}
			}
		}
		report.FloorCounts[mainFloors]++
	}

	return report
}

func printReport(w io.Writer, r Report) {
	def := r.Difficulty
	fmt.Fprintf(w, "Name: %s\n", def.Name)
	fmt.Fprintf(w, "Grid Size: %d x %d (%d open cells, minRooms %d)\n",
		def.Width, def.Height, def.Width*def.Height-2, def.MinRooms)
	fmt.Fprintf(w, "Dungeons generated: %d\n", r.Runs)

	counts := make([]int, 0, len(r.FloorCounts))
	for n := range r.FloorCounts {
		counts = append(counts, n)
	}
	sort.Ints(counts)
	for _, n := range counts {
		fmt.Fprintf(w, "  %d main floor(s): %d\n", n, r.FloorCounts[n])
	}
	fmt.Fprintf(w, "Basements: %d (%.1f%%, configured %.0f%%)\n",
		r.Basements, percent(r.Basements, r.Runs), def.BasementChance*100)

	if r.Floors > 0 {
		fmt.Fprintf(w, "Average entrance-to-stairs distance: %.1f\n", float64(r.TotalDistance)/float64(r.Floors))
		fmt.Fprintf(w, "Average rooms per floor:\n")
		for _, kind := range engine.AllRoomKinds {
			if n := r.RoomKinds[kind]; n > 0 {
				fmt.Fprintf(w, "  %-15s %6.2f\n", kind, float64(n)/float64(r.Floors))
			}
		}
	}

	if len(r.Unsolvable) > 0 {
		fmt.Fprintf(w, "⚠️  CRITICAL: %d of %d locked floors have no reachable key!\n", len(r.Unsolvable), r.LockedFloors)
		for i, where := range r.Unsolvable {
			if i == 5 {
				fmt.Fprintf(w, "   ... and %d more\n", len(r.Unsolvable)-5)
				break
			}
			fmt.Fprintf(w, "   %s\n", where)
		}
	} else {
		fmt.Fprintf(w, "✅ All %d locked floors have a key reachable from the entrance\n", r.LockedFloors)
	}
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) * 100 / float64(total)
}
