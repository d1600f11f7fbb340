// Command validate checks a directory of difficulty override files (YAML or
// JSON). For each file it checks:
//   - Parsing and the field constraints the server enforces at startup
//   - Rules that can never fire (floor numbers past maxFloors, structural kinds)
//   - Duplicate difficulty keys across files
//   - Solvability: sample dungeons are generated and every floor with locked
//     rooms must have a key reachable from the entrance
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/dungeon-run-game/game/config"
	"github.com/wricardo/dungeon-run-game/game/engine"
)

// solvabilitySamples is how many dungeons are generated per file.
const solvabilitySamples = 25

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Key    string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...interface{}) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

func (r *ValidationResult) warn(format string, args ...interface{}) {
	r.Errors = append(r.Errors, "⚠ "+fmt.Sprintf(format, args...))
}

// validateFile loads and validates a single difficulty file.
func validateFile(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	file, err := config.LoadFile(filePath)
	if err != nil {
		result.fail("%v", err)
		return result
	}
	def := file.DifficultyDefinition
	result.Key = def.Key

	result.info("key %q (%s)", def.Key, def.Name)
	result.info("grid %dx%d, %d-%d floors", def.Width, def.Height, def.MinFloors, def.MaxFloors)

	if _, builtIn := engine.DefaultDifficulties()[def.Key]; builtIn {
		result.warn("overrides the built-in %q preset", def.Key)
	}
	if open := def.Width*def.Height - 2; def.MinRooms > open {
		result.warn("minRooms %d exceeds the %d open cells of a floor", def.MinRooms, open)
	}

	rules := file.Rules
	if len(rules) == 0 {
		if _, builtIn := engine.DefaultDifficulties()[def.Key]; builtIn {
			rules = engine.RulesFor(engine.DefaultFloorRules(), def.Key)
			result.info("no rules, keeps the built-in rules")
		} else {
			result.warn("no rules: floors fill with the enemyChance fallback only")
		}
	} else {
		result.info("%d rules", len(rules))
	}

	for i, rule := range file.Rules {
		if rule.FloorNumber != nil && *rule.FloorNumber > def.MaxFloors {
			result.fail("rule %d targets floor %d but at most %d floors are generated", i+1, *rule.FloorNumber, def.MaxFloors)
		}
		if rule.RoomType.Structural() && rule.Chance > 0 {
			result.warn("rule %d: %s rooms are placed by the generator, chance %.2f is ignored", i+1, rule.RoomType, rule.Chance)
		}
	}

	solvable := validateSolvability(def, rules, solvabilitySamples)
	if !solvable.Valid {
		result.Valid = false
	}
	result.Errors = append(result.Errors, solvable.Errors...)

	return result
}

// validateSolvability generates sample dungeons and checks that every floor
// with locked rooms has a key reachable from its entrance.
func validateSolvability(def engine.DifficultyDefinition, rules []engine.FloorRoomRule, samples int) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	lockedFloors := 0
	for i := 0; i < samples; i++ {
		seed := fmt.Sprintf("validate-%s-%d", def.Key, i)
		dungeon := engine.GenerateDungeon(def, rules, seed)
		for _, floor := range dungeon.Floors {
			if engine.CountRoomKind(floor, engine.RoomLocked) == 0 {
				continue
			}
			lockedFloors++
			if !engine.KeyReachable(floor) {
				result.fail("seed %s floor %d: locked rooms without a reachable key", seed, floor.Index+1)
			}
		}
	}

	if result.Valid {
		result.info("%d sample dungeons solvable (%d floors with locked rooms)", samples, lockedFloors)
	}
	return result
}

// validateDir validates every override file in dir.
func validateDir(dir string) ([]ValidationResult, error) {
	files, err := config.DifficultyFiles(dir)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]string)
	results := make([]ValidationResult, 0, len(files))
	for _, file := range files {
		result := validateFile(file)
		if result.Key != "" {
			if first, dup := seen[result.Key]; dup {
				result.fail("difficulty %q is already defined in %s", result.Key, first)
			} else {
				seen[result.Key] = result.File
			}
		}
		results = append(results, result)
	}
	return results, nil
}

// printResults writes the report and reports whether every file is valid.
func printResults(w io.Writer, results []ValidationResult) bool {
	allValid := true
	for _, result := range results {
		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, info := range result.Errors {
				fmt.Fprintln(w, "  "+info)
			}
		} else {
			fmt.Fprintln(w, "❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Fprintln(w, "  ❌ "+err)
				}
			}
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if len(results) == 0 {
		fmt.Fprintln(w, "No difficulty files found")
	} else if allValid {
		fmt.Fprintln(w, "✅ All difficulty files are valid!")
	} else {
		fmt.Fprintln(w, "❌ Some difficulty files have errors")
	}
	return allValid
}

func main() {
	cmd := &cli.Command{
		Name:  "validate",
		Usage: "validate a directory of difficulty override files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Value:   "difficulties",
				Usage:   "directory of difficulty files",
				Sources: cli.EnvVars("DIFFICULTY_DIR"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			results, err := validateDir(cmd.String("dir"))
			if err != nil {
				return err
			}
			if !printResults(cmd.Root().Writer, results) {
				return cli.Exit("", 1)
			}
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
