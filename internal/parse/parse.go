// Package parse turns free-text set commands ("bench press 100 x 5")
// into a structured exercise/weight/reps triple, fuzzy-matching the
// exercise against the caller's exercise list.
package parse

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"
)

var (
	// ErrExerciseNotFound means no exercise name matched the input.
	ErrExerciseNotFound = errors.New("exercise not found")
	// ErrNoNumbers means the input contained no usable numbers.
	ErrNoNumbers = errors.New("no numbers found")
)

// Command is a parsed set-log instruction.
type Command struct {
	Exercise string  `json:"exercise"`
	Weight   float64 `json:"weight"`
	Reps     int     `json:"reps"`
}

var (
	weightUnitRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:kg|kilos|lbs|pounds)`)
	repsUnitRe   = regexp.MustCompile(`(\d+)\s*(?:reps|repetitions)`)
	byRe         = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*[xX*]\s*(\d+)`)
	forRe        = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*for\s*(\d+)`)
	numberRe     = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// ParseCommand parses text against the available exercise names. The matched
// exercise keeps its canonical spelling from the list. Weight and reps
// are extracted by explicit units first ("100 kg 5 reps"), then the
// "100 x 5" and "100 for 5" shorthands, then the first two bare numbers
// (weight before reps).
func ParseCommand(text string, exercises []string) (Command, error) {
	text = strings.ToLower(text)

	exercise, ok := MatchExercise(text, exercises)
	if !ok {
		return Command{}, ErrExerciseNotFound
	}

	var weight float64
	var reps int

	if m := weightUnitRe.FindStringSubmatch(text); m != nil {
		weight, _ = strconv.ParseFloat(m[1], 64)
	}
	if m := repsUnitRe.FindStringSubmatch(text); m != nil {
		reps, _ = strconv.Atoi(m[1])
	}
	if weight > 0 && reps > 0 {
		return Command{Exercise: exercise, Weight: weight, Reps: reps}, nil
	}

	if m := byRe.FindStringSubmatch(text); m != nil {
		weight, _ = strconv.ParseFloat(m[1], 64)
		reps, _ = strconv.Atoi(m[2])
		return Command{Exercise: exercise, Weight: weight, Reps: reps}, nil
	}
	if m := forRe.FindStringSubmatch(text); m != nil {
		weight, _ = strconv.ParseFloat(m[1], 64)
		reps, _ = strconv.Atoi(m[2])
		return Command{Exercise: exercise, Weight: weight, Reps: reps}, nil
	}

	numbers := numberRe.FindAllString(text, -1)
	if len(numbers) >= 2 {
		weight, _ = strconv.ParseFloat(numbers[0], 64)
		r, _ := strconv.ParseFloat(numbers[1], 64)
		return Command{Exercise: exercise, Weight: weight, Reps: int(r)}, nil
	}
	if len(numbers) == 1 {
		return Command{}, fmt.Errorf("could not extract both weight and reps from %q", text)
	}
	return Command{}, ErrNoNumbers
}

// MatchExercise finds the exercise name that best matches the input
// text. Each candidate is scored in both directions: the name as a
// pattern inside the text (full-sentence input) and the text as a
// pattern inside the name (abbreviated input like "bench"), so partial
// names still resolve to their canonical spelling.
func MatchExercise(text string, exercises []string) (string, bool) {
	text = strings.ToLower(text)

	bestScore := 0
	bestIdx := -1
	for i, name := range exercises {
		lowName := strings.ToLower(name)
		for _, matches := range [][]fuzzy.Match{
			fuzzy.Find(lowName, []string{text}),
			fuzzy.Find(text, []string{lowName}),
		} {
			if len(matches) == 0 {
				continue
			}
			if bestIdx == -1 || matches[0].Score > bestScore {
				bestScore = matches[0].Score
				bestIdx = i
			}
		}
	}
	if bestIdx == -1 {
		return "", false
	}
	return exercises[bestIdx], true
}
