// Command drill runs a multiplication test in the terminal against a
// local SQLite record store. It is a thin front over the same session
// engine the HTTP server uses.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mathdrill/backend/internal/generator"
	"github.com/mathdrill/backend/internal/models"
	"github.com/mathdrill/backend/internal/records"
	"github.com/mathdrill/backend/internal/session"
	"github.com/mathdrill/backend/internal/storage"
	"github.com/mathdrill/backend/internal/timer"
)

const localUserID = 1

func main() {
	count := flag.Int("count", 10, "number of questions")
	difficulty := flag.String("difficulty", "medium", "easy, medium, hard or extreme")
	mode := flag.String("mode", "practice", "practice or exam")
	timerMode := flag.String("timer", "off", "off, per_question or total_time")
	seconds := flag.Int("seconds", 30, "timer duration in seconds")
	allowSkip := flag.Bool("skip", true, "allow skipping questions")
	freeNav := flag.Bool("free-nav", false, "free navigation (exam mode only)")
	avoidDup := flag.Bool("avoid-duplicates", true, "avoid repeating factor pairs")
	dbPath := flag.String("db", defaultDBPath(), "path to the local record store")
	name := flag.String("name", "Player", "display name for the leaderboard")
	flag.Parse()

	settings := models.SessionSettings{
		QuestionCount:   *count,
		Difficulty:      models.Difficulty(*difficulty),
		TimerMode:       models.TimerMode(*timerMode),
		TimerSeconds:    *seconds,
		TestMode:        models.TestMode(*mode),
		AllowSkip:       *allowSkip,
		FreeNavigation:  *freeNav,
		AvoidDuplicates: *avoidDup,
	}
	if err := session.ValidateSettings(settings); err != nil {
		log.Fatalf("Invalid settings: %v", err)
	}

	store, err := storage.OpenSQLite(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open record store: %v", err)
	}
	defer store.Close()
	recordsService := records.NewService(store)

	done := make(chan struct{})
	s := session.New(session.Config{
		Generator: generator.New(),
		Timer:     timer.NewCountdown(),
		Presenter: &terminalPresenter{},
		OnResult: func(result models.Result) {
			recordsService.RecordResult(localUserID, *name, result)
			close(done)
		},
	})
	if err := s.Start(settings); err != nil {
		log.Fatalf("Failed to start session: %v", err)
	}

	fmt.Println("Commands: 1-4 select, n next, s skip, p previous, g <n> goto, f finish, q quit")
	runLoop(s, done)

	if result := s.Result(); result != nil {
		printResult(*result)
		printLifetime(recordsService)
	}
}

func runLoop(s *session.Session, done <-chan struct{}) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		select {
		case <-done:
			return
		default:
		}

		if !scanner.Scan() {
			s.End()
			return
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		var err error
		switch {
		case input >= "1" && input <= "4" && len(input) == 1:
			pos, _ := strconv.Atoi(input)
			err = s.Select(pos)
		case input == "n":
			err = s.Advance()
		case input == "s":
			err = s.Skip()
		case input == "p":
			err = s.Previous()
		case strings.HasPrefix(input, "g "):
			var idx int
			idx, err = strconv.Atoi(strings.TrimSpace(input[2:]))
			if err == nil {
				// display numbers are 1-based
				err = s.GoTo(idx - 1)
			}
		case input == "f":
			s.Finalize()
			return
		case input == "q":
			s.End()
			return
		default:
			fmt.Println("Unknown command:", input)
			continue
		}

		if err != nil {
			fmt.Println(err)
		}
		if s.Result() != nil {
			return
		}
	}
}

type terminalPresenter struct{}

func (terminalPresenter) UpdateQuestion(q models.DrillQuestion, index, total int) {
	fmt.Printf("\nQuestion %d of %d:  %d x %d = ?\n", index+1, total, q.FactorA, q.FactorB)
	for i, v := range q.Values {
		fmt.Printf("  %d) %d\n", i+1, v)
	}
	fmt.Print("> ")
}

func (terminalPresenter) UpdateProgress(answered, total int) {
	fmt.Printf("[%d/%d answered]\n", answered, total)
}

func (terminalPresenter) UpdateTimer(remainingSec int) {
	if remainingSec <= 5 || remainingSec%10 == 0 {
		fmt.Printf("  %ds left\n", remainingSec)
	}
}

func (terminalPresenter) UpdateResults(result models.Result) {
	fmt.Println("\nTest complete.")
}

func printResult(result models.Result) {
	fmt.Printf("\nScore: %d%%  (%d correct, %d incorrect, %d skipped of %d)\n",
		result.ScorePercent, result.CorrectCount, result.IncorrectCount,
		result.SkippedCount, result.TotalQuestions)
	fmt.Printf("Time: %.0fs\n", result.TotalTimeSec)

	for i, a := range result.Answers {
		mark := "✗"
		if a.Correct {
			mark = "✓"
		}
		answer := "-"
		if a.SelectedValue != nil {
			answer = strconv.Itoa(*a.SelectedValue)
		}
		fmt.Printf("  %2d. %s %d x %d = %d   answered %s (%s, %.1fs)\n",
			i+1, mark, a.FactorA, a.FactorB, a.CorrectAnswer, answer, a.Outcome, a.TimeSpentSec)
	}
}

func printLifetime(recordsService *records.Service) {
	stats, err := recordsService.Stats(localUserID)
	if err != nil {
		log.Printf("Failed to load stats: %v", err)
		return
	}
	fmt.Printf("\nLifetime: %d tests, average %d%%, best %d%%\n",
		stats.TestsCompleted, stats.AverageScore, stats.BestScore)
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "mathdrill.db"
	}
	return filepath.Join(home, ".mathdrill.db")
}
