package cmd

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/example/wordquiz/internal/quiz"
)

var generateResultsCmd = &cobra.Command{
	Use:   "generate-results <days>",
	Short: "Fill the database with simulated quiz history for every student",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		days, err := strconv.Atoi(args[0])
		if err != nil || days < 0 {
			return errors.Errorf("invalid number of days %q", args[0])
		}

		cfg, logger, db, err := setup(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		seed, _ := cmd.Flags().GetInt64("seed")
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		sim := quiz.NewSimulator(newQuizService(db, cfg, logger), rand.New(rand.NewSource(seed)))

		report, err := sim.Run(cmd.Context(), days, time.Now())
		if err != nil {
			return err
		}
		fmt.Printf("Generated %d quizzes for %d students over %d days\n", report.Quizzes, report.Students, report.Days+1)
		return nil
	},
}

func init() {
	generateResultsCmd.Flags().Int64("seed", 0, "Random seed (time based by default)")
}
