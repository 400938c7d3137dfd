package quiz

import (
	"context"
	"math/rand"
	"time"

	"github.com/example/wordquiz/internal/spaced_repetition"
)

// Knobs of the results generator
const (
	MaxQuizzesPerDay   = 10
	startQuizChancePct = 90
	quizChanceDecayPct = 5 // every quiz makes another one that day slightly less likely
	answerAccuracyPct  = 60
)

// SimulationReport summarises a results generator run
type SimulationReport struct {
	Students int
	Quizzes  int
	Days     int
}

// Simulator fills the database with plausible quiz history for every student
type Simulator struct {
	svc *Service
	rnd *rand.Rand
}

// NewSimulator creates a results generator on top of svc
func NewSimulator(svc *Service, rnd *rand.Rand) *Simulator {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Simulator{svc: svc, rnd: rnd}
}

// Run takes quizzes on behalf of every student for each day from today-days up to today
func (sim *Simulator) Run(ctx context.Context, days int, today time.Time) (SimulationReport, error) {
	report := SimulationReport{Days: days}
	today = spaced_repetition.Day(today)

	students, err := sim.svc.store.Students(ctx)
	if err != nil {
		return report, err
	}

	for _, student := range students {
		report.Students++

		for day := spaced_repetition.AddDays(today, -days); !day.After(today); day = spaced_repetition.AddDays(day, 1) {
			if err := ctx.Err(); err != nil {
				return report, err
			}

			count := sim.quizzesToday()
			if count == 0 {
				continue
			}
			topics, err := sim.svc.store.Topics(ctx, false, day)
			if err != nil {
				return report, err
			}
			if len(topics) == 0 {
				continue
			}

			for i := 0; i < count; i++ {
				topic := topics[sim.rnd.Intn(len(topics))]
				words, err := sim.svc.store.WordsDueRevision(ctx, topic.ID, student.ID, day, sim.svc.cfg.MaxQuizLength)
				if err != nil {
					return report, err
				}
				if len(words) == 0 {
					continue
				}

				results := make(map[int64]bool, len(words))
				for _, w := range words {
					results[w.ID] = sim.rnd.Intn(100) < answerAccuracyPct
				}
				if _, err := sim.svc.ProcessResults(ctx, results, student.ID, topic.ID, day); err != nil {
					return report, err
				}
				report.Quizzes++
			}
		}
	}

	sim.svc.logger.Info("results generated",
		"students", report.Students, "quizzes", report.Quizzes, "days", report.Days)
	return report, nil
}

// quizzesToday draws how many quizzes a student takes in a day
func (sim *Simulator) quizzesToday() int {
	count := 0
	chance := startQuizChancePct
	for count < MaxQuizzesPerDay && sim.rnd.Intn(100) < chance {
		count++
		chance -= quizChanceDecayPct
	}
	return count
}
