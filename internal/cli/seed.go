package cli

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/qualify/internal/domain/model"
	"github.com/okian/qualify/internal/domain/types"
	"github.com/okian/qualify/pkg/logger"
)

// SeedConfig controls a demo-data run against a live service.
type SeedConfig struct {
	Teams   int
	Workers int
	// InterviewShare is the fraction of qualified teams that get an interview score.
	InterviewShare float64
	Date           string
}

// SeedReport summarizes a seed run.
type SeedReport struct {
	Registered  int64
	Replayed    int64
	Qualified   int64
	Failed      int64
	Interviewed int64
	Errors      int64
	Standings   map[model.Category][]types.Standing
	Duration    time.Duration
}

type seedTeam struct {
	key       string
	reg       registerBody
	qcm       int
	interview float64
	date      string
	slot      string
}

type registerBody struct {
	Name     string         `json:"name"`
	School   string         `json:"school,omitempty"`
	Category model.Category `json:"category"`
	Members  []model.Member `json:"members,omitempty"`
	Skills   model.Skills   `json:"skills"`
}

type patchBody struct {
	QcmScore       *int     `json:"qcm_score,omitempty"`
	InterviewDate  *string  `json:"interview_date,omitempty"`
	InterviewTime  *string  `json:"interview_time,omitempty"`
	InterviewScore *float64 `json:"interview_score,omitempty"`
}

// Seed registers cfg.Teams generated teams, records their QCM scores,
// schedules and scores interviews, then reads back the standings.
// Submissions run concurrently, at most cfg.Workers at a time.
func Seed(ctx context.Context, c *Client, cfg SeedConfig) (SeedReport, error) {
	start := time.Now()
	log := logger.Get().Named("seed")

	if err := c.Health(ctx); err != nil {
		return SeedReport{}, fmt.Errorf("service health check failed: %w", err)
	}

	var rep SeedReport
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))
	for i := 0; i < cfg.Teams; i++ {
		st := generateTeam(i, cfg)
		g.Go(func() error {
			if err := seedOne(gctx, c, st, &rep); err != nil {
				atomic.AddInt64(&rep.Errors, 1)
				log.Warn(gctx, "seed team failed", logger.String("team", st.reg.Name), logger.Error(err))
			}
			// Individual failures are counted, not fatal.
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return rep, err
	}

	rep.Standings = map[model.Category][]types.Standing{}
	for _, cat := range model.Categories {
		var resp struct {
			Standings []types.Standing `json:"standings"`
		}
		if _, err := c.do(ctx, http.MethodGet, "/standings?category="+string(cat), nil, &resp, nil); err != nil {
			return rep, err
		}
		rep.Standings[cat] = resp.Standings
	}
	rep.Duration = time.Since(start)
	log.Info(ctx, "seed completed",
		logger.Int("registered", int(rep.Registered)),
		logger.Int("interviewed", int(rep.Interviewed)),
		logger.Int("errors", int(rep.Errors)),
	)
	return rep, nil
}

func seedOne(ctx context.Context, c *Client, st seedTeam, rep *SeedReport) error {
	var team model.Team
	code, err := c.do(ctx, http.MethodPost, "/teams", st.reg, &team, map[string]string{"Idempotency-Key": st.key})
	if err != nil {
		return err
	}
	if code == http.StatusOK {
		atomic.AddInt64(&rep.Replayed, 1)
		return nil
	}
	atomic.AddInt64(&rep.Registered, 1)

	qcm := st.qcm
	if _, err := c.do(ctx, http.MethodPatch, "/teams/"+team.ID, patchBody{QcmScore: &qcm}, &team, nil); err != nil {
		return err
	}
	if team.Status != model.StatusInterviewQualified {
		atomic.AddInt64(&rep.Failed, 1)
		return nil
	}
	atomic.AddInt64(&rep.Qualified, 1)
	if st.interview < 0 {
		return nil
	}

	date, slot, score := st.date, st.slot, st.interview
	body := patchBody{InterviewDate: &date, InterviewTime: &slot}
	if _, err := c.do(ctx, http.MethodPatch, "/teams/"+team.ID, body, nil, nil); err != nil {
		return err
	}
	if _, err := c.do(ctx, http.MethodPatch, "/teams/"+team.ID, patchBody{InterviewScore: &score}, nil, nil); err != nil {
		return err
	}
	atomic.AddInt64(&rep.Interviewed, 1)
	return nil
}

var (
	firstNames = []string{"Amina", "Yanis", "Lina", "Karim", "Sara", "Nassim", "Ines", "Rayan", "Meriem", "Adam"}
	genders    = []model.Gender{model.GenderFemale, model.GenderMale}
)

// generateTeam builds a random team. Scores are spread so that both
// categories see passes and failures.
func generateTeam(index int, cfg SeedConfig) seedTeam {
	cat := model.Categories[randInt(len(model.Categories))]
	size := 2 + randInt(3)
	members := make([]model.Member, size)
	for i := range members {
		members[i] = model.Member{
			Name:   firstNames[randInt(len(firstNames))],
			Gender: genders[randInt(len(genders))],
		}
	}
	skills := model.Skills{
		Arduino:     randInt(2) == 1,
		Electronics: randInt(2) == 1,
		Programming: randInt(2) == 1,
		Mechanics:   randInt(2) == 1,
		Design3D:    randInt(2) == 1,
	}

	date := cfg.Date
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}
	interview := -1.0
	if randFloat() < cfg.InterviewShare {
		// Tenths keep ties plausible.
		interview = float64(randInt(101)) / 10
	}
	return seedTeam{
		key: uuid.NewString(),
		reg: registerBody{
			Name:     "Team " + strconv.Itoa(index+1),
			School:   "School " + strconv.Itoa(1+randInt(20)),
			Category: cat,
			Members:  members,
			Skills:   skills,
		},
		qcm:       30 + randInt(71),
		interview: interview,
		date:      date,
		slot:      fmt.Sprintf("%02d:%02d", 8+randInt(10), 15*randInt(4)),
	}
}

// randInt returns a uniform value in [0,n) from crypto/rand.
func randInt(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

const randFloatDivisor = 1_000_000

func randFloat() float64 {
	return float64(randInt(randFloatDivisor)) / randFloatDivisor
}
