package integration

import (
	"github.com/udisondev/gtfoseed/internal/db"
	"github.com/udisondev/gtfoseed/internal/event"
	"github.com/udisondev/gtfoseed/internal/hub"
	"github.com/udisondev/gtfoseed/internal/indexer"
	"github.com/udisondev/gtfoseed/internal/testutil"
)

// TestRunsPersisted drives the hub with the run repository as observer and
// reads the stored streams back.
func (s *PipelineSuite) TestRunsPersisted() {
	pool := testutil.SetupTestDB(s.T())
	repo := db.NewRunRepository(pool)
	ctx := testutil.ContextWithTimeout(s.T(), testutil.DefaultTimeout)

	exps := s.expeditions(42)
	h := hub.New(s.ix, hub.Options{Observer: repo})
	for _, exp := range exps {
		s.Require().NoError(h.Submit(exp))
	}
	s.Equal(len(exps), h.Poll(ctx))

	for _, exp := range exps {
		want, rep := s.ix.Record(exp)
		s.Require().Equal(indexer.Generated, rep.Outcome)

		runs, err := repo.FindRuns(ctx, exp.Level.String(), exp.Seed)
		s.Require().NoError(err)
		s.Require().Len(runs, 1, "%s", exp)
		run := runs[0]

		s.Equal(indexer.Generated.String(), run.Outcome)
		s.Equal(rep.Result.Draws, run.Draws)
		s.Equal(rep.Result.Overflows, run.Overflows)

		digest, err := event.Digest(want)
		s.Require().NoError(err)
		s.Equal(digest, run.Digest)

		got, err := repo.LoadEvents(ctx, run.ID)
		s.Require().NoError(err)
		s.Equal(want, got)

		s.Require().NoError(repo.DeleteRun(ctx, run.ID))
	}
}
