package integration

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/udisondev/gtfoseed/internal/event"
	"github.com/udisondev/gtfoseed/internal/hub"
	"github.com/udisondev/gtfoseed/internal/indexer"
	"github.com/udisondev/gtfoseed/internal/seedgen"
)

// TestHubMatchesIndexer checks that the binary stream a subscriber receives
// decodes back to exactly what the indexer records for each expedition.
func (s *PipelineSuite) TestHubMatchesIndexer() {
	exps := s.expeditions(1, 77, 123456)

	h := hub.New(s.ix, hub.Options{QueueSize: len(exps)})
	var stream bytes.Buffer
	_, err := h.Subscribe(hub.Subscriber{
		Format:  event.FormatBinary,
		Deliver: func(p []byte) { stream.Write(p) },
	})
	s.Require().NoError(err)

	var want []event.Event
	for _, exp := range exps {
		s.Require().NoError(h.Submit(exp))
		events, rep := s.ix.Record(exp)
		s.Equal(indexer.Generated, rep.Outcome, "%s: %v", exp, rep.Err)
		want = append(want, events...)
	}

	s.Equal(len(exps), h.Poll(context.Background()))

	got, err := event.DecodeAll(stream.Bytes())
	s.Require().NoError(err)
	s.Equal(want, got)
}

// TestJSONStreamFraming checks that every JSON payload is one document and
// that each expedition is framed by its markers.
func (s *PipelineSuite) TestJSONStreamFraming() {
	exps := s.expeditions(5)

	h := hub.New(s.ix, hub.Options{})
	var docs []json.RawMessage
	_, err := h.Subscribe(hub.Subscriber{
		Format: event.FormatJSON,
		Deliver: func(p []byte) {
			docs = append(docs, append(json.RawMessage(nil), p...))
		},
	})
	s.Require().NoError(err)

	for _, exp := range exps {
		s.Require().NoError(h.Submit(exp))
	}
	h.Poll(context.Background())

	var starts, ends int
	for _, doc := range docs {
		s.Require().True(json.Valid(doc), "payload %s", doc)

		var e event.Event
		s.Require().NoError(json.Unmarshal(doc, &e))
		switch e.Kind {
		case event.KindGenerationStart:
			s.Equal(ends, starts, "start before previous end")
			starts++
		case event.KindGenerationEnd:
			ends++
			s.Equal(starts, ends)
		}
	}
	s.Equal(len(exps), starts)
	s.Equal(len(exps), ends)
}

// TestBatchIndependentOfWorkers checks that concurrency never changes output.
func (s *PipelineSuite) TestBatchIndependentOfWorkers() {
	var jobs []seedgen.Job
	for _, exp := range s.expeditions(1, 2, 3, 4, 5, 6, 7, 8) {
		jobs = append(jobs, seedgen.Job{Level: exp.Level, Seed: exp.Seed})
	}

	serial, err := seedgen.RunBatch(context.Background(), s.catalog, jobs, 1)
	s.Require().NoError(err)
	parallel, err := seedgen.RunBatch(context.Background(), s.catalog, jobs, 8)
	s.Require().NoError(err)

	s.Require().Len(parallel, len(serial))
	for i := range serial {
		s.Require().NoError(serial[i].Err, "job %d", i)
		a, err := event.Digest(serial[i].Events)
		s.Require().NoError(err)
		b, err := event.Digest(parallel[i].Events)
		s.Require().NoError(err)
		s.Equal(a, b, "job %v", serial[i].Job)
		s.Equal(serial[i].Result, parallel[i].Result)
	}
}
