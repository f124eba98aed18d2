package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/studydeck/internal/entity"
	"github.com/eslsoft/studydeck/internal/storage"
)

type studyFixture struct {
	uc       StudyUsecase
	impl     *studyUsecase
	cards    *fakeCardRepo
	answers  *fakeAnswerRepo
	sessions *fakeSessionRepo
	store    *storage.SessionStorage
	now      time.Time
}

func newStudyFixture(t *testing.T) *studyFixture {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	f := &studyFixture{
		cards:    newFakeCardRepo(),
		answers:  &fakeAnswerRepo{},
		sessions: newFakeSessionRepo(),
		store:    storage.NewSessionStorage(),
		now:      time.Date(2025, 4, 10, 8, 0, 0, 0, time.UTC),
	}
	f.uc = NewStudyUsecase(f.cards, f.answers, f.sessions, f.store, StudyOptions{DefaultCardLimit: 20, MaxCardLimit: 50}, logger)
	f.impl = f.uc.(*studyUsecase)
	f.impl.clock = func() time.Time { return f.now }
	seq := 0
	f.impl.newID = func() string {
		seq++
		return fmt.Sprintf("session-%d", seq)
	}
	f.cards.cards[7] = []entity.Card{
		{ID: 1, Question: "A?", Answer: "a", CategoryName: "Cardio"},
		{ID: 2, Question: "B?", Answer: "b", CategoryName: "Derma"},
		{ID: 3, Question: "C?", Answer: "c", CategoryName: "Neuro"},
	}
	return f
}

func TestStartSessionConsultsCardSourceOnce(t *testing.T) {
	f := newStudyFixture(t)
	started, err := f.uc.StartSession(context.Background(), 7, 0)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if started.SessionID != "session-1" || started.QueueSize != 3 {
		t.Fatalf("unexpected start result %+v", started)
	}
	if f.cards.fetchCalls != 1 {
		t.Fatalf("card source called %d times", f.cards.fetchCalls)
	}
	if f.cards.lastLimit != 20 {
		t.Fatalf("expected default limit 20, got %d", f.cards.lastLimit)
	}
	if _, ok := f.sessions.items["session-1"]; !ok {
		t.Fatal("expected session summary to be persisted")
	}

	for i := 0; i < 2; i++ {
		if _, err := f.uc.CurrentCard(context.Background(), started.SessionID); err != nil {
			t.Fatalf("CurrentCard: %v", err)
		}
	}
	if f.cards.fetchCalls != 1 {
		t.Fatalf("card source consulted again after start: %d calls", f.cards.fetchCalls)
	}
}

func TestStartSessionClampsLimit(t *testing.T) {
	f := newStudyFixture(t)
	if _, err := f.uc.StartSession(context.Background(), 7, 500); err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if f.cards.lastLimit != 50 {
		t.Fatalf("expected limit clamped to 50, got %d", f.cards.lastLimit)
	}
	if _, err := f.uc.StartSession(context.Background(), 7, 2); err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if f.cards.lastLimit != 2 {
		t.Fatalf("expected explicit limit 2, got %d", f.cards.lastLimit)
	}
}

func TestStartSessionEmptyQueue(t *testing.T) {
	f := newStudyFixture(t)
	_, err := f.uc.StartSession(context.Background(), 99, 10)
	if !errors.Is(err, entity.ErrEmptyQueue) {
		t.Fatalf("expected ErrEmptyQueue, got %v", err)
	}
	if len(f.store.List()) != 0 {
		t.Fatal("no session should be stored for an empty queue")
	}
}

func TestStartSessionPropagatesSourceError(t *testing.T) {
	f := newStudyFixture(t)
	f.cards.fetchErr = errStorage
	if _, err := f.uc.StartSession(context.Background(), 7, 10); !errors.Is(err, errStorage) {
		t.Fatalf("expected wrapped storage error, got %v", err)
	}
}

func TestStartSessionRejectsInvalidLearner(t *testing.T) {
	f := newStudyFixture(t)
	if _, err := f.uc.StartSession(context.Background(), 0, 10); !errors.Is(err, entity.ErrInvalidLearnerID) {
		t.Fatalf("expected ErrInvalidLearnerID, got %v", err)
	}
	if f.cards.fetchCalls != 0 {
		t.Fatal("card source should not be consulted for an invalid learner")
	}
}

func TestSubmitAnswersThroughCompletion(t *testing.T) {
	f := newStudyFixture(t)
	ctx := context.Background()
	started, err := f.uc.StartSession(ctx, 7, 10)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	f.now = f.now.Add(7 * time.Second)
	res, err := f.uc.SubmitAnswer(ctx, started.SessionID, false, entity.QualityFailed)
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if res.Stats != (entity.SessionStats{Total: 1, Incorrect: 1}) || res.Finished {
		t.Fatalf("unexpected first result %+v", res)
	}
	if res.Record.ResponseTimeSeconds != 7 || res.Record.CardID != 1 {
		t.Fatalf("unexpected record %+v", res.Record)
	}

	cur, err := f.uc.CurrentCard(ctx, started.SessionID)
	if err != nil {
		t.Fatalf("CurrentCard: %v", err)
	}
	if cur.Card.ID != 2 || cur.Position != 2 || cur.Total != 3 {
		t.Fatalf("unexpected current card %+v", cur)
	}

	if _, err := f.uc.SubmitAnswer(ctx, started.SessionID, true, entity.QualityGood); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	res, err = f.uc.SubmitAnswer(ctx, started.SessionID, true, entity.QualityEasy)
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if !res.Finished || res.Stats != (entity.SessionStats{Total: 3, Correct: 2, Incorrect: 1, AccuracyPercent: 67}) {
		t.Fatalf("unexpected final result %+v", res)
	}
	if res.Progress != (entity.Progress{Answered: 3, Total: 3, Percent: 100}) {
		t.Fatalf("unexpected progress %+v", res.Progress)
	}

	if _, err := f.uc.CurrentCard(ctx, started.SessionID); !errors.Is(err, entity.ErrSessionFinished) {
		t.Fatalf("expected ErrSessionFinished, got %v", err)
	}
	if len(f.answers.items) != 3 {
		t.Fatalf("expected 3 persisted answers, got %d", len(f.answers.items))
	}
	if len(f.cards.rescheduled) != 3 {
		t.Fatalf("expected 3 reschedules, got %d", len(f.cards.rescheduled))
	}
	summary := f.sessions.items[started.SessionID]
	if summary.EndedAt == nil || summary.TotalCards != 3 || summary.CorrectAnswers != 2 {
		t.Fatalf("unexpected persisted summary %+v", summary)
	}
}

func TestSubmitAnswerRejectsInvalidQualityWithoutSideEffects(t *testing.T) {
	f := newStudyFixture(t)
	ctx := context.Background()
	started, err := f.uc.StartSession(ctx, 7, 10)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if _, err := f.uc.SubmitAnswer(ctx, started.SessionID, true, 2); !errors.Is(err, entity.ErrInvalidQuality) {
		t.Fatalf("expected ErrInvalidQuality, got %v", err)
	}
	p, err := f.uc.Progress(ctx, started.SessionID)
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if p.Answered != 0 || len(f.answers.items) != 0 || len(f.cards.rescheduled) != 0 {
		t.Fatalf("rejected answer left side effects: progress=%+v answers=%d", p, len(f.answers.items))
	}
}

func TestSubmitAnswerSurvivesPersistenceFailure(t *testing.T) {
	f := newStudyFixture(t)
	ctx := context.Background()
	started, err := f.uc.StartSession(ctx, 7, 10)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	f.answers.appendErr = errStorage
	f.cards.schedErr = errStorage

	res, err := f.uc.SubmitAnswer(ctx, started.SessionID, true, entity.QualityGood)
	if err != nil {
		t.Fatalf("persistence failure must not fail the answer: %v", err)
	}
	if res.Stats.Total != 1 {
		t.Fatalf("session did not advance: %+v", res.Stats)
	}
}

func TestEndSessionIsIdempotent(t *testing.T) {
	f := newStudyFixture(t)
	ctx := context.Background()
	started, err := f.uc.StartSession(ctx, 7, 10)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if _, err := f.uc.SubmitAnswer(ctx, started.SessionID, true, entity.QualityHard); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}

	first, err := f.uc.EndSession(ctx, started.SessionID)
	if err != nil {
		t.Fatalf("EndSession: %v", err)
	}
	saves := f.sessions.saves
	f.now = f.now.Add(time.Hour)
	second, err := f.uc.EndSession(ctx, started.SessionID)
	if err != nil {
		t.Fatalf("EndSession again: %v", err)
	}
	if first != second {
		t.Fatalf("EndSession not idempotent: %+v vs %+v", first, second)
	}
	if f.sessions.saves != saves {
		t.Fatal("second EndSession should not persist again")
	}
	if _, err := f.uc.SubmitAnswer(ctx, started.SessionID, true, entity.QualityGood); !errors.Is(err, entity.ErrSessionFinished) {
		t.Fatalf("expected ErrSessionFinished after end, got %v", err)
	}
}

func TestUnknownSession(t *testing.T) {
	f := newStudyFixture(t)
	ctx := context.Background()
	if _, err := f.uc.CurrentCard(ctx, "nope"); !errors.Is(err, entity.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if _, err := f.uc.EndSession(ctx, " "); !errors.Is(err, entity.ErrInvalidSessionID) {
		t.Fatalf("expected ErrInvalidSessionID, got %v", err)
	}
}

func TestExpireIdle(t *testing.T) {
	f := newStudyFixture(t)
	ctx := context.Background()
	idle, err := f.uc.StartSession(ctx, 7, 10)
	if err != nil {
		t.Fatal(err)
	}
	f.now = f.now.Add(20 * time.Minute)
	fresh, err := f.uc.StartSession(ctx, 7, 10)
	if err != nil {
		t.Fatal(err)
	}

	f.now = f.now.Add(15 * time.Minute)
	n, err := f.uc.ExpireIdle(ctx, 30*time.Minute)
	if err != nil {
		t.Fatalf("ExpireIdle: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 expired session, got %d", n)
	}
	if _, err := f.uc.CurrentCard(ctx, idle.SessionID); !errors.Is(err, entity.ErrSessionFinished) {
		t.Fatalf("idle session should be finished, got %v", err)
	}
	if _, err := f.uc.CurrentCard(ctx, fresh.SessionID); err != nil {
		t.Fatalf("fresh session should stay active: %v", err)
	}

	f.now = f.now.Add(31 * time.Minute)
	if _, err := f.uc.ExpireIdle(ctx, 30*time.Minute); err != nil {
		t.Fatalf("ExpireIdle: %v", err)
	}
	if _, err := f.store.Get(idle.SessionID); !errors.Is(err, entity.ErrSessionNotFound) {
		t.Fatalf("long finished session should be evicted, got %v", err)
	}
}

func TestEndSessionAfterEvictionReturnsStoredStats(t *testing.T) {
	f := newStudyFixture(t)
	ctx := context.Background()
	started, err := f.uc.StartSession(ctx, 7, 10)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if _, err := f.uc.SubmitAnswer(ctx, started.SessionID, true, entity.QualityGood); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if _, err := f.uc.SubmitAnswer(ctx, started.SessionID, false, entity.QualityFailed); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	first, err := f.uc.EndSession(ctx, started.SessionID)
	if err != nil {
		t.Fatalf("EndSession: %v", err)
	}

	f.now = f.now.Add(31 * time.Minute)
	if _, err := f.uc.ExpireIdle(ctx, 30*time.Minute); err != nil {
		t.Fatalf("ExpireIdle: %v", err)
	}
	if _, err := f.store.Get(started.SessionID); !errors.Is(err, entity.ErrSessionNotFound) {
		t.Fatalf("expected session to be evicted, got %v", err)
	}

	again, err := f.uc.EndSession(ctx, started.SessionID)
	if err != nil {
		t.Fatalf("EndSession after eviction: %v", err)
	}
	if again != first {
		t.Fatalf("stats changed after eviction: %+v vs %+v", first, again)
	}
	if _, err := f.uc.EndSession(ctx, "never-started"); !errors.Is(err, entity.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestConcurrentEndSessionPersistsOnce(t *testing.T) {
	f := newStudyFixture(t)
	ctx := context.Background()
	started, err := f.uc.StartSession(ctx, 7, 10)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	saves := f.sessions.saves

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.uc.EndSession(ctx, started.SessionID); err != nil {
				t.Errorf("EndSession: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := f.sessions.saves - saves; got != 1 {
		t.Fatalf("expected one summary write, got %d", got)
	}
}

func TestSubmitAnswerReportsFinishOnLastCardOnly(t *testing.T) {
	f := newStudyFixture(t)
	ctx := context.Background()
	started, err := f.uc.StartSession(ctx, 7, 10)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	for i := 1; i <= 3; i++ {
		correct, quality := true, entity.QualityGood
		if i == 2 {
			correct, quality = false, entity.QualityFailed
		}
		res, err := f.uc.SubmitAnswer(ctx, started.SessionID, correct, quality)
		if err != nil {
			t.Fatalf("SubmitAnswer %d: %v", i, err)
		}
		if res.Finished != (i == 3) || res.Progress.Answered != i || res.Stats.Total != i {
			t.Fatalf("answer %d: unexpected result %+v", i, res)
		}
	}
	saves := f.sessions.saves
	if _, err := f.uc.EndSession(ctx, started.SessionID); err != nil {
		t.Fatalf("EndSession: %v", err)
	}
	if f.sessions.saves != saves {
		t.Fatal("ending a completed session should not persist again")
	}
}

func TestHistory(t *testing.T) {
	f := newStudyFixture(t)
	ctx := context.Background()
	var ids []string
	for i := 0; i < 4; i++ {
		started, err := f.uc.StartSession(ctx, 7, 10)
		if err != nil {
			t.Fatalf("StartSession: %v", err)
		}
		ids = append(ids, started.SessionID)
		if _, err := f.uc.SubmitAnswer(ctx, started.SessionID, true, entity.QualityEasy); err != nil {
			t.Fatalf("SubmitAnswer: %v", err)
		}
		f.now = f.now.Add(2 * time.Minute)
		if _, err := f.uc.EndSession(ctx, started.SessionID); err != nil {
			t.Fatalf("EndSession: %v", err)
		}
		f.now = f.now.Add(time.Hour)
	}

	recent, err := f.uc.History(ctx, 7, 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("expected default of 3 sessions, got %d", len(recent))
	}
	if recent[0].ID != ids[3] || recent[2].ID != ids[1] {
		t.Fatalf("unexpected order: %s..%s", recent[0].ID, recent[2].ID)
	}
	if recent[0].Duration() != 2*time.Minute || recent[0].Stats().AccuracyPercent != 100 {
		t.Fatalf("unexpected summary %+v", recent[0])
	}

	all, err := f.uc.History(ctx, 7, 1000)
	if err != nil || len(all) != 4 {
		t.Fatalf("expected all 4 sessions, got %d (%v)", len(all), err)
	}
	if _, err := f.uc.History(ctx, 0, 3); !errors.Is(err, entity.ErrInvalidLearnerID) {
		t.Fatalf("expected ErrInvalidLearnerID, got %v", err)
	}
	f.sessions.err = errStorage
	if _, err := f.uc.History(ctx, 7, 3); !errors.Is(err, errStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
}
