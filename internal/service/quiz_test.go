package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/aliskhannn/anatomy-quiz-bot/internal/domain/entities"
	"github.com/aliskhannn/anatomy-quiz-bot/internal/infra/memory"
	"github.com/aliskhannn/anatomy-quiz-bot/internal/service"
)

type fakeQuestionRepo struct {
	questions []entities.Question
	err       error
}

func (f *fakeQuestionRepo) GetAll(_ context.Context) ([]entities.Question, error) {
	return f.questions, f.err
}

type fakeStatsRepo struct {
	records   map[string]*entities.UserStats
	upsertErr error
}

func newFakeStatsRepo() *fakeStatsRepo {
	return &fakeStatsRepo{records: make(map[string]*entities.UserStats)}
}

func (f *fakeStatsRepo) Get(_ context.Context, userID string) (*entities.UserStats, error) {
	if stats, ok := f.records[userID]; ok {
		copied := *stats
		copied.CorrectQIDs = append([]int(nil), stats.CorrectQIDs...)
		return &copied, nil
	}
	return entities.NewUserStats(userID), nil
}

func (f *fakeStatsRepo) Upsert(_ context.Context, stats *entities.UserStats) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	copied := *stats
	copied.CorrectQIDs = append([]int(nil), stats.CorrectQIDs...)
	f.records[stats.UserID] = &copied
	return nil
}

func (f *fakeStatsRepo) Reset(_ context.Context, userID string) error {
	delete(f.records, userID)
	return nil
}

type sentMessage struct {
	kind string // "text", "question", "continue"
	text string
}

type fakeMessenger struct {
	sent []sentMessage
}

func (f *fakeMessenger) PushText(_ context.Context, _ string, text string) error {
	f.sent = append(f.sent, sentMessage{kind: "text", text: text})
	return nil
}

func (f *fakeMessenger) PushQuestion(_ context.Context, _ string, q entities.Question, _ int) error {
	f.sent = append(f.sent, sentMessage{kind: "question", text: q.Prompt})
	return nil
}

func (f *fakeMessenger) PushContinuePrompt(_ context.Context, _ string) error {
	f.sent = append(f.sent, sentMessage{kind: "continue"})
	return nil
}

func (f *fakeMessenger) last() sentMessage {
	if len(f.sent) == 0 {
		return sentMessage{}
	}
	return f.sent[len(f.sent)-1]
}

type fixture struct {
	quiz      *service.QuizService
	questions *fakeQuestionRepo
	stats     *fakeStatsRepo
	sessions  *memory.SessionStore
	messenger *fakeMessenger
}

func newFixture(questions ...entities.Question) *fixture {
	qrepo := &fakeQuestionRepo{questions: questions}
	srepo := newFakeStatsRepo()
	sessions := memory.NewSessionStore()
	messenger := &fakeMessenger{}
	logger := zap.NewNop()

	progress := service.NewProgressService(srepo, logger)
	quiz := service.NewQuizService(qrepo, progress, sessions, messenger, logger)

	return &fixture{
		quiz:      quiz,
		questions: qrepo,
		stats:     srepo,
		sessions:  sessions,
		messenger: messenger,
	}
}

func testQuestion(id, answer int) entities.Question {
	return entities.Question{
		ID:     id,
		Prompt: "Which valve sits between the right atrium and right ventricle?",
		Options: []string{
			"Mitral valve", "Tricuspid valve", "Aortic valve", "Pulmonary valve",
		},
		Answer:      answer,
		Explanation: "The tricuspid valve has three cusps.",
	}
}

func TestDispatchCreatesSessionAndPushesQuestion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(testQuestion(1, 2))

	f.quiz.DispatchQuestion(ctx, "U1")

	state, ok := f.sessions.Get("U1")
	if !ok || state.Answered {
		t.Fatalf("expected unanswered session, got ok=%v state=%+v", ok, state)
	}
	if got := f.messenger.last(); got.kind != "question" {
		t.Fatalf("expected a question push, got %+v", got)
	}
}

func TestDispatchEmptyPoolSendsSingleMessageNoSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture() // no questions at all

	f.quiz.DispatchQuestion(ctx, "U1")

	if len(f.messenger.sent) != 1 || f.messenger.sent[0].kind != "text" {
		t.Fatalf("expected exactly one text message, got %+v", f.messenger.sent)
	}
	if _, ok := f.sessions.Get("U1"); ok {
		t.Fatal("expected no session mutation for empty pool")
	}
}

func TestDispatchTreatsLoadErrorAsEmptyPool(t *testing.T) {
	ctx := context.Background()
	f := newFixture(testQuestion(1, 2))
	f.questions.err = errors.New("backend down")

	f.quiz.DispatchQuestion(ctx, "U1")

	if len(f.messenger.sent) != 1 || f.messenger.sent[0].kind != "text" {
		t.Fatalf("expected one fallback message, got %+v", f.messenger.sent)
	}
	if _, ok := f.sessions.Get("U1"); ok {
		t.Fatal("expected no session on load failure")
	}
}

func TestDispatchExcludesSolvedQuestions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(testQuestion(1, 2), testQuestion(2, 2))

	// User already solved question 1.
	stats := entities.NewUserStats("U1")
	stats.AddCorrect(1)
	if err := f.stats.Upsert(ctx, stats); err != nil {
		t.Fatalf("seed stats: %v", err)
	}

	for i := 0; i < 10; i++ {
		f.quiz.DispatchQuestion(ctx, "U1")
		state, ok := f.sessions.Get("U1")
		if !ok {
			t.Fatal("expected session")
		}
		if state.Question.ID == 1 {
			t.Fatal("solved question must not be re-dispatched")
		}
	}
}

func TestDispatchAllSolvedSendsExhaustedMessage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(testQuestion(1, 2))

	stats := entities.NewUserStats("U1")
	stats.AddCorrect(1)
	_ = f.stats.Upsert(ctx, stats)

	f.quiz.DispatchQuestion(ctx, "U1")

	if len(f.messenger.sent) != 1 || f.messenger.sent[0].kind != "text" {
		t.Fatalf("expected one exhausted-pool message, got %+v", f.messenger.sent)
	}
	if !strings.Contains(f.messenger.sent[0].text, "reset") {
		t.Fatalf("expected hint to reset, got %q", f.messenger.sent[0].text)
	}
	if _, ok := f.sessions.Get("U1"); ok {
		t.Fatal("expected no session mutation")
	}
}

func TestSubmitCorrectAnswer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(testQuestion(1, 2))

	f.quiz.DispatchQuestion(ctx, "U1")
	f.quiz.SubmitAnswer(ctx, "U1", 2)

	got, _ := f.stats.Get(ctx, "U1")
	if got.Correct != 1 || got.Wrong != 0 {
		t.Fatalf("expected correct=1 wrong=0, got %+v", got)
	}
	if !got.HasSolved(1) {
		t.Fatalf("expected qid 1 in answered set, got %v", got.CorrectQIDs)
	}

	// Result message then continue prompt.
	n := len(f.messenger.sent)
	if n < 2 || f.messenger.sent[n-2].kind != "text" || f.messenger.sent[n-1].kind != "continue" {
		t.Fatalf("expected result text followed by continue prompt, got %+v", f.messenger.sent)
	}
	if !strings.Contains(f.messenger.sent[n-2].text, "Correct!") {
		t.Fatalf("expected correct banner, got %q", f.messenger.sent[n-2].text)
	}
}

func TestSubmitWrongAnswerNamesCorrectOption(t *testing.T) {
	ctx := context.Background()
	f := newFixture(testQuestion(1, 2))

	f.quiz.DispatchQuestion(ctx, "U1")
	f.quiz.SubmitAnswer(ctx, "U1", 3)

	got, _ := f.stats.Get(ctx, "U1")
	if got.Correct != 0 || got.Wrong != 1 {
		t.Fatalf("expected correct=0 wrong=1, got %+v", got)
	}

	result := f.messenger.sent[len(f.messenger.sent)-2]
	if !strings.Contains(result.text, "Tricuspid valve") {
		t.Fatalf("result must name the correct option, got %q", result.text)
	}
	if !strings.Contains(result.text, "Your answer: 3. Aortic valve") {
		t.Fatalf("result must echo the user's own pick, got %q", result.text)
	}
}

func TestSubmitDuplicateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(testQuestion(1, 2))

	f.quiz.DispatchQuestion(ctx, "U1")
	f.quiz.SubmitAnswer(ctx, "U1", 2)
	f.quiz.SubmitAnswer(ctx, "U1", 2)

	got, _ := f.stats.Get(ctx, "U1")
	if got.Total() != 1 {
		t.Fatalf("expected exactly one stats update, got total=%d", got.Total())
	}
}

func TestSubmitWithoutSessionIsNoOp(t *testing.T) {
	ctx := context.Background()
	f := newFixture(testQuestion(1, 2))

	f.quiz.SubmitAnswer(ctx, "U1", 2)

	got, _ := f.stats.Get(ctx, "U1")
	if got.Total() != 0 {
		t.Fatalf("expected no stats mutation, got %+v", got)
	}
	if last := f.messenger.last(); last.kind != "text" || !strings.Contains(last.text, "start") {
		t.Fatalf("expected gentle no-active-question notice, got %+v", last)
	}
}

func TestSubmitOutOfRangeChoiceRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(testQuestion(1, 2))

	f.quiz.DispatchQuestion(ctx, "U1")
	f.quiz.SubmitAnswer(ctx, "U1", 7)

	// Session stays open for a real answer.
	state, ok := f.sessions.Get("U1")
	if !ok || state.Answered {
		t.Fatalf("expected session untouched, got ok=%v state=%+v", ok, state)
	}
	got, _ := f.stats.Get(ctx, "U1")
	if got.Total() != 0 {
		t.Fatalf("expected no stats mutation, got %+v", got)
	}
}

func TestRedispatchSupersedesSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(testQuestion(1, 2), testQuestion(2, 3))

	f.quiz.DispatchQuestion(ctx, "U1")
	f.quiz.DispatchQuestion(ctx, "U1")

	second, ok := f.sessions.Get("U1")
	if !ok || second.Answered {
		t.Fatalf("superseding session must start unanswered, got ok=%v state=%+v", ok, second)
	}

	// The answer is evaluated against the current question only.
	f.quiz.SubmitAnswer(ctx, "U1", second.Question.Answer)
	got, _ := f.stats.Get(ctx, "U1")
	if got.Correct != 1 {
		t.Fatalf("expected answer evaluated against superseding question, got %+v", got)
	}
}

func TestPersistenceFailureReopensSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(testQuestion(1, 2))

	f.quiz.DispatchQuestion(ctx, "U1")
	f.stats.upsertErr = errors.New("write timeout")

	f.quiz.SubmitAnswer(ctx, "U1", 2)

	if last := f.messenger.last(); last.kind != "text" || !strings.Contains(last.text, "try again") {
		t.Fatalf("expected generic failure message, got %+v", last)
	}

	state, ok := f.sessions.Get("U1")
	if !ok || state.Answered {
		t.Fatal("expected session reopened after failed stats write")
	}

	// Backend recovers; the resubmission lands.
	f.stats.upsertErr = nil
	f.quiz.SubmitAnswer(ctx, "U1", 2)

	got, _ := f.stats.Get(ctx, "U1")
	if got.Correct != 1 {
		t.Fatalf("expected retry to record the answer, got %+v", got)
	}
}

func TestResetReturnsUserToZero(t *testing.T) {
	ctx := context.Background()
	f := newFixture(testQuestion(1, 2))

	f.quiz.DispatchQuestion(ctx, "U1")
	f.quiz.SubmitAnswer(ctx, "U1", 2)

	if err := f.quiz.ResetProgress(ctx, "U1"); err != nil {
		t.Fatalf("reset: %v", err)
	}

	if _, ok := f.sessions.Get("U1"); ok {
		t.Fatal("expected session cleared on reset")
	}
	stats := f.quiz.Score(ctx, "U1")
	if stats.Total() != 0 || len(stats.CorrectQIDs) != 0 {
		t.Fatalf("expected zero record after reset, got %+v", stats)
	}

	// Solved questions are drawable again.
	f.quiz.DispatchQuestion(ctx, "U1")
	if _, ok := f.sessions.Get("U1"); !ok {
		t.Fatal("expected dispatch to work after reset")
	}
}
