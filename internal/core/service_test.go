package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

type analyzerFunc func(ctx context.Context, text string) (*GrammarAnalysis, error)

func (f analyzerFunc) AnalyzeText(ctx context.Context, text string) (*GrammarAnalysis, error) {
	return f(ctx, text)
}

type stubStore struct {
	recorded  []Correction
	recordErr error
}

func (s *stubStore) RecordCorrection(ctx context.Context, c *Correction) (int64, error) {
	if s.recordErr != nil {
		return 0, s.recordErr
	}
	s.recorded = append(s.recorded, *c)
	return int64(len(s.recorded)), nil
}

func (s *stubStore) DailyStats(ctx context.Context, date string) (*DailyStats, error) {
	return &DailyStats{Date: date}, nil
}

func (s *stubStore) DailyCorrections(ctx context.Context, date string) ([]Correction, error) {
	return nil, nil
}

func (s *stubStore) WeeklyStats(ctx context.Context, weeksBack int) (*WeeklyStats, error) {
	return &WeeklyStats{}, nil
}

func (s *stubStore) TopErrors(ctx context.Context, limit, days int) ([]TopError, error) {
	return nil, nil
}

func (s *stubStore) AllTimeStats(ctx context.Context) (*AllTimeStats, error) {
	return &AllTimeStats{}, nil
}

func (s *stubStore) Close() error { return nil }

type stubJournal struct {
	appended []string
	err      error
}

func (j *stubJournal) Append(originalText string, analysis *GrammarAnalysis) error {
	if j.err != nil {
		return j.err
	}
	j.appended = append(j.appended, originalText)
	return nil
}

type stubQueue struct {
	entries    []RetryEntry
	enqueueErr error
	replaced   [][]RetryEntry
}

func (q *stubQueue) Enqueue(text string) error {
	if q.enqueueErr != nil {
		return q.enqueueErr
	}
	q.entries = append(q.entries, RetryEntry{Prompt: text})
	return nil
}

func (q *stubQueue) Load() ([]RetryEntry, error) { return q.entries, nil }

func (q *stubQueue) Replace(entries []RetryEntry) error {
	q.replaced = append(q.replaced, entries)
	q.entries = entries
	return nil
}

type stubNotifier struct {
	titles   []string
	messages []string
}

func (n *stubNotifier) Notify(title, message string) error {
	n.titles = append(n.titles, title)
	n.messages = append(n.messages, message)
	return nil
}

type fixture struct {
	store    *stubStore
	journal  *stubJournal
	queue    *stubQueue
	notifier *stubNotifier
	service  *PipelineService
}

func newFixture(analyzer Analyzer) *fixture {
	f := &fixture{
		store:    &stubStore{},
		journal:  &stubJournal{},
		queue:    &stubQueue{},
		notifier: &stubNotifier{},
	}
	f.service = NewPipelineService(analyzer, f.store, f.journal, f.queue, f.notifier,
		zap.NewNop(), time.Second, time.Millisecond, 2, "English Buddy")
	return f
}

func findingsAnalysis() *GrammarAnalysis {
	return &GrammarAnalysis{
		HasErrors: true,
		UserText:  "I has a error",
		Findings: []Finding{
			{Original: "I has", Correction: "I have", Category: CategoryGrammar},
			{Original: "a error", Correction: "an error", Category: CategoryGrammar},
			{Original: "teh", Correction: "the", Category: CategorySpelling},
		},
		Summary: "语法错误",
	}
}

func ptr(s string) *string { return &s }

func TestProcessPromptRejectedSkipsAnalyzer(t *testing.T) {
	called := false
	f := newFixture(analyzerFunc(func(ctx context.Context, text string) (*GrammarAnalysis, error) {
		called = true
		return &GrammarAnalysis{}, nil
	}))

	outcome, _, err := f.service.ProcessPrompt(context.Background(), "/commit")
	if err != nil {
		t.Fatalf("ProcessPrompt: %v", err)
	}
	if outcome != OutcomeRejected {
		t.Errorf("outcome = %q, want rejected", outcome)
	}
	if called {
		t.Error("analyzer must not run for rejected prompts")
	}
	if len(f.store.recorded) != 0 || len(f.queue.entries) != 0 || len(f.journal.appended) != 0 {
		t.Error("rejected prompts must leave no traces")
	}
}

func TestProcessPromptRecordsFindings(t *testing.T) {
	f := newFixture(analyzerFunc(func(ctx context.Context, text string) (*GrammarAnalysis, error) {
		return findingsAnalysis(), nil
	}))

	outcome, analysis, err := f.service.ProcessPrompt(context.Background(), "I has a error in my code")
	if err != nil {
		t.Fatalf("ProcessPrompt: %v", err)
	}
	if outcome != OutcomeRecorded {
		t.Errorf("outcome = %q, want recorded", outcome)
	}
	if analysis == nil || len(analysis.Findings) != 3 {
		t.Errorf("analysis = %+v, want the analyzer result back", analysis)
	}
	if len(f.store.recorded) != 1 {
		t.Fatalf("store has %d corrections, want 1", len(f.store.recorded))
	}
	if got := f.store.recorded[0].UserText; got != "I has a error" {
		t.Errorf("stored user text = %q", got)
	}
	if len(f.journal.appended) != 1 {
		t.Errorf("journal has %d entries, want 1", len(f.journal.appended))
	}

	if len(f.notifier.messages) != 1 {
		t.Fatalf("got %d notifications, want 1", len(f.notifier.messages))
	}
	msg := f.notifier.messages[0]
	if msg != "「I has」→「I have」 | 「a error」→「an error」" {
		t.Errorf("notification = %q", msg)
	}
	if strings.Contains(msg, "teh") {
		t.Error("notification should cap at two findings")
	}
}

func TestProcessPromptJournalFailureDoesNotBlockCommit(t *testing.T) {
	f := newFixture(analyzerFunc(func(ctx context.Context, text string) (*GrammarAnalysis, error) {
		return findingsAnalysis(), nil
	}))
	f.journal.err = errors.New("disk full")

	outcome, _, err := f.service.ProcessPrompt(context.Background(), "I has a error in my code")
	if err != nil {
		t.Fatalf("ProcessPrompt: %v", err)
	}
	if outcome != OutcomeRecorded {
		t.Errorf("outcome = %q, want recorded despite journal failure", outcome)
	}
	if len(f.store.recorded) != 1 {
		t.Errorf("store has %d corrections, want 1", len(f.store.recorded))
	}
}

func TestProcessPromptStoreFailureComesBeforeJournal(t *testing.T) {
	f := newFixture(analyzerFunc(func(ctx context.Context, text string) (*GrammarAnalysis, error) {
		return findingsAnalysis(), nil
	}))
	f.store.recordErr = errors.New("database locked")

	outcome, _, err := f.service.ProcessPrompt(context.Background(), "I has a error in my code")
	if err == nil {
		t.Fatal("expected an error when the store fails")
	}
	if outcome != OutcomeFailed {
		t.Errorf("outcome = %q, want failed", outcome)
	}
	if len(f.journal.appended) != 0 {
		t.Error("journal must not be written when the store commit fails")
	}
}

func TestProcessPromptAnalyzerFailureQueues(t *testing.T) {
	f := newFixture(analyzerFunc(func(ctx context.Context, text string) (*GrammarAnalysis, error) {
		return nil, errors.New("api unreachable")
	}))

	outcome, _, err := f.service.ProcessPrompt(context.Background(), "I has a error in my code")
	if err != nil {
		t.Fatalf("ProcessPrompt: %v", err)
	}
	if outcome != OutcomeQueued {
		t.Errorf("outcome = %q, want queued", outcome)
	}
	if len(f.queue.entries) != 1 || f.queue.entries[0].Prompt != "I has a error in my code" {
		t.Errorf("queue = %+v, want the original prompt", f.queue.entries)
	}
	if len(f.store.recorded) != 0 {
		t.Error("nothing should be stored on analyzer failure")
	}
}

func TestProcessPromptEnqueueFailureSurfaces(t *testing.T) {
	f := newFixture(analyzerFunc(func(ctx context.Context, text string) (*GrammarAnalysis, error) {
		return nil, errors.New("api unreachable")
	}))
	f.queue.enqueueErr = errors.New("read-only filesystem")

	outcome, _, err := f.service.ProcessPrompt(context.Background(), "I has a error in my code")
	if err == nil {
		t.Fatal("expected the queue write failure to surface")
	}
	if outcome != OutcomeQueued {
		t.Errorf("outcome = %q, want queued", outcome)
	}
}

func TestProcessPromptSkipped(t *testing.T) {
	f := newFixture(analyzerFunc(func(ctx context.Context, text string) (*GrammarAnalysis, error) {
		return &GrammarAnalysis{Skipped: true}, nil
	}))

	outcome, _, err := f.service.ProcessPrompt(context.Background(), "cat error.log output here")
	if err != nil {
		t.Fatalf("ProcessPrompt: %v", err)
	}
	if outcome != OutcomeSkipped {
		t.Errorf("outcome = %q, want skipped", outcome)
	}
	if len(f.store.recorded) != 0 || len(f.queue.entries) != 0 {
		t.Error("skipped analyses must leave no traces")
	}
}

func TestProcessPromptClean(t *testing.T) {
	f := newFixture(analyzerFunc(func(ctx context.Context, text string) (*GrammarAnalysis, error) {
		return &GrammarAnalysis{UserText: "all good here"}, nil
	}))

	outcome, _, err := f.service.ProcessPrompt(context.Background(), "this text is perfectly fine")
	if err != nil {
		t.Fatalf("ProcessPrompt: %v", err)
	}
	if outcome != OutcomeClean {
		t.Errorf("outcome = %q, want clean", outcome)
	}
	if len(f.store.recorded) != 0 {
		t.Error("clean analyses must not be stored")
	}
}

func TestProcessPromptRephraseOnlyNotification(t *testing.T) {
	f := newFixture(analyzerFunc(func(ctx context.Context, text string) (*GrammarAnalysis, error) {
		return &GrammarAnalysis{
			UserText:         "could you help me",
			BetterExpression: ptr("Could you give me a hand with this?"),
		}, nil
	}))

	outcome, _, err := f.service.ProcessPrompt(context.Background(), "could you help me here")
	if err != nil {
		t.Fatalf("ProcessPrompt: %v", err)
	}
	if outcome != OutcomeRecorded {
		t.Errorf("outcome = %q, want recorded (rephrase counts)", outcome)
	}
	if len(f.notifier.messages) != 1 || !strings.HasPrefix(f.notifier.messages[0], "Better: ") {
		t.Errorf("notifications = %+v, want a Better: message", f.notifier.messages)
	}
}

func TestNotificationTextTruncatesLongRephrase(t *testing.T) {
	long := strings.Repeat("a", 60)
	msg := notificationText(&GrammarAnalysis{BetterExpression: &long})
	want := "Better: " + strings.Repeat("a", 47) + "..."
	if msg != want {
		t.Errorf("notification = %q, want %q", msg, want)
	}

	short := "short enough"
	msg = notificationText(&GrammarAnalysis{BetterExpression: &short})
	if msg != "Better: short enough" {
		t.Errorf("notification = %q", msg)
	}
}

func TestRetryFailedDrainsQueue(t *testing.T) {
	calls := map[string]int{}
	analyzer := analyzerFunc(func(ctx context.Context, text string) (*GrammarAnalysis, error) {
		calls[text]++
		switch {
		case strings.Contains(text, "keeps failing"):
			return nil, errors.New("still down")
		case strings.Contains(text, "nothing wrong"):
			return &GrammarAnalysis{UserText: text}, nil
		default:
			return findingsAnalysis(), nil
		}
	})

	f := newFixture(analyzer)
	f.queue.entries = []RetryEntry{
		{Prompt: "你好世界"},
		{Prompt: "please fix my codes here"},
		{Prompt: "this one keeps failing badly"},
		{Prompt: "nothing wrong with this text"},
	}

	summary, err := f.service.RetryFailed(context.Background())
	if err != nil {
		t.Fatalf("RetryFailed: %v", err)
	}

	if summary.Attempted != 4 || summary.Resolved != 3 || summary.StillFailed != 1 || summary.WithFindings != 1 {
		t.Errorf("summary = %+v, want 4 attempted, 3 resolved, 1 still failed, 1 with findings", summary)
	}
	if calls["你好世界"] != 0 {
		t.Error("entries dropped at admission must not hit the analyzer")
	}
	if calls["this one keeps failing badly"] != 2 {
		t.Errorf("failing entry analyzed %d times, want 2 attempts", calls["this one keeps failing badly"])
	}
	if len(f.store.recorded) != 1 {
		t.Errorf("store has %d corrections, want 1", len(f.store.recorded))
	}

	if len(f.queue.replaced) != 1 {
		t.Fatalf("queue rewritten %d times, want 1", len(f.queue.replaced))
	}
	kept := f.queue.replaced[0]
	if len(kept) != 1 || kept[0].Prompt != "this one keeps failing badly" {
		t.Errorf("re-queued = %+v, want only the still-failing entry", kept)
	}

	last := f.notifier.messages[len(f.notifier.messages)-1]
	if last != "Retried 4: 3 OK, 1 still failed" {
		t.Errorf("summary notification = %q", last)
	}
	if f.notifier.titles[len(f.notifier.titles)-1] != "English Buddy Recall" {
		t.Errorf("summary title = %q", f.notifier.titles[len(f.notifier.titles)-1])
	}
}

func TestRetryFailedEmptyQueue(t *testing.T) {
	called := false
	f := newFixture(analyzerFunc(func(ctx context.Context, text string) (*GrammarAnalysis, error) {
		called = true
		return &GrammarAnalysis{}, nil
	}))

	summary, err := f.service.RetryFailed(context.Background())
	if err != nil {
		t.Fatalf("RetryFailed: %v", err)
	}
	if summary.Attempted != 0 {
		t.Errorf("summary = %+v, want nothing attempted", summary)
	}
	if called {
		t.Error("empty queue must not hit the analyzer")
	}
	if len(f.notifier.messages) != 1 || f.notifier.messages[0] != "No failed checks to retry" {
		t.Errorf("notifications = %+v", f.notifier.messages)
	}
}

func TestRetryFailedSecondAttemptSucceeds(t *testing.T) {
	attempts := 0
	f := newFixture(analyzerFunc(func(ctx context.Context, text string) (*GrammarAnalysis, error) {
		attempts++
		if attempts == 1 {
			return nil, errors.New("flaky")
		}
		return findingsAnalysis(), nil
	}))
	f.queue.entries = []RetryEntry{{Prompt: "please fix my codes here"}}

	summary, err := f.service.RetryFailed(context.Background())
	if err != nil {
		t.Fatalf("RetryFailed: %v", err)
	}
	if summary.Resolved != 1 || summary.StillFailed != 0 || summary.WithFindings != 1 {
		t.Errorf("summary = %+v, want a recovered entry with findings", summary)
	}
	if got := f.notifier.messages[len(f.notifier.messages)-1]; got != "All 1 check(s) completed successfully (1 with findings)" {
		t.Errorf("summary notification = %q", got)
	}
	if len(f.queue.entries) != 0 {
		t.Errorf("queue should be empty after a clean drain, got %+v", f.queue.entries)
	}
}

func TestRetrySummaryMessage(t *testing.T) {
	tests := []struct {
		name    string
		summary RetrySummary
		want    string
	}{
		{"empty", RetrySummary{}, "No failed checks to retry"},
		{"partial", RetrySummary{Attempted: 3, Resolved: 2, StillFailed: 1}, "Retried 3: 2 OK, 1 still failed"},
		{"all clean", RetrySummary{Attempted: 2, Resolved: 2}, "All 2 check(s) completed successfully"},
		{"all clean with findings", RetrySummary{Attempted: 2, Resolved: 2, WithFindings: 1},
			"All 2 check(s) completed successfully (1 with findings)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.summary.Message(); got != tt.want {
				t.Errorf("Message() = %q, want %q", got, tt.want)
			}
		})
	}
}
