package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/english-buddy/internal/admission"
)

// RetrySummary reports what a queue drain accomplished
type RetrySummary struct {
	Attempted    int
	Resolved     int
	StillFailed  int
	WithFindings int
}

// Message renders the summary the way the recall notification shows it
func (r *RetrySummary) Message() string {
	if r.Attempted == 0 {
		return "No failed checks to retry"
	}
	if r.StillFailed > 0 {
		return fmt.Sprintf("Retried %d: %d OK, %d still failed", r.Attempted, r.Resolved, r.StillFailed)
	}
	msg := fmt.Sprintf("All %d check(s) completed successfully", r.Resolved)
	if r.WithFindings > 0 {
		msg += fmt.Sprintf(" (%d with findings)", r.WithFindings)
	}
	return msg
}

// PipelineService runs prompts through admission, analysis, and persistence
type PipelineService struct {
	analyzer      Analyzer
	store         CorrectionStore
	journal       Journal
	queue         RetryQueue
	notifier      Notifier
	logger        *zap.Logger
	timeout       time.Duration
	retryDelay    time.Duration
	retryAttempts int
	notifyTitle   string
}

// NewPipelineService creates a new pipeline service
func NewPipelineService(
	analyzer Analyzer,
	store CorrectionStore,
	journal Journal,
	queue RetryQueue,
	notifier Notifier,
	logger *zap.Logger,
	timeout time.Duration,
	retryDelay time.Duration,
	retryAttempts int,
	notifyTitle string,
) *PipelineService {
	return &PipelineService{
		analyzer:      analyzer,
		store:         store,
		journal:       journal,
		queue:         queue,
		notifier:      notifier,
		logger:        logger,
		timeout:       timeout,
		retryDelay:    retryDelay,
		retryAttempts: retryAttempts,
		notifyTitle:   notifyTitle,
	}
}

// ProcessPrompt runs one prompt through the full pipeline. The returned
// analysis is nil when the prompt never reached the analyzer.
func (s *PipelineService) ProcessPrompt(ctx context.Context, text string) (Outcome, *GrammarAnalysis, error) {
	if !admission.ShouldCheck(text) {
		s.logger.Debug("Prompt rejected by admission filter")
		return OutcomeRejected, nil, nil
	}

	analysis, err := s.analyze(ctx, text)
	if err != nil {
		s.logger.Warn("Analysis failed, queueing prompt for retry", zap.Error(err))
		if qerr := s.queue.Enqueue(text); qerr != nil {
			return OutcomeQueued, nil, fmt.Errorf("failed to queue prompt after analyzer failure: %w", qerr)
		}
		return OutcomeQueued, nil, nil
	}

	if analysis.Skipped {
		s.logger.Debug("Analyzer skipped the prompt")
		return OutcomeSkipped, analysis, nil
	}
	if !analysis.Recordable() {
		s.logger.Debug("No findings in prompt")
		return OutcomeClean, analysis, nil
	}

	if err := s.persist(ctx, text, analysis); err != nil {
		return OutcomeFailed, analysis, err
	}

	s.notify(s.notifyTitle, notificationText(analysis))
	return OutcomeRecorded, analysis, nil
}

// RetryFailed drains the retry queue: every entry is re-admitted, analyzed
// with retries, and either persisted, dropped, or re-queued.
func (s *PipelineService) RetryFailed(ctx context.Context) (*RetrySummary, error) {
	entries, err := s.queue.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load retry queue: %w", err)
	}

	summary := &RetrySummary{Attempted: len(entries)}
	if len(entries) == 0 {
		s.notify(s.notifyTitle+" Recall", summary.Message())
		return summary, nil
	}

	var stillFailed []RetryEntry
	for _, entry := range entries {
		if !admission.ShouldCheck(entry.Prompt) {
			s.logger.Debug("Dropping queued prompt that no longer qualifies")
			summary.Resolved++
			continue
		}

		analysis, err := s.analyzeWithRetry(ctx, entry.Prompt)
		if err != nil {
			s.logger.Warn("Queued prompt still failing", zap.Error(err))
			stillFailed = append(stillFailed, entry)
			continue
		}

		if analysis.Skipped || !analysis.Recordable() {
			summary.Resolved++
			continue
		}

		if err := s.persist(ctx, entry.Prompt, analysis); err != nil {
			s.logger.Error("Failed to persist retried analysis", zap.Error(err))
			stillFailed = append(stillFailed, entry)
			continue
		}
		summary.Resolved++
		summary.WithFindings++
	}

	summary.StillFailed = len(stillFailed)
	if err := s.queue.Replace(stillFailed); err != nil {
		return summary, fmt.Errorf("failed to rewrite retry queue: %w", err)
	}

	s.notify(s.notifyTitle+" Recall", summary.Message())
	return summary, nil
}

func (s *PipelineService) analyze(ctx context.Context, text string) (*GrammarAnalysis, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.analyzer.AnalyzeText(ctx, text)
}

func (s *PipelineService) analyzeWithRetry(ctx context.Context, text string) (*GrammarAnalysis, error) {
	attempts := s.retryAttempts
	if attempts < 1 {
		attempts = 1
	}

	var analysis *GrammarAnalysis
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(s.retryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		if analysis, err = s.analyze(ctx, text); err == nil {
			return analysis, nil
		}
	}
	return nil, err
}

// persist writes the analysis to the store and then the journal. The store
// is the source of truth; a journal failure never rolls its commit back.
func (s *PipelineService) persist(ctx context.Context, originalText string, analysis *GrammarAnalysis) error {
	correction := &Correction{
		OriginalText:     originalText,
		UserText:         analysis.UserText,
		BetterExpression: analysis.BetterExpression,
		Summary:          analysis.Summary,
		Findings:         analysis.Findings,
	}
	if correction.UserText == "" {
		correction.UserText = originalText
	}

	id, err := s.store.RecordCorrection(ctx, correction)
	if err != nil {
		return fmt.Errorf("failed to record correction: %w", err)
	}

	if err := s.journal.Append(originalText, analysis); err != nil {
		s.logger.Error("Failed to append journal entry",
			zap.Error(err), zap.Int64("correction_id", id))
	}

	s.logger.Info("Recorded correction",
		zap.Int64("correction_id", id),
		zap.Int("findings", len(analysis.Findings)),
		zap.Bool("rephrased", analysis.BetterExpression != nil))
	return nil
}

func (s *PipelineService) notify(title, message string) {
	if message == "" {
		return
	}
	if err := s.notifier.Notify(title, message); err != nil {
		s.logger.Warn("Failed to send notification", zap.Error(err))
	}
}

// notificationText renders findings the way a desktop banner shows them:
// at most two corrections, or the rephrasing when nothing was wrong
func notificationText(a *GrammarAnalysis) string {
	var parts []string
	for i, f := range a.Findings {
		if i == 2 {
			break
		}
		parts = append(parts, fmt.Sprintf("「%s」→「%s」", f.Original, f.Correction))
	}
	if len(parts) == 0 && a.BetterExpression != nil && *a.BetterExpression != "" {
		better := *a.BetterExpression
		if runes := []rune(better); len(runes) > 50 {
			better = string(runes[:47]) + "..."
		}
		parts = append(parts, "Better: "+better)
	}
	return strings.Join(parts, " | ")
}
