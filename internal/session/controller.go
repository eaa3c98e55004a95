package session

import (
	"context"
	"fmt"
	"strings"

	"kscore-go/internal/metrics"
	"kscore-go/internal/models"
	"kscore-go/internal/services"
	"kscore-go/internal/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Review is the read-only view of a session shown before export.
type Review struct {
	ParticipantID string                       `json:"participantId"`
	Screen        Screen                       `json:"screen"`
	ActivePhase   *models.Phase                `json:"activePhase,omitempty"`
	Consent       models.ConsentRecord         `json:"consent"`
	Summaries     []models.PhaseSummary        `json:"summaries"`
	Profiles      []metrics.TypingProfile      `json:"profiles"`
	PHQ9          models.QuestionnaireResponse `json:"phq9"`
	GAD7          models.QuestionnaireResponse `json:"gad7"`
	Combined      *int                         `json:"phq9PlusGad7"`
	EssayWords    int                          `json:"essayWords"`
	Keystrokes    int                          `json:"keystrokes"`
	Corrections   int                          `json:"corrections"`
}

// Controller drives a session: it validates user actions, calls the
// corrector and exporter, and logs what happened.
type Controller struct {
	log        *zap.Logger
	session    *Session
	corrector  services.Corrector
	exporter   *services.Exporter
	correcting *semaphore.Weighted
}

func NewController(log *zap.Logger, session *Session, corrector services.Corrector, exporter *services.Exporter) *Controller {
	return &Controller{
		log:        log.With(zap.String("participant_id", session.ParticipantID())),
		session:    session,
		corrector:  corrector,
		exporter:   exporter,
		correcting: semaphore.NewWeighted(1),
	}
}

// Session returns the controlled session.
func (c *Controller) Session() *Session { return c.session }

// Navigate moves the wizard and logs any phase summary it produced.
func (c *Controller) Navigate(to Screen) (*models.PhaseSummary, error) {
	from := c.session.Screen()
	summary, err := c.session.Navigate(to)
	if err != nil {
		c.log.Debug("Navigation refused", zap.String("from", string(from)), zap.String("to", string(to)), zap.Error(err))
		return nil, err
	}
	c.log.Info("Screen changed", zap.String("from", string(from)), zap.String("to", string(to)))

	if summary != nil {
		c.log.Info("Phase summarized",
			zap.String("phase", summary.Phase.String()),
			zap.Uint("total_keys", summary.TotalKeys),
			zap.Uint("total_backspaces", summary.TotalBackspaces),
			zap.Uint("median_iki_ms", summary.MedianIkiMs),
			zap.Uint("mean_iki_ms", summary.MeanIkiMs),
			zap.Uint("duration_ms", summary.DurationMs),
		)
		if summary.OutOfOrderIntervals > 0 {
			c.log.Warn("Keystrokes arrived out of timestamp order",
				zap.String("phase", summary.Phase.String()),
				zap.Uint("out_of_order_intervals", summary.OutOfOrderIntervals),
			)
		}
	}
	return summary, nil
}

// Autocorrect validates the highlighted selection, asks the corrector for a
// suggestion and logs the result against the active phase. Only one
// correction runs at a time.
func (c *Controller) Autocorrect(ctx context.Context, selection string) (models.AutocorrectEvent, error) {
	word, err := utils.ValidateSelection(selection)
	if err != nil {
		return models.AutocorrectEvent{}, err
	}

	phase, ok := c.session.ActivePhase()
	if !ok {
		return models.AutocorrectEvent{}, ErrNoActivePhase
	}

	if !c.correcting.TryAcquire(1) {
		return models.AutocorrectEvent{}, services.ErrBusy
	}
	defer c.correcting.Release(1)

	correction, err := c.corrector.Correct(ctx, word)
	if err != nil {
		c.log.Error("Autocorrect failed", zap.String("word", word), zap.Error(err))
		return models.AutocorrectEvent{}, fmt.Errorf("autocorrect %q: %w", word, err)
	}

	event := c.session.RecordCorrection(phase, correction)
	c.log.Debug("Autocorrect applied",
		zap.String("phase", phase.String()),
		zap.String("original", event.OriginalWord),
		zap.String("corrected", event.CorrectedWord),
		zap.Bool("changed", event.Changed),
	)
	return event, nil
}

// Export snapshots the session and hands it to the exporter. It is only
// available from the review screen.
func (c *Controller) Export(ctx context.Context, picker services.Picker) (*services.ExportResult, error) {
	if c.session.Screen() != ScreenReview {
		return nil, fmt.Errorf("%w: export is only available from the review screen", ErrIncompleteInput)
	}
	payload := c.session.Snapshot()
	return c.exporter.Export(ctx, &payload, picker)
}

// Review builds the review view from an export snapshot, so it shows
// exactly what would be exported.
func (c *Controller) Review() Review {
	payload := c.session.Snapshot()

	phases := make([]models.Phase, 0, len(payload.Summaries))
	for _, s := range payload.Summaries {
		phases = append(phases, s.Phase)
	}

	review := Review{
		ParticipantID: payload.ParticipantID,
		Screen:        c.session.Screen(),
		Consent:       payload.Consent,
		Summaries:     payload.Summaries,
		Profiles:      metrics.CalculateTypingProfiles(payload.Keystrokes, phases),
		PHQ9:          payload.PHQ9,
		GAD7:          payload.GAD7,
		Combined:      metrics.CombinedTotal(metrics.ScoreItems(payload.PHQ9.ItemScores), metrics.ScoreItems(payload.GAD7.ItemScores)),
		EssayWords:    len(strings.Fields(payload.EssayText)),
		Keystrokes:    len(payload.Keystrokes),
		Corrections:   len(payload.AutocorrectEvents),
	}
	if phase, ok := c.session.ActivePhase(); ok {
		review.ActivePhase = &phase
	}
	return review
}
