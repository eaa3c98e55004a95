// Package session holds the mutable state of one participant's run through
// the study and the rules for moving between screens.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"kscore-go/internal/metrics"
	"kscore-go/internal/models"
	"kscore-go/internal/services"
)

// Screen is a step of the wizard.
type Screen string

const (
	ScreenWelcome  Screen = "welcome"
	ScreenConsent  Screen = "consent"
	ScreenBaseline Screen = "baseline"
	ScreenEssay    Screen = "essay"
	ScreenPHQ9     Screen = "phq9"
	ScreenGAD7     Screen = "gad7"
	ScreenReview   Screen = "review"
)

var (
	ErrIncompleteInput   = errors.New("incomplete input")
	ErrInvalidTransition = errors.New("invalid screen transition")
	ErrNoActivePhase     = errors.New("no typing phase is active")
	ErrInvalidAnswer     = errors.New("invalid answer")
)

// transitions lists the screens reachable from each screen.
var transitions = map[Screen][]Screen{
	ScreenWelcome:  {ScreenConsent},
	ScreenConsent:  {ScreenWelcome, ScreenBaseline},
	ScreenBaseline: {ScreenEssay},
	ScreenEssay:    {ScreenPHQ9},
	ScreenPHQ9:     {ScreenEssay, ScreenGAD7},
	ScreenGAD7:     {ScreenPHQ9, ScreenReview},
}

// KeystrokeInput is a raw keydown from the typing box. TimestampMs is
// optional; when nil the phase clock is used.
type KeystrokeInput struct {
	Key         string
	Code        string
	TimestampMs *int64
	CtrlKey     bool
	MetaKey     bool
	AltKey      bool
}

type phaseClock struct {
	start time.Time
	ended bool
	// elapsed is the active time banked when the phase last ended.
	elapsed time.Duration
}

// Session is one participant's run. It is safe for concurrent use; every
// method takes the session lock.
type Session struct {
	mu  sync.Mutex
	st  state
	now func() time.Time
}

type state struct {
	participantID     string
	screen            Screen
	consent           models.ConsentRecord
	keystrokes        []models.KeystrokeEvent
	summaries         map[models.Phase]models.PhaseSummary
	phases            map[models.Phase]*phaseClock
	active            *models.Phase
	essayText         string
	responses         map[models.QuestionnaireKind]*models.QuestionnaireResponse
	autocorrectEvents []models.AutocorrectEvent
}

// New starts a session on the welcome screen. A nil clock uses time.Now.
func New(participantID string, now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	phq := models.NewQuestionnaireResponse(models.PHQ9.ItemCount())
	gad := models.NewQuestionnaireResponse(models.GAD7.ItemCount())
	return &Session{
		now: now,
		st: state{
			participantID: participantID,
			screen:        ScreenWelcome,
			summaries:     make(map[models.Phase]models.PhaseSummary),
			phases:        make(map[models.Phase]*phaseClock),
			responses: map[models.QuestionnaireKind]*models.QuestionnaireResponse{
				models.PHQ9: &phq,
				models.GAD7: &gad,
			},
		},
	}
}

// ParticipantID returns the anonymous id of this run.
func (s *Session) ParticipantID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.participantID
}

// Screen returns the current screen.
func (s *Session) Screen() Screen {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.screen
}

// SetConsent records the consent form. Changing the typed name re-stamps
// the signature time.
func (s *Session) SetConsent(typingConsent, phqGadConsent bool, fullName string) models.ConsentRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := &s.st

	st.consent.TypingConsent = typingConsent
	st.consent.PhqGadConsent = phqGadConsent
	if fullName != st.consent.FullName {
		st.consent.FullName = fullName
		st.consent.SignedAt = s.now().UTC()
	}
	return st.consent
}

// Navigate moves to another screen. Entering a typing screen starts (or
// resumes) its phase clock; leaving one ends the phase and stores its
// summary, which is returned.
func (s *Session) Navigate(to Screen) (*models.PhaseSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := &s.st

	if !allowed(st.screen, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, st.screen, to)
	}

	switch {
	case st.screen == ScreenConsent && to == ScreenBaseline:
		if !st.consent.Complete() {
			return nil, fmt.Errorf("%w: both consents and a full name are required", ErrIncompleteInput)
		}
	case st.screen == ScreenPHQ9 && to == ScreenGAD7:
		if err := st.requireComplete(models.PHQ9); err != nil {
			return nil, err
		}
	case st.screen == ScreenGAD7 && to == ScreenReview:
		if err := st.requireComplete(models.GAD7); err != nil {
			return nil, err
		}
	}

	now := s.now()
	var ended *models.PhaseSummary
	if from, ok := phaseOf(st.screen); ok {
		summary := st.endPhase(from, now)
		ended = &summary
	}
	if next, ok := phaseOf(to); ok {
		st.startPhase(next, now)
	}
	st.screen = to
	return ended, nil
}

// RecordKeystroke appends a keydown to the log of the active phase.
func (s *Session) RecordKeystroke(in KeystrokeInput) (models.KeystrokeEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := &s.st

	phase, elapsed, err := st.activeClock(s.now())
	if err != nil {
		return models.KeystrokeEvent{}, err
	}
	ts := elapsed
	if in.TimestampMs != nil {
		ts = *in.TimestampMs
	}

	event := models.KeystrokeEvent{
		ParticipantID: st.participantID,
		Phase:         phase,
		TimestampMs:   ts,
		Key:           in.Key,
		Code:          in.Code,
		IsBackspace:   in.Key == "Backspace",
		IsCharacter:   utf8.RuneCountInString(in.Key) == 1 && !in.CtrlKey && !in.MetaKey && !in.AltKey,
	}
	st.keystrokes = append(st.keystrokes, event)
	return event, nil
}

// SetEssayText stores the current essay. Only accepted while the essay
// phase is running.
func (s *Session) SetEssayText(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := &s.st

	if st.active == nil || *st.active != models.PhaseEssay {
		return fmt.Errorf("%w: essay text can only change during the essay", ErrNoActivePhase)
	}
	st.essayText = text
	return nil
}

// ActivePhase returns the running phase, if any.
func (s *Session) ActivePhase() (models.Phase, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := &s.st
	if st.active == nil {
		return "", false
	}
	return *st.active, true
}

// RecordCorrection logs a corrector invocation against phase, stamped with
// that phase's clock.
func (s *Session) RecordCorrection(phase models.Phase, c services.Correction) models.AutocorrectEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := &s.st

	var ts int64
	if clock, ok := st.phases[phase]; ok {
		ts = clock.at(s.now()).Milliseconds()
	}
	event := models.AutocorrectEvent{
		ParticipantID: st.participantID,
		Phase:         phase,
		TimestampMs:   ts,
		OriginalWord:  c.Original,
		CorrectedWord: c.Word(),
		Changed:       c.Changed(),
	}
	st.autocorrectEvents = append(st.autocorrectEvents, event)
	return event
}

// AnswerItem sets the 0-based item of a questionnaire to score (0..3).
func (s *Session) AnswerItem(kind models.QuestionnaireKind, idx, score int) (models.QuestionnaireResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := &s.st

	resp, ok := st.responses[kind]
	if !ok {
		return models.QuestionnaireResponse{}, fmt.Errorf("%w: unknown questionnaire %q", ErrInvalidAnswer, kind)
	}
	if idx < 0 || idx >= len(resp.ItemScores) {
		return models.QuestionnaireResponse{}, fmt.Errorf("%w: item %d out of range", ErrInvalidAnswer, idx)
	}
	if score < 0 || score > 3 {
		return models.QuestionnaireResponse{}, fmt.Errorf("%w: score %d out of range", ErrInvalidAnswer, score)
	}
	v := score
	resp.ItemScores[idx] = &v
	resp.TotalScore = metrics.ScoreItems(resp.ItemScores)
	return resp.Clone(), nil
}

// SetDifficulty records the functional-impairment answer of a questionnaire.
func (s *Session) SetDifficulty(kind models.QuestionnaireKind, d models.Difficulty) (models.QuestionnaireResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := &s.st

	resp, ok := st.responses[kind]
	if !ok {
		return models.QuestionnaireResponse{}, fmt.Errorf("%w: unknown questionnaire %q", ErrInvalidAnswer, kind)
	}
	if _, err := models.ParseDifficulty(string(d)); err != nil {
		return models.QuestionnaireResponse{}, fmt.Errorf("%w: %v", ErrInvalidAnswer, err)
	}
	resp.Difficulty = &d
	resp.TotalScore = metrics.ScoreItems(resp.ItemScores)
	return resp.Clone(), nil
}

// Response returns a copy of the current answers for kind.
func (s *Session) Response(kind models.QuestionnaireKind) models.QuestionnaireResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	if resp, ok := s.st.responses[kind]; ok {
		return resp.Clone()
	}
	return models.QuestionnaireResponse{}
}

// Snapshot copies the session into an export payload. Events and
// summaries of phases that have not ended are left out.
func (s *Session) Snapshot() models.ExportPayload {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := &s.st

	payload := models.ExportPayload{
		ParticipantID: st.participantID,
		Consent:       st.consent,
		EssayText:     st.essayText,
		PHQ9:          st.responses[models.PHQ9].Clone(),
		GAD7:          st.responses[models.GAD7].Clone(),
	}
	for _, e := range st.keystrokes {
		if st.ended(e.Phase) {
			payload.Keystrokes = append(payload.Keystrokes, e)
		}
	}
	for _, phase := range models.Phases {
		if summary, ok := st.summaries[phase]; ok && st.ended(phase) {
			payload.Summaries = append(payload.Summaries, summary)
		}
	}
	for _, e := range st.autocorrectEvents {
		if st.ended(e.Phase) {
			payload.AutocorrectEvents = append(payload.AutocorrectEvents, e)
		}
	}
	return payload
}

func (st *state) startPhase(phase models.Phase, now time.Time) {
	clock, ok := st.phases[phase]
	if !ok {
		clock = &phaseClock{}
		st.phases[phase] = clock
	}
	// Returning to a phase resumes from its banked active time, so time
	// spent on other screens is not counted.
	clock.start = now.Add(-clock.elapsed)
	clock.ended = false
	st.active = &phase
}

// endPhase summarizes the phase and replaces any earlier summary for it.
func (st *state) endPhase(phase models.Phase, now time.Time) models.PhaseSummary {
	if clock, ok := st.phases[phase]; ok {
		clock.elapsed = clock.at(now)
		clock.ended = true
	}
	st.active = nil
	summary := metrics.SummarizePhase(st.participantID, st.keystrokes, phase)
	st.summaries[phase] = summary
	return summary
}

func (st *state) ended(phase models.Phase) bool {
	clock, ok := st.phases[phase]
	return ok && clock.ended
}

func (st *state) activeClock(now time.Time) (models.Phase, int64, error) {
	if st.active == nil {
		return "", 0, ErrNoActivePhase
	}
	clock := st.phases[*st.active]
	return *st.active, clock.at(now).Milliseconds(), nil
}

// at is the active time of the phase at now. An ended phase is frozen.
func (c *phaseClock) at(now time.Time) time.Duration {
	if c.ended {
		return c.elapsed
	}
	return now.Sub(c.start)
}

func (st *state) requireComplete(kind models.QuestionnaireKind) error {
	resp := st.responses[kind]
	if resp.TotalScore == nil || resp.Difficulty == nil {
		return fmt.Errorf("%w: every %s item and the difficulty must be answered", ErrIncompleteInput, kind)
	}
	return nil
}

func allowed(from, to Screen) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func phaseOf(screen Screen) (models.Phase, bool) {
	switch screen {
	case ScreenBaseline:
		return models.PhaseBaseline, true
	case ScreenEssay:
		return models.PhaseEssay, true
	}
	return "", false
}
