package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"kscore-go/internal/archive"
	"kscore-go/internal/export"
	"kscore-go/internal/models"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// ErrBusy rejects a request while an identical one is still running.
var ErrBusy = errors.New("another request is already in progress")

// ExportResult describes a finished export.
type ExportResult struct {
	Path    string   `json:"path"`
	Entries []string `json:"entries"`
}

// Exporter runs the export pipeline: pick a destination, build the bundle,
// write the archive. Only one export runs at a time.
type Exporter struct {
	log         *zap.Logger
	builder     *export.Builder
	savePayload bool
	inFlight    *semaphore.Weighted
}

func NewExporter(log *zap.Logger, builder *export.Builder, savePayload bool) *Exporter {
	return &Exporter{
		log:         log,
		builder:     builder,
		savePayload: savePayload,
		inFlight:    semaphore.NewWeighted(1),
	}
}

// Export returns ErrUserCancelled when the picker declines, ErrBusy when
// another export is running, and a RenderFailure or WriteFailure when the
// attempt itself fails. Once a destination is chosen the export runs to
// completion even if ctx is cancelled.
func (e *Exporter) Export(ctx context.Context, payload *models.ExportPayload, picker Picker) (*ExportResult, error) {
	if !e.inFlight.TryAcquire(1) {
		return nil, ErrBusy
	}
	defer e.inFlight.Release(1)

	log := e.log.With(zap.String("participant_id", payload.ParticipantID))

	path, err := picker.PromptSavePath(ctx, export.ArchiveName(payload.ParticipantID))
	if err != nil {
		if errors.Is(err, ErrUserCancelled) {
			log.Info("Export cancelled by user")
		}
		return nil, err
	}
	if filepath.Ext(path) == "" {
		path += ".zip"
	}

	ctx = context.WithoutCancel(ctx)

	bundle, err := e.builder.Build(ctx, payload)
	if err != nil {
		log.Error("Failed to build export bundle", zap.Error(err))
		return nil, err
	}

	files := make([]archive.File, len(bundle.Entries))
	for i, entry := range bundle.Entries {
		files[i] = archive.File{Name: entry.Name, Data: entry.Data}
	}
	if err := archive.Write(path, files); err != nil {
		log.Error("Failed to write export archive", zap.String("path", path), zap.Error(err))
		return nil, err
	}

	if e.savePayload {
		if err := writePayload(payloadPath(path), payload); err != nil {
			// The archive is complete; the payload copy is a convenience.
			log.Warn("Failed to save payload copy", zap.Error(err))
		}
	}

	log.Info("Export written", zap.String("path", path), zap.Int("entries", len(files)))
	return &ExportResult{Path: path, Entries: bundle.Names()}, nil
}

func payloadPath(archivePath string) string {
	return strings.TrimSuffix(archivePath, filepath.Ext(archivePath)) + ".json"
}

func writePayload(path string, payload *models.ExportPayload) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// ReadPayload loads a payload saved next to an earlier export.
func ReadPayload(path string) (*models.ExportPayload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	var payload models.ExportPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if payload.ParticipantID == "" {
		return nil, fmt.Errorf("decode payload: missing participantId")
	}
	return &payload, nil
}
