package services

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"kscore-go/internal/archive"
	"kscore-go/internal/export"
	"kscore-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeRenderer struct {
	err error
}

func (r fakeRenderer) Render(ctx context.Context, html string) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-1.4"), nil
}

// gatePicker blocks until released so a second export can race it.
type gatePicker struct {
	path    string
	entered chan struct{}
	release chan struct{}
}

func (p *gatePicker) PromptSavePath(ctx context.Context, suggestedName string) (string, error) {
	close(p.entered)
	<-p.release
	return p.path, nil
}

func newTestExporter(t *testing.T, r export.Renderer, savePayload bool) *Exporter {
	t.Helper()
	a, err := models.DefaultAssessment()
	require.NoError(t, err)
	log := zap.NewNop()
	return NewExporter(log, export.NewBuilder(log, a, r), savePayload)
}

func testPayload() *models.ExportPayload {
	phq := models.NewQuestionnaireResponse(9)
	return &models.ExportPayload{
		ParticipantID: "ab12cd34",
		PHQ9:          phq,
	}
}

func TestExportWritesArchive(t *testing.T) {
	e := newTestExporter(t, fakeRenderer{}, false)
	dest := filepath.Join(t.TempDir(), "session")

	result, err := e.Export(context.Background(), testPayload(), FixedPicker(dest))
	require.NoError(t, err)
	assert.Equal(t, dest+".zip", result.Path)

	zr, err := zip.OpenReader(result.Path)
	require.NoError(t, err)
	defer zr.Close()
	assert.Len(t, zr.File, len(result.Entries))
	assert.Contains(t, result.Entries, "participant_ab12cd34_phq9.csv")
	assert.NotContains(t, result.Entries, "participant_ab12cd34_gad7.csv")
	assert.NoFileExists(t, dest+".json")
}

func TestExportSavesPayload(t *testing.T) {
	e := newTestExporter(t, fakeRenderer{}, true)
	dest := filepath.Join(t.TempDir(), "participant_ab12cd34.zip")

	_, err := e.Export(context.Background(), testPayload(), FixedPicker(dest))
	require.NoError(t, err)

	saved, err := ReadPayload(filepath.Join(filepath.Dir(dest), "participant_ab12cd34.json"))
	require.NoError(t, err)
	assert.Equal(t, "ab12cd34", saved.ParticipantID)
	assert.Len(t, saved.PHQ9.ItemScores, 9)
	assert.Nil(t, saved.GAD7.ItemScores)
}

func TestExportCancelled(t *testing.T) {
	e := newTestExporter(t, fakeRenderer{}, false)
	dir := t.TempDir()

	_, err := e.Export(context.Background(), testPayload(), FixedPicker(""))
	assert.ErrorIs(t, err, ErrUserCancelled)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExportRenderFailure(t *testing.T) {
	e := newTestExporter(t, fakeRenderer{err: errors.New("no browser")}, false)
	dest := filepath.Join(t.TempDir(), "out.zip")

	_, err := e.Export(context.Background(), testPayload(), FixedPicker(dest))

	var failure *export.RenderFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "consent", failure.Artifact)
	assert.NoFileExists(t, dest)
}

func TestExportWriteFailure(t *testing.T) {
	e := newTestExporter(t, fakeRenderer{}, false)
	dest := filepath.Join(t.TempDir(), "missing", "out.zip")

	_, err := e.Export(context.Background(), testPayload(), FixedPicker(dest))

	var failure *archive.WriteFailure
	require.ErrorAs(t, err, &failure)
}

func TestExportRejectsConcurrentExport(t *testing.T) {
	e := newTestExporter(t, fakeRenderer{}, false)
	picker := &gatePicker{
		path:    filepath.Join(t.TempDir(), "out.zip"),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		_, firstErr = e.Export(context.Background(), testPayload(), picker)
	}()
	<-picker.entered

	_, err := e.Export(context.Background(), testPayload(), FixedPicker("/unused.zip"))
	assert.ErrorIs(t, err, ErrBusy)

	close(picker.release)
	wg.Wait()
	require.NoError(t, firstErr)

	_, err = e.Export(context.Background(), testPayload(), FixedPicker(filepath.Join(t.TempDir(), "again.zip")))
	assert.NoError(t, err, "the guard is released after completion")
}

func TestExportIgnoresCancellationAfterPick(t *testing.T) {
	e := newTestExporter(t, fakeRenderer{}, false)
	dest := filepath.Join(t.TempDir(), "out.zip")

	ctx, cancel := context.WithCancel(context.Background())
	picker := pickerFunc(func(context.Context, string) (string, error) {
		cancel()
		return dest, nil
	})

	_, err := e.Export(ctx, testPayload(), picker)
	require.NoError(t, err)
	assert.FileExists(t, dest)
}

type pickerFunc func(ctx context.Context, suggestedName string) (string, error)

func (f pickerFunc) PromptSavePath(ctx context.Context, suggestedName string) (string, error) {
	return f(ctx, suggestedName)
}

func TestReadPayloadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadPayload(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"consent": {}}`), 0644))
	_, err = ReadPayload(bad)
	assert.ErrorContains(t, err, "participantId")
}
