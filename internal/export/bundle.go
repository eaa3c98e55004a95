package export

import (
	"context"
	"fmt"

	"kscore-go/internal/models"

	"go.uber.org/zap"
)

// Renderer turns an HTML document into fixed-layout PDF bytes.
type Renderer interface {
	Render(ctx context.Context, html string) ([]byte, error)
}

// RenderFailure wraps an error from the document renderer.
type RenderFailure struct {
	Artifact string
	Err      error
}

func (e *RenderFailure) Error() string {
	return fmt.Sprintf("render %s document: %v", e.Artifact, e.Err)
}

func (e *RenderFailure) Unwrap() error { return e.Err }

// Entry is one named file of the export.
type Entry struct {
	Name string
	Data []byte
}

// Bundle is the ordered set of files that make up an export.
type Bundle struct {
	Entries []Entry
}

// Names lists the entry names in order.
func (b *Bundle) Names() []string {
	names := make([]string, len(b.Entries))
	for i, e := range b.Entries {
		names[i] = e.Name
	}
	return names
}

// Lookup returns the entry with the given name.
func (b *Bundle) Lookup(name string) ([]byte, bool) {
	for _, e := range b.Entries {
		if e.Name == name {
			return e.Data, true
		}
	}
	return nil, false
}

// EntryName builds the participant_<id>_<artifact>.<ext> file name.
func EntryName(participantID, artifact, ext string) string {
	return fmt.Sprintf("participant_%s_%s.%s", participantID, artifact, ext)
}

// ArchiveName is the suggested file name for the whole export.
func ArchiveName(participantID string) string {
	return fmt.Sprintf("participant_%s.zip", participantID)
}

type artifactDocument struct {
	artifact string
	doc      Document
}

// Builder assembles the CSV tables and PDF documents of an export.
type Builder struct {
	log        *zap.Logger
	assessment *models.Assessment
	renderer   Renderer
}

func NewBuilder(log *zap.Logger, assessment *models.Assessment, renderer Renderer) *Builder {
	return &Builder{log: log, assessment: assessment, renderer: renderer}
}

// Build produces every entry for the payload. Identical payloads give
// identical CSV entries; PDF bytes are whatever the renderer returns. Any
// render error aborts the build and no bundle is returned.
func (b *Builder) Build(ctx context.Context, p *models.ExportPayload) (*Bundle, error) {
	id := p.ParticipantID
	bundle := &Bundle{}
	addCSV := func(artifact string, t *Table) {
		bundle.Entries = append(bundle.Entries, Entry{Name: EntryName(id, artifact, "csv"), Data: t.Bytes()})
	}

	addCSV("keystrokes", keystrokesTable(p))
	addCSV("summaries", summariesTable(p))
	addCSV("autocorrect", autocorrectTable(p))

	questionnaires := []models.QuestionnaireKind{models.PHQ9, models.GAD7}
	for _, kind := range questionnaires {
		resp := p.Response(kind)
		if !resp.HasData() {
			b.log.Info("Skipping questionnaire table without item scores", zap.String("questionnaire", string(kind)))
			continue
		}
		addCSV(string(kind), questionnaireTable(id, b.questionnaire(kind), resp))
	}

	addCSV("phq_gad_summary", combinedTable(p))

	documents := []artifactDocument{{"consent", ConsentDocument(p)}}
	for _, kind := range questionnaires {
		documents = append(documents, artifactDocument{string(kind), QuestionnaireDocument(b.assessment, b.questionnaire(kind), id, p.Response(kind))})
	}

	for _, doc := range documents {
		html, err := doc.doc.HTML(ctx)
		if err != nil {
			return nil, &RenderFailure{Artifact: doc.artifact, Err: err}
		}
		pdf, err := b.renderer.Render(ctx, html)
		if err != nil {
			return nil, &RenderFailure{Artifact: doc.artifact, Err: err}
		}
		bundle.Entries = append(bundle.Entries, Entry{Name: EntryName(id, doc.artifact, "pdf"), Data: pdf})
	}

	b.log.Info("Export bundle built", zap.String("participant_id", id), zap.Int("entries", len(bundle.Entries)))
	return bundle, nil
}

func (b *Builder) questionnaire(kind models.QuestionnaireKind) *models.Questionnaire {
	q, ok := b.assessment.Questionnaire(kind)
	if !ok {
		// Validated assessments always carry both instruments.
		return &models.Questionnaire{ID: kind, Title: string(kind)}
	}
	return q
}
