package cli

import (
	"fmt"

	"kscore-go/internal/config"
	"kscore-go/internal/export"
	logger "kscore-go/internal/logging"
	"kscore-go/internal/models"
	"kscore-go/internal/services"

	"go.uber.org/zap"
)

// app is the wiring shared by every command.
type app struct {
	conf       *config.Config
	log        *zap.Logger
	assessment *models.Assessment
	renderer   *services.PDFRenderer
	exporter   *services.Exporter
}

func newApp(projectRoot string) (*app, error) {
	conf, err := config.Load(projectRoot)
	if err != nil {
		return nil, err
	}

	log, err := logger.Init(projectRoot, conf.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	assessment, err := models.LoadAssessment(conf.Questionnaires.Path)
	if err != nil {
		log.Error("Failed to load questionnaires", zap.Error(err))
		return nil, err
	}

	renderer := services.NewPDFRenderer(log, conf.Render)
	builder := export.NewBuilder(log, assessment, renderer)

	return &app{
		conf:       conf,
		log:        log,
		assessment: assessment,
		renderer:   renderer,
		exporter:   services.NewExporter(log, builder, conf.Export.SavePayload),
	}, nil
}

func (a *app) close() {
	if err := a.renderer.Close(); err != nil {
		a.log.Warn("Failed to close PDF renderer", zap.Error(err))
	}
	_ = a.log.Sync()
}
