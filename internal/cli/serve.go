package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"kscore-go/internal/config"
	"kscore-go/internal/router"
	"kscore-go/internal/services"
	"kscore-go/internal/session"
	"kscore-go/internal/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(projectRoot *string) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the study wizard API",
		Long:  "Start a new participant session and serve the wizard API on the loopback interface.",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newApp(*projectRoot)
			if err != nil {
				return err
			}
			defer rt.close()

			if port != "" {
				rt.conf.Server.Port = port
			}
			config.Watch(rt.log)

			return serve(cmd.Context(), rt)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Override the configured port")
	return cmd
}

func serve(ctx context.Context, rt *app) error {
	log := rt.log

	corrector, err := services.NewDictionaryCorrector(log, rt.conf.Autocorrect.Dictionary, rt.conf.Autocorrect.MaxDistance)
	if err != nil {
		log.Error("Failed to load autocorrect dictionary", zap.Error(err))
		return err
	}

	participantID := utils.GenerateParticipantID()
	sess := session.New(participantID, nil)
	controller := session.NewController(log, sess, corrector, rt.exporter)

	r := router.Setup(log, rt.conf.Server, controller, rt.assessment)
	srv := &http.Server{
		Addr:              rt.conf.Server.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server listening", zap.String("addr", "http://"+srv.Addr), zap.String("participant_id", participantID))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("Failed to run server", zap.Error(err))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
		return err
	}
	return nil
}
