package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"

	"github.com/davifus/dogvet-rag/internal/adapter/utils"
	"github.com/davifus/dogvet-rag/internal/config"
	"github.com/davifus/dogvet-rag/internal/handlers"
	"github.com/davifus/dogvet-rag/internal/middleware"
	"github.com/davifus/dogvet-rag/pkg/logger_i"
)

type Server struct {
	httpServer *http.Server
	logger     *logger_i.Logger
}

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	WorkerStop       chan bool
	Group            *sync.WaitGroup
	CloseServices    context.CancelFunc
}

func NewServer(listenAddr string, jobHandler *handlers.JobHandler, mw *middleware.Middleware) *Server {
	r := utils.NewRouter()

	r.Router.Get("/", mw.Wrap(jobHandler.GetHandler))
	r.Router.Post("/ask", mw.Wrap(jobHandler.AskHandler))
	r.Router.Get("/status/{id}", mw.Wrap(jobHandler.GetStatusHandler))
	r.Router.Post("/ingest", mw.Wrap(jobHandler.PostIngestHandler))

	return &Server{
		httpServer: &http.Server{
			Addr:         listenAddr,
			Handler:      r.Router,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
		logger: logger_i.NewLogger("Server"),
	}
}

func (s *Server) Listen() {
	s.logger.Info("Server is listening at", "address", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("Server crashed", "error :", err.Error(), "addr", s.httpServer.Addr)
	}
}

func (s *Server) ShutDownHandler(shutdownParams ShutdownParams) {
	state := <-shutdownParams.GracefulShutdown
	println("\nServer is shutting down", state)

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		s.httpServer.SetKeepAlivesEnabled(false)

		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("Could not shutdown gracefully: %s", err)
		}

		//close workers
		close(shutdownParams.WorkerStop)
		shutdownParams.Group.Wait()
		shutdownParams.CloseServices()
		close(shutdownParams.StopExecution)
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Gracefully is shutting down")
	case <-ctx.Done():
		s.logger.Info("Force Shut down")
		os.Exit(1)
	}
}
