// Copyright 2018 SumUp Ltd.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/palantir/stacktrace"
	"github.com/sirupsen/logrus"

	"github.com/sumup-oss/pubencrypt/pkg/encryption"
	"github.com/sumup-oss/pubencrypt/pkg/httperror"
)

const HealthPath = "/healthz"

type ServerConfig struct {
	ListenAddress     string
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
}

type authenticator interface {
	Wrap(next http.Handler) http.Handler
}

type Server struct {
	cfg        ServerConfig
	httpServer *http.Server
	logger     logrus.FieldLogger
}

func NewServer(
	cfg ServerConfig,
	authMiddleware authenticator,
	encryptHandler http.Handler,
	logger logrus.FieldLogger,
) *Server {
	mux := http.NewServeMux()
	mux.Handle(EncryptPath, authMiddleware.Wrap(encryptHandler))
	mux.HandleFunc(HealthPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		httperror.Write(w, http.StatusNotFound, httperror.CodeNotFound, "not found")
	})

	return &Server{
		cfg: cfg,
		httpServer: &http.Server{
			Addr:              cfg.ListenAddress,
			Handler:           requestLogger(mux, logger),
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
		},
		logger: logger,
	}
}

func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until `ctx` is done, then drains in-flight requests for at
// most ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.ListenAddress)
	if err != nil {
		return stacktrace.Propagate(err, "failed to listen on %s", s.cfg.ListenAddress)
	}

	return s.Serve(ctx, listener)
}

func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	serveErr := make(chan error, 1)

	s.logger.WithField("address", listener.Addr().String()).Info("listening")

	go func() {
		serveErr <- s.httpServer.Serve(listener)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return stacktrace.Propagate(err, "http server stopped unexpectedly")
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	if err != nil {
		return stacktrace.Propagate(err, "failed to shut down http server gracefully")
	}

	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status    int
	errorKind encryption.Kind
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) setErrorKind(kind encryption.Kind) {
	r.errorKind = kind
}

func requestLogger(next http.Handler, logger logrus.FieldLogger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		fields := logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   recorder.status,
			"duration": time.Since(started).String(),
		}
		if recorder.errorKind != "" {
			fields["error_kind"] = recorder.errorKind
		}

		logger.WithFields(fields).Info("handled request")
	})
}
