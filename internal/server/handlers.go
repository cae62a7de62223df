package server

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/jittakal/xesgen/internal/encoder"
	"github.com/jittakal/xesgen/internal/errors"
	"github.com/jittakal/xesgen/internal/pipeline"
	pkgencoder "github.com/jittakal/xesgen/pkg/encoder"
)

// Response headers set by the convert endpoint.
const (
	HeaderEventCount     = "X-Event-Count"
	HeaderPublishedCount = "X-Published-Count"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// handleConvert builds a log from the request body and returns it encoded.
//
// Query parameters: format (xes|json|avro|parquet), compression, and input
// (csv|json). The input kind defaults to json for an application/json body.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	enc, err := s.requestEncoder(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	body := r.Body
	if s.cfg.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	}

	log, err := s.deps.Converter.Convert(ctx, body, inputFormat(r))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	var buf bytes.Buffer
	stats, err := enc.Encode(&buf, log)
	if err != nil {
		s.respondError(w, r, fmt.Errorf("failed to encode log: %w", err), http.StatusInternalServerError)
		return
	}

	if s.deps.Publisher != nil {
		n, err := s.deps.Publisher.Publish(ctx, log)
		if err != nil {
			s.respondError(w, r, fmt.Errorf("failed to publish events: %w", err), http.StatusBadGateway)
			return
		}
		w.Header().Set(HeaderPublishedCount, strconv.Itoa(n))
	}

	w.Header().Set("Content-Type", enc.ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": s.cfg.LogName + enc.FileExtension(),
	}))
	w.Header().Set(HeaderEventCount, strconv.Itoa(log.EventCount()))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.Warn("failed to write response", "error", err)
		return
	}

	s.logger.Info("log converted",
		"format", enc.Format(),
		"events", log.EventCount(),
		"size_bytes", stats.SizeBytes,
		"request_id", middleware.GetReqID(ctx),
	)
}

// requestEncoder picks the output encoder. A request that changes the format
// without naming a compression gets that format's default.
func (s *Server) requestEncoder(r *http.Request) (pkgencoder.Encoder, error) {
	q := r.URL.Query()

	format := s.cfg.Format
	if name := q.Get("format"); name != "" {
		f, err := encoder.ParseFormat(name)
		if err != nil {
			return nil, err
		}
		format = f
	}

	compression := s.cfg.Compression
	if q.Has("compression") {
		compression = q.Get("compression")
	} else if format != s.cfg.Format {
		compression = ""
	}

	return encoder.NewFactory(format, compression).CreateEncoder()
}

func inputFormat(r *http.Request) pipeline.InputFormat {
	switch strings.ToLower(r.URL.Query().Get("input")) {
	case "json":
		return pipeline.InputJSON
	case "csv":
		return pipeline.InputCSV
	}
	if mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err == nil && mt == "application/json" {
		return pipeline.InputJSON
	}
	return pipeline.InputCSV
}

// statusFor maps conversion errors onto HTTP status codes.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case stderrors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.IsInputError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	requestID := middleware.GetReqID(r.Context())

	s.logger.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"request_id", requestID,
	)

	writeJSON(w, statusCode, ErrorResponse{Error: err.Error(), RequestID: requestID}, s.logger)
}
