package web

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/shapestone/shape-csvxml/internal/logging"
	"github.com/shapestone/shape-csvxml/pkg/csvxml"
	"github.com/shapestone/shape-csvxml/pkg/event"
)

// renderOptions are the query parameters that shape the XML rendering
// rather than the conversion itself.
type renderOptions struct {
	indent      bool
	declaration bool
	detect      bool
}

// parseQuery splits the request query into conversion options and
// render options. Unknown keys are rejected.
func (s *Server) parseQuery(r *http.Request) (csvxml.Options, renderOptions, error) {
	var render renderOptions
	params := map[string]string{}
	for key, values := range r.URL.Query() {
		value := values[len(values)-1]
		switch key {
		case "src":
			// consumed by the source handler
		case "indent":
			render.indent = value == "1" || value == "true"
		case "declaration":
			render.declaration = value == "1" || value == "true"
		case "detect":
			render.detect = value == "1" || value == "true"
		default:
			params[key] = value
		}
	}

	opts, err := csvxml.ParseParams(params)
	if err != nil {
		return csvxml.Options{}, render, err
	}

	// The service-wide cap wins over whatever the client asked for.
	if limit := s.cfg.Convert.MaxRecordsCap; limit != csvxml.Unlimited {
		if opts.MaxRecords == csvxml.Unlimited || opts.MaxRecords > limit {
			opts.MaxRecords = limit
		}
	}
	return opts, render, nil
}

// handleConvertBody converts the request body. Conversion options
// arrive as query parameters; the document itself is the POST payload.
func (s *Server) handleConvertBody(w http.ResponseWriter, r *http.Request) {
	convID := uuid.NewString()
	log := logging.WithFields(r.Context(), "conversion_id", convID)

	opts, render, err := s.parseQuery(r)
	if err != nil {
		s.metrics.Conversions.WithLabelValues("rejected").Inc()
		s.writeError(w, convID, http.StatusBadRequest, err)
		return
	}

	body := http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes)
	defer body.Close()

	s.convert(w, log, convID, body, opts, render)
}

// handleConvertSource fetches the URI named by the src parameter and
// converts it.
func (s *Server) handleConvertSource(w http.ResponseWriter, r *http.Request) {
	convID := uuid.NewString()
	log := logging.WithFields(r.Context(), "conversion_id", convID)

	uri := r.URL.Query().Get("src")
	if uri == "" {
		s.metrics.Conversions.WithLabelValues("rejected").Inc()
		s.writeError(w, convID, http.StatusBadRequest, errors.New("missing src parameter"))
		return
	}

	opts, render, err := s.parseQuery(r)
	if err != nil {
		s.metrics.Conversions.WithLabelValues("rejected").Inc()
		s.writeError(w, convID, http.StatusBadRequest, err)
		return
	}

	src, err := s.resolver.Resolve(uri)
	if err != nil {
		s.metrics.Conversions.WithLabelValues("rejected").Inc()
		s.writeError(w, convID, http.StatusBadRequest, err)
		return
	}

	rc, err := src.Open(r.Context())
	if err != nil {
		s.metrics.Conversions.WithLabelValues("error").Inc()
		log.Error("source open failed", "src", uri, "error", err)
		s.writeError(w, convID, http.StatusBadGateway, err)
		return
	}
	defer rc.Close()

	log.Info("converting source", "src", uri)
	s.convert(w, log, convID, rc, opts, render)
}

// convert runs one conversion end to end: optional dialect detection,
// generation into a buffer, then the response. Buffering keeps the
// status code honest when the input turns out to be bad halfway
// through.
func (s *Server) convert(w http.ResponseWriter, log *slog.Logger, convID string, input io.Reader, opts csvxml.Options, render renderOptions) {
	start := time.Now()

	if render.detect {
		sample := make([]byte, csvxml.SniffSampleSize)
		n, err := io.ReadFull(input, sample)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			s.metrics.Conversions.WithLabelValues("error").Inc()
			log.Error("sample read failed", "error", err)
			s.writeError(w, convID, http.StatusUnprocessableEntity, err)
			return
		}
		opts = csvxml.NewSniffer(string(sample[:n])).Apply(opts)
		input = io.MultiReader(bytes.NewReader(sample[:n]), input)
	}

	wopts := event.DefaultXMLWriterOptions()
	if render.indent {
		wopts.Indent = "  "
	}
	wopts.Declaration = render.declaration

	var buf bytes.Buffer
	counter := &recordCounter{XMLWriter: event.NewXMLWriterWithOptions(&buf, wopts)}

	err := s.generate(input, counter, opts)
	duration := time.Since(start)
	s.metrics.ConversionTime.Observe(duration.Seconds())
	if err != nil {
		s.metrics.Conversions.WithLabelValues("error").Inc()
		status := errorStatus(err)
		log.Error("conversion failed", "error", err, "status", status)
		s.writeError(w, convID, status, err)
		return
	}

	s.metrics.Conversions.WithLabelValues("ok").Inc()
	s.metrics.RecordsEmitted.Add(float64(counter.records))
	log.Info("conversion complete",
		"records", counter.records,
		"bytes", buf.Len(),
		"duration", duration,
	)

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("X-Conversion-Id", convID)
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

// generate runs the conversion, borrowing a pooled generator when the
// options are the pool's defaults.
func (s *Server) generate(input io.Reader, sink event.Sink, opts csvxml.Options) error {
	if opts == s.pool.Options() {
		g := s.pool.Get()
		defer s.pool.Put(g)
		return g.GenerateReader(input, sink)
	}
	g, err := csvxml.NewGenerator(opts)
	if err != nil {
		return err
	}
	return g.GenerateReader(input, sink)
}

// errorStatus maps a conversion failure onto an HTTP status: invalid
// options are the client's fault, oversized bodies get 413, and input
// that cannot be decoded or read is unprocessable.
func errorStatus(err error) int {
	var optErr *csvxml.OptionsError
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &optErr):
		return http.StatusBadRequest
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusUnprocessableEntity
	}
}

// recordCounter counts emitted records on their way into an XML writer.
type recordCounter struct {
	*event.XMLWriter
	records int
}

func (c *recordCounter) StartElement(name event.Name, attrs []event.Attr) error {
	if name.Space == csvxml.NamespaceURI && name.Local == "record" {
		c.records++
	}
	return c.XMLWriter.StartElement(name, attrs)
}
