// Command csvxml converts delimited text into structured XML, either as
// a one-shot CLI or as a long-running HTTP service.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/shapestone/shape-csvxml/internal/config"
	"github.com/shapestone/shape-csvxml/internal/logging"
	"github.com/shapestone/shape-csvxml/internal/profile"
	"github.com/shapestone/shape-csvxml/internal/web"
	"github.com/shapestone/shape-csvxml/pkg/csvxml"
	"github.com/shapestone/shape-csvxml/pkg/event"
	"github.com/shapestone/shape-csvxml/pkg/source"
)

// Globals are flags shared by every subcommand.
type Globals struct {
	LogLevel  string `help:"Log level: debug, info, warn, error." default:"info" env:"CSVXML_LOG_LEVEL"`
	LogFormat string `help:"Log format: text, json, console." default:"console" env:"CSVXML_LOG_FORMAT"`
}

// CLI is the full command grammar.
type CLI struct {
	Globals

	Convert ConvertCmd `cmd:"" default:"withargs" help:"Convert a delimited-text document to XML."`
	Serve   ServeCmd   `cmd:"" help:"Run the HTTP conversion service."`
}

// ConvertCmd converts one document and exits.
type ConvertCmd struct {
	Source string `arg:"" optional:"" help:"Input URI or path; reads stdin when omitted."`
	Out    string `short:"o" placeholder:"FILE" help:"Write output to FILE instead of stdout."`

	Headers     bool   `name:"process-headers" help:"Treat the first row as a header."`
	MaxRecords  int    `name:"max-records" default:"-1" help:"Stop after this many records (-1 for no limit)."`
	Encoding    string `help:"IANA name of the input character encoding."`
	Separator   string `default:"," help:"Field separator character."`
	Escape      string `help:"Quote character; a doubled one is a literal (default: double quote)."`
	BufferSize  int    `name:"buffer-size" default:"4096" help:"Read buffer size in bytes."`
	EmptyFields bool   `name:"empty-fields" help:"Emit empty fields and pad rows to the header width."`
	FieldNames  bool   `name:"field-names" default:"true" negatable:"" help:"Attach header-derived column names to fields."`
	Comments    string `placeholder:"MARK" help:"Report lines starting with MARK as comments; only '#' is supported."`

	Profiles string `type:"path" placeholder:"FILE" help:"Load named option presets from FILE (CUE, YAML or JSON)."`
	Profile  string `help:"Apply this preset from the profiles file."`

	Detect      bool `help:"Detect separator and header row from a leading sample."`
	Indent      bool `help:"Indent the XML output."`
	Declaration bool `help:"Emit an XML declaration."`
}

// options folds flags and the selected profile into conversion options.
// Profile settings override flags.
func (c *ConvertCmd) options() (csvxml.Options, error) {
	params := map[string]string{
		"process-headers": strconv.FormatBool(c.Headers),
		"max-records":     strconv.Itoa(c.MaxRecords),
		"separator":       c.Separator,
		"buffer-size":     strconv.Itoa(c.BufferSize),
		"empty-fields":    strconv.FormatBool(c.EmptyFields),
		"field-names":     strconv.FormatBool(c.FieldNames),
	}
	if c.Escape != "" {
		params["escape"] = c.Escape
	}
	if c.Encoding != "" {
		params["encoding"] = c.Encoding
	}
	if c.Comments != "" {
		params["comments"] = c.Comments
	}

	opts, err := csvxml.ParseParams(params)
	if err != nil {
		return csvxml.Options{}, err
	}

	if c.Profile != "" && c.Profiles == "" {
		return csvxml.Options{}, errors.New("--profile requires --profiles")
	}
	if c.Profiles != "" && c.Profile != "" {
		profiles, err := profile.Load(c.Profiles)
		if err != nil {
			return csvxml.Options{}, err
		}
		p, ok := profiles[c.Profile]
		if !ok {
			return csvxml.Options{}, fmt.Errorf("profile %q not found in %s", c.Profile, c.Profiles)
		}
		return p.Apply(opts)
	}
	return opts, nil
}

func (c *ConvertCmd) Run(log *slog.Logger) error {
	opts, err := c.options()
	if err != nil {
		return err
	}

	var input io.Reader = os.Stdin
	if c.Source != "" && c.Source != "-" {
		mux := source.NewMux()
		remote := &source.HTTPResolver{}
		mux.Handle("http", remote)
		mux.Handle("https", remote)
		files := &source.FileResolver{}
		mux.Handle("file", files)
		mux.SetDefault(files)

		src, err := mux.Resolve(c.Source)
		if err != nil {
			return err
		}
		rc, err := src.Open(context.Background())
		if err != nil {
			return err
		}
		defer rc.Close()
		input = rc
		log.Debug("source opened", "uri", src.URI())
	}

	if c.Detect {
		sample := make([]byte, csvxml.SniffSampleSize)
		n, err := io.ReadFull(input, sample)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			return err
		}
		opts = csvxml.NewSniffer(string(sample[:n])).Apply(opts)
		input = io.MultiReader(bytes.NewReader(sample[:n]), input)
		log.Debug("dialect detected",
			"separator", string(opts.Separator),
			"headers", opts.Headers,
		)
	}

	out := os.Stdout
	if c.Out != "" {
		f, err := os.Create(c.Out)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	wopts := event.DefaultXMLWriterOptions()
	if c.Indent {
		wopts.Indent = "  "
	}
	wopts.Declaration = c.Declaration

	g, err := csvxml.NewGenerator(opts)
	if err != nil {
		return err
	}
	if err := g.GenerateReader(input, event.NewXMLWriterWithOptions(out, wopts)); err != nil {
		return err
	}
	_, err = fmt.Fprintln(out)
	return err
}

// ServeCmd runs the HTTP conversion service until interrupted.
type ServeCmd struct{}

func (c *ServeCmd) Run(log *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := web.NewServer(cfg, slog.Default(), prometheus.NewRegistry())
	if err != nil {
		return err
	}

	slog.Info("configuration loaded",
		"addr", cfg.Server.Addr(),
		"file_sources", cfg.Convert.AllowFileSources,
		"max_records_cap", cfg.Convert.MaxRecordsCap,
	)
	return srv.Serve(ctx)
}

func main() {
	// Load .env if present; real environment variables win.
	_ = godotenv.Load()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("csvxml"),
		kong.Description("Convert delimited text (CSV and friends) into structured XML."),
		kong.UsageOnError(),
	)

	log := logging.New(os.Stderr, cli.LogLevel, cli.LogFormat)
	slog.SetDefault(log)

	ctx.FatalIfErrorf(ctx.Run(log))
}
