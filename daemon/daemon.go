// `sblogz daemon` - HTTP server that runs the analysis verbs on behalf of a
// remote client.
//
// The server answers GET requests whose path is an analysis verb, eg
// `GET /summary?log=build-42.log` runs `sblogz summary` over the named log
// under the daemon's data directory.  Output is the raw text or DOT output
// of the verb; success yields 2xx and an error 4xx or 5xx.
//
// Arguments:
//
// -data-dir <directory>
//
//  Required.  Trace logs are looked up in this directory, by base name only;
//  the accounting correlation is not available through the daemon.
//
// -port <port-number>
//
//  Optional, default 8088.
//
// -kafka-broker <host:port>, -kafka-topic <topic>
//
//  Optional.  When a broker is given, log lines are also consumed from the
//  topic (default "sblogz.trace") and appended to per-session spool files
//  under the data directory, keyed by the record key, so freshly traced
//  sessions become queryable through the same API.
//
// Termination:
//
//  SIGHUP or SIGTERM shuts the daemon down in an orderly manner.
//
// Logging:
//
//  The daemon logs to the syslog with the tag below, and to stderr.

package daemon

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/syslog"
	"net/http"
	"os"
	"os/signal"
	"path"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"

	"sblogz/analyze"
	"sblogz/calls"
	. "sblogz/cmd"
	. "sblogz/common"
	"sblogz/paths"
	"sblogz/ptree"
	"sblogz/summary"
)

const logTag = "sblogz"

type DaemonCommand struct /* implements PrimitiveCommand */ {
	DevArgs
	VerboseArgs

	port        uint
	dataDir     string
	kafkaBroker string
	kafkaTopic  string
}

var _ PrimitiveCommand = (*DaemonCommand)(nil)

func (dc *DaemonCommand) Summary() []string {
	return []string{
		"Run an HTTP server that serves the analysis verbs for trace logs",
		"under a data directory, optionally ingesting new logs from Kafka.",
	}
}

func (dc *DaemonCommand) Add(fs *CLI) {
	dc.DevArgs.Add(fs)
	dc.VerboseArgs.Add(fs)
	fs.Group("daemon-configuration")
	fs.UintVar(&dc.port, "port", 8088, "Listen for connections on this `port`")
	fs.StringVar(&dc.dataDir, "data-dir", "", "Serve trace logs from this `directory`")
	fs.StringVar(&dc.kafkaBroker, "kafka-broker", "",
		"Also ingest trace lines from this Kafka `broker` (host:port)")
	fs.StringVar(&dc.kafkaTopic, "kafka-topic", "sblogz.trace",
		"Kafka `topic` carrying trace lines")
}

func (dc *DaemonCommand) Validate() error {
	err := errors.Join(
		dc.DevArgs.Validate(),
		dc.VerboseArgs.Validate(),
	)
	ApplyDefault(&dc.dataDir, DataSourceDataDir)
	if err == nil && dc.dataDir == "" {
		err = errors.New("-data-dir is required")
	}
	if dc.dataDir != "" {
		dc.dataDir = path.Clean(dc.dataDir)
	}
	return err
}

func (dc *DaemonCommand) Perform(_ io.Reader, _, stderr io.Writer) error {
	logger, err := syslog.Dial("", "", syslog.LOG_INFO|syslog.LOG_USER, logTag)
	if err != nil {
		// Not fatal: stderr logging still works, eg inside containers.
		Log.Warningf("Failing to open syslog: %v", err)
	} else {
		Log.SetUnderlying(logger)
	}
	Log.LowerLevelTo(LogLevelInfo)

	if dc.kafkaBroker != "" {
		go Forever(dc.runKafka, stderr)
	}

	mux := http.NewServeMux()
	api := humago.New(mux, huma.DefaultConfig("sblogz", Version))
	dc.addRoutes(api)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", dc.port),
		Handler: mux,
	}
	errs := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errs <- err
		}
	}()
	Log.Infof("Listening on port %d, data directory %s", dc.port, dc.dataDir)

	// Wait here until we're stopped by SIGHUP (manual) or SIGTERM (from the
	// OS during shutdown), or the server fails to start.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGHUP, syscall.SIGTERM)
	select {
	case err := <-errs:
		return fmt.Errorf("HTTP server failed to start, or errored out\n%w", err)
	case <-stop:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

type analysisInput struct {
	Log  string `query:"log" required:"true" doc:"Base name of a trace log under the data directory"`
	Full bool   `query:"full" doc:"Expand detail lists where the verb supports it"`
}

type analysisOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

func (dc *DaemonCommand) addRoutes(api huma.API) {
	huma.Get(api, "/summary", dc.analysisHandler("text/plain",
		func(in *analysisInput, a *analyze.Analysis, out io.Writer) error {
			cmd := &summary.SummaryCommand{Full: in.Full}
			return cmd.Perform(out, a)
		}))
	huma.Get(api, "/paths", dc.analysisHandler("text/plain",
		func(in *analysisInput, a *analyze.Analysis, out io.Writer) error {
			cmd := &paths.PathsCommand{Full: in.Full}
			cmd.Mapped, cmd.Reverse, cmd.Passed, cmd.Disabled = true, true, true, true
			return cmd.Perform(out, a)
		}))
	huma.Get(api, "/ptree", dc.analysisHandler("text/vnd.graphviz",
		func(_ *analysisInput, a *analyze.Analysis, out io.Writer) error {
			return new(ptree.PtreeCommand).Perform(out, a)
		}))
	huma.Get(api, "/calls", dc.analysisHandler("text/vnd.graphviz",
		func(_ *analysisInput, a *analyze.Analysis, out io.Writer) error {
			return new(calls.CallsCommand).Perform(out, a)
		}))
}

func (dc *DaemonCommand) analysisHandler(
	contentType string,
	perform func(in *analysisInput, a *analyze.Analysis, out io.Writer) error,
) func(context.Context, *analysisInput) (*analysisOutput, error) {
	return func(_ context.Context, in *analysisInput) (*analysisOutput, error) {
		// Base name only: the query must not escape the data directory.
		name := path.Base(path.Clean(in.Log))
		input, err := os.Open(path.Join(dc.dataDir, name))
		if err != nil {
			return nil, huma.Error404NotFound(fmt.Sprintf("no log %s", name), err)
		}
		defer input.Close()

		a, err := analyze.Run(input, analyze.Options{Verbose: dc.Verbose})
		if err != nil {
			return nil, huma.Error422UnprocessableEntity("analysis failed", err)
		}
		var buf bytes.Buffer
		if err := perform(in, a, &buf); err != nil {
			return nil, huma.Error500InternalServerError("rendering failed", err)
		}
		return &analysisOutput{ContentType: contentType, Body: buf.Bytes()}, nil
	}
}
