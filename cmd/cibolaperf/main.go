// Command cibolaperf measures cibola's parse and serialize throughput on JSON
// files, alongside encoding/json and buger/jsonparser for comparison.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/buger/jsonparser"
	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/xdg-go/cibola"
)

type perfCommand struct {
	files      *[]string
	iterations *int
	pretty     *bool
	maxDepth   *int
	logger     log.Logger
}

func main() {
	app := kingpin.New("cibolaperf", "Measures JSON parse and serialize throughput.")
	cmd := &perfCommand{
		files:      app.Arg("file", "JSON files to measure.").Required().ExistingFiles(),
		iterations: app.Flag("iterations", "Runs per measurement.").Default("10").Int(),
		pretty:     app.Flag("pretty", "Serialize with indentation.").Bool(),
		maxDepth:   app.Flag("max-depth", "Maximum nesting depth.").Default(strconv.Itoa(cibola.DefaultMaxDepth)).Int(),
	}
	kingpin.MustParse(app.Parse(os.Args[1:]))

	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = level.NewFilter(logger, level.AllowInfo())
	cmd.logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	if err := cmd.run(); err != nil {
		level.Error(cmd.logger).Log("msg", "run failed", "err", err)
		os.Exit(1)
	}
}

func (cmd *perfCommand) run() error {
	if *cmd.iterations < 1 {
		return errors.Errorf("iterations must be positive, got %d", *cmd.iterations)
	}
	cfg := cibola.Config{MaxDepth: *cmd.maxDepth, Pretty: *cmd.pretty}
	enc, err := cibola.NewEncoder(cfg)
	if err != nil {
		return err
	}
	parser, err := cibola.NewParserWithConfig(cfg)
	if err != nil {
		return err
	}

	for _, f := range *cmd.files {
		if err := cmd.measureFile(f, parser, enc); err != nil {
			return errors.WithMessage(err, f)
		}
	}
	return nil
}

func (cmd *perfCommand) measureFile(name string, parser *cibola.Parser, enc *cibola.Encoder) error {
	data, err := os.ReadFile(name)
	if err != nil {
		return errors.Wrap(err, "failed to read file")
	}
	logger := log.With(cmd.logger, "file", name, "size", humanize.Bytes(uint64(len(data))))

	v, err := parser.Parse(data)
	if err != nil {
		var pe *cibola.ParseError
		if errors.As(err, &pe) {
			level.Error(logger).Log("msg", "parse failed", "line", pe.Line, "column", pe.Column, "err", err)
			fmt.Fprintln(os.Stderr, pe.Caret(data))
		}
		return err
	}

	out, err := enc.Encode(&v)
	if err != nil {
		return errors.Wrap(err, "failed to serialize")
	}
	back, err := parser.Parse(out)
	if err != nil {
		return errors.Wrap(err, "failed to reparse serialized output")
	}
	if !v.Equal(&back) {
		return errors.New("round trip changed the document")
	}
	level.Info(logger).Log("msg", "round trip ok", "output", humanize.Bytes(uint64(len(out))))

	buf := make([]byte, 0, len(out))
	benches := []struct {
		label string
		size  int
		fn    func() error
	}{
		{"cibola parse", len(data), func() error {
			_, err := parser.Parse(data)
			return err
		}},
		{"cibola serialize", len(out), func() error {
			var err error
			buf, err = enc.Append(buf[:0], &v)
			return err
		}},
		{"encoding/json", len(data), func() error {
			var x interface{}
			return json.Unmarshal(data, &x)
		}},
		{"jsonparser walk", len(data), func() error {
			return walkJSONParser(data)
		}},
	}
	for _, b := range benches {
		if err := cmd.report(logger, b.label, b.size, b.fn); err != nil {
			return err
		}
	}
	return nil
}

func (cmd *perfCommand) report(logger log.Logger, label string, size int, fn func() error) error {
	start := time.Now()
	for i := 0; i < *cmd.iterations; i++ {
		if err := fn(); err != nil {
			return errors.Wrap(err, label)
		}
	}
	elapsed := time.Since(start)
	total := float64(size) * float64(*cmd.iterations)
	throughput := total / elapsed.Seconds()
	level.Info(logger).Log("bench", label, "elapsed", elapsed, "throughput", humanize.Bytes(uint64(throughput))+"/s")
	return nil
}

// walkJSONParser visits every value in data with buger/jsonparser, which
// validates lazily, so this is its closest equivalent to a full parse.
func walkJSONParser(data []byte) error {
	value, typ, _, err := jsonparser.Get(data)
	if err != nil {
		return err
	}
	return walkValue(value, typ)
}

func walkValue(value []byte, typ jsonparser.ValueType) error {
	switch typ {
	case jsonparser.Object:
		return jsonparser.ObjectEach(value, func(_ []byte, v []byte, t jsonparser.ValueType, _ int) error {
			return walkValue(v, t)
		})
	case jsonparser.Array:
		var walkErr error
		_, err := jsonparser.ArrayEach(value, func(v []byte, t jsonparser.ValueType, _ int, err error) {
			if walkErr != nil {
				return
			}
			if err != nil {
				walkErr = err
				return
			}
			walkErr = walkValue(v, t)
		})
		if err != nil {
			return err
		}
		return walkErr
	}
	return nil
}
