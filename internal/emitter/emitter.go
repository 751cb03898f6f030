// Package emitter drives the Swift generator over a whole schema graph and
// persists the results.
package emitter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mark3labs/modelgen/internal/spec"
	"github.com/mark3labs/modelgen/internal/swiftgen"
)

// SupportDir holds the runtime helpers when Options.Support is set.
const SupportDir = "Support"

// Options controls one emission run.
type Options struct {
	OutDir      string // required unless Stdout is set
	ModelsDir   string // relative to OutDir; defaults to Models
	RequestsDir string // relative to OutDir; defaults to Requests
	// Stdout streams every generated file to the writer instead of the
	// file system.
	Stdout          io.Writer
	Support         bool // also write runtime helper sources
	Force           bool // overwrite existing files
	DryRun          bool // don't write, only plan
	ContinueOnError bool // skip items the generator rejects
	Workers         int  // parallel generation calls; defaults to GOMAXPROCS
	Config          swiftgen.Config
	Logger          *slog.Logger
}

// PlannedFile describes a file the emitter intends to write.
type PlannedFile struct {
	RelPath string
	Size    int
	Mode    os.FileMode
}

// Skipped is an item left out of the output.
type Skipped struct {
	Kind   string // schema or operation
	Name   string
	Reason string
}

// Result returns the planned files in path order and the skipped items.
type Result struct {
	Planned []PlannedFile
	Skipped []Skipped
}

type job struct {
	kind string
	name string
	run  func() (source string, ok bool, err error)
	rel  string
}

type output struct {
	source  string
	skipped *Skipped
}

// Emit generates one file per allowed schema and operation.
func Emit(ctx context.Context, graph *spec.Graph, opts Options) (*Result, error) {
	if graph == nil {
		return nil, fmt.Errorf("emitter: nil graph")
	}
	if opts.Stdout == nil && strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("emitter: OutDir is required")
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	modelsDir := defaultString(opts.ModelsDir, "Models")
	requestsDir := defaultString(opts.RequestsDir, "Requests")

	cfg := opts.Config
	gen := swiftgen.New(graph, cfg)

	var jobs []job
	for _, name := range graph.SchemaNames() {
		name := name
		if !cfg.Allowed(name) {
			log.Debug("schema filtered", "schema", name)
			continue
		}
		jobs = append(jobs, job{
			kind: "schema",
			name: name,
			rel:  filepath.ToSlash(filepath.Join(modelsDir, swiftgen.ModelFileName(name))),
			run: func() (string, bool, error) {
				src, err := gen.Model(name)
				return src, err == nil, err
			},
		})
	}
	seen := map[string]string{}
	for _, op := range graph.Operations {
		op := op
		if !cfg.Allowed(op.OperationID) {
			log.Debug("operation filtered", "operation", op.OperationID)
			continue
		}
		rel := filepath.ToSlash(filepath.Join(requestsDir, swiftgen.RequestFileName(op.OperationID)))
		if prev, dup := seen[rel]; dup {
			return nil, fmt.Errorf("operations %s and %s %s both map to %s", prev, op.Method, op.Path, rel)
		}
		seen[rel] = fmt.Sprintf("%s %s", op.Method, op.Path)
		jobs = append(jobs, job{
			kind: "operation",
			name: op.OperationID,
			rel:  rel,
			run:  func() (string, bool, error) { return gen.Request(op.Path, op.Method, op) },
		})
	}

	outputs, err := generate(ctx, jobs, opts, log)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	files := map[string][]byte{}
	order := make([]string, 0, len(jobs))
	for i, j := range jobs {
		if s := outputs[i].skipped; s != nil {
			res.Skipped = append(res.Skipped, *s)
			continue
		}
		files[j.rel] = []byte(outputs[i].source)
		order = append(order, j.rel)
	}
	if opts.Support {
		sources := swiftgen.SupportFiles()
		for _, name := range swiftgen.SupportFileNames() {
			rel := filepath.ToSlash(filepath.Join(SupportDir, name))
			files[rel] = []byte(sources[name])
			order = append(order, rel)
		}
	}

	rels := make([]string, 0, len(files))
	for p := range files {
		rels = append(rels, p)
	}
	sort.Strings(rels)
	for _, rel := range rels {
		res.Planned = append(res.Planned, PlannedFile{RelPath: rel, Size: len(files[rel]), Mode: 0o644})
	}

	if opts.DryRun {
		return res, nil
	}
	if opts.Stdout != nil {
		if err := stream(opts.Stdout, order, files); err != nil {
			return nil, err
		}
		return res, nil
	}
	if err := writeFiles(opts.OutDir, files, opts.Force); err != nil {
		return nil, err
	}
	for _, rel := range rels {
		log.Debug("wrote file", "path", rel, "bytes", len(files[rel]))
	}
	return res, nil
}

// generate runs the jobs in parallel. Results keep job order so output does
// not depend on scheduling.
func generate(ctx context.Context, jobs []job, opts Options, log *slog.Logger) ([]output, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	outputs := make([]output, len(jobs))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, j := range jobs {
		i, j := i, j
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			src, ok, err := j.run()
			switch {
			case err != nil:
				if opts.ContinueOnError && errors.Is(err, swiftgen.ErrUnsupportedInput) {
					log.Warn("skipping unsupported input", j.kind, j.name, "error", err)
					outputs[i].skipped = &Skipped{Kind: j.kind, Name: j.name, Reason: err.Error()}
					return nil
				}
				return fmt.Errorf("generate %s %s: %w", j.kind, j.name, err)
			case !ok:
				log.Warn("operation has no success response, skipped", j.kind, j.name)
				outputs[i].skipped = &Skipped{Kind: j.kind, Name: j.name, Reason: "no success response"}
				return nil
			}
			outputs[i].source = src
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}

func stream(w io.Writer, order []string, files map[string][]byte) error {
	for i, rel := range order {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return fmt.Errorf("write stdout: %w", err)
			}
		}
		if _, err := w.Write(files[rel]); err != nil {
			return fmt.Errorf("write stdout: %w", err)
		}
	}
	return nil
}

func writeFiles(outDir string, files map[string][]byte, force bool) error {
	abs, err := filepath.Abs(outDir)
	if err != nil {
		return fmt.Errorf("resolve out dir: %w", err)
	}
	// Pre-flight so that nothing is written when any target exists.
	if !force {
		for rel := range files {
			if _, err := os.Stat(filepath.Join(abs, rel)); err == nil {
				return fmt.Errorf("emitter: %s already exists (use --force to overwrite)", rel)
			}
		}
	}
	for rel, content := range files {
		p := filepath.Join(abs, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
		// atomic write via temp file + rename
		tmp, err := os.CreateTemp(filepath.Dir(p), "."+filepath.Base(p)+".tmp-*")
		if err != nil {
			return fmt.Errorf("create temp %s: %w", rel, err)
		}
		if _, err := tmp.Write(content); err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
			return fmt.Errorf("write temp %s: %w", rel, err)
		}
		if err := tmp.Close(); err != nil {
			_ = os.Remove(tmp.Name())
			return fmt.Errorf("close temp %s: %w", rel, err)
		}
		if err := os.Chmod(tmp.Name(), 0o644); err != nil {
			_ = os.Remove(tmp.Name())
			return fmt.Errorf("chmod %s: %w", rel, err)
		}
		if err := os.Rename(tmp.Name(), p); err != nil {
			_ = os.Remove(tmp.Name())
			return fmt.Errorf("rename %s: %w", rel, err)
		}
	}
	return nil
}

func defaultString(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}
