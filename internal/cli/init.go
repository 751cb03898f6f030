package cli

import (
    "context"
    "fmt"
    "os"
    "path/filepath"
    "strings"

    "github.com/spf13/cobra"
)

// InitConfig captures the options for the init command.
type InitConfig struct {
	OutputPath string
	Force      bool
	Verbose    bool
}

var initRunner = runInit

func newInitCmd() *cobra.Command {
    cmd := &cobra.Command{
        Use:   "init",
        Short: "Scaffold a sample modelgen configuration file",
        Long:  "Scaffold a commented modelgen configuration file that documents every generate option.",
        RunE: func(cmd *cobra.Command, args []string) error {
            out, err := cmd.Flags().GetString("out")
            if err != nil {
                return err
            }
            force, err := cmd.Flags().GetBool("force")
            if err != nil {
                return err
            }
            verbose, err := cmd.Flags().GetBool("verbose")
            if err != nil {
                return err
            }
            cfg := &InitConfig{
                OutputPath: out,
                Force:      force,
                Verbose:    verbose,
            }
            return initRunner(cmd.Context(), cfg)
        },
    }

    cmd.Flags().String("out", "modelgen.yaml", "Where to write the sample config file")
    cmd.Flags().Bool("force", false, "Overwrite the target file if it already exists")

    return cmd
}

func runInit(ctx context.Context, cfg *InitConfig) error {
    _ = ctx

    out := strings.TrimSpace(cfg.OutputPath)
    if out == "" {
        out = "modelgen.yaml"
    }
    absPath, err := filepath.Abs(out)
    if err != nil {
        return fmt.Errorf("init: resolve output path: %w", err)
    }

    if st, err := os.Stat(absPath); err == nil && !cfg.Force {
        if st.Mode().IsRegular() {
            return usageErrorf("init: %q already exists (use --force to overwrite)", absPath)
        }
    }

    if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
        return usageErrorf("init: cannot create parent directory: %v", err)
    }

    content := strings.TrimSpace(sampleConfigYAML) + "\n"

    // Atomic write via temp + rename
    f, err := os.CreateTemp(filepath.Dir(absPath), "."+filepath.Base(absPath)+".tmp-*")
    if err != nil {
        return usageErrorf("init: cannot write temp file: %v\nHint: choose a different --out or check directory permissions.", err)
    }
    tmp := f.Name()
    _, werr := f.WriteString(content)
    if cerr := f.Close(); werr == nil {
        werr = cerr
    }
    if werr == nil {
        werr = os.Chmod(tmp, 0o644)
    }
    if werr != nil {
        _ = os.Remove(tmp)
        return usageErrorf("init: cannot write temp file: %v", werr)
    }
    if err := os.Rename(tmp, absPath); err != nil {
        _ = os.Remove(tmp)
        return usageErrorf("init: cannot place file at %s: %v", absPath, err)
    }
    fmt.Fprintf(os.Stdout, "Wrote sample config to %s\n", absPath)
    return nil
}

// sampleConfigYAML is a commented example config documenting available options.
const sampleConfigYAML = `# modelgen configuration (YAML)
# All fields are optional. Command-line flags override config values.

# Path or URL to the Swagger/OpenAPI document (http/https or local file).
# input: ./openapi.yaml

# Output directory; models and requests go into subdirectories.
# output: ./Sources/API
# modelsDir: Models
# requestsDir: Requests

# Print generated sources to stdout instead of writing files.
# stdout: false

# Also write LossyDecodableArray.swift and UnknownCaseRepresentable.swift.
# support: false

# Schema names or operation ids to skip, or to generate exclusively.
# excludes: [InternalThing]
# includes: [Pet, listPets]

# Extra modules imported by every generated file.
# imports: [Dependencies]

# Field and parameter names whose defaults come from DefaultValues.
# defaultValues: [limit]

# Schemas emitted as final classes instead of structs.
# classSchemas: [Node]

# Extra tag appended to every request's tags.
# tag: generated

# Add Sendable conformance to generated types.
# sendable: false

# Omit the file banner and imports.
# skipHeader: false

# Deprecated symbols: comment, annotate (@available) or private.
# deprecation: comment

# Only include operations with these tags (comma-separated or list).
# includeTags: [public,read]

# Exclude operations with these tags (comma-separated or list).
# excludeTags: [internal]

# Resolve references and validate the document before generating.
# strict: false

# Skip schemas and operations the generator cannot map instead of failing.
# continueOnError: false

# Preview planned outputs without writing files.
# dryRun: false

# Overwrite existing files.
# force: false

# Debug logging and the log format (text|json).
# verbose: false
# logFormat: text
`
