package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/modelgen/internal/emitter"
	genspec "github.com/mark3labs/modelgen/internal/spec"
	"github.com/mark3labs/modelgen/internal/swiftgen"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// GenerateConfig captures all inputs that influence the generate command after
// merging defaults, config file values, and CLI overrides.
type GenerateConfig struct {
	Input       string
	Out         string
	ModelsDir   string
	RequestsDir string
	Stdout      bool
	Support     bool

	// Swift generation
	Excludes      []string
	Includes      []string
	Imports       []string
	DefaultValues []string
	ClassSchemas  []string
	Tag           string
	Sendable      bool
	SkipHeader    bool
	Deprecation   string

	IncludeTags     []string
	ExcludeTags     []string
	Strict          bool
	ContinueOnError bool
	DryRun          bool
	Force           bool

	ConfigPath string
	Verbose    bool
	LogFormat  string
}

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{
		Out:         ".",
		ModelsDir:   "Models",
		RequestsDir: "Requests",
		Deprecation: string(swiftgen.DeprecationComment),
		LogFormat:   "text",
	}
}

// SwiftConfig is the generation configuration for this run.
func (c *GenerateConfig) SwiftConfig() swiftgen.Config {
	mode, _ := swiftgen.ParseDeprecationMode(c.Deprecation)
	return swiftgen.Config{
		Excludes:      c.Excludes,
		Includes:      c.Includes,
		Imports:       c.Imports,
		DefaultValues: c.DefaultValues,
		ClassSchemas:  c.ClassSchemas,
		Tag:           c.Tag,
		Sendable:      c.Sendable,
		SkipHeader:    c.SkipHeader,
		Deprecation:   mode,
	}
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate Swift models and requests from an OpenAPI/Swagger document",
		Long: "Generate Swift Codable models for component schemas and request wrappers for operations. " +
			"Options can be provided via flags, config files, or defaults.",
		Example: strings.TrimSpace(`  modelgen generate --input spec.yaml --output ./Sources/API
  modelgen --config modelgen.yaml generate --force --dry-run
  modelgen generate -i https://example.com/openapi.json --stdout --includes Pet`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringP("input", "i", "", "Path or URL to the Swagger/OpenAPI document")
	flags.StringP("output", "o", "", "Output directory (defaults to the current directory)")
	flags.String("models-dir", "", "Directory for models, relative to --output (default Models)")
	flags.String("requests-dir", "", "Directory for requests, relative to --output (default Requests)")
	flags.Bool("stdout", false, "Print generated sources instead of writing files")
	flags.Bool("support", false, "Also write the Swift runtime helpers into Support/")
	flags.StringSlice("excludes", nil, "Schema names or operation ids to skip")
	flags.StringSlice("includes", nil, "Only generate these schema names or operation ids")
	flags.StringSlice("imports", nil, "Extra modules to import in every generated file")
	flags.StringSlice("default-values", nil, "Field and parameter names whose defaults come from DefaultValues")
	flags.StringSlice("class-schemas", nil, "Schemas emitted as final classes instead of structs")
	flags.String("tag", "", "Extra tag appended to every request's tags")
	flags.Bool("sendable", false, "Add Sendable conformance to generated types")
	flags.Bool("skip-header", false, "Omit the file banner and imports")
	flags.String("deprecation", "", "Deprecated symbols: comment|annotate|private (default comment)")
	flags.StringSlice("include-tags", nil, "Only include operations with these tags")
	flags.StringSlice("exclude-tags", nil, "Exclude operations with these tags")
	flags.Bool("strict", false, "Resolve references and validate the document before generating")
	flags.Bool("continue-on-error", false, "Skip schemas and operations the generator cannot map")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")
	flags.Bool("force", false, "Overwrite existing files")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyGenerateConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyGenerateFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	strs := map[string]*string{
		"input":        &cfg.Input,
		"output":       &cfg.Out,
		"models-dir":   &cfg.ModelsDir,
		"requests-dir": &cfg.RequestsDir,
		"tag":          &cfg.Tag,
		"deprecation":  &cfg.Deprecation,
		"log-format":   &cfg.LogFormat,
	}
	for name, dst := range strs {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = strings.TrimSpace(value)
	}

	lists := map[string]*[]string{
		"excludes":       &cfg.Excludes,
		"includes":       &cfg.Includes,
		"imports":        &cfg.Imports,
		"default-values": &cfg.DefaultValues,
		"class-schemas":  &cfg.ClassSchemas,
		"include-tags":   &cfg.IncludeTags,
		"exclude-tags":   &cfg.ExcludeTags,
	}
	for name, dst := range lists {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetStringSlice(name)
		if err != nil {
			return err
		}
		*dst = sanitizeList(value)
	}

	bools := map[string]*bool{
		"stdout":            &cfg.Stdout,
		"support":           &cfg.Support,
		"sendable":          &cfg.Sendable,
		"skip-header":       &cfg.SkipHeader,
		"strict":            &cfg.Strict,
		"continue-on-error": &cfg.ContinueOnError,
		"dry-run":           &cfg.DryRun,
		"force":             &cfg.Force,
		"verbose":           &cfg.Verbose,
	}
	for name, dst := range bools {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetBool(name)
		if err != nil {
			return err
		}
		*dst = value
	}

	return nil
}

func (c *GenerateConfig) normalize() {
	c.Input = strings.TrimSpace(c.Input)
	c.Out = strings.TrimSpace(c.Out)
	if c.Out == "" {
		c.Out = "."
	}
	c.ModelsDir = strings.TrimSpace(c.ModelsDir)
	c.RequestsDir = strings.TrimSpace(c.RequestsDir)
	c.Tag = strings.TrimSpace(c.Tag)
	c.Deprecation = strings.ToLower(strings.TrimSpace(c.Deprecation))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	c.Excludes = sanitizeList(c.Excludes)
	c.Includes = sanitizeList(c.Includes)
	c.Imports = sanitizeList(c.Imports)
	c.DefaultValues = sanitizeList(c.DefaultValues)
	c.ClassSchemas = sanitizeList(c.ClassSchemas)
	c.IncludeTags = sanitizeList(c.IncludeTags)
	c.ExcludeTags = sanitizeList(c.ExcludeTags)
}

func (c *GenerateConfig) validate() error {
	if c.Input == "" {
		return newUsageError("generate: --input is required (set via flag or config file)")
	}

	if _, err := swiftgen.ParseDeprecationMode(c.Deprecation); err != nil {
		return usageErrorf("generate: %v", err)
	}

	switch c.LogFormat {
	case "", "text", "json":
	default:
		return usageErrorf("generate: unsupported --log-format %q (allowed: text, json)", c.LogFormat)
	}

	if overlap := intersect(c.Includes, c.Excludes); len(overlap) > 0 {
		return usageErrorf("generate: includes/excludes overlap: %s", strings.Join(overlap, ", "))
	}
	if overlap := intersect(c.IncludeTags, c.ExcludeTags); len(overlap) > 0 {
		return usageErrorf("generate: include/exclude tags overlap: %s", strings.Join(overlap, ", "))
	}
	if c.Stdout && c.DryRun {
		return newUsageError("generate: --stdout and --dry-run are mutually exclusive")
	}

	return nil
}

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	logger := newLogger(os.Stderr, cfg.LogFormat, cfg.Verbose)

	// 1) Load the document (file or http/https URL) with optional validation
	doc, err := genspec.Load(ctx, cfg.Input, genspec.WithStrict(cfg.Strict))
	if err != nil {
		var se *genspec.SpecError
		if errors.As(err, &se) {
			msg := fmt.Sprintf("spec: %s", se.Message)
			if se.Location != "" {
				msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
			}
			if se.JSONPointer != "" {
				msg = fmt.Sprintf("%s\nPointer: %s", msg, se.JSONPointer)
			}
			return wrapUsage(err, msg)
		}
		return err
	}

	// 2) Build the schema graph with tag filters
	graph, err := genspec.BuildGraph(
		ctx,
		doc,
		genspec.WithIncludeTags(cfg.IncludeTags),
		genspec.WithExcludeTags(cfg.ExcludeTags),
	)
	if err != nil {
		return fmt.Errorf("build graph: %w", err)
	}
	logger.Debug("loaded spec", "input", cfg.Input, "title", graph.Title, "schemas", len(graph.Schemas), "operations", len(graph.Operations))

	absOut := cfg.Out
	if ap, err := filepath.Abs(cfg.Out); err == nil {
		absOut = ap
	}

	opts := emitter.Options{
		OutDir:          cfg.Out,
		ModelsDir:       cfg.ModelsDir,
		RequestsDir:     cfg.RequestsDir,
		Support:         cfg.Support,
		Force:           cfg.Force,
		DryRun:          cfg.DryRun,
		ContinueOnError: cfg.ContinueOnError,
		Config:          cfg.SwiftConfig(),
		Logger:          logger,
	}
	if cfg.Stdout {
		opts.Stdout = os.Stdout
	}

	// 3) Generate and write
	res, err := emitter.Emit(ctx, graph, opts)
	if err != nil {
		if errors.Is(err, swiftgen.ErrUnsupportedInput) {
			return wrapUsage(err, fmt.Sprintf("%v\nHint: fix the document or pass --continue-on-error to skip it.", err))
		}
		return wrapOutputError(err, absOut)
	}
	if cfg.DryRun {
		paths := make([]string, 0, len(res.Planned))
		for _, p := range res.Planned {
			paths = append(paths, p.RelPath)
		}
		printPlan(absOut, len(res.Planned), paths)
	}
	logger.Info("generation finished", "files", len(res.Planned), "skipped", len(res.Skipped))
	return nil
}

func printPlan(outDir string, count int, relPaths []string) {
	fmt.Fprintf(os.Stdout, "Planned writes to %s (%d files):\n", outDir, count)
	for _, p := range relPaths {
		fmt.Fprintf(os.Stdout, "- %s\n", p)
	}
}

func wrapOutputError(err error, outDir string) error {
	// Provide clearer guidance for common FS failures.
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "mkdir") || strings.Contains(lower, "rename") || strings.Contains(lower, "already exists") {
		return wrapUsage(err, fmt.Sprintf("output error for %s: %s\nHint: choose a different --output or use --force when appropriate.", outDir, msg))
	}
	return err
}

func sanitizeList(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func intersect(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(a))
	for _, item := range a {
		set[item] = struct{}{}
	}
	var result []string
	for _, item := range b {
		if _, ok := set[item]; ok {
			result = append(result, item)
		}
	}
	return result
}

func applyGenerateConfigFromFile(cfg *GenerateConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return usageErrorf("read config file %q: %v", path, err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return usageErrorf("parse config file %q: %v", path, err)
	}

	strs := map[string]*string{
		"input":       &cfg.Input,
		"output":      &cfg.Out,
		"out":         &cfg.Out,
		"modelsdir":   &cfg.ModelsDir,
		"requestsdir": &cfg.RequestsDir,
		"tag":         &cfg.Tag,
		"deprecation": &cfg.Deprecation,
		"logformat":   &cfg.LogFormat,
	}
	lists := map[string]*[]string{
		"excludes":      &cfg.Excludes,
		"includes":      &cfg.Includes,
		"imports":       &cfg.Imports,
		"defaultvalues": &cfg.DefaultValues,
		"classschemas":  &cfg.ClassSchemas,
		"includetags":   &cfg.IncludeTags,
		"excludetags":   &cfg.ExcludeTags,
	}
	bools := map[string]*bool{
		"stdout":          &cfg.Stdout,
		"support":         &cfg.Support,
		"sendable":        &cfg.Sendable,
		"skipheader":      &cfg.SkipHeader,
		"strict":          &cfg.Strict,
		"continueonerror": &cfg.ContinueOnError,
		"dryrun":          &cfg.DryRun,
		"force":           &cfg.Force,
		"verbose":         &cfg.Verbose,
	}

	for key, value := range raw {
		normalized := normalizeKey(key)
		if dst, ok := strs[normalized]; ok {
			str, err := valueAsString(value)
			if err != nil {
				return usageErrorf("config field %q: %v", key, err)
			}
			*dst = str
			continue
		}
		if dst, ok := lists[normalized]; ok {
			list, err := valueAsStringSlice(value)
			if err != nil {
				return usageErrorf("config field %q: %v", key, err)
			}
			*dst = sanitizeList(list)
			continue
		}
		if dst, ok := bools[normalized]; ok {
			val, err := valueAsBool(value)
			if err != nil {
				return usageErrorf("config field %q: %v", key, err)
			}
			*dst = val
			continue
		}
		return usageErrorf("config file %q: unknown field %q", path, key)
	}

	return nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsStringSlice(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, nil
		}
		return splitAndTrim(val), nil
	case []any:
		items := make([]string, 0, len(val))
		for idx, elem := range val {
			str, err := valueAsString(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", idx, err)
			}
			if str != "" {
				items = append(items, str)
			}
		}
		return items, nil
	default:
		return nil, fmt.Errorf("expected string or list, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(val))
		switch trimmed {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n", "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}

func splitAndTrim(csv string) []string {
	parts := strings.Split(csv, ",")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}
