package cli

import (
    "io"
    "os"
    "path/filepath"
    "strings"
    "testing"
)

func TestInit_WritesSampleConfig(t *testing.T) {
    t.Parallel()
    dir := t.TempDir()
    path := filepath.Join(dir, "config.yaml")

    root := NewRootCmd()
    root.SetOut(io.Discard)
    root.SetErr(io.Discard)
    root.SetArgs([]string{"init", "--out", path})

    if err := root.Execute(); err != nil {
        t.Fatalf("init execute: %v", err)
    }

    data, err := os.ReadFile(path)
    if err != nil {
        t.Fatalf("read config: %v", err)
    }
    s := string(data)
    if !strings.Contains(s, "modelgen configuration") {
        t.Fatalf("unexpected config contents: %s", s)
    }
}

func TestInit_ExistingWithoutForce(t *testing.T) {
    t.Parallel()
    dir := t.TempDir()
    path := filepath.Join(dir, "config.yaml")
    if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
        t.Fatalf("prewrite: %v", err)
    }

    root := NewRootCmd()
    root.SetOut(io.Discard)
    root.SetErr(io.Discard)
    root.SetArgs([]string{"init", "--out", path})

    err := root.Execute()
    if err == nil {
        t.Fatalf("expected error for existing file without --force")
    }
    if _, ok := err.(usageError); !ok {
        t.Fatalf("expected usage error, got %T: %v", err, err)
    }
}

func TestInit_SampleConfigKeysAreKnown(t *testing.T) {
    t.Parallel()
    var b strings.Builder
    for _, line := range strings.Split(sampleConfigYAML, "\n") {
        if strings.HasPrefix(line, "# ") && strings.Contains(line, ": ") {
            // Option lines are "# key: value" with a single-word key.
            key := strings.TrimPrefix(line, "# ")
            if strings.IndexByte(key, ' ') == strings.Index(key, ": ")+1 {
                b.WriteString(key + "\n")
            }
        }
    }
    path := filepath.Join(t.TempDir(), "all.yaml")
    if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
        t.Fatalf("write: %v", err)
    }
    cfg := defaultGenerateConfig()
    if err := applyGenerateConfigFromFile(&cfg, path); err != nil {
        t.Fatalf("sample keys rejected: %v\n%s", err, b.String())
    }
    if cfg.Input != "./openapi.yaml" || cfg.Deprecation != "comment" || len(cfg.Imports) != 1 {
        t.Fatalf("sample values not applied: %+v", cfg)
    }
}
