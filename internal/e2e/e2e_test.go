package e2e

import (
    "crypto/sha256"
    "encoding/hex"
    "io"
    "os"
    "path/filepath"
    "sort"
    "strings"
    "testing"

    "github.com/google/go-cmp/cmp"

    cli "github.com/mark3labs/modelgen/internal/cli"
)

// petstore-ish OpenAPI v3 spec touching every emitter path
const sampleSpec = "" +
    "openapi: 3.0.0\n" +
    "info:\n" +
    "  title: E2E Sample\n" +
    "  version: '1.0.0'\n" +
    "paths:\n" +
    "  /pets:\n" +
    "    get:\n" +
    "      operationId: listPets\n" +
    "      tags: [read]\n" +
    "      parameters:\n" +
    "        - name: limit\n" +
    "          in: query\n" +
    "          schema:\n" +
    "            type: integer\n" +
    "      responses:\n" +
    "        '200':\n" +
    "          description: ok\n" +
    "          content:\n" +
    "            application/json:\n" +
    "              schema:\n" +
    "                $ref: '#/components/schemas/PetPage'\n" +
    "        '404':\n" +
    "          description: missing\n" +
    "  /pets/{petId}:\n" +
    "    delete:\n" +
    "      operationId: deletePet\n" +
    "      parameters:\n" +
    "        - name: petId\n" +
    "          in: path\n" +
    "          schema:\n" +
    "            type: string\n" +
    "      responses:\n" +
    "        '204':\n" +
    "          description: gone\n" +
    "components:\n" +
    "  schemas:\n" +
    "    Pet:\n" +
    "      type: object\n" +
    "      required: [id, kind]\n" +
    "      properties:\n" +
    "        id:\n" +
    "          type: integer\n" +
    "        kind:\n" +
    "          $ref: '#/components/schemas/Kind'\n" +
    "        tags:\n" +
    "          type: array\n" +
    "          items:\n" +
    "            type: string\n" +
    "    Kind:\n" +
    "      type: string\n" +
    "      enum: [cat, dog]\n" +
    "    PetPage:\n" +
    "      type: object\n" +
    "      properties:\n" +
    "        items:\n" +
    "          type: array\n" +
    "          items:\n" +
    "            $ref: '#/components/schemas/Pet'\n"

func writeTempSpec(t *testing.T) string {
    t.Helper()
    dir := t.TempDir()
    p := filepath.Join(dir, "spec.yaml")
    if err := os.WriteFile(p, []byte(sampleSpec), 0o600); err != nil {
        t.Fatalf("write spec: %v", err)
    }
    return p
}

func runCLI(t *testing.T, args ...string) {
    t.Helper()
    root := cli.NewRootCmd()
    root.SetOut(io.Discard)
    root.SetErr(io.Discard)
    root.SetArgs(args)
    if err := root.Execute(); err != nil {
        t.Fatalf("cli execute %v: %v", args, err)
    }
}

func digestDir(t *testing.T, dir string) (files []string, sum string) {
    t.Helper()
    var list []string
    h := sha256.New()
    err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
        if err != nil {
            return err
        }
        if d.IsDir() {
            return nil
        }
        rel, rerr := filepath.Rel(dir, path)
        if rerr != nil {
            return rerr
        }
        rel = filepath.ToSlash(rel)
        list = append(list, rel)
        // hash path + contents
        _, _ = h.Write([]byte(rel))
        b, rerr := os.ReadFile(path)
        if rerr != nil {
            return rerr
        }
        _, _ = h.Write(b)
        return nil
    })
    if err != nil {
        t.Fatalf("walk %s: %v", dir, err)
    }
    sort.Strings(list)
    return list, hex.EncodeToString(h.Sum(nil))
}

func TestE2E_Generate_Deterministic(t *testing.T) {
    t.Parallel()
    spec := writeTempSpec(t)
    dir1 := t.TempDir()
    dir2 := t.TempDir()

    runCLI(t, "generate", "--input", spec, "--output", dir1, "--support")
    runCLI(t, "generate", "--input", spec, "--output", dir2, "--support")

    files1, sum1 := digestDir(t, dir1)
    files2, sum2 := digestDir(t, dir2)
    if diff := cmp.Diff(files1, files2); diff != "" || sum1 != sum2 {
        t.Fatalf("generated outputs differ between runs (-run1 +run2):\n%s\nsum1=%s\nsum2=%s", diff, sum1, sum2)
    }

    want := []string{
        "Models/Kind.swift",
        "Models/Pet.swift",
        "Models/PetPage.swift",
        "Requests/DeletePetRequest.swift",
        "Requests/ListPetsRequest.swift",
        "Support/LossyDecodableArray.swift",
        "Support/UnknownCaseRepresentable.swift",
    }
    if diff := cmp.Diff(want, files1); diff != "" {
        t.Fatalf("generated files (-want +got):\n%s", diff)
    }
}

func TestE2E_Generate_ContentSanity(t *testing.T) {
    t.Parallel()
    spec := writeTempSpec(t)
    dir := t.TempDir()

    runCLI(t, "generate", "-i", spec, "-o", dir, "--sendable", "--tag", "generated")

    checks := map[string][]string{
        "Models/Pet.swift": {
            "// E2E Sample\n",
            "public let id: Int\n",
            "public let kind: Kind\n",
            "public let tags: [String]?\n",
        },
        "Models/Kind.swift": {
            "case cat = \"cat\"\n",
            "case dog = \"dog\"\n",
        },
        "Requests/ListPetsRequest.swift": {
            "ListPetsRequest",
            "\"/pets\"",
            "\"generated\"",
        },
        "Requests/DeletePetRequest.swift": {
            "DeletePetRequest",
            "petId",
        },
    }
    for rel, wants := range checks {
        b, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
        if err != nil {
            t.Fatalf("read %s: %v", rel, err)
        }
        for _, w := range wants {
            if !strings.Contains(string(b), w) {
                t.Errorf("%s missing %q:\n%s", rel, w, b)
            }
        }
    }
    if _, err := os.Stat(filepath.Join(dir, "Support")); err == nil {
        t.Fatalf("support files written without --support")
    }
}
