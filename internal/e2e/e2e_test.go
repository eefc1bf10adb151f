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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/refitgen/internal/cli"
)

const sampleSpec = `openapi: 3.0.3
info:
  title: E2E Sample
  version: '1.0.0'
paths:
  /pets:
    get:
      operationId: listPets
      summary: List pets
      tags: [pets]
      parameters:
        - {name: limit, in: query, schema: {type: integer, format: int32}}
      responses:
        '200':
          description: ok
          content:
            application/json:
              schema:
                type: array
                items: {$ref: '#/components/schemas/Pet'}
    post:
      operationId: createPet
      tags: [pets]
      requestBody:
        required: true
        content:
          application/json:
            schema: {$ref: '#/components/schemas/Pet'}
      responses:
        '201':
          description: created
          content:
            application/json:
              schema: {$ref: '#/components/schemas/Pet'}
  /pets/{petId}:
    get:
      operationId: getPet
      tags: [pets]
      parameters:
        - {name: petId, in: path, required: true, schema: {type: integer, format: int64}}
      responses:
        '200':
          description: ok
          content:
            application/json:
              schema: {$ref: '#/components/schemas/Pet'}
  /store/inventory:
    get:
      operationId: getInventory
      tags: [store]
      deprecated: true
      responses:
        '200':
          description: ok
          content:
            application/json:
              schema: {type: object}
components:
  schemas:
    Pet:
      type: object
      properties:
        id: {type: integer, format: int64}
        name: {type: string}
`

func writeTempSpec(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "spec.yaml")
	require.NoError(t, os.WriteFile(p, []byte(sampleSpec), 0o600))
	return p
}

func runCLI(t *testing.T, args ...string) {
	t.Helper()
	root := cli.NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	require.NoError(t, root.Execute(), "cli execute %v", args)
}

func digestDir(t *testing.T, dir string) (files []string, sum string) {
	t.Helper()
	h := sha256.New()
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		files = append(files, rel)
		// hash path + contents
		_, _ = h.Write([]byte(rel))
		b, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		_, _ = h.Write(b)
		return nil
	})
	require.NoError(t, err, "walk %s", dir)
	sort.Strings(files)
	return files, hex.EncodeToString(h.Sum(nil))
}

func TestE2E_SingleFile_Deterministic(t *testing.T) {
	t.Parallel()
	spec := writeTempSpec(t)
	dir1, dir2 := t.TempDir(), t.TempDir()

	args := []string{"--cancellation-tokens", "--namespace", "Sample"}
	runCLI(t, append([]string{"generate", spec, "--output", dir1}, args...)...)
	runCLI(t, append([]string{"generate", spec, "--output", dir2}, args...)...)

	files1, sum1 := digestDir(t, dir1)
	files2, sum2 := digestDir(t, dir2)
	assert.Equal(t, []string{"Output.cs"}, files1)
	assert.Equal(t, files1, files2)
	assert.Equal(t, sum1, sum2, "generated outputs differ between runs")

	data, err := os.ReadFile(filepath.Join(dir1, "Output.cs"))
	require.NoError(t, err)
	s := string(data)
	for _, want := range []string{
		"// <auto-generated>",
		"using Refit;",
		"namespace Sample\n{",
		"public partial interface IE2ESample",
		"Task<ICollection<Pet>> ListPets([Query] int? limit, CancellationToken cancellationToken = default);",
		"Task<Pet> CreatePet([Body] Pet body, CancellationToken cancellationToken = default);",
		"Task<Pet> GetPet(long petId, CancellationToken cancellationToken = default);",
		"[System.Obsolete]",
		`[Get("/store/inventory")]`,
	} {
		assert.Contains(t, s, want)
	}
	// declaration order survives
	assert.Less(t, strings.Index(s, "ListPets("), strings.Index(s, "CreatePet("))
	assert.Less(t, strings.Index(s, "GetPet("), strings.Index(s, "GetInventory("))
}

func TestE2E_ByTag_MultipleFiles_Deterministic(t *testing.T) {
	t.Parallel()
	spec := writeTempSpec(t)
	dir1, dir2 := t.TempDir(), t.TempDir()

	args := []string{"--multiple-interfaces", "byTag", "--multiple-files", "--include-deprecated=false", "--return-style", "wrapped"}
	runCLI(t, append([]string{"generate", spec, "--output", dir1}, args...)...)
	runCLI(t, append([]string{"generate", spec, "--output", dir2}, args...)...)

	files1, sum1 := digestDir(t, dir1)
	files2, sum2 := digestDir(t, dir2)
	assert.Equal(t, []string{"IPetsApi.cs"}, files1, "store only holds a deprecated operation")
	assert.Equal(t, files1, files2)
	assert.Equal(t, sum1, sum2)

	data, err := os.ReadFile(filepath.Join(dir1, "IPetsApi.cs"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Task<IApiResponse<ICollection<Pet>>> ListPets([Query] int? limit);")
}
