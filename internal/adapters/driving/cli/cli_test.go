package cli

import (
	"bytes"
	"context"
	"hash/fnv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsage/docsage/internal/adapters/driven/storage/sqlite"
	vectorsqlite "github.com/docsage/docsage/internal/adapters/driven/vectorstore/sqlite"
	"github.com/docsage/docsage/internal/core/domain"
	"github.com/docsage/docsage/internal/core/ports/driven"
	"github.com/docsage/docsage/internal/core/services"
)

// fakeEmbedder produces deterministic vectors from a text hash, enough
// for the pipeline to run end to end without a network.
type fakeEmbedder struct{}

func (fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	h := fnv.New32a()
	h.Write([]byte(text))
	v := h.Sum32()
	return []float32{float32(v % 97), float32(v % 89), float32(v % 83)}, nil
}

func (f fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := f.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (fakeEmbedder) Dimensions() int            { return 3 }
func (fakeEmbedder) ModelName() string          { return "fake-embedding" }
func (fakeEmbedder) Ping(context.Context) error { return nil }
func (fakeEmbedder) Close() error               { return nil }

type fakeLLM struct{ reply string }

func (f fakeLLM) Generate(context.Context, string, driven.GenerateOptions) (string, error) {
	return f.reply, nil
}
func (fakeLLM) ModelName() string          { return "fake-llm" }
func (fakeLLM) Ping(context.Context) error { return nil }
func (fakeLLM) Close() error               { return nil }

type fakeExtractor struct{ text string }

func (f fakeExtractor) Extract(context.Context, string) (domain.Extraction, error) {
	return domain.Extraction{Text: f.text}, nil
}

// installTestApp wires a real application context over temp dirs and
// fakes for the remote services, and points the command tree at it.
func installTestApp(t *testing.T, extractedText string) *services.App {
	t.Helper()
	dataDir := t.TempDir()

	records, err := sqlite.NewRecordStore(dataDir)
	require.NoError(t, err)

	embedder := fakeEmbedder{}
	a := services.NewApp(services.Deps{
		Extractor: fakeExtractor{text: extractedText},
		Factory:   vectorsqlite.NewFactory(embedder),
		Records:   records,
		Embedder:  embedder,
		LLM:       fakeLLM{reply: "Answer Title\n\nFrom the documents."},
		PDFDir:    filepath.Join(dataDir, "pdfs"),
		IndexDir:  filepath.Join(dataDir, "vectordb"),
		TopK:      5,
	})

	original := app
	app = a
	t.Cleanup(func() {
		a.Close()
		app = original
	})
	return a
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o600)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestIngestThenDocuments(t *testing.T) {
	installTestApp(t, "Plenty of document text to index. It spans multiple sentences. Surely enough for one chunk.")

	src := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, writeFile(src, "%PDF-fake"))

	out, err := execute(t, "ingest", src)
	require.NoError(t, err)
	assert.Contains(t, out, "Ingested report.pdf")

	out, err = execute(t, "documents")
	require.NoError(t, err)
	assert.Contains(t, out, "report.pdf")

	// Ingesting the same file again is skipped, not an error.
	out, err = execute(t, "ingest", src)
	require.NoError(t, err)
	assert.Contains(t, out, "already in the library")
}

func TestRepairCommand(t *testing.T) {
	a := installTestApp(t, "text")
	a.Maintenance.FlagCorruption("tenant handshake failed, could not connect")

	out, err := execute(t, "repair")
	require.NoError(t, err)
	assert.Contains(t, out, "Index repaired")

	needed, _ := a.Maintenance.RepairNeeded()
	assert.False(t, needed)
}

func TestClearCommand_RequiresConfirmation(t *testing.T) {
	installTestApp(t, "text")

	rootCmd.SetIn(bytes.NewBufferString("n\n"))
	out, err := execute(t, "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Aborted")
}

func TestClearCommand_Yes(t *testing.T) {
	installTestApp(t, "text")

	out, err := execute(t, "clear", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "All data cleared")
}

func TestAskCommand(t *testing.T) {
	installTestApp(t, "text")

	out, err := execute(t, "ask", "what do the documents say?")
	require.NoError(t, err)
	assert.Contains(t, out, "From the documents")
}
