package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/metricsagg/core/extract"
	"github.com/huangsam/metricsagg/internal/contract"
	"github.com/huangsam/metricsagg/internal/iocache"
	"github.com/huangsam/metricsagg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	complexityFixture = `{
		"src/app.py": [
			{"type": "function", "name": "main", "complexity": 2},
			{"type": "method", "name": "App.run", "complexity": 4},
			{"type": "class", "name": "App", "complexity": 6}
		],
		"src/tests/test_app.py": [
			{"type": "function", "name": "test_main", "complexity": 1}
		]
	}`
	lizardFixture = `<?xml version="1.0" ?>
<cppncss><measure type="Function">
<item name="main(...) at src/app.py:1"><value>1</value><value>8</value><value>2</value></item>
<item name="test_main(...) at src/tests/test_app.py:1"><value>2</value><value>3</value><value>1</value></item>
</measure></cppncss>`
	halsteadFixture = `{
		"src/app.py": {"total": {"volume": 12.5, "difficulty": 3}},
		"src/tests/test_app.py": {"volume": "4"}
	}`
	rawFixture = `{
		"src/app.py": {"loc": 40, "sloc": 30},
		"src/tests/test_app.py": {"loc": 10, "sloc": 8}
	}`
)

// writeProject creates a project folder under root holding the given analyzer files.
func writeProject(t *testing.T, root, name string, files map[schema.SourceFile]string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for source, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, string(source)), []byte(content), 0o644))
	}
	return dir
}

func allFixtures() map[schema.SourceFile]string {
	return map[schema.SourceFile]string{
		schema.ComplexityFile: complexityFixture,
		schema.LizardFile:     lizardFixture,
		schema.HalsteadFile:   halsteadFixture,
		schema.RawMetricsFile: rawFixture,
	}
}

func summarizeConfig(root string) *contract.Config {
	return &contract.Config{
		RootPath:       root,
		Output:         schema.CSVOut,
		Precision:      contract.DefaultPrecision,
		HistoryBackend: schema.NoneBackend,
	}
}

func TestAggregateFolder(t *testing.T) {
	dir := writeProject(t, t.TempDir(), "A", allFixtures())

	report, err := AggregateFolder(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 2.0, report["complexity.json_non_test_total_methods"])
	assert.Equal(t, 3.0, report["complexity.json_non_test_average_method_complexity"])
	assert.Equal(t, 6.0, report["complexity.json_non_test_average_class_complexity"])
	assert.Equal(t, 1.0, report["complexity.json_test_total_methods"])
	assert.Equal(t, 8.0, report["lizard_report.xml_non_test_NCSS"])
	assert.Equal(t, 1.0, report["lizard_report.xml_test_CCN"])
	assert.Equal(t, 12.5, report["halstead.json_non_test_volume"])
	assert.Equal(t, 4.0, report["halstead.json_test_volume"])
	assert.Equal(t, 40.0, report["raw_metrics.json_non_test_loc"])
	assert.Equal(t, 8.0, report["raw_metrics.json_test_sloc"])

	// complexity: 2 x 6, lizard: 2 x 3, halstead: 2 + 1, raw: 2 x 2
	assert.Len(t, report, 12+6+3+4)
}

func TestAggregateFolder_MissingFilesAreSkipped(t *testing.T) {
	dir := writeProject(t, t.TempDir(), "empty", nil)

	report, err := AggregateFolder(context.Background(), dir)
	require.NoError(t, err)
	assert.Empty(t, report)
}

func TestAggregateFolder_ExtractorFailure(t *testing.T) {
	dir := writeProject(t, t.TempDir(), "broken", map[schema.SourceFile]string{
		schema.ComplexityFile: complexityFixture,
		schema.RawMetricsFile: `{"a.py": {"loc": "many"}}`,
	})

	_, err := AggregateFolder(context.Background(), dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, extract.ErrValueConversion)
	assert.Contains(t, err.Error(), string(schema.RawMetricsFile))
}

func TestAggregateFolder_Cancelled(t *testing.T) {
	dir := writeProject(t, t.TempDir(), "A", allFixtures())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := AggregateFolder(ctx, dir)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFlatten(t *testing.T) {
	report := schema.FolderReport{"existing": 1}
	Flatten(report, schema.RawMetricsFile, schema.ExtractResult{
		schema.TestCategory:    {"loc": 3},
		schema.NonTestCategory: {"loc": 5},
	})

	assert.Equal(t, schema.FolderReport{
		"existing":                      1,
		"raw_metrics.json_test_loc":     3,
		"raw_metrics.json_non_test_loc": 5,
	}, report)
}

func TestBuildSummaryTable(t *testing.T) {
	table := BuildSummaryTable([]schema.SummaryRow{
		{Folder: "b", Values: schema.FolderReport{"z": 1, "a": 2}},
		{Folder: "a", Values: schema.FolderReport{"m": 3, "a": 4}},
	})

	assert.Equal(t, []string{"a", "m", "z"}, table.Columns)
	assert.Equal(t, []string{"folder", "a", "m", "z"}, table.Header())
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "b", table.Rows[0].Folder)

	empty := BuildSummaryTable(nil)
	assert.Empty(t, empty.Columns)
	assert.NotNil(t, empty.Rows)
}

func TestSummarize_EndToEnd(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root, "B", map[schema.SourceFile]string{schema.ComplexityFile: complexityFixture})
	writeProject(t, root, "A", allFixtures())

	table, err := Summarize(context.Background(), summarizeConfig(root), nil)
	require.NoError(t, err)

	require.Len(t, table.Rows, 2)
	assert.Equal(t, "A", table.Rows[0].Folder)
	assert.Equal(t, "B", table.Rows[1].Folder)

	// The header is the union, which here is exactly A's keys.
	assert.Len(t, table.Columns, len(table.Rows[0].Values))
	for key := range table.Rows[1].Values {
		assert.True(t, strings.HasPrefix(key, string(schema.ComplexityFile)+"_"), key)
		assert.Contains(t, table.Columns, key)
	}
	assert.Len(t, table.Rows[1].Values, 12)
}

func TestSummarize_FolderWithoutAnalyzerFiles(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root, "bare", nil)

	table, err := Summarize(context.Background(), summarizeConfig(root), nil)
	require.NoError(t, err)

	require.Len(t, table.Rows, 1)
	assert.Equal(t, "bare", table.Rows[0].Folder)
	assert.Empty(t, table.Rows[0].Values)
	assert.Empty(t, table.Columns)
}

func TestSummarize_ErrorPolicy(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root, "A", allFixtures())
	writeProject(t, root, "B", map[schema.SourceFile]string{schema.LizardFile: "lizard crashed"})
	writeProject(t, root, "C", map[schema.SourceFile]string{schema.RawMetricsFile: rawFixture})

	t.Run("aborts by default", func(t *testing.T) {
		_, err := Summarize(context.Background(), summarizeConfig(root), nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, extract.ErrParse)
		assert.Contains(t, err.Error(), "folder B")
	})

	t.Run("keep going drops the failing folder", func(t *testing.T) {
		cfg := summarizeConfig(root)
		cfg.KeepGoing = true
		table, err := Summarize(context.Background(), cfg, nil)
		require.NoError(t, err)
		require.Len(t, table.Rows, 2)
		assert.Equal(t, "A", table.Rows[0].Folder)
		assert.Equal(t, "C", table.Rows[1].Folder)
	})
}

func TestSummarize_Excludes(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root, "app", nil)
	writeProject(t, root, "legacy_app", nil)

	cfg := summarizeConfig(root)
	cfg.Excludes = []string{"legacy_*"}
	table, err := Summarize(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "app", table.Rows[0].Folder)
}

func TestSummarize_RecordsHistory(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root, "A", map[schema.SourceFile]string{schema.RawMetricsFile: rawFixture})
	writeProject(t, root, "B", nil)

	store := &iocache.MockHistoryStore{}
	store.On("BeginRun", mock.AnythingOfType("time.Time"), root, mock.Anything).Return(int64(7), nil)
	store.On("RecordFolder", int64(7), "A", mock.MatchedBy(func(r schema.FolderReport) bool {
		return r["raw_metrics.json_non_test_loc"] == 40
	})).Return(nil)
	store.On("RecordFolder", int64(7), "B", schema.FolderReport{}).Return(nil)
	store.On("EndRun", int64(7), mock.AnythingOfType("time.Time"), 2).Return(nil)

	_, err := Summarize(context.Background(), summarizeConfig(root), store)
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestSummarize_HistoryFailureDoesNotFailRun(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root, "A", nil)

	store := &iocache.MockHistoryStore{}
	store.On("BeginRun", mock.Anything, root, mock.Anything).Return(int64(0), errors.New("database is locked"))

	table, err := Summarize(context.Background(), summarizeConfig(root), store)
	require.NoError(t, err)
	assert.Len(t, table.Rows, 1)
	store.AssertNotCalled(t, "RecordFolder", mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "EndRun", mock.Anything, mock.Anything, mock.Anything)
}

func TestSummarize_MissingRoot(t *testing.T) {
	_, err := Summarize(context.Background(), summarizeConfig(filepath.Join(t.TempDir(), "nope")), nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExecuteSummarize_Idempotent(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root, "A", allFixtures())
	writeProject(t, root, "B", map[schema.SourceFile]string{schema.ComplexityFile: complexityFixture})
	out := t.TempDir()

	run := func(name string) []byte {
		cfg := summarizeConfig(root)
		cfg.OutputFile = filepath.Join(out, name)
		require.NoError(t, ExecuteSummarize(context.Background(), cfg, nil))
		data, err := os.ReadFile(cfg.OutputFile)
		require.NoError(t, err)
		return data
	}

	first := run("first.csv")
	second := run("second.csv")
	assert.Equal(t, first, second)

	lines := strings.Split(strings.TrimSpace(string(first)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "folder,"))
	assert.True(t, strings.HasPrefix(lines[1], "A,"))
	assert.True(t, strings.HasPrefix(lines[2], "B,"))
}

func TestExecuteSummarize_NoOutputOnFailure(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root, "A", map[schema.SourceFile]string{schema.HalsteadFile: `{"a.py": `})

	cfg := summarizeConfig(root)
	cfg.OutputFile = filepath.Join(t.TempDir(), "summary.csv")
	err := ExecuteSummarize(context.Background(), cfg, nil)
	require.ErrorIs(t, err, extract.ErrParse)
	assert.NoFileExists(t, cfg.OutputFile)
}

func TestExecuteSummarize_UsesHistoryManager(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root, "A", nil)

	store := &iocache.MockHistoryStore{}
	store.On("BeginRun", mock.Anything, root, mock.Anything).Return(int64(1), nil)
	store.On("RecordFolder", int64(1), "A", schema.FolderReport{}).Return(nil)
	store.On("EndRun", int64(1), mock.Anything, 1).Return(nil)
	mgr := &iocache.MockHistoryManager{}
	mgr.On("GetHistoryStore").Return(store)

	cfg := summarizeConfig(root)
	cfg.HistoryBackend = schema.SQLiteBackend
	cfg.OutputFile = filepath.Join(t.TempDir(), "summary.csv")
	require.NoError(t, ExecuteSummarize(context.Background(), cfg, mgr))

	mgr.AssertExpectations(t)
	store.AssertExpectations(t)
}
