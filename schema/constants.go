package schema

// Custom string types for type safety.
type (
	// Category is the test / non-test bucket a record is assigned to.
	Category string

	// SourceFile names one of the analyzer output files found in a project folder.
	SourceFile string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for run history.
	DatabaseBackend string
)

// All categories supported.
const (
	TestCategory    Category = "test"
	NonTestCategory Category = "non_test"
)

// All analyzer output files understood by the aggregator.
const (
	ComplexityFile SourceFile = "complexity.json"
	LizardFile     SourceFile = "lizard_report.xml"
	HalsteadFile   SourceFile = "halstead.json"
	RawMetricsFile SourceFile = "raw_metrics.json"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv" // default
	TextOut    OutputMode = "text"
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All history backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// FolderColumn is the leading column of every summary table.
const FolderColumn = "folder"

// DefaultOutputBase is the output file name used when none is configured.
const DefaultOutputBase = "metrics_summary"

// AllCategories lists categories in their canonical output order.
var AllCategories = []Category{TestCategory, NonTestCategory}

// AllSourceFiles lists the analyzer files in the order they are processed per folder.
var AllSourceFiles = []SourceFile{ComplexityFile, LizardFile, HalsteadFile, RawMetricsFile}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid history backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// Extension returns the file extension conventionally used for the output mode.
func (m OutputMode) Extension() string {
	switch m {
	case JSONOut:
		return ".json"
	case ParquetOut:
		return ".parquet"
	case TextOut:
		return ".txt"
	default:
		return ".csv"
	}
}
