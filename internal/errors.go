package internal

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNoExif is returned by a MetadataReader when the file carries no
	// decodable EXIF block.
	ErrNoExif = errors.New("no exif metadata")
	// ErrNoCaptureTime marks a photo without DateTimeOriginal.
	ErrNoCaptureTime = errors.New("no exif capture time")
	// ErrInvalidCoordinate marks a GPS directory without a usable fix.
	ErrInvalidCoordinate = errors.New("missing or zero gps coordinate")
	// ErrNoInstant marks a geotagged photo with neither EXIF nor GPS time.
	ErrNoInstant = errors.New("no exif or gps timestamp")
)

// ConfigError is the one fatal error kind: the run root cannot be used.
type ConfigError struct {
	Path    string
	Problem string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Problem, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Problem, e.Path)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ErrorCategory represents the phase in which a per-file error happened
type ErrorCategory string

const (
	ErrorCategoryConfig    ErrorCategory = "config_error"    // Root path unusable, aborts the run
	ErrorCategoryRead      ErrorCategory = "read_error"      // Container sniff or metadata read failed
	ErrorCategoryWrite     ErrorCategory = "write_error"     // Geotag rewrite or atomic replace failed
	ErrorCategoryTimestamp ErrorCategory = "timestamp_error" // Setting file times failed
)

// ErrorSeverity indicates how critical the error is
type ErrorSeverity string

const (
	ErrorSeverityFatal   ErrorSeverity = "fatal"   // Aborts the run
	ErrorSeverityError   ErrorSeverity = "error"   // File-level failure, file left as it was
	ErrorSeverityWarning ErrorSeverity = "warning" // File skipped for lack of metadata
)

// ProcessError represents a categorized error during file processing
type ProcessError struct {
	FilePath    string
	Category    ErrorCategory
	Severity    ErrorSeverity
	OriginalErr error
	Context     map[string]string // Additional context (coordinate, instant, ...)
	Suggestion  string            // User-friendly suggestion to fix
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("[%s/%s] %s: %v", e.Severity, e.Category, e.FilePath, e.OriginalErr)
}

func (e *ProcessError) Unwrap() error { return e.OriginalErr }

// CategorizeError wraps err into a ProcessError for the given phase and
// derives severity and a suggestion from the error itself.
func CategorizeError(filePath string, category ErrorCategory, err error) *ProcessError {
	if err == nil {
		return nil
	}

	procErr := &ProcessError{
		FilePath:    filePath,
		Category:    category,
		Severity:    ErrorSeverityError,
		OriginalErr: err,
		Context:     make(map[string]string),
	}

	var cfgErr *ConfigError
	if category == ErrorCategoryConfig || errors.As(err, &cfgErr) {
		procErr.Category = ErrorCategoryConfig
		procErr.Severity = ErrorSeverityFatal
		procErr.Suggestion = "Pass an existing, readable and writable directory"
		return procErr
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case errors.Is(err, ErrNoExif), errors.Is(err, ErrNoCaptureTime):
		procErr.Severity = ErrorSeverityWarning
		procErr.Suggestion = "Photo has no capture time and cannot be matched"

	case errors.Is(err, ErrInvalidCoordinate), errors.Is(err, ErrNoInstant):
		procErr.Severity = ErrorSeverityWarning
		procErr.Suggestion = "GPS block is incomplete; photo is not used as a location source"

	case strings.Contains(errStr, "no space left"):
		procErr.Suggestion = "Free up disk space; the rewrite needs room for a temporary copy"

	case strings.Contains(errStr, "permission denied"):
		procErr.Suggestion = "Check file permissions on the photo and its directory"

	case strings.Contains(errStr, "read-only file system"):
		procErr.Suggestion = "Filesystem is read-only - check mount options"

	case strings.Contains(errStr, "no such file"):
		procErr.Suggestion = "File disappeared during the run - check if external drive disconnected"

	case strings.Contains(errStr, "exiftool"):
		procErr.Suggestion = "Check that the exiftool binary is installed or use --writer native"

	case strings.Contains(errStr, "exif") || strings.Contains(errStr, "jpeg") || strings.Contains(errStr, "segment"):
		procErr.Suggestion = "Metadata block could not be parsed or rebuilt - file left unchanged"

	default:
		procErr.Suggestion = "Unexpected error - check logs for details"
	}

	return procErr
}

// ErrorStats tracks error statistics during a run
type ErrorStats struct {
	Total      int
	Fatal      int
	Errors     int
	Warnings   int
	ByCategory map[ErrorCategory]int
	LastErrors []*ProcessError // Last 5 errors for quick diagnosis
}

func NewErrorStats() *ErrorStats {
	return &ErrorStats{
		ByCategory: make(map[ErrorCategory]int),
		LastErrors: make([]*ProcessError, 0, 5),
	}
}

func (s *ErrorStats) Add(err *ProcessError) {
	s.Total++
	s.ByCategory[err.Category]++

	switch err.Severity {
	case ErrorSeverityFatal:
		s.Fatal++
	case ErrorSeverityError:
		s.Errors++
	case ErrorSeverityWarning:
		s.Warnings++
	}

	if len(s.LastErrors) >= 5 {
		s.LastErrors = s.LastErrors[1:]
	}
	s.LastErrors = append(s.LastErrors, err)
}

// GenerateReport creates a human-readable error report
func (s *ErrorStats) GenerateReport() string {
	var report strings.Builder

	report.WriteString(fmt.Sprintf("\nRun encountered %d problems:\n\n", s.Total))

	if s.Fatal > 0 {
		report.WriteString(fmt.Sprintf("  Fatal:    %d (run aborted)\n", s.Fatal))
	}
	if s.Errors > 0 {
		report.WriteString(fmt.Sprintf("  Errors:   %d (file-level failures)\n", s.Errors))
	}
	if s.Warnings > 0 {
		report.WriteString(fmt.Sprintf("  Warnings: %d (skipped files)\n", s.Warnings))
	}

	report.WriteString("\nError categories:\n")
	categories := make([]string, 0, len(s.ByCategory))
	for cat := range s.ByCategory {
		categories = append(categories, string(cat))
	}
	sort.Strings(categories)
	for _, cat := range categories {
		report.WriteString(fmt.Sprintf("  - %s: %d\n", cat, s.ByCategory[ErrorCategory(cat)]))
	}

	report.WriteString("\nRecent errors:\n")
	for i, err := range s.LastErrors {
		report.WriteString(fmt.Sprintf("\n%d. %s\n", i+1, err.FilePath))
		report.WriteString(fmt.Sprintf("   Category: %s | Severity: %s\n", err.Category, err.Severity))
		report.WriteString(fmt.Sprintf("   Error: %v\n", err.OriginalErr))
		if err.Suggestion != "" {
			report.WriteString(fmt.Sprintf("   Suggestion: %s\n", err.Suggestion))
		}
	}

	report.WriteString("\n")
	report.WriteString(s.generateSuggestions())

	return report.String()
}

func (s *ErrorStats) generateSuggestions() string {
	var suggestions strings.Builder
	suggestions.WriteString("Suggested next steps:\n")

	if s.ByCategory[ErrorCategoryWrite] > 0 {
		suggestions.WriteString("  - Files that failed to rewrite were left untouched; rerun after fixing the cause\n")
	}
	if s.ByCategory[ErrorCategoryTimestamp] > 0 {
		suggestions.WriteString("  - Check that the files are owned by the current user\n")
	}
	if s.ByCategory[ErrorCategoryRead] > s.Total/2 {
		suggestions.WriteString("  - Many unreadable files - verify the source media is intact\n")
	}

	suggestions.WriteString("  - Use --manifest for a per-file event log\n")

	return suggestions.String()
}
