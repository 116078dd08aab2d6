package application

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	units "unipole-cloud/internal/units/domain"
)

// MaxImportBytes caps the accepted upload size.
const MaxImportBytes = 5 << 20

// Accepted upload content types. The gate is advisory, the workbook
// parser still has to decode the payload.
var acceptedContentTypes = map[string]bool{
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true, // .xlsx
	"application/vnd.ms-excel":                                          true, // .xls
	"text/csv":                                                          true,
}

var (
	// ErrNoSession is returned when a workflow step runs without a file.
	ErrNoSession = errors.New("import: no file selected")
	// ErrNotPreviewed is returned when committing before a preview.
	ErrNotPreviewed = errors.New("import: file not previewed")
	// ErrHasRowErrors is returned when committing a preview that
	// reported row errors. A new file must be selected.
	ErrHasRowErrors = errors.New("import: file has validation errors")
	// ErrImportInFlight is returned when a commit is already running.
	ErrImportInFlight = errors.New("import: import already in progress")
)

// ImportResult is the transient outcome of an import operation.
type ImportResult struct {
	Success       bool     `json:"success"`
	Message       string   `json:"message"`
	ImportedCount int      `json:"imported_count,omitempty"`
	Errors        []string `json:"errors,omitempty"`
}

// ValidateUpload is the pre-parse file gate: declared content type must
// be a spreadsheet or CSV type and the payload at most 5 MiB. It
// returns a user-facing message, or "" when the file passes. Client
// declared metadata only, never a security boundary.
func ValidateUpload(contentType string, size int64) string {
	if !acceptedContentTypes[contentType] {
		return "Please select a valid Excel file (.xlsx, .xls) or CSV file"
	}
	if size > MaxImportBytes {
		return "File size must be less than 5MB"
	}
	return ""
}

// WorkbookParser decodes a spreadsheet payload into raw rows.
type WorkbookParser interface {
	Parse(data []byte) ([]RawRow, error)
}

// ImportState tracks the import workflow.
type ImportState string

const (
	StateIdle         ImportState = "idle"
	StateFileSelected ImportState = "file_selected"
	StatePreviewed    ImportState = "previewed"
	StateImporting    ImportState = "importing"
	StateSucceeded    ImportState = "succeeded"
	StateFailed       ImportState = "failed"
)

// Importer drives the spreadsheet import workflow against the unit
// repository.
type Importer struct {
	repo   units.Repository
	parser WorkbookParser
	logger *zap.Logger
}

// NewImporter constructs an importer.
func NewImporter(repo units.Repository, parser WorkbookParser, logger *zap.Logger) (*Importer, error) {
	if repo == nil {
		return nil, errors.New("importer: nil repository")
	}
	if parser == nil {
		return nil, errors.New("importer: nil parser")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{repo: repo, parser: parser, logger: logger}, nil
}

// Session is one pass of the import workflow:
//
//	Idle -> FileSelected -> Previewed -> Importing -> Succeeded | Failed
//
// A preview with row errors blocks the commit until a new file is
// selected. Sessions are single-use per request flow and not safe for
// concurrent use; the caller disables re-submission while a commit is
// outstanding.
type Session struct {
	importer *Importer

	state   ImportState
	payload []byte
	units   []units.Unit
	rowErrs []string
}

// NewSession starts an idle import session.
func (im *Importer) NewSession() *Session {
	return &Session{importer: im, state: StateIdle}
}

// State reports the current workflow state.
func (s *Session) State() ImportState { return s.state }

// SelectFile gates the file and stores its payload, resetting any
// previous preview.
func (s *Session) SelectFile(contentType string, size int64, payload []byte) error {
	if s.state == StateImporting {
		return ErrImportInFlight
	}
	if msg := ValidateUpload(contentType, size); msg != "" {
		return errors.New(msg)
	}
	s.payload = payload
	s.units = nil
	s.rowErrs = nil
	s.state = StateFileSelected
	return nil
}

// Preview parses and converts the selected file. Parse failures are
// terminal for the file; row errors are returned as data and leave the
// session previewed-with-errors.
func (s *Session) Preview() ([]units.Unit, []string, error) {
	if s.state != StateFileSelected && s.state != StatePreviewed {
		return nil, nil, ErrNoSession
	}

	rows, err := s.importer.parser.Parse(s.payload)
	if err != nil {
		return nil, nil, err
	}

	s.units, s.rowErrs = ConvertRows(rows)
	s.state = StatePreviewed
	return s.units, s.rowErrs, nil
}

// Commit upserts the previewed units as one atomic batch keyed on the
// business unit_id. It never partially succeeds from the caller's point
// of view.
func (s *Session) Commit(ctx context.Context) ImportResult {
	if s.state == StateImporting {
		return ImportResult{Success: false, Message: ErrImportInFlight.Error()}
	}
	if s.state != StatePreviewed {
		return ImportResult{Success: false, Message: ErrNotPreviewed.Error()}
	}
	if len(s.rowErrs) > 0 {
		return ImportResult{
			Success: false,
			Message: fmt.Sprintf("Cannot import due to %d validation errors", len(s.rowErrs)),
			Errors:  s.rowErrs,
		}
	}

	s.state = StateImporting
	count, err := s.importer.repo.BulkUpsert(ctx, s.units)
	if err != nil {
		s.state = StateFailed
		s.importer.logger.Error("bulk upsert failed", zap.Error(err))
		return ImportResult{Success: false, Message: err.Error()}
	}

	s.state = StateSucceeded
	return ImportResult{
		Success:       true,
		Message:       fmt.Sprintf("Successfully imported %d units", count),
		ImportedCount: count,
	}
}

// Import runs the whole workflow for one upload: gate, parse, convert,
// commit. Row errors report as a failed result without touching the
// store.
func (im *Importer) Import(ctx context.Context, contentType string, size int64, payload []byte) ImportResult {
	session := im.NewSession()
	if err := session.SelectFile(contentType, size, payload); err != nil {
		return ImportResult{Success: false, Message: err.Error()}
	}
	if _, _, err := session.Preview(); err != nil {
		return ImportResult{Success: false, Message: err.Error()}
	}
	return session.Commit(ctx)
}
