package shared

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	pathutils "github.com/temirov/gitdiverge/internal/utils/path"
)

const (
	findingLineTemplateConstant = "%s - %s\n"
	baseDirectoryLabelConstant  = "."
	writeFailureMessageConstant = "unable to write finding"
	logFieldDirectoryConstant   = "directory"
	logFieldMessageConstant     = "finding"
)

// FindingReporter writes findings as "<relative-path> - <message>" lines, with
// paths shown relative to the scan base directory.
type FindingReporter struct {
	writer        io.Writer
	baseDirectory string
	logger        *zap.Logger
	findingCount  int
}

// NewFindingReporter constructs a FindingReporter; a nil writer selects standard output.
func NewFindingReporter(writer io.Writer, baseDirectory string, logger *zap.Logger) *FindingReporter {
	if writer == nil {
		writer = os.Stdout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FindingReporter{writer: writer, baseDirectory: baseDirectory, logger: logger}
}

// Report writes one finding line immediately. Write failures are logged and
// do not stop the scan.
func (reporter *FindingReporter) Report(directoryPath string, message string) {
	reporter.findingCount++
	if _, writeError := fmt.Fprintf(reporter.writer, findingLineTemplateConstant, reporter.displayPath(directoryPath), message); writeError != nil {
		reporter.logger.Debug(writeFailureMessageConstant,
			zap.String(logFieldDirectoryConstant, directoryPath),
			zap.String(logFieldMessageConstant, message),
			zap.Error(writeError),
		)
	}
}

// FindingCount returns the number of findings written so far.
func (reporter *FindingReporter) FindingCount() int {
	return reporter.findingCount
}

func (reporter *FindingReporter) displayPath(directoryPath string) string {
	relativePath, relativizeError := pathutils.Relativize(reporter.baseDirectory, directoryPath)
	if relativizeError != nil {
		return directoryPath
	}
	if len(relativePath) == 0 {
		return baseDirectoryLabelConstant
	}
	return relativePath
}
