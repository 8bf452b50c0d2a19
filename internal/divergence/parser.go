package divergence

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	currentBranchMarkerConstant        = "*"
	detachedHeadPrefixConstant         = "("
	detachedHeadSuffixConstant         = ")"
	trackingAnnotationStartConstant    = "["
	trackingAnnotationEndConstant      = "]"
	trackingDivergenceSeparator        = ":"
	trackingAheadTokenConstant         = "ahead"
	trackingBehindTokenConstant        = "behind"
	trackingCountSeparatorConstant     = ","
	unknownCommitCountConstant         = -1
	parseErrorTemplateConstant         = "cannot parse branch line %q: %s"
	parseReasonEmptyLineConstant       = "line is empty"
	parseReasonMissingNameConstant     = "branch name missing"
	parseReasonMissingHashConstant     = "commit hash missing"
	parseReasonUnterminatedAnnotation  = "tracking annotation is not terminated"
	parseReasonUnterminatedDetachedRef = "detached head description is not terminated"
)

// BranchStatus classifies a local branch relative to a remote counterpart.
type BranchStatus int

// Branch statuses.
const (
	BranchStatusInSync BranchStatus = iota
	BranchStatusAhead
	BranchStatusBehind
	BranchStatusDiverged
	BranchStatusUndetermined
)

// String returns a lowercase label for the status.
func (status BranchStatus) String() string {
	switch status {
	case BranchStatusInSync:
		return "in sync"
	case BranchStatusAhead:
		return "ahead"
	case BranchStatusBehind:
		return "behind"
	case BranchStatusDiverged:
		return "diverged"
	default:
		return "undetermined"
	}
}

// TrackingStatus is the classification of a remote-tracking annotation.
// Counts are -1 when the annotation does not state them.
type TrackingStatus struct {
	Status      BranchStatus
	AheadCount  int
	BehindCount int
}

// ParsedBranch is one line of verbose local branch output.
type ParsedBranch struct {
	Current            bool
	Detached           bool
	Name               string
	CommitHash         string
	HasTracking        bool
	TrackingAnnotation string
	Subject            string
}

// ParseError reports a branch line that does not have the expected shape.
type ParseError struct {
	Line   string
	Reason string
}

func (parseError *ParseError) Error() string {
	return fmt.Sprintf(parseErrorTemplateConstant, parseError.Line, parseError.Reason)
}

// ParseBranchLine parses a line of `git branch --verbose --verbose` output positionally:
// a one character current-branch marker, the branch name, the commit hash, an optional
// bracketed tracking annotation and the commit subject.
func ParseBranchLine(line string) (ParsedBranch, error) {
	trimmedLine := strings.TrimRight(line, "\r\n")
	if len(strings.TrimSpace(trimmedLine)) == 0 {
		return ParsedBranch{}, &ParseError{Line: line, Reason: parseReasonEmptyLineConstant}
	}

	parsedBranch := ParsedBranch{Current: strings.HasPrefix(trimmedLine, currentBranchMarkerConstant)}
	remainder := strings.TrimLeft(trimmedLine[1:], " \t")

	if strings.HasPrefix(remainder, detachedHeadPrefixConstant) {
		closingIndex := strings.Index(remainder, detachedHeadSuffixConstant)
		if closingIndex < 0 {
			return ParsedBranch{}, &ParseError{Line: line, Reason: parseReasonUnterminatedDetachedRef}
		}
		parsedBranch.Detached = true
		parsedBranch.Name = remainder[:closingIndex+1]
		remainder = remainder[closingIndex+1:]
	} else {
		parsedBranch.Name, remainder = splitLeadingField(remainder)
	}
	if len(parsedBranch.Name) == 0 {
		return ParsedBranch{}, &ParseError{Line: line, Reason: parseReasonMissingNameConstant}
	}

	parsedBranch.CommitHash, remainder = splitLeadingField(remainder)
	if len(parsedBranch.CommitHash) == 0 {
		return ParsedBranch{}, &ParseError{Line: line, Reason: parseReasonMissingHashConstant}
	}

	if strings.HasPrefix(remainder, trackingAnnotationStartConstant) {
		closingIndex := strings.Index(remainder, trackingAnnotationEndConstant)
		if closingIndex < 0 {
			return ParsedBranch{}, &ParseError{Line: line, Reason: parseReasonUnterminatedAnnotation}
		}
		parsedBranch.HasTracking = true
		parsedBranch.TrackingAnnotation = remainder[len(trackingAnnotationStartConstant):closingIndex]
		remainder = remainder[closingIndex+len(trackingAnnotationEndConstant):]
	}

	parsedBranch.Subject = strings.TrimSpace(remainder)
	return parsedBranch, nil
}

// ClassifyTrackingAnnotation interprets the text between the brackets of a tracking
// annotation, for example "origin/main: ahead 2, behind 1". Without a colon the branch
// is in sync; a colon without ahead or behind (such as "gone") is undetermined.
func ClassifyTrackingAnnotation(annotation string) TrackingStatus {
	separatorIndex := strings.Index(annotation, trackingDivergenceSeparator)
	if separatorIndex < 0 {
		return TrackingStatus{Status: BranchStatusInSync}
	}

	trackingStatus := TrackingStatus{AheadCount: unknownCommitCountConstant, BehindCount: unknownCommitCountConstant}
	isAhead := false
	isBehind := false
	for _, clause := range strings.Split(annotation[separatorIndex+1:], trackingCountSeparatorConstant) {
		clauseFields := strings.Fields(clause)
		for fieldIndex, clauseField := range clauseFields {
			switch {
			case strings.Contains(clauseField, trackingAheadTokenConstant):
				isAhead = true
				trackingStatus.AheadCount = countAfter(clauseFields, fieldIndex)
			case strings.Contains(clauseField, trackingBehindTokenConstant):
				isBehind = true
				trackingStatus.BehindCount = countAfter(clauseFields, fieldIndex)
			}
		}
	}

	switch {
	case isAhead && isBehind:
		trackingStatus.Status = BranchStatusDiverged
	case isAhead:
		trackingStatus.Status = BranchStatusAhead
	case isBehind:
		trackingStatus.Status = BranchStatusBehind
	default:
		trackingStatus.Status = BranchStatusUndetermined
	}
	return trackingStatus
}

func countAfter(fields []string, index int) int {
	if index+1 >= len(fields) {
		return unknownCommitCountConstant
	}
	count, parseError := strconv.Atoi(fields[index+1])
	if parseError != nil {
		return unknownCommitCountConstant
	}
	return count
}

func splitLeadingField(text string) (string, string) {
	trimmedText := strings.TrimLeft(text, " \t")
	separatorIndex := strings.IndexAny(trimmedText, " \t")
	if separatorIndex < 0 {
		return trimmedText, ""
	}
	return trimmedText[:separatorIndex], strings.TrimLeft(trimmedText[separatorIndex:], " \t")
}
