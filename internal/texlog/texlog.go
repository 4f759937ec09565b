// Package texlog parses LaTeX compilation logs into warning and layout
// records and groups them for reporting.
package texlog

import (
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"

	"latex-builder/internal/logger"
)

// Record is one classified log line match.
type Record struct {
	Line     int    // 1-based line number in the log
	Text     string // captured message text
	FullLine string // the whole line, trimmed
}

// Analysis holds every record extracted from one log.
type Analysis struct {
	Warnings  []Record
	Auxiliary []Record
}

// WarningCount returns the number of warning records.
func (a *Analysis) WarningCount() int { return len(a.Warnings) }

// AuxiliaryCount returns the number of layout records.
func (a *Analysis) AuxiliaryCount() int { return len(a.Auxiliary) }

// Warning buckets, in classification order.
const (
	BucketUndefined = "Undefined references"
	BucketCitation  = "Citation issues"
	BucketHyperref  = "Hyperref warnings"
	BucketPackage   = "Package warnings"
	BucketGeneral   = "General warnings"
)

// Layout buckets.
const (
	BucketOverfull    = "Overfull boxes"
	BucketUnderfull   = "Underfull boxes"
	BucketOtherLayout = "Other layout"
)

// Warning signatures. Order matters: the first signature that matches a line
// claims it, and every match of that signature on the line becomes a record.
var warningRes = compileAll([]string{
	`LaTeX Warning: (.+)`,
	`Package \w+ Warning: (.+)`,
	`Warning--(.+)`,
	"LaTeX Warning: Reference `(.+)' on page \\d+ undefined",
	"LaTeX Warning: Citation `(.+)' on page \\d+ undefined",
	`Package hyperref Warning: (.+)`,
	`Package babel Warning: (.+)`,
	`Package inputenc Warning: (.+)`,
	`Package fancyhdr Warning: (.+)`,
	`Package geometry Warning: (.+)`,
})

// Overfull and underfull box notifications.
var auxiliaryRes = compileAll([]string{
	`(Overfull \\hbox.+)`,
	`(Underfull \\hbox.+)`,
	`(Overfull \\vbox.+)`,
	`(Underfull \\vbox.+)`,
})

// Informational lines that are neither warnings nor layout records.
var excludeRes = compileAll([]string{
	`LaTeX Font Info:`,
	`Package .* Info:`,
	`File: .* Graphic file`,
	`Document Class:`,
	`\\openout\d+`,
	`For additional information on amsmath`,
})

func compileAll(patterns []string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		res = append(res, regexp.MustCompile(`(?i)`+p))
	}
	return res
}

// Parse scans the log content line by line. Excluded lines produce nothing.
// A line matching a layout signature becomes auxiliary records only; otherwise
// the first matching warning signature claims the line.
func Parse(content string) *Analysis {
	analysis := &Analysis{}

	for i, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		num := i + 1

		if isExcluded(line) {
			continue
		}

		auxiliary := false
		for _, re := range auxiliaryRes {
			for _, m := range re.FindAllStringSubmatch(line, -1) {
				analysis.Auxiliary = append(analysis.Auxiliary, Record{
					Line:     num,
					Text:     strings.TrimSpace(m[1]),
					FullLine: line,
				})
				auxiliary = true
			}
		}
		if auxiliary {
			continue
		}

		for _, re := range warningRes {
			matches := re.FindAllStringSubmatch(line, -1)
			if len(matches) == 0 {
				continue
			}
			for _, m := range matches {
				analysis.Warnings = append(analysis.Warnings, Record{
					Line:     num,
					Text:     strings.TrimSpace(m[1]),
					FullLine: line,
				})
			}
			break
		}
	}

	return analysis
}

func isExcluded(line string) bool {
	for _, re := range excludeRes {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// AnalyzeFile reads and parses the log at path. A missing log surfaces as an
// fs.ErrNotExist so callers can report it and carry on with zero counts.
func AnalyzeFile(path string) (*Analysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	analysis := Parse(decodeTolerant(data))
	logger.Debug("log analyzed",
		logger.String("path", path),
		logger.Int("warnings", analysis.WarningCount()),
		logger.Int("layout", analysis.AuxiliaryCount()))
	return analysis, nil
}

// decodeTolerant substitutes undecodable bytes so a partially corrupt log
// still parses.
func decodeTolerant(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	decoded, err := unicode.UTF8.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}

// ClassifyWarning assigns a record to its display bucket. Undefined references
// win over citation wording; hyperref and package checks look at the whole
// line rather than the captured text.
func ClassifyWarning(r Record) string {
	text := strings.ToLower(r.Text)
	full := strings.ToLower(r.FullLine)
	switch {
	case strings.Contains(text, "undefined"):
		return BucketUndefined
	case strings.Contains(text, "citation"):
		return BucketCitation
	case strings.Contains(full, "hyperref"):
		return BucketHyperref
	case strings.Contains(full, "package"):
		return BucketPackage
	default:
		return BucketGeneral
	}
}

// ClassifyAuxiliary assigns a layout record to its bucket.
func ClassifyAuxiliary(r Record) string {
	switch {
	case strings.Contains(r.Text, "Overfull"):
		return BucketOverfull
	case strings.Contains(r.Text, "Underfull"):
		return BucketUnderfull
	default:
		return BucketOtherLayout
	}
}

// Group is one bucket of records, named for display.
type Group struct {
	Name    string
	Records []Record
}

// GroupWarnings buckets warning records, preserving the order in which
// buckets first appear.
func GroupWarnings(records []Record) []Group {
	return group(records, ClassifyWarning)
}

// GroupAuxiliary buckets layout records, preserving the order in which
// buckets first appear.
func GroupAuxiliary(records []Record) []Group {
	return group(records, ClassifyAuxiliary)
}

func group(records []Record, classify func(Record) string) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, r := range records {
		name := classify(r)
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, Group{Name: name})
		}
		groups[i].Records = append(groups[i].Records, r)
	}
	return groups
}
