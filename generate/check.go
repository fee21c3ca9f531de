package generate

import (
	"bufio"
	"bytes"
	"os"
	"strings"

	"github.com/teranos/extfn/errors"
)

// CheckResult holds the result of comparing fresh output with files on disk
type CheckResult struct {
	UpToDate bool     `json:"up_to_date"`
	Stale    []string `json:"stale,omitempty"`    // generated files whose content differs
	Missing  []string `json:"missing,omitempty"`  // generated files not on disk
	Orphaned []string `json:"orphaned,omitempty"` // generated files no template produces any more
}

// CheckPackages generates the packages in memory and compares the result
// with the files on disk, including generated files whose template was
// deleted or lost its directives.
func CheckPackages(patterns []string, opts Options) (*CheckResult, error) {
	opts = opts.withDefaults()

	outputs, existing, err := generatePackages(patterns, opts)
	if err != nil {
		return nil, err
	}

	result, err := CompareOutputs(outputs)
	if err != nil {
		return nil, err
	}

	orphans, err := FindOrphans(outputs, existing, opts.Header)
	if err != nil {
		return nil, err
	}
	result.Orphaned = orphans
	result.UpToDate = result.UpToDate && len(orphans) == 0
	return result, nil
}

// FindOrphans returns the files in existing that no output produces and
// that start with header. Files without the header are hand-written and
// never reported.
func FindOrphans(outputs []*Output, existing []string, header string) ([]string, error) {
	produced := make(map[string]bool, len(outputs))
	for _, out := range outputs {
		produced[out.Path] = true
	}

	var orphans []string
	for _, path := range existing {
		if produced[path] {
			continue
		}
		content, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", path)
		}
		first, _, _ := strings.Cut(string(content), "\n")
		if strings.TrimRight(first, " \t\r") == header {
			orphans = append(orphans, path)
		}
	}
	return orphans, nil
}

// CompareOutputs compares freshly generated outputs with the files on disk.
// Lines differing only in trailing whitespace are equal; any other change,
// including a changed header, makes the file stale.
func CompareOutputs(outputs []*Output) (*CheckResult, error) {
	result := &CheckResult{}

	for _, out := range outputs {
		existing, err := os.ReadFile(out.Path)
		if os.IsNotExist(err) {
			result.Missing = append(result.Missing, out.Path)
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", out.Path)
		}
		if normalize(existing) != normalize(out.Content) {
			result.Stale = append(result.Stale, out.Path)
		}
	}

	result.UpToDate = len(result.Stale) == 0 && len(result.Missing) == 0
	return result, nil
}

// Err returns errors.ErrStale naming the offending files, or nil.
func (r *CheckResult) Err() error {
	if r.UpToDate {
		return nil
	}
	var files []string
	files = append(files, r.Stale...)
	files = append(files, r.Missing...)
	files = append(files, r.Orphaned...)

	hint := "run extfn to regenerate"
	if len(r.Orphaned) > 0 {
		hint += " and delete generated files whose template is gone"
	}
	return errors.WithHint(
		errors.Wrapf(errors.ErrStale, "%s", strings.Join(files, ", ")),
		hint)
}

// normalize strips trailing whitespace from every line and line endings, so
// that a checkout with CRLF endings is not reported stale.
// Returns empty string if scanner encounters an error.
func normalize(content []byte) string {
	var result strings.Builder
	scanner := bufio.NewScanner(bytes.NewReader(content))

	for scanner.Scan() {
		result.WriteString(strings.TrimRight(scanner.Text(), " \t\r"))
		result.WriteString("\n")
	}

	// Return empty string on error - will cause comparison to fail
	if err := scanner.Err(); err != nil {
		return ""
	}

	return result.String()
}
