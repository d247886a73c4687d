package yamlblock

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// SpliceTargetAmbiguousError reports more than one top-level occurrence of
// the namespace key.
type SpliceTargetAmbiguousError struct {
	Namespace string
	Lines     []int // 1-based
}

func (e *SpliceTargetAmbiguousError) Error() string {
	return fmt.Sprintf("namespace %q appears %d times at top level (lines %v)",
		e.Namespace, len(e.Lines), e.Lines)
}

// Splice replaces the namespace block of text with block and leaves every
// other byte untouched.
//
// The block starts at the top-level line whose key is namespace and runs
// through the maximal run of following lines indented deeper than that line.
// Blank lines and comment lines inside the run belong to the block, whatever
// the comment's indentation; blank and comment lines trailing it do not. When
// the key is absent, block is appended after a blank line.
func Splice(text []byte, namespace string, block []byte) ([]byte, error) {
	lines := splitLines(text)
	start, end, err := locate(lines, namespace)
	if err != nil {
		return nil, err
	}
	if start < 0 {
		return appendBlock(text, block), nil
	}

	var out bytes.Buffer
	for _, l := range lines[:start] {
		out.WriteString(l)
	}
	out.Write(block)
	if len(block) > 0 && block[len(block)-1] != '\n' {
		out.WriteByte('\n')
	}
	for _, l := range lines[end:] {
		out.WriteString(l)
	}
	return out.Bytes(), nil
}

// Extract returns the current namespace block of text, or false when the key
// is absent.
func Extract(text []byte, namespace string) ([]byte, bool, error) {
	lines := splitLines(text)
	start, end, err := locate(lines, namespace)
	if err != nil || start < 0 {
		return nil, false, err
	}
	return []byte(strings.Join(lines[start:end], "")), true, nil
}

// locate returns the [start, end) line range of the namespace block, or
// start == -1 when it is absent.
func locate(lines []string, namespace string) (start, end int, err error) {
	start = -1
	var found []int
	for i, l := range lines {
		if isTopLevelKey(l, namespace) {
			found = append(found, i+1)
			if start < 0 {
				start = i
			}
		}
	}
	if len(found) > 1 {
		return -1, -1, errors.WithHint(
			&SpliceTargetAmbiguousError{Namespace: namespace, Lines: found},
			"merge the duplicate blocks by hand and run again")
	}
	if start < 0 {
		return -1, -1, nil
	}

	keyIndent := indentOf(lines[start])
	end = start + 1
	for j := start + 1; j < len(lines); j++ {
		if isFiller(lines[j], keyIndent) {
			continue
		}
		if indentOf(lines[j]) <= keyIndent {
			break
		}
		end = j + 1
	}
	return start, end, nil
}

// isTopLevelKey matches `ns:`, `'ns':` and `"ns":` at column zero, followed
// by end of line, whitespace or an inline value.
func isTopLevelKey(line, namespace string) bool {
	for _, key := range []string{namespace, "'" + namespace + "'", `"` + namespace + `"`} {
		rest, ok := strings.CutPrefix(line, key+":")
		if !ok {
			continue
		}
		if rest == "" || rest[0] == ' ' || rest[0] == '\t' || rest[0] == '\n' || rest[0] == '\r' {
			return true
		}
	}
	return false
}

// isFiller reports whether line is blank or a comment that does not close
// the block by itself: YAML ignores comments, so a comment at or left of the
// key's column only ends the block when no deeper line follows it.
func isFiller(line string, keyIndent int) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return true
	}
	return strings.HasPrefix(trimmed, "#") && indentOf(line) <= keyIndent
}

func indentOf(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}

// splitLines splits text keeping the line terminators, so joining the result
// reproduces text exactly.
func splitLines(text []byte) []string {
	if len(text) == 0 {
		return nil
	}
	return strings.SplitAfter(string(text), "\n")
}

func appendBlock(text, block []byte) []byte {
	if len(text) == 0 {
		return append([]byte(nil), block...)
	}
	out := append([]byte(nil), text...)
	if !bytes.HasSuffix(out, []byte("\n")) {
		out = append(out, '\n')
	}
	if !bytes.HasSuffix(out, []byte("\n\n")) {
		out = append(out, '\n')
	}
	return append(out, block...)
}
