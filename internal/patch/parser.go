package patch

import (
	"strings"
)

// Constants for patch parsing
const (
	PatchBeginMarker = "*** Begin Patch"
	PatchEndMarker   = "*** End Patch"
	UpdateFilePrefix = "*** Update File: "
	AddFilePrefix    = "*** Add File: "
	DeleteFilePrefix = "*** Delete File: "
	MoveToPrefix     = "*** Move to: "
	EndOfFileMarker  = "*** End of File"
	HunkMarkerPrefix = "@@ "
	HunkMarker       = "@@"
)

// sectionEnders are the sentinels that terminate an update file body.
var sectionEnders = []string{
	PatchEndMarker,
	UpdateFilePrefix,
	DeleteFilePrefix,
	AddFilePrefix,
	EndOfFileMarker,
}

// Parser walks the lines of a patch document and accumulates a Patch. A fresh
// Parser is built for every document; nothing persists between runs.
type Parser struct {
	CurrentFiles map[string]string // Original content for every referenced path
	Lines        []string
	Index        int
	Patch        *Patch
	Fuzz         int // Cumulative context-match penalty, never negative
}

// NewParser creates a new parser instance
func NewParser(currentFiles map[string]string, lines []string) *Parser {
	return &Parser{
		CurrentFiles: currentFiles,
		Lines:        lines,
		Patch:        NewPatch(),
	}
}

// norm strips a trailing carriage return so sentinel comparisons work for
// both LF and CRLF input. Nothing else is trimmed.
func norm(line string) string {
	return strings.TrimSuffix(line, "\r")
}

// splitLines splits patch or file text into lines, preserving blank lines. A
// single trailing newline does not produce an empty final line.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// isDone reports whether the cursor is past the end of input or sitting on
// one of the given sentinel prefixes.
func (p *Parser) isDone(prefixes []string) bool {
	if p.Index >= len(p.Lines) {
		return true
	}
	line := norm(p.Lines[p.Index])
	for _, prefix := range prefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

// startsWith checks if the current line starts with the given prefix
func (p *Parser) startsWith(prefix string) bool {
	if p.Index >= len(p.Lines) {
		return false
	}
	return strings.HasPrefix(norm(p.Lines[p.Index]), prefix)
}

// readString consumes the current line if it starts with prefix and returns
// the text after the prefix, otherwise leaves the cursor alone and returns "".
func (p *Parser) readString(prefix string) string {
	if p.Index >= len(p.Lines) {
		return ""
	}
	line := norm(p.Lines[p.Index])
	if strings.HasPrefix(line, prefix) {
		p.Index++
		return line[len(prefix):]
	}
	return ""
}

// readLine returns the current raw line and advances the cursor
func (p *Parser) readLine() string {
	line := p.Lines[p.Index]
	p.Index++
	return line
}

// Parse parses the patch body into actions, leaving the cursor just past the
// end sentinel.
func (p *Parser) Parse() error {
	for !p.isDone([]string{PatchEndMarker}) {
		path := p.readString(UpdateFilePrefix)
		if path != "" {
			if _, exists := p.Patch.Actions[path]; exists {
				return diffErrorf("duplicate update for file: %s", path)
			}

			moveTo := p.readString(MoveToPrefix)

			text, exists := p.CurrentFiles[path]
			if !exists {
				return diffErrorf("update file error - missing file: %s", path)
			}

			action, err := p.parseUpdateFile(text)
			if err != nil {
				return err
			}
			action.MovePath = moveTo

			p.Patch.addAction(path, action)
			continue
		}

		path = p.readString(DeleteFilePrefix)
		if path != "" {
			if _, exists := p.Patch.Actions[path]; exists {
				return diffErrorf("duplicate delete for file: %s", path)
			}
			if _, exists := p.CurrentFiles[path]; !exists {
				return diffErrorf("delete file error - missing file: %s", path)
			}

			p.Patch.addAction(path, &PatchAction{Type: ActionDelete})
			continue
		}

		path = p.readString(AddFilePrefix)
		if path != "" {
			if _, exists := p.Patch.Actions[path]; exists {
				return diffErrorf("duplicate add for file: %s", path)
			}
			if _, exists := p.CurrentFiles[path]; exists {
				return diffErrorf("add file error - file already exists: %s", path)
			}

			action, err := p.parseAddFile()
			if err != nil {
				return err
			}

			p.Patch.addAction(path, action)
			continue
		}

		if p.Index < len(p.Lines) {
			return diffErrorf("unknown line while parsing: %s", p.Lines[p.Index])
		}
		return diffErrorf("unexpected end of patch input")
	}

	if !p.startsWith(PatchEndMarker) {
		return diffErrorf("missing %s sentinel", PatchEndMarker)
	}
	p.Index++
	return nil
}

// parseUpdateFile parses the body of one update section against the file's
// original text, anchoring each hunk via context search.
func (p *Parser) parseUpdateFile(text string) (*PatchAction, error) {
	action := &PatchAction{Type: ActionUpdate}
	fileLines := strings.Split(text, "\n")

	// index is the position in fileLines that the next hunk's context must
	// match at or after; it advances past every matched region.
	index := 0

	for !p.isDone(sectionEnders) {
		defStr := p.readString(HunkMarkerPrefix)
		sectionStr := ""
		if defStr == "" && p.Index < len(p.Lines) && norm(p.Lines[p.Index]) == HunkMarker {
			sectionStr = p.readLine()
		}

		// Only the first section of an update may start without a hunk marker.
		if defStr == "" && sectionStr == "" && index != 0 {
			return nil, diffErrorf("invalid line in update section:\n%s", p.Lines[p.Index])
		}

		if strings.TrimSpace(defStr) != "" {
			found := false
			if !containsLine(fileLines[:index], defStr) {
				for i := index; i < len(fileLines); i++ {
					if fileLines[i] == defStr {
						index = i + 1
						found = true
						break
					}
				}
			}
			if !found && !containsTrimmedLine(fileLines[:index], defStr) {
				for i := index; i < len(fileLines); i++ {
					if strings.TrimSpace(fileLines[i]) == strings.TrimSpace(defStr) {
						index = i + 1
						p.Fuzz++
						found = true
						break
					}
				}
			}
		}

		oldContext, chunks, endIndex, eof, err := peekNextSection(p.Lines, p.Index)
		if err != nil {
			return nil, err
		}

		newIndex, fuzz := findContext(fileLines, oldContext, index, eof)
		if newIndex == -1 {
			ctxText := strings.Join(oldContext, "\n")
			if eof {
				return nil, diffErrorf("invalid EOF context at %d:\n%s", index, ctxText)
			}
			return nil, diffErrorf("invalid context at %d:\n%s", index, ctxText)
		}
		p.Fuzz += fuzz

		// Rebase the chunk offsets from section-relative to file-absolute.
		for i := range chunks {
			chunks[i].OrigIndex += newIndex
		}
		action.Chunks = append(action.Chunks, chunks...)

		index = newIndex + len(oldContext)
		p.Index = endIndex
	}

	return action, nil
}

// parseAddFile parses an add file section; every body line must carry a '+'.
func (p *Parser) parseAddFile() (*PatchAction, error) {
	var lines []string

	for !p.isDone([]string{PatchEndMarker, UpdateFilePrefix, DeleteFilePrefix, AddFilePrefix}) {
		line := norm(p.readLine())
		if !strings.HasPrefix(line, "+") {
			return nil, diffErrorf("invalid add file line (missing '+'): %s", line)
		}
		lines = append(lines, line[1:])
	}

	return &PatchAction{
		Type:    ActionAdd,
		NewFile: strings.Join(lines, "\n"),
	}, nil
}

// TextToPatch parses a full patch document against a snapshot of the current
// files and returns the patch together with the accumulated fuzz.
func TextToPatch(text string, orig map[string]string) (*Patch, int, error) {
	lines := splitLines(text)
	if len(lines) < 2 ||
		!strings.HasPrefix(norm(lines[0]), PatchBeginMarker) ||
		norm(lines[len(lines)-1]) != PatchEndMarker {
		return nil, 0, diffErrorf("invalid patch text - missing '%s' / '%s' sentinels", PatchBeginMarker, PatchEndMarker)
	}

	parser := NewParser(orig, lines)
	parser.Index = 1 // Skip the begin sentinel

	if err := parser.Parse(); err != nil {
		return nil, 0, err
	}

	return parser.Patch, parser.Fuzz, nil
}

// peekNextSection scans one contiguous run of context/delete/insert lines
// starting at index, stopping at the next sentinel or hunk marker. It returns
// the original file's view of the region (kept + deleted lines), the chunks
// carved out of it with section-relative offsets, the cursor position after
// the section, and whether the section was terminated by the end-of-file
// marker.
func peekNextSection(lines []string, index int) ([]string, []Chunk, int, bool, error) {
	var old []string
	var delLines []string
	var insLines []string
	var chunks []Chunk
	mode := "keep"
	origIndex := index

	flush := func() {
		if len(insLines) > 0 || len(delLines) > 0 {
			chunks = append(chunks, Chunk{
				OrigIndex: len(old) - len(delLines),
				DelLines:  delLines,
				InsLines:  insLines,
			})
			delLines = nil
			insLines = nil
		}
	}

	for index < len(lines) {
		s := norm(lines[index])

		if strings.HasPrefix(s, HunkMarker) ||
			strings.HasPrefix(s, PatchEndMarker) ||
			strings.HasPrefix(s, UpdateFilePrefix) ||
			strings.HasPrefix(s, DeleteFilePrefix) ||
			strings.HasPrefix(s, AddFilePrefix) ||
			strings.HasPrefix(s, EndOfFileMarker) {
			break
		}
		if s == "***" {
			break
		}
		if strings.HasPrefix(s, "***") {
			return nil, nil, 0, false, diffErrorf("invalid line: %s", s)
		}
		index++

		lastMode := mode
		if s == "" {
			// An empty line inside a hunk is an implicit context line.
			s = " "
		}
		switch s[0] {
		case '+':
			mode = "add"
		case '-':
			mode = "delete"
		case ' ':
			mode = "keep"
		default:
			return nil, nil, 0, false, diffErrorf("invalid line: %s", s)
		}
		s = s[1:]

		// A new chunk begins whenever the mode transitions back to keep.
		if mode == "keep" && lastMode != mode {
			flush()
		}

		switch mode {
		case "delete":
			delLines = append(delLines, s)
			old = append(old, s)
		case "add":
			insLines = append(insLines, s)
		case "keep":
			old = append(old, s)
		}
	}

	flush()

	if index < len(lines) && norm(lines[index]) == EndOfFileMarker {
		index++
		return old, chunks, index, true, nil
	}

	if index == origIndex {
		return nil, nil, 0, false, diffErrorf("nothing in this section")
	}
	return old, chunks, index, false, nil
}

// findContext locates context within lines starting at start. When eof is
// set, a match anchored to the end of the file is tried first; a fallback
// match found elsewhere carries a heavy penalty so true end-of-file placement
// always wins when available.
func findContext(lines []string, context []string, start int, eof bool) (int, int) {
	if eof {
		if len(lines) >= len(context) {
			if newIndex, fuzz := findContextCore(lines, context, len(lines)-len(context)); newIndex != -1 {
				return newIndex, fuzz
			}
		}
		newIndex, fuzz := findContextCore(lines, context, start)
		if newIndex == -1 {
			return -1, 0
		}
		return newIndex, fuzz + 10000
	}
	return findContextCore(lines, context, start)
}

// findContextCore tries three successively looser match tiers, first success
// wins: exact (fuzz 0), trailing whitespace ignored (fuzz 1), all surrounding
// whitespace ignored (fuzz 100).
func findContextCore(lines []string, context []string, start int) (int, int) {
	if len(context) == 0 {
		return start, 0
	}

	for i := start; i <= len(lines)-len(context); i++ {
		if matchAt(lines, context, i, func(s string) string { return s }) {
			return i, 0
		}
	}
	for i := start; i <= len(lines)-len(context); i++ {
		if matchAt(lines, context, i, func(s string) string { return strings.TrimRight(s, " \t") }) {
			return i, 1
		}
	}
	for i := start; i <= len(lines)-len(context); i++ {
		if matchAt(lines, context, i, strings.TrimSpace) {
			return i, 100
		}
	}

	return -1, 0
}

// matchAt reports whether context matches lines at offset i after applying
// canon to both sides of every comparison.
func matchAt(lines []string, context []string, i int, canon func(string) string) bool {
	for j := range context {
		if canon(lines[i+j]) != canon(context[j]) {
			return false
		}
	}
	return true
}

func containsLine(lines []string, target string) bool {
	for _, s := range lines {
		if s == target {
			return true
		}
	}
	return false
}

func containsTrimmedLine(lines []string, target string) bool {
	target = strings.TrimSpace(target)
	for _, s := range lines {
		if strings.TrimSpace(s) == target {
			return true
		}
	}
	return false
}

// IdentifyFilesNeeded extracts the paths whose current content must be loaded
// before parsing: every update and delete target. This is a textual pre-scan,
// independent of full parsing.
func IdentifyFilesNeeded(text string) []string {
	seen := make(map[string]bool)
	var paths []string

	for _, line := range splitLines(text) {
		line = norm(line)
		var path string
		switch {
		case strings.HasPrefix(line, UpdateFilePrefix):
			path = strings.TrimPrefix(line, UpdateFilePrefix)
		case strings.HasPrefix(line, DeleteFilePrefix):
			path = strings.TrimPrefix(line, DeleteFilePrefix)
		default:
			continue
		}
		if !seen[path] {
			seen[path] = true
			paths = append(paths, path)
		}
	}

	return paths
}

// IdentifyFilesAdded extracts the paths created by add sections.
func IdentifyFilesAdded(text string) []string {
	var paths []string
	for _, line := range splitLines(text) {
		line = norm(line)
		if strings.HasPrefix(line, AddFilePrefix) {
			paths = append(paths, strings.TrimPrefix(line, AddFilePrefix))
		}
	}
	return paths
}
