package patch

import "fmt"

// ActionType defines the type of patch action
type ActionType string

const (
	// ActionAdd represents adding a new file
	ActionAdd ActionType = "add"
	// ActionDelete represents deleting an existing file
	ActionDelete ActionType = "delete"
	// ActionUpdate represents updating an existing file
	ActionUpdate ActionType = "update"
)

// Chunk represents one contiguous edit inside an update action. OrigIndex is
// the 0-based line offset into the original file where the edit begins; it is
// assigned once the surrounding context has been located.
type Chunk struct {
	OrigIndex int      // Line index in the original file
	DelLines  []string // Lines removed from the original
	InsLines  []string // Lines inserted in their place
}

// PatchAction represents an action to be performed on a single file
type PatchAction struct {
	Type     ActionType
	NewFile  string  // Full content for new files (ActionAdd only)
	Chunks   []Chunk // Ordered, non-overlapping edits (ActionUpdate only)
	MovePath string  // Rename target (optional, ActionUpdate only)
}

// Patch is an ordered collection of actions keyed by file path. Files are
// applied in the order they appear in the patch text, so insertion order is
// tracked alongside the map.
type Patch struct {
	Actions map[string]*PatchAction
	Order   []string
}

// NewPatch creates an empty patch
func NewPatch() *Patch {
	return &Patch{Actions: make(map[string]*PatchAction)}
}

func (p *Patch) addAction(path string, action *PatchAction) {
	p.Actions[path] = action
	p.Order = append(p.Order, path)
}

// FileChange is a resolved, ready-to-apply change for one path
type FileChange struct {
	Type       ActionType
	OldContent string // Present for update/delete
	NewContent string // Present for add/update
	MovePath   string // Present when the update also renames
}

// Commit is an ordered collection of file changes, the terminal artifact
// handed to ApplyCommit.
type Commit struct {
	Changes map[string]FileChange
	Order   []string
}

// NewCommit creates an empty commit
func NewCommit() *Commit {
	return &Commit{Changes: make(map[string]FileChange)}
}

func (c *Commit) addChange(path string, change FileChange) {
	c.Changes[path] = change
	c.Order = append(c.Order, path)
}

// DiffError represents a structural error in a patch: missing sentinels,
// duplicate or unknown paths, malformed hunk lines, unmatched context,
// overlapping chunks. Any DiffError aborts the whole patch.
type DiffError struct {
	Message string
}

func (e *DiffError) Error() string {
	return e.Message
}

func diffErrorf(format string, args ...interface{}) *DiffError {
	return &DiffError{Message: fmt.Sprintf(format, args...)}
}

// FileSystem is the I/O boundary the engine requires from its environment.
// WriteFile is expected to create parent directories as needed; RemoveFile is
// expected to treat a missing file as a no-op. Errors returned here propagate
// to the caller unwrapped.
type FileSystem interface {
	ReadFile(path string) (string, error)
	WriteFile(path string, content string) error
	RemoveFile(path string) error
}
