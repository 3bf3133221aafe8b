package patch

import (
	"strings"
)

// getUpdatedFile replays an update action's chunks against the original text
// and returns the resulting content. Chunks must be in increasing OrigIndex
// order and must not overlap.
func getUpdatedFile(text string, action *PatchAction, path string) (string, error) {
	origLines := strings.Split(text, "\n")
	destLines := make([]string, 0, len(origLines))
	origIndex := 0

	for _, chunk := range action.Chunks {
		if chunk.OrigIndex > len(origLines) {
			return "", diffErrorf("%s: chunk line index %d exceeds file length %d", path, chunk.OrigIndex, len(origLines))
		}
		if origIndex > chunk.OrigIndex {
			return "", diffErrorf("%s: overlapping chunks at %d > %d", path, origIndex, chunk.OrigIndex)
		}

		// Copy the untouched span, splice in the insertions, skip the
		// deleted original lines.
		destLines = append(destLines, origLines[origIndex:chunk.OrigIndex]...)
		destLines = append(destLines, chunk.InsLines...)
		origIndex = chunk.OrigIndex + len(chunk.DelLines)
	}

	destLines = append(destLines, origLines[origIndex:]...)
	return strings.Join(destLines, "\n"), nil
}

// PatchToCommit materializes a parsed patch into a commit by resolving every
// action against the original file contents.
func PatchToCommit(p *Patch, orig map[string]string) (*Commit, error) {
	commit := NewCommit()

	for _, path := range p.Order {
		action := p.Actions[path]
		switch action.Type {
		case ActionDelete:
			commit.addChange(path, FileChange{
				Type:       ActionDelete,
				OldContent: orig[path],
			})
		case ActionAdd:
			commit.addChange(path, FileChange{
				Type:       ActionAdd,
				NewContent: action.NewFile,
			})
		case ActionUpdate:
			newContent, err := getUpdatedFile(orig[path], action, path)
			if err != nil {
				return nil, err
			}
			commit.addChange(path, FileChange{
				Type:       ActionUpdate,
				OldContent: orig[path],
				NewContent: newContent,
				MovePath:   action.MovePath,
			})
		}
	}

	return commit, nil
}

// ApplyCommit executes the commit's changes against the filesystem in the
// order the files appeared in the patch text. There is no rollback: if a
// write fails partway through, earlier writes stand.
func ApplyCommit(commit *Commit, fs FileSystem) error {
	for _, path := range commit.Order {
		change := commit.Changes[path]
		switch change.Type {
		case ActionDelete:
			if err := fs.RemoveFile(path); err != nil {
				return err
			}
		case ActionAdd:
			if err := fs.WriteFile(path, change.NewContent); err != nil {
				return err
			}
		case ActionUpdate:
			target := path
			if change.MovePath != "" {
				target = change.MovePath
			}
			if err := fs.WriteFile(target, change.NewContent); err != nil {
				return err
			}
			if change.MovePath != "" && change.MovePath != path {
				if err := fs.RemoveFile(path); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// LoadFiles reads the current content of every given path.
func LoadFiles(paths []string, fs FileSystem) (map[string]string, error) {
	orig := make(map[string]string, len(paths))
	for _, path := range paths {
		content, err := fs.ReadFile(path)
		if err != nil {
			return nil, err
		}
		orig[path] = content
	}
	return orig, nil
}

// ProcessPatch is the public entry point: parse patch text, resolve it
// against the current files, and apply the resulting commit. No filesystem
// mutation happens unless the whole patch parses and resolves cleanly.
func ProcessPatch(text string, fs FileSystem) (string, error) {
	if !strings.HasPrefix(text, PatchBeginMarker) {
		return "", diffErrorf("patch text must start with %s", PatchBeginMarker)
	}

	paths := IdentifyFilesNeeded(text)
	orig, err := LoadFiles(paths, fs)
	if err != nil {
		return "", err
	}

	p, _, err := TextToPatch(text, orig)
	if err != nil {
		return "", err
	}

	commit, err := PatchToCommit(p, orig)
	if err != nil {
		return "", err
	}

	if err := ApplyCommit(commit, fs); err != nil {
		return "", err
	}

	return "Done!", nil
}
