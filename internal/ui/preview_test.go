package ui

import (
	"strings"
	"testing"

	"github.com/epuerta/applypatch/internal/patch"
)

func buildCommit() *patch.Commit {
	commit := patch.NewCommit()
	commit.Changes["up.txt"] = patch.FileChange{
		Type:       patch.ActionUpdate,
		OldContent: "a\nb\nc",
		NewContent: "a\nx\nc",
	}
	commit.Changes["new.txt"] = patch.FileChange{
		Type:       patch.ActionAdd,
		NewContent: "hello",
	}
	commit.Changes["gone.txt"] = patch.FileChange{
		Type:       patch.ActionDelete,
		OldContent: "bye",
	}
	commit.Order = []string{"up.txt", "new.txt", "gone.txt"}
	return commit
}

func TestRenderCommit(t *testing.T) {
	out := RenderCommit(buildCommit())

	for _, want := range []string{
		"update up.txt",
		"-b",
		"+x",
		"add new.txt",
		"+hello",
		"delete gone.txt",
		"-bye",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected preview to contain %q:\n%s", want, out)
		}
	}

	// Apply order must be preserved in the rendering.
	if strings.Index(out, "update up.txt") > strings.Index(out, "add new.txt") {
		t.Errorf("Preview not in apply order:\n%s", out)
	}
}

func TestRenderCommitMoveHeader(t *testing.T) {
	commit := patch.NewCommit()
	commit.Changes["old.txt"] = patch.FileChange{
		Type:       patch.ActionUpdate,
		OldContent: "a",
		NewContent: "b",
		MovePath:   "new.txt",
	}
	commit.Order = []string{"old.txt"}

	out := RenderCommit(commit)
	if !strings.Contains(out, "update old.txt -> new.txt") {
		t.Errorf("Expected move header, got:\n%s", out)
	}
}

func TestSummarize(t *testing.T) {
	got := Summarize(buildCommit())
	want := "3 file(s): 1 add, 1 update, 1 delete"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
