// Package repotest provides an in-memory repo.Context fake for unit
// tests that need a working tree without shelling out to git.
package repotest

import "context"

// FakeContext is an in-memory Context for unit tests, mirroring the
// corpus's preference for plain struct fakes over generated mocks.
type FakeContext struct {
	HeadID       string
	HasHead      bool
	Clean        bool
	Dirty        []string
	Commits      map[string][]string            // "old..new" -> commits, oldest first
	ChangedFiles map[string]map[string]struct{} // commit -> changed paths
}

// NewFakeContext returns a clean, headless FakeContext ready for a
// test to configure.
func NewFakeContext() *FakeContext {
	return &FakeContext{
		Clean:        true,
		Commits:      make(map[string][]string),
		ChangedFiles: make(map[string]map[string]struct{}),
	}
}

func (f *FakeContext) Head(ctx context.Context) (string, bool, error) {
	return f.HeadID, f.HasHead, nil
}

func (f *FakeContext) IsClean(ctx context.Context) (bool, error) {
	return f.Clean, nil
}

func (f *FakeContext) DirtyPaths(ctx context.Context) ([]string, error) {
	return f.Dirty, nil
}

func (f *FakeContext) CommitsBetween(ctx context.Context, old, new string) ([]string, error) {
	return f.Commits[old+".."+new], nil
}

func (f *FakeContext) FilesChangedIn(ctx context.Context, commits []string) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	for _, c := range commits {
		for p := range f.ChangedFiles[c] {
			out[p] = struct{}{}
		}
	}
	return out, nil
}
