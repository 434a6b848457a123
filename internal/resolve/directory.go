package resolve

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/fhinkel/music-janitor-core/internal/dedupe"
)

// byPreferredDirectory keeps the one member whose file_path is inside
// cfg.PreferredDir (spec §4.8 step 3). If zero or more than one member
// qualifies, there is no clear winner and the group is deferred.
func byPreferredDirectory(g dedupe.Group, cfg Config) (dedupe.GroupMember, bool) {
	if cfg.PreferredDir == "" {
		return dedupe.GroupMember{}, false
	}
	pref := filepath.Clean(cfg.PreferredDir)
	winner := -1
	count := 0
	for i, m := range g.Members {
		if isInsideDir(m.FilePath, pref) {
			count++
			winner = i
		}
	}
	if count == 1 {
		return g.Members[winner], true
	}
	return dedupe.GroupMember{}, false
}

func isInsideDir(path, dir string) bool {
	rel, err := filepath.Rel(dir, filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// DirectoryPair is one duplicate pair contributing to a DirectoryConflict.
type DirectoryPair struct {
	GroupID  int
	FileA    string
	FileB    string
	TrackIDA int64
	TrackIDB int64
}

// DirectoryConflict groups every duplicate pair sharing the same
// unordered (directory_a, directory_b) pair of members (spec §4.8's
// directory-centric variant).
type DirectoryConflict struct {
	DirA, DirB string
	Pairs      []DirectoryPair
}

// DirectoryConflicts builds the directory-centric view of every group's
// pairwise members, letting a caller resolve a whole directory collision
// at once instead of group by group.
func DirectoryConflicts(groups []dedupe.Group) []DirectoryConflict {
	byDirs := make(map[[2]string]*DirectoryConflict)
	var order [][2]string

	for _, g := range groups {
		for i := 0; i < len(g.Members); i++ {
			for j := i + 1; j < len(g.Members); j++ {
				a, b := g.Members[i], g.Members[j]
				key := dirKey(filepath.Dir(a.FilePath), filepath.Dir(b.FilePath))
				c, ok := byDirs[key]
				if !ok {
					c = &DirectoryConflict{DirA: key[0], DirB: key[1]}
					byDirs[key] = c
					order = append(order, key)
				}
				c.Pairs = append(c.Pairs, DirectoryPair{
					GroupID: g.ID, FileA: a.FilePath, FileB: b.FilePath,
					TrackIDA: a.TrackID, TrackIDB: b.TrackID,
				})
			}
		}
	}

	conflicts := make([]DirectoryConflict, 0, len(order))
	for _, key := range order {
		conflicts = append(conflicts, *byDirs[key])
	}
	sort.Slice(conflicts, func(i, j int) bool {
		if conflicts[i].DirA != conflicts[j].DirA {
			return conflicts[i].DirA < conflicts[j].DirA
		}
		return conflicts[i].DirB < conflicts[j].DirB
	})
	return conflicts
}

func dirKey(a, b string) [2]string {
	if a <= b {
		return [2]string{a, b}
	}
	return [2]string{b, a}
}

// PreviewDirectoryResolution returns the files that would be deleted if
// keepDir is kept over deleteDir for this conflict, deduplicated and
// sorted for a reproducible preview.
func PreviewDirectoryResolution(c DirectoryConflict, keepDir, deleteDir string) []string {
	keepDir, deleteDir = filepath.Clean(keepDir), filepath.Clean(deleteDir)
	seen := make(map[string]bool)
	var toDelete []string
	for _, p := range c.Pairs {
		dirA, dirB := filepath.Dir(p.FileA), filepath.Dir(p.FileB)
		switch {
		case dirA == deleteDir && dirB == keepDir && !seen[p.FileA]:
			toDelete = append(toDelete, p.FileA)
			seen[p.FileA] = true
		case dirB == deleteDir && dirA == keepDir && !seen[p.FileB]:
			toDelete = append(toDelete, p.FileB)
			seen[p.FileB] = true
		}
	}
	sort.Strings(toDelete)
	return toDelete
}
