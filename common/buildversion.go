package common

import (
	"os"
	"path/filepath"

	git "github.com/go-git/go-git/v5"
)

// GetCommitHash returns the short HEAD commit of the repository containing
// the working directory or the executable, or "unknown".
func GetCommitHash() string {
	if cwd, err := os.Getwd(); err == nil {
		if hash := computeHashFromPath(cwd); hash != "" {
			return shortHash(hash)
		}
	}
	if exePath, err := os.Executable(); err == nil {
		if hash := computeHashFromPath(filepath.Dir(exePath)); hash != "" {
			return shortHash(hash)
		}
	}
	return "unknown"
}

func shortHash(hash string) string {
	if len(hash) >= 8 {
		return hash[:8]
	}
	return hash
}

func computeHashFromPath(path string) string {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return ""
	}
	head, err := repo.Head()
	if err != nil {
		return ""
	}
	return head.Hash().String()
}
