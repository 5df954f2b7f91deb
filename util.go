package main

import (
	"os"
	"time"

	. "github.com/ttpr0/go-raptor/util"
)

func IsDirectoryEmpty(path string) bool {
	files, err := os.ReadDir(path)
	if err != nil {
		return false
	}
	return len(files) == 0
}

// ChangedSources returns the files modified after since or no longer
// accessible.
func ChangedSources(files List[string], since time.Time) List[string] {
	changed := NewList[string](files.Length())
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil || info.ModTime().After(since) {
			changed.Add(file)
		}
	}
	return changed
}
