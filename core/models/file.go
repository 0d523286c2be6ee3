package models

import "path/filepath"

// FileDescriptor is one filesystem entry found by a project scan.
type FileDescriptor struct {
	Dir   string
	Name  string // base name without extension
	Ext   string
	IsDir bool
}

func NewFileDescriptor(path string, isDir bool) FileDescriptor {
	base := filepath.Base(path)
	ext := ""
	if !isDir {
		ext = filepath.Ext(base)
	}
	return FileDescriptor{
		Dir:   filepath.Dir(path),
		Name:  base[:len(base)-len(ext)],
		Ext:   ext,
		IsDir: isDir,
	}
}

// Path is the descriptor's location without its extension.
func (f FileDescriptor) Path() string {
	return filepath.Join(f.Dir, f.Name)
}

func (f FileDescriptor) FullPath() string {
	return filepath.Join(f.Dir, f.Name+f.Ext)
}

type DocEntry struct {
	File        FileDescriptor
	ImportAlias string
	ImportPath  string
	DisplayName string
}

type DocFile struct {
	File FileDescriptor
}

// AnalysisResult is what the docs hook hands back to other analysis listeners.
type AnalysisResult struct {
	Docs []DocFile
}
