package vfs

import "errors"

// -- Sentinels --

var (
	ErrFileMissing   = errors.New("file does not exist in workspace")
	ErrSourceMissing = errors.New("source file does not exist in workspace")
	ErrIsDirectory   = errors.New("path is a directory")
)
