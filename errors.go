package cssbuild

import (
	"fmt"
)

// PluginError is a run-ending error raised by a pipeline stage.
type PluginError struct {
	Plugin  string // "csslint", "compiler"
	Message string
	Err     error
}

func (e *PluginError) Error() string {
	return fmt.Sprintf("%s: %s", e.Plugin, e.Message)
}

func (e *PluginError) Unwrap() error {
	return e.Err
}

// CompileError is a structured compiler failure with a source location.
type CompileError struct {
	FilePath string
	Line     int
	Column   int
	Message  string
}

func (e *CompileError) Error() string {
	switch {
	case e.Line > 0 && e.Column > 0:
		return fmt.Sprintf("%s:%d:%d: %s", e.FilePath, e.Line, e.Column, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("%s:%d: %s", e.FilePath, e.Line, e.Message)
	case e.FilePath != "":
		return fmt.Sprintf("%s: %s", e.FilePath, e.Message)
	}
	return e.Message
}
