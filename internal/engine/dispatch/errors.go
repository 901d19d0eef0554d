package dispatch

import "errors"

// -- Sentinels --

var (
	ErrSourcePathRequired = errors.New("action requires a sourcePath")
	ErrTimeRangeRequired  = errors.New("action requires startTime and endTime")
	ErrContentRequired    = errors.New("action requires content")
	ErrFileTooLarge       = errors.New("file exceeds the size limit")
	ErrNoImageSource      = errors.New("no source image given and none could be inferred")
	ErrCollaboratorUnset  = errors.New("no collaborator configured for this action type")
)
