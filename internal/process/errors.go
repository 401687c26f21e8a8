package process

import "errors"

// ErrInvalidPID is returned for pids that cannot lead a process tree.
var ErrInvalidPID = errors.New("invalid pid")
