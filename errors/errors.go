package errors

import "fmt"

var (
	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrQueueClosed        = fmt.Errorf("command queue closed")
	ErrUnknownOpcode      = fmt.Errorf("unknown opcode")
	ErrLineTooLong        = fmt.Errorf("line exceeds maximum length")
	ErrInvalidPort        = fmt.Errorf("port must be between 1024 and 65535")
	ErrInvalidName        = fmt.Errorf("invalid name")
	ErrInvalidReplacement = fmt.Errorf("replacement must be a single character")
	ErrSessionClosed      = fmt.Errorf("session closed")
	ErrSessionNotFound    = fmt.Errorf("session is not registered")
	ErrUsernameTaken      = fmt.Errorf("username already taken")
	ErrRoomExists         = fmt.Errorf("room already exists")
	ErrRoomNotFound       = fmt.Errorf("room does not exist")
	ErrAlreadySubscribed  = fmt.Errorf("already subscribed")
)
