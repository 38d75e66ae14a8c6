package app

import "errors"

var (
	ErrAdminNotAuthorized   = errors.New("performing user is not authorized as an admin")
	ErrChannelNotFound      = errors.New("channel not found")
	ErrChannelAlreadyExists = errors.New("channel already exists")
	ErrEmptySignalName      = errors.New("signal name must not be empty")
	ErrNoSendTimes          = errors.New("at least one send time is required")
)
