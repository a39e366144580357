package domain

import "errors"

var (
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrSnapshotNotFound    = errors.New("snapshot not found")
	ErrChannelNotFound     = errors.New("channel not found")
	ErrSyncInProgress      = errors.New("sync already in progress")
)
