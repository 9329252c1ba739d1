package model

import "github.com/m-mizutani/goerr/v2"

// Error tags for categorization
var (
	ErrTagValidation        = goerr.NewTag("validation")
	ErrTagInvalidTransition = goerr.NewTag("invalid_transition")
	ErrTagAuthFailure       = goerr.NewTag("authentication_failure")
	ErrTagReconnectFailure  = goerr.NewTag("reconnect_failure")
)

// Sentinel errors for domain operations
var (
	ErrConnectorConfigNotFound = goerr.New("connector config not found")
	ErrEmployeeNotFound        = goerr.New("employee not found")
)
