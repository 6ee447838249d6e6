package constants

import "errors"

// CLI errors.
var (
	ErrUnknownOutputFormat = errors.New("unknown output format, use one of auto, table, json, yaml")
	ErrUnknownConfigKey    = errors.New("unknown configuration key")
	ErrEmptyJSONPath       = errors.New("empty jsonpath expression")
	ErrInvalidHeader       = errors.New("invalid header, expected \"Name: value\"")
)
