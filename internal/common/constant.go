// Package common contains shared constants and sentinel errors used across
// SoraPrompter components.
package common

// Storage keys. They match the keys the web client kept in localStorage so
// an exported localStorage dump can be loaded into any kv backend verbatim.
const (
	UsersKey       = "sora_prompter_users"
	CurrentUserKey = "sora_prompter_current_user"
)
