package redis

import "fmt"

// KeyBuilder provides environment-aware Redis key building functionality
type KeyBuilder struct {
	prefix string
}

// NewKeyBuilder creates a new key builder with environment-based prefix
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "prod"
	if environment == "development" || environment == "staging" || environment == "test" {
		prefix = "staging"
	}

	return &KeyBuilder{
		prefix: prefix,
	}
}

// BuildKey constructs a Redis key with the environment prefix
func (kb *KeyBuilder) BuildKey(key string) string {
	return fmt.Sprintf("%s:%s", kb.prefix, key)
}

// GetPrefix returns the current environment prefix
func (kb *KeyBuilder) GetPrefix() string {
	return kb.prefix
}

func (kb *KeyBuilder) KeySession(sessionID string) string {
	return kb.BuildKey(fmt.Sprintf(KeySession, sessionID))
}

func (kb *KeyBuilder) KeyWizard(sessionID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyWizard, sessionID))
}

func (kb *KeyBuilder) KeyVotingHistory(userID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyVotingHistory, userID))
}

func (kb *KeyBuilder) KeyActiveElections() string {
	return kb.BuildKey(KeyActiveElections)
}

func (kb *KeyBuilder) KeyLiveResults(electionID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyLiveResults, electionID))
}

func (kb *KeyBuilder) KeyCastLock(sessionID, electionID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyCastLock, sessionID, electionID))
}

// KeyCustom builds a key from an arbitrary pattern
func (kb *KeyBuilder) KeyCustom(pattern string, args ...interface{}) string {
	key := fmt.Sprintf(pattern, args...)
	return kb.BuildKey(key)
}
