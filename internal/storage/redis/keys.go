package redis

import (
	"fmt"

	"github.com/mcoot/courtside/internal/model"
)

// Key prefix for all courtside data
const keyPrefix = "courtside"

// gameKey returns the Redis key for a Game document
func gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, id)
}

// gameEventsKey returns the Redis key for the LIST holding a game's event log
func gameEventsKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s:events", keyPrefix, id)
}

// formatKey returns the Redis key for a GameFormatRules
func formatKey(id model.FormatID) string {
	return fmt.Sprintf("%s:format:%s", keyPrefix, id)
}

// formatIndexKey returns the Redis key for the SET of format keys
func formatIndexKey() string {
	return fmt.Sprintf("%s:idx:formats", keyPrefix)
}

// teamKey returns the Redis key for a Team
func teamKey(id model.TeamID) string {
	return fmt.Sprintf("%s:team:%s", keyPrefix, id)
}
