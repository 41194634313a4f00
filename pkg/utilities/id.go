package utilities

import (
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
)

// NewKSUID generates a new globally unique KSUID string.
func NewKSUID() string {
	return ksuid.New().String()
}

// NewUUID generates a random (v4) UUID string.
func NewUUID() string {
	return uuid.NewString()
}

// SnowflakeGenerator hands out snowflake IDs from a single node so that
// IDs generated within the same millisecond still get distinct sequences.
type SnowflakeGenerator struct {
	mu   sync.Mutex
	node *snowflake.Node
}

// NewSnowflakeGenerator builds a generator for the given node ID (0..1023).
func NewSnowflakeGenerator(nodeID int64) (*SnowflakeGenerator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, err
	}
	return &SnowflakeGenerator{node: node}, nil
}

// Next returns the next snowflake ID as a decimal string. A nil generator
// falls back to a KSUID so callers always get a unique ID.
func (g *SnowflakeGenerator) Next() string {
	if g == nil || g.node == nil {
		return NewKSUID()
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.node.Generate().String()
}
