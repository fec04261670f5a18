package utilities

import (
	"os"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/segmentio/ksuid"
)

// NewRequestID generates a KSUID string used to tag a single HTTP request.
func NewRequestID() string {
	return ksuid.New().String()
}

var (
	tokenNodeOnce sync.Once
	tokenNode     *snowflake.Node
)

// NewTokenID generates a snowflake ID string used as the jti claim of issued
// tokens. The node ID comes from SNOWFLAKE_NODE; node 1 is assumed when the
// variable is unset or unparseable. The node is created once so IDs minted in
// the same millisecond still get distinct sequence numbers.
func NewTokenID() string {
	tokenNodeOnce.Do(func() {
		nodeID := int64(1)
		if v := os.Getenv("SNOWFLAKE_NODE"); v != "" {
			if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
				nodeID = parsed
			}
		}
		// tokenNode stays nil when the configured node is out of range
		tokenNode, _ = snowflake.NewNode(nodeID)
	})
	if tokenNode == nil {
		return ksuid.New().String()
	}
	return tokenNode.Generate().String()
}
