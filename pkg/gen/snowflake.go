package gen

import (
	"os"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
)

var Module = fx.Module("gen", fx.Provide(NewSnowflakeNode))

// NewSnowflakeNode builds the process-wide id generator. The node id comes
// from NODE_ID so replicas never mint colliding ids; a single instance can
// run with the default.
func NewSnowflakeNode() (*snowflake.Node, error) {
	nodeID := int64(1)
	if v := os.Getenv("NODE_ID"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, err
		}
		nodeID = parsed
	}
	return snowflake.NewNode(nodeID)
}
