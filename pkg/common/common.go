package common

import (
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	snowNode     *snowflake.Node
	snowNodeOnce sync.Once
	snowNodeID   int64 = 1
)

// SetNodeID sets the snowflake node used by OrderNumber. It only has an
// effect before the first number is generated.
func SetNodeID(id int64) {
	snowNodeID = id
}

func node() *snowflake.Node {
	snowNodeOnce.Do(func() {
		n, err := snowflake.NewNode(snowNodeID)
		if err != nil {
			n, _ = snowflake.NewNode(1)
		}
		snowNode = n
	})
	return snowNode
}

// OrderNumber returns a monotonic, human facing order number.
func OrderNumber() int64 {
	return node().Generate().Int64()
}

// NewID returns a new record identifier in ObjectID hex form.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// ValidID reports whether s is a syntactically valid record identifier.
func ValidID(s string) bool {
	return len(s) == 24 && primitive.IsValidObjectID(s)
}

// NormalizeID folds a record identifier to the lowercase form ids are
// stored in. Non-id input is returned unchanged apart from case.
func NormalizeID(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Now returns the current UTC time truncated to milliseconds, the precision
// every storage backend keeps.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func IfEmptyStr(src string, defval string) string {
	if strings.TrimSpace(src) == "" {
		return defval
	}
	return src
}

func IsEmptyOrNA(val string) bool {
	val = strings.TrimSpace(val)
	return val == "" || strings.EqualFold(val, "N/A")
}
