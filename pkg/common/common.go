package common

import (
	"crypto/sha256"
	"encoding/hex"
	"math/rand"
	"strings"

	"github.com/bwmarrin/snowflake"
)

const (
	ENABLED  = "enabled"
	DISABLED = "disabled"
	NA       = "N/A"
)

var idNode *snowflake.Node

func init() {
	node, err := snowflake.NewNode(rand.Int63n(1024))
	if err != nil {
		panic(err)
	}
	idNode = node
}

// UUID returns a new snowflake identifier string.
func UUID() string {
	return idNode.Generate().String()
}

// NewID returns a snowflake identifier behind a type prefix, e.g. PROD1234....
func NewID(prefix string) string {
	return prefix + idNode.Generate().String()
}

// Sha256HashWithSalt returns the hex SHA-256 digest of value+salt.
func Sha256HashWithSalt(value, salt string) string {
	sum := sha256.Sum256([]byte(value + salt))
	return hex.EncodeToString(sum[:])
}

// IfEmptyStr returns defval when src is blank.
func IfEmptyStr(src, defval string) string {
	if strings.TrimSpace(src) == "" {
		return defval
	}
	return src
}
