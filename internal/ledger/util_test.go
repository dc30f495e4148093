package ledger

import (
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	default:
		return 0
	}
}

func asTime(v interface{}) time.Time {
	t, _ := v.(time.Time)
	return t
}

func duplicateKeyError() error {
	return mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "duplicate key"}},
	}
}
