package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound        = errors.New("db: key not found")
	ErrCollectionNotFound = errors.New("db: collection not found")
	ErrCollectionExists   = errors.New("db: collection already exists")
)

// Op constants map to Redis command names and vector database calls for error context.
const (
	OpDel     = "DEL"
	OpHGetAll = "HGETALL"
	OpHSet    = "HSET"
	OpExists  = "EXISTS"
	OpScan    = "SCAN"
	OpGet     = "GET"
	OpSet     = "SET"
	OpExpire  = "EXPIRE"
	OpLPush   = "LPUSH"
	OpBLMove  = "BLMOVE"
	OpLMove   = "LMOVE"
	OpLRem    = "LREM"
	OpLLen    = "LLEN"

	OpCreateCollection = "create_collection"
	OpCreateFieldIndex = "create_field_index"
	OpDeleteCollection = "delete_collection"
	OpCollectionExists = "collection_exists"
	OpUpsert           = "upsert"
	OpSearch           = "search"
	OpScroll           = "scroll"
	OpCount            = "count"
	OpHealthCheck      = "health_check"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
