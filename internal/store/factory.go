package store

// StoreType selects the persistence driver.
type StoreType string

const (
	StoreTypeMemory StoreType = "memory"
	StoreTypeRedis  StoreType = "redis"
	StoreTypeDuckDB StoreType = "duckdb"
)

// NewStore creates a Store for the given driver type.
// For Redis, WithRedisClient is required. For DuckDB, WithDuckDBPath selects
// the database file (empty path means in-memory).
func NewStore(storeType StoreType, opts ...StoreOption) (Store, error) {
	config := &storeConfig{}

	// Apply options
	for _, opt := range opts {
		opt(config)
	}

	switch storeType {
	case StoreTypeMemory:
		return newMemoryStore(), nil

	case StoreTypeRedis:
		if config.redisClient == nil {
			return nil, ErrInvalidConfig
		}
		ttl := config.redisTTL
		if ttl < 0 {
			ttl = 0
		}
		return &redisStore{
			client: config.redisClient,
			ttl:    ttl,
		}, nil

	case StoreTypeDuckDB:
		return newDuckDBStore(config.duckdbPath)

	default:
		return nil, ErrInvalidStoreType
	}
}
