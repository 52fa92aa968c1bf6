package repository

// settings collects backend parameters for Open.
type settings struct {
	sqlitePath    string
	redisAddr     string
	redisPassword string
	redisDB       int
	redisPrefix   string
}

// Option configures Open.
type Option func(*settings)

// WithSQLitePath sets the database file for the sqlite driver.
func WithSQLitePath(path string) Option {
	return func(s *settings) {
		if path != "" {
			s.sqlitePath = path
		}
	}
}

// WithRedis sets the connection for the redis driver.
func WithRedis(addr, password string, db int) Option {
	return func(s *settings) {
		s.redisAddr = addr
		s.redisPassword = password
		s.redisDB = db
	}
}

// WithRedisPrefix namespaces every redis key.
func WithRedisPrefix(prefix string) Option {
	return func(s *settings) {
		s.redisPrefix = prefix
	}
}
