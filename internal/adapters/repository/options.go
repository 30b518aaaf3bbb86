package repository

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithIDGenerator replaces the random id source.
func WithIDGenerator(next func() string) Option {
	return func(s *MemoryStore) {
		if next != nil {
			s.newID = next
		}
	}
}
