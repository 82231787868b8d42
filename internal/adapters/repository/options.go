package repository

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithPage seeds a page.
func WithPage(title, text string) Option {
	return func(s *MemoryStore) {
		s.putLocked(title, text)
	}
}

// WithPages seeds several pages.
func WithPages(pages map[string]string) Option {
	return func(s *MemoryStore) {
		for title, text := range pages {
			s.putLocked(title, text)
		}
	}
}
