package dataflow

// Option configures a pipeline stage.
type Option func(*config)

type config struct {
	workers    int
	bufferSize int
}

func defaultConfig() *config {
	return &config{
		workers:    1,
		bufferSize: 0,
	}
}

func applyOptions(opts []Option) *config {
	cfg := defaultConfig()
	for _, o := range opts {
		o(cfg)
	}
	return cfg
}

// WithWorkers sets the number of concurrent workers for a stage.
// Default is 1 (sequential).
func WithWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithBufferSize sets the buffer size for the output channel of a stage.
func WithBufferSize(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.bufferSize = n
		}
	}
}
