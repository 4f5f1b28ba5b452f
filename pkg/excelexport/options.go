package excelexport

import "github.com/rs/zerolog"

const (
	// DefaultDateLayout renders dates as short dates, e.g. 01/31/2024.
	DefaultDateLayout = "01/02/2006"
	// DefaultImageBound is the width and height of the box images are scaled into.
	DefaultImageBound = 100
	// PlaceholderText is written to the placeholder document of an empty export.
	PlaceholderText = "No data found"
	// PlaceholderWorksheet is the worksheet name of the placeholder document.
	PlaceholderWorksheet = "data"
)

// Option configures a generation call.
type Option func(*config)

type config struct {
	dateLayout string
	imageBound int
	logger     zerolog.Logger
}

func defaultConfig() *config {
	return &config{
		dateLayout: DefaultDateLayout,
		imageBound: DefaultImageBound,
		logger:     zerolog.Nop(),
	}
}

func applyOptions(opts []Option) *config {
	c := defaultConfig()
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithDateLayout sets the time layout used by inferred date columns.
func WithDateLayout(layout string) Option {
	return func(c *config) {
		if layout != "" {
			c.dateLayout = layout
		}
	}
}

// WithImageBound sets the bound box used when scaling embedded pictures.
func WithImageBound(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.imageBound = n
		}
	}
}

// WithLogger sets the logger receiving debug events.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}
