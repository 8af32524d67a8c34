package entity

import "log/slog"

// Option configures a Reader, Writer, Remover or Repository.
type Option func(*options)

type options struct {
	codec  Codec
	logger *slog.Logger
}

func buildOptions(opts []Option) options {
	o := options{codec: JSON}
	for _, opt := range opts {
		opt(&o)
	}
	if o.codec == nil {
		o.codec = JSON
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// WithCodec selects the record codec. The default is JSON.
//
// Readers, writers and removers sharing a directory must use the same codec,
// since the codec decides the record file extension.
func WithCodec(c Codec) Option {
	return func(o *options) { o.codec = c }
}

// WithLogger sets the logger. If nil, slog.Default() is used.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}
