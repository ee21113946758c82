package errtrack

import "github.com/UniQw/uniqw-errtrack/internal/keys"

type options struct {
	keyPrefix   string
	logger      Logger
	infoFactory ExceptionInfoFactory
	excLogger   ExceptionLogger
	encoder     Encoder
}

// Option is a function that configures a Tracker at construction.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		keyPrefix:   keys.DefaultPrefix,
		infoFactory: DefaultExceptionInfoFactory{},
		encoder:     &JSONEncoder{},
	}
}

// WithKeyPrefix overrides the leading key segment ("rbserror" by default).
// An empty prefix is ignored.
func WithKeyPrefix(prefix string) Option {
	return func(o *options) {
		if prefix != "" {
			o.keyPrefix = prefix
		}
	}
}

// WithLogger sets the logger for tracker events. If no ExceptionLogger is given,
// registered errors are logged here too.
func WithLogger(l Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithExceptionInfoFactory sets how handling errors are summarized before storage.
func WithExceptionInfoFactory(f ExceptionInfoFactory) Option {
	return func(o *options) {
		if f != nil {
			o.infoFactory = f
		}
	}
}

// WithExceptionLogger sets the audit logger called once per RegisterError.
func WithExceptionLogger(l ExceptionLogger) Option {
	return func(o *options) {
		o.excLogger = l
	}
}

// WithEncoder replaces the record encoder. The stored format must remain the
// JSON document other workers on the same queue expect.
func WithEncoder(e Encoder) Option {
	return func(o *options) {
		if e != nil {
			o.encoder = e
		}
	}
}
