// Package service sits between the transports and the record store. It
// performs presence validation, keeps uploaded blobs in step with their
// resource rows and builds the analytics engine from the stored weights.
package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/myway/internal/files"
	"github.com/sadopc/myway/internal/logging"
	"github.com/sadopc/myway/internal/store"
)

// ErrValidation marks a request that is missing or misusing a field.
var ErrValidation = errors.New("validation failed")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

type Service struct {
	store *store.Store
	blobs *files.Store
	log   logging.Logger
	now   func() time.Time
}

type Option func(*Service)

// WithClock sets the clock the analytics engine treats as "now".
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(l logging.Logger) Option {
	return func(s *Service) { s.log = l }
}

func New(st *store.Store, blobs *files.Store, opts ...Option) *Service {
	s := &Service{
		store: st,
		blobs: blobs,
		log:   logging.Discard(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func blank(v string) bool { return strings.TrimSpace(v) == "" }
