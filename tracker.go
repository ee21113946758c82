package errtrack

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/UniQw/uniqw-errtrack/internal/keys"
	"github.com/UniQw/uniqw-errtrack/internal/metrics"
	"github.com/redis/go-redis/v9"
)

// Tracker records handling errors per message id for one queue and decides when
// a message has failed too many times. All state lives in the Store; the tracker
// keeps no cache, so any number of workers may share a queue's records.
//
// Records are created with a create-only write and updated with an update-only
// write. Two workers updating the same existing record concurrently can lose one
// of the appended errors; this is accepted for retry counting.
type Tracker struct {
	store       Store
	queue       string
	keys        keys.Queue
	settings    Settings
	ttl         time.Duration
	infoFactory ExceptionInfoFactory
	excLogger   ExceptionLogger
	enc         Encoder
	log         Logger
}

// NewTracker creates a Tracker for queue on top of store.
// It returns ErrQueueNameRequired for an empty queue and ErrInvalidSettings for out-of-range settings.
func NewTracker(store Store, queue string, settings Settings, opts ...Option) (*Tracker, error) {
	if queue == "" {
		return nil, ErrQueueNameRequired
	}
	if store == nil {
		return nil, errors.New("errtrack: nil store")
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	cfg := defaultOptions()
	for _, opt := range opts {
		opt(cfg)
	}

	lg := cfg.logger
	excLogger := cfg.excLogger
	if excLogger == nil {
		excLogger = NewLoggerExceptionLogger(lg)
	}
	if lg == nil {
		lg = noopLogger{}
	}

	return &Tracker{
		store:       store,
		queue:       queue,
		keys:        keys.For(cfg.keyPrefix, queue),
		settings:    settings,
		ttl:         settings.TTL(),
		infoFactory: cfg.infoFactory,
		excLogger:   excLogger,
		enc:         cfg.encoder,
		log:         lg,
	}, nil
}

// NewRedisTracker creates a Tracker storing records in Redis through rdb.
// The client is shared and never closed by the tracker.
func NewRedisTracker(rdb redis.UniversalClient, queue string, settings Settings, opts ...Option) (*Tracker, error) {
	if rdb == nil {
		return nil, errors.New("errtrack: nil redis client")
	}
	return NewTracker(NewRedisStore(rdb), queue, settings, opts...)
}

// Queue returns the queue name the tracker is scoped to.
func (t *Tracker) Queue() string { return t.queue }

// Settings returns the retry settings in effect.
func (t *Tracker) Settings() Settings { return t.settings }

// Key returns the store key holding messageID's record.
func (t *Tracker) Key(messageID string) string { return t.keys.Message(messageID) }

// RegisterError appends a summary of err to messageID's record, creating the
// record on first use. The exception logger is called once with the resulting
// count and final flag. A write refused by the existence condition, because
// another worker created or removed the record in between, is dropped without error.
func (t *Tracker) RegisterError(ctx context.Context, messageID string, err error) error {
	const op = "register_error"
	cur, found, lerr := t.load(ctx, op, messageID)
	if lerr != nil {
		return lerr
	}

	info := t.infoFactory.CreateInfo(err)

	var (
		next ErrorTracking
		cond SetCondition
	)
	if !found {
		next = ErrorTracking{Errors: []ExceptionInfo{info}}
		cond = SetIfAbsent
	} else {
		next = cur.AddError(info)
		cond = SetIfExists
	}

	if serr := t.save(ctx, op, messageID, next, cond); serr != nil {
		return serr
	}
	metrics.ErrorsRegistered.WithLabelValues(t.queue).Inc()

	t.excLogger.LogException(messageID, err, next.ErrorCount(), next.Final)
	return nil
}

// MarkAsFinal flags messageID's record as final so no further retries happen.
// Existing errors are kept; an absent record is created with no errors.
func (t *Tracker) MarkAsFinal(ctx context.Context, messageID string) error {
	const op = "mark_final"
	cur, found, err := t.load(ctx, op, messageID)
	if err != nil {
		return err
	}

	next := ErrorTracking{Errors: []ExceptionInfo{}, Final: true}
	cond := SetIfAbsent
	if found {
		next = cur.MarkAsFinal()
		cond = SetIfExists
	}

	if err := t.save(ctx, op, messageID, next, cond); err != nil {
		return err
	}
	metrics.MarkedFinal.WithLabelValues(t.queue).Inc()
	return nil
}

// HasFailedTooManyTimes reports whether messageID is final or has reached the
// configured number of delivery attempts. An unknown message has not failed.
func (t *Tracker) HasFailedTooManyTimes(ctx context.Context, messageID string) (bool, error) {
	cur, found, err := t.load(ctx, "has_failed", messageID)
	if err != nil || !found {
		return false, err
	}
	if !cur.Exceeds(t.settings.MaxDeliveryAttempts) {
		return false, nil
	}
	metrics.GiveUpAnswers.WithLabelValues(t.queue).Inc()
	return true, nil
}

// GetFullErrorDescription renders every recorded error of messageID, oldest first.
// ok is false when there is no record.
func (t *Tracker) GetFullErrorDescription(ctx context.Context, messageID string) (desc string, ok bool, err error) {
	cur, found, err := t.load(ctx, "describe", messageID)
	if err != nil || !found {
		return "", false, err
	}
	return describe(cur), true, nil
}

// GetExceptions returns a copy of the recorded errors of messageID.
// The result is empty, never nil, when there is no record.
func (t *Tracker) GetExceptions(ctx context.Context, messageID string) ([]ExceptionInfo, error) {
	cur, found, err := t.load(ctx, "exceptions", messageID)
	if err != nil {
		return nil, err
	}
	if !found {
		return []ExceptionInfo{}, nil
	}
	return cloneInfos(cur.Errors), nil
}

// CleanUp removes messageID's record. Removing a missing record is not an error.
func (t *Tracker) CleanUp(ctx context.Context, messageID string) error {
	if messageID == "" {
		return ErrEmptyMessageID
	}
	key := t.keys.Message(messageID)
	if err := t.store.Delete(ctx, key); err != nil {
		metrics.StoreErrors.WithLabelValues(t.queue, "cleanup").Inc()
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	t.log.Debugf("errtrack: cleaned up key=%s", key)
	return nil
}

// CleanUpQueue removes every record of the tracker's queue, e.g. after the queue
// or its error queue has been drained. It returns the number of records removed.
func (t *Tracker) CleanUpQueue(ctx context.Context) (int64, error) {
	p, ok := t.store.(Purger)
	if !ok {
		return 0, ErrPurgeUnsupported
	}
	n, err := p.DeleteMatching(ctx, t.keys.Pattern())
	if err != nil {
		metrics.StoreErrors.WithLabelValues(t.queue, "cleanup_queue").Inc()
		return n, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	t.log.Infof("errtrack: purged %d records queue=%s", n, t.queue)
	return n, nil
}

func (t *Tracker) load(ctx context.Context, op, messageID string) (ErrorTracking, bool, error) {
	if messageID == "" {
		return ErrorTracking{}, false, ErrEmptyMessageID
	}
	key := t.keys.Message(messageID)
	raw, found, err := t.store.Get(ctx, key)
	if err != nil {
		metrics.StoreErrors.WithLabelValues(t.queue, op).Inc()
		return ErrorTracking{}, false, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if !found {
		return ErrorTracking{}, false, nil
	}
	cur, stored, err := decodeTracking(t.enc, raw)
	if err != nil {
		metrics.CorruptRecords.WithLabelValues(t.queue).Inc()
		return ErrorTracking{}, false, fmt.Errorf("key %s: %w", key, err)
	}
	if stored != cur.ErrorCount() {
		t.log.Warnf("errtrack: stored error count drift key=%s stored=%d actual=%d", key, stored, cur.ErrorCount())
	}
	return cur, true, nil
}

func (t *Tracker) save(ctx context.Context, op, messageID string, next ErrorTracking, cond SetCondition) error {
	key := t.keys.Message(messageID)
	raw, err := encodeTracking(t.enc, next)
	if err != nil {
		return fmt.Errorf("errtrack: encode record key=%s: %w", key, err)
	}
	applied, err := t.store.Set(ctx, key, raw, t.ttl, cond)
	if err != nil {
		metrics.StoreErrors.WithLabelValues(t.queue, op).Inc()
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if !applied {
		metrics.LostUpdates.WithLabelValues(t.queue, op).Inc()
		t.log.Debugf("errtrack: %s write not applied key=%s cond=%s", op, key, cond)
		return nil
	}
	t.log.Debugf("errtrack: %s key=%s errors=%d final=%t", op, key, next.ErrorCount(), next.Final)
	return nil
}

func describe(t ErrorTracking) string {
	parts := make([]string, len(t.Errors))
	for i, e := range t.Errors {
		parts[i] = e.FullErrorDescription()
	}
	return strconv.Itoa(len(t.Errors)) + " unhandled exceptions: " + strings.Join(parts, "\n")
}
