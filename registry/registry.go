package registry

import (
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/mygamer123/tradingagents/config"
	"github.com/mygamer123/tradingagents/types"
	"go.uber.org/zap"
)

// Constructor builds a provider from a configuration. It must not perform
// network I/O and must ignore keys it does not recognize.
type Constructor[T any] func(cfg config.ProviderConfig) (T, error)

// Resolution outcomes reported to a Recorder.
const (
	OutcomeOK      = "ok"
	OutcomeUnknown = "unknown"
	OutcomeError   = "error"
)

// Recorder receives one observation per resolution attempt.
type Recorder interface {
	RecordResolution(family, key, outcome string)
}

// Option configures a Registry.
type Option func(*settings)

type settings struct {
	defaults func() config.ProviderConfig
	logger   *zap.Logger
	recorder Recorder
}

// WithDefaults sets the source of the process-wide configuration used when a
// caller passes a nil configuration. Store.Get fits here.
func WithDefaults(fn func() config.ProviderConfig) Option {
	return func(s *settings) { s.defaults = fn }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRecorder reports resolutions to rec.
func WithRecorder(rec Recorder) Option {
	return func(s *settings) { s.recorder = rec }
}

// Registry maps normalized provider keys to constructors for one capability
// family. It is safe for concurrent use; concurrent registrations on the same
// key are last-writer-wins.
type Registry[T any] struct {
	mu      sync.RWMutex
	entries map[string]Constructor[T]
	order   []string

	family      string
	selectorKey string
	defaultKey  string

	defaults func() config.ProviderConfig
	logger   *zap.Logger
	recorder Recorder
}

// New creates an empty registry. family names the capability in errors and
// logs, selectorKey is the config key read by Get and defaultKey is used when
// the selector is absent or blank.
func New[T any](family, selectorKey, defaultKey string, opts ...Option) *Registry[T] {
	s := settings{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&s)
	}
	if s.defaults == nil {
		s.defaults = func() config.ProviderConfig { return config.ProviderConfig{} }
	}

	return &Registry[T]{
		entries:     make(map[string]Constructor[T]),
		family:      family,
		selectorKey: selectorKey,
		defaultKey:  Normalize(defaultKey),
		defaults:    s.defaults,
		logger:      s.logger.With(zap.String("component", "registry"), zap.String("family", family)),
		recorder:    s.recorder,
	}
}

// Normalize lowercases and trims a provider key.
func Normalize(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Family returns the capability family name.
func (r *Registry[T]) Family() string { return r.family }

// SelectorKey returns the config key read by Get.
func (r *Registry[T]) SelectorKey() string { return r.selectorKey }

// DefaultKey returns the key used when no selector is given.
func (r *Registry[T]) DefaultKey() string { return r.defaultKey }

// Register inserts or overwrites the constructor for key. The constructor is
// built once with the process defaults; a failing build or a nil product is
// rejected with INVALID_PROVIDER and leaves the registry unchanged.
func (r *Registry[T]) Register(key string, ctor Constructor[T]) error {
	norm := Normalize(key)
	if norm == "" {
		return types.InvalidProvider(r.family, key, "empty provider key")
	}
	if ctor == nil {
		return types.InvalidProvider(r.family, norm, "nil constructor")
	}

	product, err := ctor(r.defaults().Clone())
	if err != nil {
		return types.InvalidProvider(r.family, norm, "constructor failed").WithCause(err)
	}
	defer closeTrial(product)
	if isNil(product) {
		return types.InvalidProvider(r.family, norm, "constructor returned nil")
	}

	r.store(norm, ctor)
	return nil
}

// RegisterFunc registers an untyped constructor. Its product is checked for
// every method of T; INVALID_PROVIDER lists the missing ones.
func (r *Registry[T]) RegisterFunc(key string, fn func(config.ProviderConfig) (any, error)) error {
	norm := Normalize(key)
	if norm == "" {
		return types.InvalidProvider(r.family, key, "empty provider key")
	}
	if fn == nil {
		return types.InvalidProvider(r.family, norm, "nil constructor")
	}

	product, err := fn(r.defaults().Clone())
	if err != nil {
		return types.InvalidProvider(r.family, norm, "constructor failed").WithCause(err)
	}
	defer closeTrial(product)
	if isNil(product) {
		return types.InvalidProvider(r.family, norm, "constructor returned nil")
	}

	if _, ok := product.(T); !ok {
		missing := MissingMethods(reflect.TypeOf((*T)(nil)).Elem(), product)
		detail := fmt.Sprintf("%T does not implement the %s interface", product, r.family)
		if len(missing) > 0 {
			detail += ": missing " + strings.Join(missing, ", ")
		}
		return types.InvalidProvider(r.family, norm, detail)
	}

	family := r.family
	r.store(norm, func(cfg config.ProviderConfig) (T, error) {
		var zero T
		v, err := fn(cfg)
		if err != nil {
			return zero, err
		}
		t, ok := v.(T)
		if !ok {
			return zero, types.InvalidProvider(family, norm,
				fmt.Sprintf("%T does not implement the %s interface", v, family))
		}
		return t, nil
	})
	return nil
}

func (r *Registry[T]) store(key string, ctor Constructor[T]) {
	r.mu.Lock()
	_, exists := r.entries[key]
	r.entries[key] = ctor
	if !exists {
		r.order = append(r.order, key)
	}
	r.mu.Unlock()

	if exists {
		r.logger.Warn("provider overwritten", zap.String("provider", key))
	} else {
		r.logger.Info("provider registered", zap.String("provider", key))
	}
}

// Get resolves the provider named by cfg's selector key. A nil cfg uses the
// process defaults. In a non-nil cfg a missing or blank selector always means
// the default key, whatever the process defaults select.
func (r *Registry[T]) Get(cfg config.ProviderConfig) (T, error) {
	cfg = r.orDefaults(cfg)
	return r.GetByKey(cfg.String(r.selectorKey, ""), cfg)
}

func (r *Registry[T]) orDefaults(cfg config.ProviderConfig) config.ProviderConfig {
	if cfg == nil {
		if cfg = r.defaults(); cfg == nil {
			cfg = config.ProviderConfig{}
		}
	}
	return cfg
}

// GetByKey resolves key directly, passing cfg through to the constructor.
func (r *Registry[T]) GetByKey(key string, cfg config.ProviderConfig) (T, error) {
	var zero T

	norm := Normalize(key)
	if norm == "" {
		norm = r.defaultKey
	}
	cfg = r.orDefaults(cfg)

	r.mu.RLock()
	ctor, ok := r.entries[norm]
	var available []string
	if !ok {
		available = append(available, r.order...)
	}
	r.mu.RUnlock()

	if !ok {
		r.record(norm, OutcomeUnknown)
		r.logger.Debug("unknown provider requested",
			zap.String("provider", norm), zap.Strings("available", available))
		return zero, types.UnknownProvider(r.family, norm, available)
	}

	// constructors run outside the lock so they may resolve other providers
	product, err := ctor(cfg.Clone())
	if err != nil {
		r.record(norm, OutcomeError)
		if e, ok := types.AsError(err); ok {
			return zero, e
		}
		return zero, types.InvalidProvider(r.family, norm, "constructor failed").WithCause(err)
	}

	r.record(norm, OutcomeOK)
	return product, nil
}

// KeyFor returns the normalized key Get would resolve for cfg.
func (r *Registry[T]) KeyFor(cfg config.ProviderConfig) string {
	cfg = r.orDefaults(cfg)
	if key := Normalize(cfg.String(r.selectorKey, "")); key != "" {
		return key
	}
	return r.defaultKey
}

// Has reports whether key is registered.
func (r *Registry[T]) Has(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[Normalize(key)]
	return ok
}

// List returns the registered keys in insertion order.
func (r *Registry[T]) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Len returns the number of registered providers.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

func (r *Registry[T]) record(key, outcome string) {
	if r.recorder != nil {
		r.recorder.RecordResolution(r.family, key, outcome)
	}
}

func closeTrial(v any) {
	if c, ok := v.(io.Closer); ok && !isNil(v) {
		_ = c.Close()
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
