// mobilecart/cartstore/cartstore.go

// Package cartstore holds the shopping cart state: an ordered list of line
// items persisted under a single storage key and published to subscribers
// after every successful write.
package cartstore

import (
	"context"
	"sync"

	"github.com/alecthomas/types/pubsub"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/norun9/mobilecart/storage"
)

// DefaultKey is the storage key the cart is persisted under.
const DefaultKey = "@cart"

// ErrInvalidProduct is returned by AddToCart for a product without an ID.
var ErrInvalidProduct = errors.New("product id is required")

// Store is the cart state container. Mutations are serialized per Store: each
// one reads the persisted cart, derives the next cart, writes it back and only
// then publishes it.
type Store struct {
	storage      storage.Storage
	key          string
	removeAtZero bool
	log          logrus.FieldLogger
	tracer       trace.Tracer

	// mu is held across every read-modify-write of the persisted key.
	mu sync.Mutex

	pmu      sync.RWMutex
	products Cart

	topic *pubsub.Topic[Cart]
	// subs maps a subscriber's channel to its topic subscription. Guarded by mu.
	subs   map[chan Cart]chan Cart
	closed bool // guarded by mu
}

// Option configures a Store.
type Option func(*Store)

// WithKey persists the cart under key instead of DefaultKey.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Store) { s.log = log }
}

// WithTracer sets the tracer used for per-operation spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Store) { s.tracer = tracer }
}

// WithRemoveAtZero drops a line as soon as an increment or decrement brings
// its quantity to exactly zero. Without it quantities may reach zero and go
// negative.
func WithRemoveAtZero() Option {
	return func(s *Store) { s.removeAtZero = true }
}

// New returns an empty store backed by st. Call Initialize to load the
// persisted cart.
func New(st storage.Storage, opts ...Option) *Store {
	s := &Store{
		storage:  st,
		key:      DefaultKey,
		log:      logrus.StandardLogger(),
		tracer:   otel.Tracer("cartstore"),
		products: Cart{},
		topic:    pubsub.New[Cart](),
		subs:     map[chan Cart]chan Cart{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize loads the persisted cart and publishes it. Missing or unreadable
// data leaves the cart empty; the failure is logged, never returned.
func (s *Store) Initialize(ctx context.Context) {
	ctx, span := s.tracer.Start(ctx, "cartstore.Initialize")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	cart, persisted, err := s.load(ctx)
	if err != nil {
		span.RecordError(err)
		s.log.WithError(err).WithField("key", s.key).Warn("cartstore: starting with an empty cart")
		return
	}
	if !persisted {
		s.log.WithField("key", s.key).Debug("cartstore: no persisted cart")
		return
	}
	span.SetAttributes(attribute.Int("cart.items", len(cart)))
	s.publish(cart)
	s.log.WithField("items", len(cart)).Info("cartstore: cart loaded")
}

// Products returns a copy of the published cart.
func (s *Store) Products() Cart {
	s.pmu.RLock()
	defer s.pmu.RUnlock()
	return s.products.Clone()
}

// AddToCart bumps the quantity of an existing line by one, or appends the
// product with quantity 1.
func (s *Store) AddToCart(ctx context.Context, p Product) error {
	if p.ID == "" {
		return ErrInvalidProduct
	}
	return s.update(ctx, "cartstore.AddToCart", p.ID, func(cart Cart) (Cart, bool) {
		if cart.Index(p.ID) >= 0 {
			return s.adjust(cart, p.ID, 1)
		}
		next := append(cart.Clone(), CartItem{Product: p, Quantity: 1})
		return next, true
	})
}

// Increment adds one to the quantity of the line with the given ID. It is a
// no-op when nothing is persisted or no line matches.
func (s *Store) Increment(ctx context.Context, id string) error {
	return s.update(ctx, "cartstore.Increment", id, func(cart Cart) (Cart, bool) {
		return s.adjust(cart, id, 1)
	})
}

// Decrement subtracts one from the quantity of the line with the given ID.
// The quantity is not clamped at zero unless WithRemoveAtZero is set.
func (s *Store) Decrement(ctx context.Context, id string) error {
	return s.update(ctx, "cartstore.Decrement", id, func(cart Cart) (Cart, bool) {
		return s.adjust(cart, id, -1)
	})
}

// Clear removes the persisted cart and publishes an empty one.
func (s *Store) Clear(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "cartstore.Clear")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.RemoveItem(ctx, s.key); err != nil {
		err = errors.Wrap(err, "remove cart")
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return err
	}
	s.publish(Cart{})
	s.log.Debug("cartstore: cart cleared")
	return nil
}

// Subscribe registers ch to receive published carts and returns it. A nil ch
// allocates a channel with a single slot.
//
// A subscriber that falls behind never blocks the store: while ch is full the
// undelivered cart is replaced by newer ones, so a slow reader skips straight
// to the latest cart. ch is closed by Unsubscribe or Close; after Close,
// Subscribe returns an already closed channel.
func (s *Store) Subscribe(ch chan Cart) chan Cart {
	if ch == nil {
		ch = make(chan Cart, 1)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		close(ch)
		return ch
	}
	if _, ok := s.subs[ch]; ok {
		return ch
	}
	in := s.topic.Subscribe(make(chan Cart, 1))
	s.subs[ch] = in
	go forward(in, ch)
	return ch
}

// Unsubscribe stops delivery to ch and closes it. Unknown channels, and any
// channel after Close, are ignored.
func (s *Store) Unsubscribe(ch chan Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in, ok := s.subs[ch]
	if !ok || s.closed {
		return
	}
	delete(s.subs, ch)
	s.topic.Unsubscribe(in)
}

// Close stops publication and closes subscriber channels. Mutations keep
// persisting after Close.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.subs = map[chan Cart]chan Cart{}
	return s.topic.Close()
}

// forward relays carts from the topic subscription in to out until in is
// closed, then closes out. It always drains in promptly; while out is full the
// pending cart is overwritten by the next one.
func forward(in <-chan Cart, out chan<- Cart) {
	defer close(out)

	var pending Cart
	has := false
	for {
		if has {
			select {
			case out <- pending:
				has = false
				continue
			default:
			}
		}
		var send chan<- Cart
		if has {
			send = out
		}
		select {
		case cart, ok := <-in:
			if !ok {
				return
			}
			pending, has = cart, true
		case send <- pending:
			has = false
		}
	}
}

// update runs one serialized read-modify-write. apply reports whether the
// cart changed; unchanged carts are neither written nor published.
func (s *Store) update(ctx context.Context, op, id string, apply func(cart Cart) (Cart, bool)) error {
	ctx, span := s.tracer.Start(ctx, op, trace.WithAttributes(attribute.String("cart.item.id", id)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	fail := func(err error) error {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.log.WithError(err).WithField("item.id", id).Errorf("%s failed", op)
		return err
	}

	cart, _, err := s.load(ctx)
	if err != nil {
		return fail(err)
	}
	next, changed := apply(cart)
	if !changed {
		span.SetAttributes(attribute.Bool("cart.changed", false))
		return nil
	}
	if err := s.save(ctx, next); err != nil {
		return fail(err)
	}
	span.SetAttributes(
		attribute.Bool("cart.changed", true),
		attribute.Int("cart.items", len(next)),
	)
	s.publish(next)
	s.log.WithField("item.id", id).Debugf("%s applied", op)
	return nil
}

// adjust returns a copy of cart with delta applied to the matching line.
func (s *Store) adjust(cart Cart, id string, delta int) (Cart, bool) {
	if cart.Index(id) < 0 {
		return cart, false
	}
	next := make(Cart, 0, len(cart))
	for _, item := range cart {
		if item.ID == id {
			item.Quantity += delta
			if s.removeAtZero && item.Quantity == 0 {
				continue
			}
		}
		next = append(next, item)
	}
	return next, true
}

func (s *Store) load(ctx context.Context) (Cart, bool, error) {
	raw, ok, err := s.storage.GetItem(ctx, s.key)
	if err != nil {
		return nil, false, errors.Wrap(err, "read cart")
	}
	if !ok {
		return nil, false, nil
	}
	cart, err := DecodeCart(raw)
	if err != nil {
		return nil, true, errors.Wrapf(err, "decode %s", s.key)
	}
	return cart, true, nil
}

func (s *Store) save(ctx context.Context, cart Cart) error {
	raw, err := EncodeCart(cart)
	if err != nil {
		return err
	}
	if err := s.storage.SetItem(ctx, s.key, raw); err != nil {
		return errors.Wrap(err, "write cart")
	}
	return nil
}

// publish must be called with mu held so subscribers see carts in write order.
func (s *Store) publish(cart Cart) {
	s.pmu.Lock()
	s.products = cart.Clone()
	s.pmu.Unlock()

	if !s.closed {
		s.topic.Publish(cart.Clone())
	}
}
