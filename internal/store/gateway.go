// Package store persists the item list: one remote jsonbox record, mirrored
// into a local cache.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/dragdo/internal/model"
	"github.com/Makepad-fr/dragdo/internal/store/cache"
	"github.com/Makepad-fr/dragdo/internal/store/jsonbox"
)

// CacheKey is the local cache slot holding the serialized list.
const CacheKey = "items"

// DocumentStore is the remote side of the gateway. *jsonbox.Client implements it.
type DocumentStore interface {
	Create(ctx context.Context, doc jsonbox.Document) (jsonbox.Record, error)
	Replace(ctx context.Context, id string, doc jsonbox.Document) (jsonbox.Record, error)
	Read(ctx context.Context, id string) (jsonbox.Record, error)
}

// Gateway saves and loads the list. It only ever sees copies of the items.
type Gateway struct {
	docs     DocumentStore
	cache    cache.Cache
	recordID string
	logger   *log.Logger
}

// GatewayOption tunes a Gateway.
type GatewayOption func(*Gateway)

func WithGatewayLogger(l *log.Logger) GatewayOption {
	return func(g *Gateway) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGateway wires a document store and a cache to the record recordID.
// docs may be nil for offline use; remote operations then fail with
// KindNotConfigured.
func NewGateway(docs DocumentStore, c cache.Cache, recordID string, opts ...GatewayOption) *Gateway {
	if c == nil {
		c = cache.NewMemory()
	}
	g := &Gateway{
		docs:     docs,
		cache:    c,
		recordID: strings.TrimSpace(recordID),
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// RecordID returns the remote record the gateway writes to.
func (g *Gateway) RecordID() string { return g.recordID }

// Cache returns the local mirror.
func (g *Gateway) Cache() cache.Cache { return g.cache }

// Save writes items to the local cache, then replaces the remote record.
// A remote failure leaves the cache write in place.
func (g *Gateway) Save(ctx context.Context, items []model.Item) error {
	snap, err := model.Encode(items)
	if err != nil {
		return opErr("save", KindEncode, err)
	}
	if err := g.cache.Set(ctx, CacheKey, snap); err != nil {
		return opErr("save", KindCache, err)
	}
	if g.docs == nil || g.recordID == "" {
		return opErr("save", KindNotConfigured, errors.New("no remote record configured"))
	}
	if _, err := g.docs.Replace(ctx, g.recordID, jsonbox.Document{Items: snap}); err != nil {
		return opErr("save", classify(err), err)
	}
	g.logger.Debug("saved", "items", len(items), "record", g.recordID)
	return nil
}

// Load reads the remote record and decodes its items. It never touches the
// cache; storing the result locally is the caller's call.
func (g *Gateway) Load(ctx context.Context) ([]model.Item, error) {
	if g.docs == nil || g.recordID == "" {
		return nil, opErr("load", KindNotConfigured, errors.New("no remote record configured"))
	}
	rec, err := g.docs.Read(ctx, g.recordID)
	if err != nil {
		return nil, opErr("load", classify(err), err)
	}
	if err := validateRecord(rec); err != nil {
		return nil, opErr("load", KindDecode, err)
	}
	items, err := decodeSnapshot(rec.Items)
	if err != nil {
		return nil, opErr("load", KindDecode, err)
	}
	g.logger.Debug("loaded", "items", len(items), "record", g.recordID)
	return items, nil
}

// LoadCached decodes the local mirror. A missing slot is a KindNotFound error.
func (g *Gateway) LoadCached(ctx context.Context) ([]model.Item, error) {
	snap, ok, err := g.cache.Get(ctx, CacheKey)
	if err != nil {
		return nil, opErr("load-cached", KindCache, err)
	}
	if !ok {
		return nil, opErr("load-cached", KindNotFound, errors.New("cache is empty"))
	}
	items, err := decodeSnapshot(snap)
	if err != nil {
		return nil, opErr("load-cached", KindDecode, err)
	}
	return items, nil
}

// StoreCached mirrors items into the local cache without touching the remote.
func (g *Gateway) StoreCached(ctx context.Context, items []model.Item) error {
	snap, err := model.Encode(items)
	if err != nil {
		return opErr("store-cached", KindEncode, err)
	}
	if err := g.cache.Set(ctx, CacheKey, snap); err != nil {
		return opErr("store-cached", KindCache, err)
	}
	return nil
}

// Create makes a fresh remote record holding items and returns its id.
// The gateway keeps writing to its configured record; callers persist the
// new id in their configuration.
func (g *Gateway) Create(ctx context.Context, items []model.Item) (string, error) {
	if g.docs == nil {
		return "", opErr("create", KindNotConfigured, errors.New("no document store configured"))
	}
	snap, err := model.Encode(items)
	if err != nil {
		return "", opErr("create", KindEncode, err)
	}
	rec, err := g.docs.Create(ctx, jsonbox.Document{Items: snap})
	if err != nil {
		return "", opErr("create", classify(err), err)
	}
	if rec.ID == "" {
		return "", opErr("create", KindDecode, errors.New("response carried no record id"))
	}
	return rec.ID, nil
}

func decodeSnapshot(snap string) ([]model.Item, error) {
	if err := validateSnapshot(snap); err != nil {
		return nil, err
	}
	items, err := model.Decode(snap)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return items, nil
}

func classify(err error) Kind {
	var se *jsonbox.StatusError
	switch {
	case errors.As(err, &se):
		if se.Code == http.StatusNotFound {
			return KindNotFound
		}
		return KindStatus
	case errors.Is(err, jsonbox.ErrMalformedResponse):
		return KindDecode
	default:
		return KindTransport
	}
}
