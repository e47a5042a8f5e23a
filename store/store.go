/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"

	"github.com/suparena/datacheck/datastore"
	"github.com/suparena/datacheck/errors"
	"github.com/suparena/datacheck/storagemodels"
)

// Mode selects how a store addresses and encodes values.
type Mode int

const (
	// ModeLocal keys values by name in a KeyValue backend.
	ModeLocal Mode = iota
	// ModeCloud addresses resources by type and id on a Remote.
	ModeCloud
)

func (m Mode) String() string {
	if m == ModeCloud {
		return "cloud"
	}
	return "local"
}

// Key addresses a stored value. It is either a StringKey or a
// CloudIdentifier, matching the store mode.
type Key interface {
	String() string
	isKey()
}

// StringKey addresses a value by name in local mode.
type StringKey struct {
	Name string
}

func (k StringKey) String() string { return k.Name }
func (StringKey) isKey()           {}

// CloudIdentifier addresses a remote resource. ID may be empty, in which
// case the resource is looked up by ResourceName.
type CloudIdentifier struct {
	ResourceType storagemodels.ResourceType
	ID           string
	ResourceName string
}

func (k CloudIdentifier) String() string {
	return fmt.Sprintf("%s/%s(%s)", k.ResourceType, k.ID, k.ResourceName)
}
func (CloudIdentifier) isKey() {}

// Identified values carry the id assigned at first persistence.
type Identified interface {
	GetID() string
	SetID(id string)
}

// versioned values count explicit updates.
type versioned interface {
	BumpVersion()
}

// Codec encodes values of one resource type for both modes.
type Codec[T any] interface {
	ResourceType() storagemodels.ResourceType
	EncodeLocal(v T) ([]byte, error)
	DecodeLocal(ctx context.Context, data []byte) (T, error)
	EncodeCloud(v T) (json.RawMessage, error)
	DecodeCloud(ctx context.Context, body json.RawMessage) (T, error)
}

// Option configures a Store.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Store persists values of type T. In local mode ids are assigned here and
// never change; in cloud mode the remote assigns them. Remote calls are
// never retried.
type Store[T Identified] struct {
	mode   Mode
	kv     datastore.KeyValue
	remote datastore.Remote
	codec  Codec[T]
	logger *slog.Logger
}

func newStore[T Identified](mode Mode, codec Codec[T], opts []Option) *Store[T] {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[T]{
		mode:   mode,
		codec:  codec,
		logger: o.logger.With("store", string(codec.ResourceType()), "mode", mode.String()),
	}
}

// NewLocal creates a local-mode store over kv.
func NewLocal[T Identified](kv datastore.KeyValue, codec Codec[T], opts ...Option) *Store[T] {
	s := newStore(ModeLocal, codec, opts)
	s.kv = kv
	return s
}

// NewCloud creates a cloud-mode store over remote.
func NewCloud[T Identified](remote datastore.Remote, codec Codec[T], opts ...Option) *Store[T] {
	s := newStore(ModeCloud, codec, opts)
	s.remote = remote
	return s
}

// Mode reports the store mode.
func (s *Store[T]) Mode() Mode {
	return s.mode
}

// Key builds the key for a value named name with the given id, which may
// be empty. Local keys ignore the id.
func (s *Store[T]) Key(name, id string) Key {
	if s.mode == ModeCloud {
		return CloudIdentifier{ResourceType: s.codec.ResourceType(), ID: id, ResourceName: name}
	}
	return StringKey{Name: name}
}

// Get loads the value stored under key.
func (s *Store[T]) Get(ctx context.Context, key Key) (T, error) {
	var zero T
	if s.mode == ModeCloud {
		k, err := s.cloudKey(key)
		if err != nil {
			return zero, err
		}
		return s.cloudGet(ctx, k)
	}

	k, err := s.localKey(key)
	if err != nil {
		return zero, err
	}
	data, err := s.kv.Get(ctx, k.Name)
	if err != nil {
		return zero, err
	}
	return s.codec.DecodeLocal(ctx, data)
}

// Add persists a value. A key already holding a value with another id is
// an IdentityConflictError, and the same id overwrites. In local mode a
// value without id is assigned a new one; in cloud mode it is created
// remotely and receives the remote id.
func (s *Store[T]) Add(ctx context.Context, key Key, value T) error {
	if s.mode == ModeCloud {
		k, err := s.cloudKey(key)
		if err != nil {
			return err
		}
		incoming := value.GetID()
		if incoming == "" {
			incoming = k.ID
		}
		if k.ResourceName != "" {
			existing, err := s.cloudID(ctx, CloudIdentifier{ResourceType: k.ResourceType, ResourceName: k.ResourceName})
			switch {
			case errors.IsNotFound(err):
			case err != nil:
				return err
			case existing != incoming:
				return errors.NewIdentityConflictError(k.ResourceName, existing, incoming)
			}
		}
		if incoming != "" {
			return s.cloudReplace(ctx, incoming, value)
		}
		return s.cloudCreate(ctx, value)
	}

	k, err := s.localKey(key)
	if err != nil {
		return err
	}
	incoming := value.GetID()
	if incoming == "" {
		incoming = uuid.NewString()
	}
	existing, found, err := s.localID(ctx, k.Name)
	if err != nil {
		return err
	}
	if found && existing != incoming {
		return errors.NewIdentityConflictError(k.Name, existing, incoming)
	}
	value.SetID(incoming)
	return s.localPut(ctx, k.Name, value)
}

// Update overwrites an existing value. The value must keep the persisted
// id; a value without id adopts it. Versioned values are bumped.
func (s *Store[T]) Update(ctx context.Context, key Key, value T) error {
	if s.mode == ModeCloud {
		k, err := s.cloudKey(key)
		if err != nil {
			return err
		}
		existing, err := s.cloudID(ctx, k)
		if err != nil {
			return err
		}
		if err := adoptID(key.String(), existing, value); err != nil {
			return err
		}
		bump(value)
		return s.cloudReplace(ctx, existing, value)
	}

	k, err := s.localKey(key)
	if err != nil {
		return err
	}
	existing, found, err := s.localID(ctx, k.Name)
	if err != nil {
		return err
	}
	if !found {
		return errors.NewNotFoundError(string(s.codec.ResourceType()), k.Name)
	}
	if err := adoptID(k.Name, existing, value); err != nil {
		return err
	}
	bump(value)
	return s.localPut(ctx, k.Name, value)
}

// ListKeys lists the keys of every stored value.
func (s *Store[T]) ListKeys(ctx context.Context) ([]Key, error) {
	if s.mode == ModeCloud {
		typ := s.codec.ResourceType()
		payload, err := s.remote.List(ctx, typ)
		if err != nil {
			return nil, err
		}
		rs, err := storagemodels.ParseEnvelope(payload)
		if err != nil {
			return nil, err
		}
		keys := make([]Key, 0, len(rs))
		for _, r := range rs {
			keys = append(keys, CloudIdentifier{ResourceType: typ, ID: r.ID, ResourceName: r.ResourceName(string(typ))})
		}
		return keys, nil
	}

	names, err := s.kv.Keys(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]Key, 0, len(names))
	for _, n := range names {
		keys = append(keys, StringKey{Name: n})
	}
	return keys, nil
}

// HasKey reports whether a value is stored under key.
func (s *Store[T]) HasKey(ctx context.Context, key Key) (bool, error) {
	if s.mode == ModeCloud {
		k, err := s.cloudKey(key)
		if err != nil {
			return false, err
		}
		_, err = s.cloudID(ctx, k)
		if errors.IsNotFound(err) {
			return false, nil
		}
		return err == nil, err
	}

	k, err := s.localKey(key)
	if err != nil {
		return false, err
	}
	return s.kv.Has(ctx, k.Name)
}

// Remove deletes the value stored under key.
func (s *Store[T]) Remove(ctx context.Context, key Key) error {
	if s.mode == ModeCloud {
		k, err := s.cloudKey(key)
		if err != nil {
			return err
		}
		id, err := s.cloudID(ctx, k)
		if err != nil {
			return err
		}
		return s.remote.Delete(ctx, k.ResourceType, id)
	}

	k, err := s.localKey(key)
	if err != nil {
		return err
	}
	return s.kv.Delete(ctx, k.Name)
}

func (s *Store[T]) localKey(key Key) (StringKey, error) {
	k, ok := key.(StringKey)
	if !ok || k.Name == "" {
		return StringKey{}, errors.NewValidationError("key", fmt.Sprintf("local store needs a named StringKey, got %v", key))
	}
	return k, nil
}

func (s *Store[T]) cloudKey(key Key) (CloudIdentifier, error) {
	k, ok := key.(CloudIdentifier)
	if !ok {
		return CloudIdentifier{}, errors.NewValidationError("key", fmt.Sprintf("cloud store needs a CloudIdentifier, got %v", key))
	}
	if k.ResourceType == "" {
		k.ResourceType = s.codec.ResourceType()
	}
	if k.ResourceType != s.codec.ResourceType() {
		return k, errors.NewValidationError("resource_type", fmt.Sprintf("store holds %s, got %s", s.codec.ResourceType(), k.ResourceType))
	}
	if k.ID == "" && k.ResourceName == "" {
		return k, errors.NewValidationError("key", "cloud identifier needs an id or a resource name")
	}
	if k.ID != "" && !strfmt.IsUUID(k.ID) {
		return k, errors.NewValidationError("id", fmt.Sprintf("%q is not a UUID", k.ID))
	}
	return k, nil
}

// localID reads the id persisted under name without decoding the value.
func (s *Store[T]) localID(ctx context.Context, name string) (string, bool, error) {
	data, err := s.kv.Get(ctx, name)
	if errors.IsNotFound(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	var head struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return "", false, errors.NewStoreParseError(fmt.Sprintf("invalid json: %v", err), string(data))
	}
	return head.ID, true, nil
}

func (s *Store[T]) localPut(ctx context.Context, name string, value T) error {
	data, err := s.codec.EncodeLocal(value)
	if err != nil {
		return err
	}
	if err := s.kv.Put(ctx, name, data); err != nil {
		return err
	}
	s.logger.Debug("stored value", "key", name, "id", value.GetID())
	return nil
}

func (s *Store[T]) cloudGet(ctx context.Context, k CloudIdentifier) (T, error) {
	var (
		zero    T
		payload []byte
		err     error
	)
	if k.ID != "" {
		payload, err = s.remote.Get(ctx, k.ResourceType, k.ID)
	} else {
		payload, err = s.remote.List(ctx, k.ResourceType, storagemodels.WithName(k.ResourceName))
	}
	if err != nil {
		return zero, err
	}
	return s.decodeCloud(ctx, payload)
}

// cloudID returns the id of the resource k names.
func (s *Store[T]) cloudID(ctx context.Context, k CloudIdentifier) (string, error) {
	if k.ID != "" {
		if _, err := s.remote.Get(ctx, k.ResourceType, k.ID); err != nil {
			return "", err
		}
		return k.ID, nil
	}
	payload, err := s.remote.List(ctx, k.ResourceType, storagemodels.WithName(k.ResourceName))
	if err != nil {
		return "", err
	}
	rs, err := storagemodels.ParseEnvelope(payload)
	if err != nil {
		return "", err
	}
	switch len(rs) {
	case 0:
		return "", errors.NewNotFoundError(string(k.ResourceType), k.ResourceName)
	case 1:
		if rs[0].ID == "" {
			return "", errors.NewStoreParseError("missing id", string(payload))
		}
		return rs[0].ID, nil
	default:
		return "", errors.NewStoreParseError("ambiguous payload", string(payload))
	}
}

func (s *Store[T]) decodeCloud(ctx context.Context, payload []byte) (T, error) {
	var zero T
	r, err := storagemodels.ParseSingle(payload)
	if err != nil {
		return zero, err
	}
	body, err := r.Attribute(string(s.codec.ResourceType()), payload)
	if err != nil {
		return zero, err
	}
	v, err := s.codec.DecodeCloud(ctx, body)
	if err != nil {
		return zero, err
	}
	v.SetID(r.ID)
	return v, nil
}

func (s *Store[T]) cloudBody(value T) ([]byte, error) {
	typ := s.codec.ResourceType()
	body, err := s.codec.EncodeCloud(value)
	if err != nil {
		return nil, err
	}
	return storagemodels.NewEnvelope(storagemodels.Resource{
		ID:         value.GetID(),
		Type:       typ,
		Attributes: map[string]json.RawMessage{string(typ): body},
	})
}

func (s *Store[T]) cloudCreate(ctx context.Context, value T) error {
	body, err := s.cloudBody(value)
	if err != nil {
		return err
	}
	payload, err := s.remote.Create(ctx, s.codec.ResourceType(), body)
	if err != nil {
		return err
	}
	return s.mergeID(payload, value)
}

func (s *Store[T]) cloudReplace(ctx context.Context, id string, value T) error {
	value.SetID(id)
	body, err := s.cloudBody(value)
	if err != nil {
		return err
	}
	payload, err := s.remote.Replace(ctx, s.codec.ResourceType(), id, body)
	if err != nil {
		return err
	}
	return s.mergeID(payload, value)
}

// mergeID copies the id of the returned resource into value.
func (s *Store[T]) mergeID(payload []byte, value T) error {
	r, err := storagemodels.ParseSingle(payload)
	if err != nil {
		return err
	}
	if r.ID == "" {
		return errors.NewStoreParseError("missing id", string(payload))
	}
	if old := value.GetID(); old != "" && old != r.ID {
		return errors.NewIdentityConflictError(string(s.codec.ResourceType()), old, r.ID)
	}
	value.SetID(r.ID)
	s.logger.Debug("stored resource", "id", r.ID)
	return nil
}

func adoptID(key, existing string, value Identified) error {
	switch id := value.GetID(); id {
	case "":
		value.SetID(existing)
	case existing:
	default:
		return errors.NewIdentityConflictError(key, existing, id)
	}
	return nil
}

func bump(value any) {
	if v, ok := value.(versioned); ok {
		v.BumpVersion()
	}
}
