package orcrow

import json "github.com/goccy/go-json"

// Option is a slot that may hold no value.
type Option[T any] struct {
	Value T
	Valid bool
}

func Some[T any](v T) Option[T] { return Option[T]{Value: v, Valid: true} }

func None[T any]() Option[T] { return Option[T]{} }

func (o Option[T]) Get() (T, bool) { return o.Value, o.Valid }

// MarshalJSON writes null for an empty option and the value otherwise.
func (o Option[T]) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// UnmarshalJSON treats null as an empty option.
func (o *Option[T]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = Option[T]{}
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}
