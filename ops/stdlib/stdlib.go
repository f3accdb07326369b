// Package stdlib bundles the basic data-manipulation operations every
// embedding program wires in by default: identity, arithmetic, dictionary
// access, and the two collection constructors that let a graph assemble a
// Map or Seq artifact out of resolved parameters.
package stdlib

import (
	"github.com/aledsdavies/invariant/cacheable"
	"github.com/aledsdavies/invariant/errs"
	"github.com/aledsdavies/invariant/op"
)

// Identity returns its single parameter unchanged.
var Identity = op.FromTyped([]string{"value"}, func(v cacheable.Value) (cacheable.Value, error) {
	return v, nil
})

// Add returns a + b.
var Add = op.FromTyped([]string{"a", "b"}, func(a, b int64) (int64, error) {
	return a + b, nil
})

// Multiply returns a * b.
var Multiply = op.FromTyped([]string{"a", "b"}, func(a, b int64) (int64, error) {
	return a * b, nil
})

// DictGet extracts the value bound to key in dict, failing with
// errs.NotFound if the key is absent.
var DictGet = op.OpFunc([]string{"dict", "key"}, func(manifest map[string]cacheable.Value) (cacheable.Value, error) {
	dict, ok := manifest["dict"].AsMap()
	if !ok {
		return cacheable.Value{}, errs.New(errs.TypeMismatch, "dict_get requires a Map, got %s", manifest["dict"].Kind())
	}
	key, ok := manifest["key"].AsStr()
	if !ok {
		return cacheable.Value{}, errs.New(errs.TypeMismatch, "dict_get key must be a Str, got %s", manifest["key"].Kind())
	}
	v, ok := dict[key]
	if !ok {
		return cacheable.Value{}, errs.New(errs.NotFound, "key %q not found in dictionary", key)
	}
	return v, nil
})

// MakeDict collects the entire resolved manifest into a Map artifact.
var MakeDict = op.VarKeywordFunc(func(manifest map[string]cacheable.Value) (cacheable.Value, error) {
	return cacheable.Map(manifest), nil
})

// MakeList wraps a resolved "items" Seq parameter as a Seq artifact.
var MakeList = op.OpFunc([]string{"items"}, func(manifest map[string]cacheable.Value) (cacheable.Value, error) {
	items, ok := manifest["items"].AsSeq()
	if !ok {
		return cacheable.Value{}, errs.New(errs.TypeMismatch, "make_list requires a Seq, got %s", manifest["items"].Kind())
	}
	return cacheable.Seq(items), nil
})

// Table is the "stdlib:" operation package, registered in one call via
// registry.RegisterPackage.
var Table = map[string]op.Op{
	"identity":  Identity,
	"add":       Add,
	"multiply":  Multiply,
	"dict_get":  DictGet,
	"make_dict": MakeDict,
	"make_list": MakeList,
}
