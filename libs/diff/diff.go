// Package diff wraps r3labs/diff with a differ that treats uuid.UUID values
// as opaque scalars instead of descending into their byte arrays. It backs
// the audit log written when a bill is persisted over an existing record.
package diff

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/google/uuid"
	odiff "github.com/r3labs/diff/v3"
)

func GetCustomDiffer() *odiff.Differ {
	ret, err := odiff.NewDiffer(odiff.CustomValueDiffers(&UUIDComparer{}))
	if err != nil {
		panic(err)
	}
	return ret
}

// Changelog diffs two records of the same type and renders each change as
// "path: old -> new", one entry per changed field.
func Changelog(old, new interface{}) ([]string, error) {
	cl, err := GetCustomDiffer().Diff(old, new)
	if err != nil {
		return nil, fmt.Errorf("failed to diff records: %w", err)
	}

	changes := make([]string, 0, len(cl))
	for _, c := range cl {
		changes = append(changes, fmt.Sprintf("%s: %v -> %v", strings.Join(c.Path, "."), c.From, c.To))
	}
	return changes, nil
}

type UUIDComparer struct{}

var uuidType = reflect.TypeOf(uuid.UUID{})

// Match checks whether this custom comparer applies to the field pair.
func (c UUIDComparer) Match(a, b reflect.Value) bool {
	aok := a.Kind() == uuidType.Kind() && a.Type() == uuidType
	bok := b.Kind() == uuidType.Kind() && b.Type() == uuidType
	return (aok && bok) || (a.Kind() == reflect.Invalid && bok) || (b.Kind() == reflect.Invalid && aok)
}

// Diff records a single UPDATE entry when the two UUIDs differ, instead of a
// deep comparison of the underlying 16 bytes.
func (c UUIDComparer) Diff(_ odiff.DiffType, _ odiff.DiffFunc, cl *odiff.Changelog, path []string, a reflect.Value, b reflect.Value, _ interface{}) error {
	valA := reflect.Indirect(a)
	valB := reflect.Indirect(b)

	if !valA.IsValid() || !valB.IsValid() {
		if valA.IsValid() != valB.IsValid() {
			cl.Add(odiff.UPDATE, path, a.Interface(), b.Interface())
		}
		return nil
	}

	u1 := valA.Interface().(uuid.UUID)
	u2 := valB.Interface().(uuid.UUID)

	if u1 != u2 {
		cl.Add(odiff.UPDATE, path, u1, u2)
	}
	return nil
}

// InsertParentDiffer is part of the custom differ contract; uuid fields are
// leaves, so there is nothing to do.
func (c UUIDComparer) InsertParentDiffer(_ func(path []string, a reflect.Value, b reflect.Value, p interface{}) error) {
}
