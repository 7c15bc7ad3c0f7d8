package main

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"unsafe"
)

var (
	ErrFieldNotFound = errors.New("field not found")
	ErrFieldType     = errors.New("field has unexpected type")
	ErrEntityInvalid = errors.New("entity is no longer valid")
)

type fieldKey struct {
	typ  reflect.Type
	name string
}

type fieldLookup struct {
	index []int
	kind  reflect.Kind
	found bool
}

// fieldWriter writes unexported struct fields on host-owned objects. It is
// the only place in the server that bypasses field visibility.
type fieldWriter struct {
	mu    sync.Mutex
	cache map[fieldKey]fieldLookup
}

func newFieldWriter() *fieldWriter {
	return &fieldWriter{cache: make(map[fieldKey]fieldLookup)}
}

func (fw *fieldWriter) lookup(t reflect.Type, name string) fieldLookup {
	key := fieldKey{typ: t, name: name}

	fw.mu.Lock()
	defer fw.mu.Unlock()
	if l, ok := fw.cache[key]; ok {
		return l
	}

	var l fieldLookup
	if sf, ok := t.FieldByName(name); ok {
		l = fieldLookup{index: sf.Index, kind: sf.Type.Kind(), found: true}
	}
	fw.cache[key] = l
	return l
}

// SetFloat32 stores value into the named float32 field of the struct obj
// points to.
func (fw *fieldWriter) SetFloat32(obj any, name string, value float32) error {
	if obj == nil {
		return ErrEntityInvalid
	}
	v := reflect.ValueOf(obj)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return ErrEntityInvalid
	}
	elem := v.Elem()
	if elem.Kind() != reflect.Struct {
		return fmt.Errorf("%w: %s on %s", ErrFieldNotFound, name, elem.Type())
	}

	l := fw.lookup(elem.Type(), name)
	if !l.found {
		return fmt.Errorf("%w: %s.%s", ErrFieldNotFound, elem.Type(), name)
	}
	if l.kind != reflect.Float32 {
		return fmt.Errorf("%w: %s.%s is %s", ErrFieldType, elem.Type(), name, l.kind)
	}

	field, err := elem.FieldByIndexErr(l.index)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEntityInvalid, err)
	}
	field = reflect.NewAt(field.Type(), unsafe.Pointer(field.UnsafeAddr())).Elem()
	field.SetFloat(float64(value))
	return nil
}
