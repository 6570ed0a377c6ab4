package compile

import (
	"errors"
	"fmt"
	"reflect"

	"objectfactory/internal/classify"
	"objectfactory/internal/convert"
	"objectfactory/internal/program"
)

// strategy binds the runtime behaviour of a.Strategy for a local of type dst.
func (bc *branchCompiler) strategy(a program.Assign, dst reflect.Type) (valueFunc, error) {
	src := a.Source.Type

	switch a.Strategy {
	case classify.Immutable:
		if !src.AssignableTo(dst) {
			return nil, fmt.Errorf("%s is not assignable to %s", src, dst)
		}

		return identity, nil
	case classify.WrapperToPrimitive:
		if src.Kind() != reflect.Ptr || !src.Elem().AssignableTo(dst) {
			return nil, fmt.Errorf("cannot unbox %s into %s", src, dst)
		}

		return func(_ Runtime, v reflect.Value) (reflect.Value, error) {
			return v.Elem(), nil
		}, nil
	case classify.PrimitiveToWrapper:
		if dst.Kind() != reflect.Ptr || !src.AssignableTo(dst.Elem()) {
			return nil, fmt.Errorf("cannot box %s into %s", src, dst)
		}

		return func(_ Runtime, v reflect.Value) (reflect.Value, error) {
			p := reflect.New(dst.Elem())
			p.Elem().Set(v)

			return p, nil
		}, nil
	case classify.Converter:
		return converted(a.Converter, src, dst)
	case classify.Array:
		return bc.arrayCopy(src, dst)
	case classify.Collection:
		return bc.collectionCopy(src, dst)
	case classify.Object:
		return nested(dst), nil
	default:
		return nil, fmt.Errorf("unknown strategy %s", a.Strategy)
	}
}

func identity(_ Runtime, v reflect.Value) (reflect.Value, error) {
	return v, nil
}

func converted(conv convert.Converter, src, dst reflect.Type) (valueFunc, error) {
	switch {
	case conv == nil:
		return nil, errors.New("converter strategy without a converter")
	case !src.AssignableTo(conv.Source()):
		return nil, fmt.Errorf("converter takes %s, source is %s", conv.Source(), src)
	case !conv.Destination().AssignableTo(dst):
		return nil, fmt.Errorf("converter yields %s, local is %s", conv.Destination(), dst)
	}

	return func(_ Runtime, v reflect.Value) (reflect.Value, error) {
		out, err := conv.Convert(v)
		if err != nil {
			return reflect.Value{}, err
		}

		if !out.IsValid() {
			return reflect.Zero(dst), nil
		}

		return out, nil
	}, nil
}

// nested delegates to the runtime, typed by the slot it fills.
func nested(dst reflect.Type) valueFunc {
	return func(rt Runtime, v reflect.Value) (reflect.Value, error) {
		if rt == nil {
			return reflect.Value{}, fmt.Errorf("mapping into %s: no runtime", dst)
		}

		out, err := rt.Map(v.Interface(), dst)
		if err != nil {
			return reflect.Value{}, err
		}

		return valueOf(out, dst)
	}
}

func (bc *branchCompiler) arrayCopy(src, dst reflect.Type) (valueFunc, error) {
	if dst.Kind() != reflect.Array {
		return nil, fmt.Errorf("array copy into %s", dst)
	}

	if k := src.Kind(); k != reflect.Slice && k != reflect.Array {
		return nil, fmt.Errorf("array copy from %s", src)
	}

	elem := bc.element(src.Elem(), dst.Elem())
	size := dst.Len()

	return func(rt Runtime, v reflect.Value) (reflect.Value, error) {
		out := reflect.New(dst).Elem()

		for i := range min(v.Len(), size) {
			e, err := elem(rt, v.Index(i))
			if err != nil {
				return reflect.Value{}, fmt.Errorf("[%d]: %w", i, err)
			}

			out.Index(i).Set(e)
		}

		return out, nil
	}, nil
}

func (bc *branchCompiler) collectionCopy(src, dst reflect.Type) (valueFunc, error) {
	switch dst.Kind() {
	case reflect.Slice:
		if k := src.Kind(); k != reflect.Slice && k != reflect.Array {
			return nil, fmt.Errorf("slice copy from %s", src)
		}

		elem := bc.element(src.Elem(), dst.Elem())

		return func(rt Runtime, v reflect.Value) (reflect.Value, error) {
			out := reflect.MakeSlice(dst, v.Len(), v.Len())

			for i := range v.Len() {
				e, err := elem(rt, v.Index(i))
				if err != nil {
					return reflect.Value{}, fmt.Errorf("[%d]: %w", i, err)
				}

				out.Index(i).Set(e)
			}

			return out, nil
		}, nil
	case reflect.Map:
		if src.Kind() != reflect.Map {
			return nil, fmt.Errorf("map copy from %s", src)
		}

		key := bc.element(src.Key(), dst.Key())
		val := bc.element(src.Elem(), dst.Elem())

		return func(rt Runtime, v reflect.Value) (reflect.Value, error) {
			out := reflect.MakeMapWithSize(dst, v.Len())

			iter := v.MapRange()
			for iter.Next() {
				k, err := key(rt, iter.Key())
				if err != nil {
					return reflect.Value{}, fmt.Errorf("key %v: %w", iter.Key(), err)
				}

				e, err := val(rt, iter.Value())
				if err != nil {
					return reflect.Value{}, fmt.Errorf("[%v]: %w", iter.Key(), err)
				}

				out.SetMapIndex(k, e)
			}

			return out, nil
		}, nil
	default:
		return nil, fmt.Errorf("collection copy into %s", dst)
	}
}

// element returns the conversion of one collection element, memoized per
// type pair for the program being compiled.
func (bc *branchCompiler) element(from, to reflect.Type) valueFunc {
	pair := convert.Pair{Source: from, Destination: to}
	if fn, ok := bc.scratch.elements[pair]; ok {
		return fn
	}

	var fn valueFunc

	switch {
	case from.AssignableTo(to):
		fn = identity
	case classify.Convertible(from, to):
		fn = func(_ Runtime, v reflect.Value) (reflect.Value, error) {
			return v.Convert(to), nil
		}
	default:
		mapped := nested(to)
		fn = func(rt Runtime, v reflect.Value) (reflect.Value, error) {
			if isNil(v) {
				return reflect.Zero(to), nil
			}

			return mapped(rt, v)
		}
	}

	bc.scratch.elements[pair] = fn

	return fn
}

// valueOf types a runtime result for a slot of type dst.
func valueOf(out any, dst reflect.Type) (reflect.Value, error) {
	if out == nil {
		return reflect.Zero(dst), nil
	}

	v := reflect.ValueOf(out)

	switch {
	case v.Type().AssignableTo(dst):
		return v, nil
	case dst.Kind() == reflect.Ptr && v.Type().AssignableTo(dst.Elem()):
		p := reflect.New(dst.Elem())
		p.Elem().Set(v)

		return p, nil
	default:
		return reflect.Value{}, fmt.Errorf("runtime returned %s for %s", v.Type(), dst)
	}
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}
