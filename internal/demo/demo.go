// Package demo wires the store and warehouse sample types: the embedded
// mapping file, the type registry it is resolved against and the
// warehouse constructors.
package demo

import (
	_ "embed"
	"fmt"
	"reflect"

	"objectfactory/internal/constructor"
	"objectfactory/internal/mapping"
	"objectfactory/internal/paramname"
	"objectfactory/store"
	"objectfactory/warehouse"
)

// Mapping is the demo mapping file.
//
//go:embed mapping.yaml
var Mapping []byte

// Types returns a registry of every demo type.
func Types() *mapping.Types {
	return mapping.NewTypes(
		reflect.TypeFor[store.Address](),
		reflect.TypeFor[store.Customer](),
		reflect.TypeFor[store.Order](),
		reflect.TypeFor[store.OrderItem](),
		reflect.TypeFor[store.CartLine](),
		reflect.TypeFor[store.Product](),
		reflect.TypeFor[warehouse.Address](),
		reflect.TypeFor[warehouse.Customer](),
		reflect.TypeFor[warehouse.Order](),
		reflect.TypeFor[warehouse.OrderItem](),
		reflect.TypeFor[warehouse.Product](),
	)
}

// Install registers the warehouse constructors with set. Constructors whose
// parameter names cannot be guessed are annotated in names first.
func Install(names *paramname.Registry, set *constructor.Set) error {
	if err := names.Annotate(warehouse.NewGuestCustomer, "email"); err != nil {
		return fmt.Errorf("annotating constructors: %w", err)
	}

	for _, fn := range []any{
		warehouse.NewAddress,
		warehouse.NewCustomer,
		warehouse.NewGuestCustomer,
		warehouse.NewProduct,
		warehouse.NewOrderItem,
		warehouse.NewOrder,
	} {
		if err := set.Register(fn); err != nil {
			return fmt.Errorf("registering constructors: %w", err)
		}
	}

	return nil
}
