// Package mapping loads, validates and stores the class maps that tell the
// factory generator which fields of one type feed which constructor
// parameters of another.
//
// # Schema Overview
//
// The mapping file has the following structure:
//
//	version: "1"
//	mappings:
//	  - a: store.Customer
//	    b: warehouse.Customer
//	    direction: a-to-b          # bidirectional (default) | a-to-b | b-to-a
//	    # Simplified 1:1 mappings, applied first
//	    121:
//	      Email: Email
//	    # Full field mappings
//	    fields:
//	      - a: FullName
//	        b: Name
//	      - a: Address.Street      # nested paths are dotted
//	        b: Street
//	        direction: a-to-b
//	      - IsActive               # same path on both sides
//	converters:
//	  builtin: [text_number, safe_number]
//
// Type names are resolved through a Types registry, either fully qualified
// ("objectfactory/store.Customer"), short ("store.Customer") or by name
// only when unambiguous ("Customer").
//
// Class maps can also be declared in code with NewClassMap.
package mapping
