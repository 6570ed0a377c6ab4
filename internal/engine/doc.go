// Package engine is the conversion runtime. It owns the mapping
// configuration, the converter and constructor registries and the factory
// cache, and maps values between any two types the configuration knows.
//
//	e, err := engine.New(engine.WithMappingFile("mapping.yaml"), engine.WithTypes(types))
//	if err != nil {
//		return err
//	}
//	defer e.Close()
//
//	customer, err := engine.Map[warehouse.Customer](e, dto)
package engine
