package mapping

import (
	"fmt"
	"reflect"

	"objectfactory/internal/diagnostic"
	"objectfactory/internal/metadata"
	"objectfactory/primitive"
)

// Validate validates a mapping definition against the registered types.
// This is a structural validation step only: it checks type names, paths,
// directions and duplicate destinations, not whether values are convertible.
func Validate(mf *MappingFile, types *Types) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if mf == nil {
		res.AddError("mapping_is_nil", "mapping file is nil", "", "")
		return res
	}

	if types == nil {
		res.AddError("types_is_nil", "type registry is nil", "", "")
		return res
	}

	if _, err := primitive.ParseCategories(mf.Converters.Builtin...); err != nil {
		res.AddError(diagnostic.CodeConverters, err.Error(), "", "converters.builtin")
	}

	seenPairs := map[metadata.MapperKey]string{}

	for i := range mf.Mappings {
		tm := &mf.Mappings[i]
		pair := tm.Pair()

		a, errA := types.Resolve(tm.A)
		if errA != nil {
			res.AddError(diagnostic.CodeUnknownType, errA.Error(), pair, tm.A)
		}

		b, errB := types.Resolve(tm.B)
		if errB != nil {
			res.AddError(diagnostic.CodeUnknownType, errB.Error(), pair, tm.B)
		}

		mapDir, err := metadata.ParseDirection(tm.Direction)
		if err != nil {
			res.AddError(diagnostic.CodeDirection, err.Error(), pair, "")
		}

		if errA != nil || errB != nil {
			continue
		}

		key := metadata.NewMapperKey(a, b)
		if prev, ok := seenPairs[key]; ok {
			res.AddError(diagnostic.CodeDuplicatePair,
				fmt.Sprintf("types are already mapped by %s", prev), pair, "")

			continue
		}

		seenPairs[key] = pair

		validateFields(res, tm, a, b, mapDir)
	}

	return res
}

func validateFields(res *diagnostic.Diagnostics, tm *TypeMapping, a, b reflect.Type, mapDir metadata.Direction) {
	pair := tm.Pair()
	towardsB := map[string]string{} // B path -> A path
	towardsA := map[string]string{} // A path -> B path

	for _, fm := range tm.Expanded() {
		dir, err := tm.EffectiveDirection(fm)
		if err != nil {
			res.AddError(diagnostic.CodeDirection, err.Error(), pair, fm.A)
			continue
		}

		if conflicts(mapDir, dir) {
			res.AddError(diagnostic.CodeDirection,
				fmt.Sprintf("field direction %s contradicts mapping direction %s", dir, mapDir), pair, fm.A)

			continue
		}

		pa, errA := metadata.NewProperty(a, fm.A)
		if errA != nil {
			res.AddError(diagnostic.CodeUnknownPath, errA.Error(), pair, fm.A)
		}

		pb, errB := metadata.NewProperty(b, fm.B)
		if errB != nil {
			res.AddError(diagnostic.CodeUnknownPath, errB.Error(), pair, fm.B)
		}

		if errA != nil || errB != nil {
			continue
		}

		field := metadata.FieldMap{Source: pa, Destination: pb, Direction: dir}

		if field.AllowsAToB() && mapDir != metadata.BToA {
			if !pa.Exported() {
				res.AddError(diagnostic.CodeUnexportedSource, "source path is not exported", pair, pa.String())
			}

			if prev, ok := towardsB[fm.B]; ok {
				res.AddError(diagnostic.CodeDuplicateTarget,
					fmt.Sprintf("%s is already fed by %s", fm.B, prev), pair, fm.A)
			} else {
				towardsB[fm.B] = fm.A
			}
		}

		if field.AllowsBToA() && mapDir != metadata.AToB {
			if !pb.Exported() {
				res.AddError(diagnostic.CodeUnexportedSource, "source path is not exported", pair, pb.String())
			}

			if prev, ok := towardsA[fm.A]; ok {
				res.AddError(diagnostic.CodeDuplicateTarget,
					fmt.Sprintf("%s is already fed by %s", fm.A, prev), pair, fm.B)
			} else {
				towardsA[fm.A] = fm.B
			}
		}
	}
}

// conflicts reports whether a field restricted to one way sits in a mapping
// restricted to the other.
func conflicts(mapDir, fieldDir metadata.Direction) bool {
	return (mapDir == metadata.AToB && fieldDir == metadata.BToA) ||
		(mapDir == metadata.BToA && fieldDir == metadata.AToB)
}
