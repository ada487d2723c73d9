package translate

import (
	"fmt"

	"github.com/veld-lang/veld/compiler/errors"
	"github.com/veld-lang/veld/compiler/model"
)

// resolveSerializations settles the with_model_type setting for every
// class. A class inherits the setting from its ancestors; an explicit
// setting must agree with the inherited one, and two parents must not pass
// down different settings. Classes with no setting anywhere default to
// false.
func (t *translator) resolveSerializations() map[model.Identifier]bool {
	// nil means no setting specified in the lineage so far
	resolved := make(map[model.Identifier]*bool, len(t.graph.Classes))

	for _, class := range t.graph.Classes {
		var inherited *bool
		var inheritedFrom model.Identifier

		for _, parentName := range class.Inheritances {
			parentSetting := resolved[parentName]
			if parentSetting == nil {
				continue
			}
			if inherited == nil {
				inherited = parentSetting
				inheritedFrom = parentName
				continue
			}
			if *inherited != *parentSetting {
				pos := class.Loc
				t.errs = append(t.errs, errors.New("translate",
					fmt.Sprintf("the class %s inherits conflicting serialization settings with_model_type from %s and %s",
						class.Name, inheritedFrom, parentName),
					&pos))
			}
		}

		if class.Serialization == nil {
			resolved[class.Name] = inherited
			continue
		}

		own := class.Serialization.WithModelType
		if inherited != nil && *inherited != own {
			pos := class.Loc
			t.errs = append(t.errs, errors.New("translate",
				fmt.Sprintf("the serialization setting with_model_type of the class %s conflicts with the one inherited from %s",
					class.Name, inheritedFrom),
				&pos))
		}
		resolved[class.Name] = &own
	}

	out := make(map[model.Identifier]bool, len(resolved))
	for name, setting := range resolved {
		if setting != nil {
			out[name] = *setting
		}
	}
	return out
}
