package operators

import (
	"github.com/cockroachdb/errors"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/isesword/cider-bridge/batch"
)

// PlanVersion is the plan encoding understood by the native engine.
const PlanVersion = 1

// EncodePlan serializes node for Bridge.CompilePlan. Column types travel as
// arrow format tags only.
func EncodePlan(node OpNode) ([]byte, error) {
	cols := make([]interface{}, 0, len(node.InputCols()))
	for _, e := range node.InputCols() {
		field, err := fieldValue(e.Name(), e.TypeInfo())
		if err != nil {
			return nil, errors.Wrapf(err, "failed to encode column %q", e.Name())
		}
		cols = append(cols, field)
	}

	plan, err := structpb.NewStruct(map[string]interface{}{
		"plan_version": PlanVersion,
		"op":           node.Name(),
		"input_cols":   cols,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to build plan")
	}

	planBytes, err := proto.Marshal(plan)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal plan")
	}
	return planBytes, nil
}

// DecodePlan parses bytes produced by EncodePlan.
func DecodePlan(planBytes []byte) (*structpb.Struct, error) {
	plan := &structpb.Struct{}
	if err := proto.Unmarshal(planBytes, plan); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal plan")
	}
	return plan, nil
}

func fieldValue(name string, info batch.TypeInfo) (map[string]interface{}, error) {
	format, err := batch.TypeToTag(info.ElementType())
	if err != nil {
		return nil, err
	}
	field := map[string]interface{}{
		"name":     name,
		"format":   format,
		"nullable": info.IsNullable(),
	}
	if n := info.ChildCount(); n > 0 {
		children := make([]interface{}, n)
		for i := 0; i < n; i++ {
			child, err := fieldValue("", info.ChildAt(i))
			if err != nil {
				return nil, err
			}
			children[i] = child
		}
		field["children"] = children
	}
	return field, nil
}
