package operators

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"github.com/isesword/cider-bridge/batch"
)

func TestEncodePlan(t *testing.T) {
	node := NewSourceNode(append(sourceColumns(),
		Col("point", batch.NewTypeInfo(batch.Struct, true,
			batch.NewTypeInfo(batch.Float, true),
			batch.NewTypeInfo(batch.Float, true),
		)),
	)...)

	planBytes, err := EncodePlan(node)
	require.NoError(t, err)

	plan, err := DecodePlan(planBytes)
	require.NoError(t, err)

	m := plan.AsMap()
	require.Equal(t, float64(PlanVersion), m["plan_version"])
	require.Equal(t, "SourceNode", m["op"])

	cols := m["input_cols"].([]interface{})
	require.Len(t, cols, 3)
	first := cols[0].(map[string]interface{})
	require.Equal(t, "id", first["name"])
	require.Equal(t, "l", first["format"])
	require.Equal(t, false, first["nullable"])

	point := cols[2].(map[string]interface{})
	require.Equal(t, "+s", point["format"])
	children := point["children"].([]interface{})
	require.Len(t, children, 2)
	require.Equal(t, "f", children[0].(map[string]interface{})["format"])
}

func TestEncodePlanUnsupported(t *testing.T) {
	node := NewSourceNode(Col("ts", batch.NewTypeInfo(batch.Timestamp, true)))
	_, err := EncodePlan(node)
	require.True(t, errors.Is(err, batch.ErrUnsupportedType))
}

func TestDecodePlanGarbage(t *testing.T) {
	_, err := DecodePlan([]byte("invalid protobuf data"))
	require.Error(t, err)
}
