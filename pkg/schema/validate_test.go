package schema_test

import (
	"testing"

	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAcceptsWellShapedSnapshot(t *testing.T) {
	snap := domain.NewSnapshot(3, 2)
	assert.NoError(t, schema.Validate(snap, 3, 2))
}

func TestValidateRejectsNil(t *testing.T) {
	err := schema.Validate(nil, 2, 2)
	require.Error(t, err)

	var vErr *schema.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "snapshot", vErr.Key)
}

func TestValidateCollectsEveryMismatch(t *testing.T) {
	snap := domain.NewSnapshot(2, 2)

	err := schema.Validate(snap, 3, 2)
	require.Error(t, err)

	errs := schema.ValidationErrors(err)
	require.Len(t, errs, 5, "numInputs, three per-input fields and the crosspoint row count")

	keys := make([]string, 0, len(errs))
	for _, e := range errs {
		vErr, ok := e.(*schema.ValidationError)
		require.True(t, ok)
		keys = append(keys, vErr.Key)
	}
	assert.ElementsMatch(t, []string{"numInputs", "inputLevels", "inputMutes", "inputSolos", "crosspoints"}, keys)
	assert.Contains(t, err.Error(), "numInputs")
}

func TestValidateFlagsRaggedCrosspointRow(t *testing.T) {
	snap := domain.NewSnapshot(2, 2)
	snap.Crosspoints[1] = snap.Crosspoints[1][:1]

	err := schema.Validate(snap, 2, 2)
	require.Error(t, err)

	errs := schema.ValidationErrors(err)
	require.Len(t, errs, 1)
	vErr, ok := errs[0].(*schema.ValidationError)
	require.True(t, ok)
	assert.Equal(t, "crosspoints[1]", vErr.Key)
	assert.Contains(t, vErr.Error(), "length 1, want 2")
}
