package schema

import (
	"fmt"

	"github.com/aretw0/patchbay/pkg/domain"
)

// Validate checks that a snapshot's declared dimensions and every
// per-channel field length agree with a matrix of numInputs by numOutputs.
// It returns nil for a well-shaped snapshot, or an error aggregating one
// ValidationError per disagreeing field.
//
// Level values are not range-checked: clamping on application is defined
// behavior, shape drift is not.
func Validate(snap *domain.Snapshot, numInputs, numOutputs int) error {
	if snap == nil {
		return &ValidationError{Key: "snapshot", Reason: "missing"}
	}

	var errs []error

	check := func(key string, got, want int) {
		if got != want {
			errs = append(errs, &ValidationError{
				Key:    key,
				Reason: fmt.Sprintf("length %d, want %d", got, want),
				Value:  got,
			})
		}
	}

	if snap.NumInputs != numInputs {
		errs = append(errs, &ValidationError{
			Key:    "numInputs",
			Reason: fmt.Sprintf("declares %d inputs, matrix has %d", snap.NumInputs, numInputs),
			Value:  snap.NumInputs,
		})
	}
	if snap.NumOutputs != numOutputs {
		errs = append(errs, &ValidationError{
			Key:    "numOutputs",
			Reason: fmt.Sprintf("declares %d outputs, matrix has %d", snap.NumOutputs, numOutputs),
			Value:  snap.NumOutputs,
		})
	}

	check("inputLevels", len(snap.InputLevels), numInputs)
	check("outputLevels", len(snap.OutputLevels), numOutputs)
	check("inputMutes", len(snap.InputMutes), numInputs)
	check("inputSolos", len(snap.InputSolos), numInputs)
	check("outputMutes", len(snap.OutputMutes), numOutputs)
	check("outputSolos", len(snap.OutputSolos), numOutputs)

	check("crosspoints", len(snap.Crosspoints), numInputs)
	for i, row := range snap.Crosspoints {
		if len(row) != numOutputs {
			errs = append(errs, &ValidationError{
				Key:    fmt.Sprintf("crosspoints[%d]", i),
				Reason: fmt.Sprintf("length %d, want %d", len(row), numOutputs),
				Value:  len(row),
			})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}
