package stage

import (
	"strings"

	"promptreel/internal/services"
)

// Input pairs a job field name with its current value for RequireInputs.
type Input struct {
	Name  string
	Value string
}

// RequireInputs returns a services.ErrValidation naming every empty input.
// Stages call it from Prepare so a job missing upstream output fails before
// any external call is made.
func RequireInputs(stageName string, inputs ...Input) error {
	var missing []string
	for _, in := range inputs {
		if strings.TrimSpace(in.Value) == "" {
			missing = append(missing, in.Name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return services.Wrap(
		services.ErrValidation, stageName, "prepare",
		"Missing stage inputs: "+strings.Join(missing, ", "), nil)
}

// RequireList is RequireInputs for list-valued fields.
func RequireList(stageName, name string, values []string) error {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return nil
		}
	}
	return services.Wrap(
		services.ErrValidation, stageName, "prepare",
		"Missing stage inputs: "+name, nil)
}
