package domain

// ClientRequiredFields is the minimum a client profile must carry. Profiles
// derived from requirement submissions always satisfy it.
var ClientRequiredFields = []string{"name", "email"}

// ValidateNewClient checks the minimal client field set.
func ValidateNewClient(fields map[string]any) error {
	var missing []string
	for _, f := range ClientRequiredFields {
		if _, ok := fields[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return NewMissingFieldsError(missing...)
	}
	return nil
}
