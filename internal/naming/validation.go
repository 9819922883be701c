package naming

import (
	"fmt"
	"strings"

	utilvalidation "k8s.io/apimachinery/pkg/util/validation"
)

const (
	handleMaxLength      = MaxNameSlugLength
	artifactKeyMaxLength = 63
)

func validateDNS1123Label(name string, maximum int, labelKind string) error {
	if name == "" {
		return fmt.Errorf("%s must not be empty", labelKind)
	}
	if len(name) > maximum {
		return fmt.Errorf("%s exceeds %d characters", labelKind, maximum)
	}
	if errs := utilvalidation.IsDNS1123Label(name); len(errs) > 0 {
		return fmt.Errorf("invalid %s: %s", labelKind, strings.Join(errs, ", "))
	}
	return nil
}

// ValidateHandle checks a workspace handle.
func ValidateHandle(handle string) error {
	return validateDNS1123Label(handle, handleMaxLength, "workspace handle")
}

// ValidateArtifactKey checks that key only has lowercase letters, digits and dashes.
func ValidateArtifactKey(key string) error {
	return validateDNS1123Label(key, artifactKeyMaxLength, "artifact key")
}

// ValidateLabelValue checks a Kubernetes label value.
func ValidateLabelValue(v string) error {
	if errs := utilvalidation.IsValidLabelValue(v); len(errs) > 0 {
		return fmt.Errorf("invalid label value %q: %s", v, strings.Join(errs, ", "))
	}
	return nil
}
