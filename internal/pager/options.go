package pager

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// LocationMode is the read-location preference for a listing request.
type LocationMode string

const (
	PrimaryOnly          LocationMode = "primary-only"
	SecondaryOnly        LocationMode = "secondary-only"
	PrimaryThenSecondary LocationMode = "primary-then-secondary"
	SecondaryThenPrimary LocationMode = "secondary-then-primary"
)

// Include selects optional item fields a source should populate.
type Include string

const (
	IncludeMetadata Include = "metadata"
	IncludeOwner    Include = "owner"
)

// Options are the page-scoped listing options passed to every FetchPage call.
type Options struct {
	// MaxResults bounds the entries per page. Sources treat it as a hint.
	MaxResults   int          `validate:"gt=0"`
	Include      []Include    `validate:"dive,oneof=metadata owner"`
	LocationMode LocationMode `validate:"omitempty,oneof=primary-only secondary-only primary-then-secondary secondary-then-primary"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the options without contacting any source.
func (o Options) Validate() error {
	err := validate.Struct(o)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	reasons := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		reasons = append(reasons, describeFieldError(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidArgument, strings.Join(reasons, "; "))
}

// Mode returns the effective location mode, primary-only when unset.
func (o Options) Mode() LocationMode {
	if o.LocationMode == "" {
		return PrimaryOnly
	}
	return o.LocationMode
}

// Has reports whether flag was requested.
func (o Options) Has(flag Include) bool {
	for _, include := range o.Include {
		if include == flag {
			return true
		}
	}
	return false
}

// ParseLocationMode accepts both kebab-case and the upper snake case used by
// storage SDKs (PRIMARY_THEN_SECONDARY).
func ParseLocationMode(raw string) (LocationMode, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.ReplaceAll(normalized, "_", "-")

	switch mode := LocationMode(normalized); mode {
	case "":
		return PrimaryOnly, nil
	case PrimaryOnly, SecondaryOnly, PrimaryThenSecondary, SecondaryThenPrimary:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: unknown location mode %q", ErrInvalidArgument, raw)
	}
}

// ParseInclude splits comma separated include flags and drops duplicates.
// Unknown values are kept so Validate can report them.
func ParseInclude(raw []string) []Include {
	flags := make([]Include, 0, len(raw))
	seen := make(map[Include]struct{}, len(raw))

	for _, item := range raw {
		for _, part := range strings.Split(item, ",") {
			flag := Include(strings.ToLower(strings.TrimSpace(part)))
			if flag == "" {
				continue
			}
			if _, ok := seen[flag]; ok {
				continue
			}
			seen[flag] = struct{}{}
			flags = append(flags, flag)
		}
	}

	return flags
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gt":
		return fmt.Sprintf("%s must be greater than %s, got %v", fieldName(fe), fe.Param(), fe.Value())
	case "oneof":
		return fmt.Sprintf("%s %q is not one of [%s]", fieldName(fe), fe.Value(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %q validation", fieldName(fe), fe.Tag())
	}
}

func fieldName(fe validator.FieldError) string {
	switch fe.StructField() {
	case "MaxResults":
		return "maxResults"
	case "LocationMode":
		return "locationMode"
	default:
		if strings.HasPrefix(fe.StructField(), "Include") {
			return "include"
		}
		return fe.Field()
	}
}
