// Package validation turns raw request input into sanitized entities, or a validation
// error naming the offending field or IDs. Nothing here touches storage.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/localnerve/ops-portal/internal/types"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

var emblemPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+\.svg$`)

// ValidEmblemName reports whether name is an acceptable emblem file name.
func ValidEmblemName(name string) bool {
	return emblemPattern.MatchString(name)
}

// IDSet is a set of entity IDs.
type IDSet map[string]struct{}

// Has reports membership.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// IDsOf collects the IDs of items.
func IDsOf[T any](items []T, id func(T) string) IDSet {
	set := make(IDSet, len(items))
	for _, item := range items {
		set[id(item)] = struct{}{}
	}
	return set
}

// Refs is the current state that foreign keys are checked against.
// A nil set skips the check for that reference.
type Refs struct {
	Factions     IDSet
	Jobs         IDSet
	Reserves     IDSet
	Transactions IDSet
	EmblemExists func(name string) bool
}

// checkStruct runs the struct-tag rules and converts the first failure into a ValidationError.
func checkStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return types.ValidationError("invalid input: %v", err)
	}
	return describe(verrs[0])
}

func describe(fe validator.FieldError) error {
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}

	isText := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return types.ValidationError("%s is required", field)
	case "min", "gte":
		if isText {
			return types.ValidationError("%s must be at least %s characters", field, fe.Param())
		}
		return types.ValidationError("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		if isText {
			return types.ValidationError("%s must be at most %s characters", field, fe.Param())
		}
		return types.ValidationError("%s must be at most %s", field, fe.Param())
	case "oneof":
		return types.ValidationError("%s must be one of: %s", field, fe.Param())
	case "ltefield":
		return types.ValidationError("%s must not exceed %s", field, fe.Param())
	case "nefield":
		return types.ValidationError("%s must differ from %s", field, fe.Param())
	}
	return types.ValidationError("%s is invalid", field)
}

// intField parses an optional whole number, returning def when the field was omitted.
func intField(name string, n types.FlexNumber, def int64) (int64, error) {
	if !n.Present() {
		return def, nil
	}
	v, err := n.Int()
	if err != nil {
		return 0, types.ValidationError("%s must be a whole number", name)
	}
	return v, nil
}

// optionalStock parses a stock count where omitted or null means unlimited.
func optionalStock(name string, n types.FlexNumber) (*int, error) {
	if !n.Present() {
		return nil, nil
	}
	v, err := intField(name, n, 0)
	if err != nil {
		return nil, err
	}
	stock := int(v)
	return &stock, nil
}

// uniqueIDs trims, drops empties and removes duplicates, keeping first-seen order.
func uniqueIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// missing returns the IDs not present in set, sorted.
func missing(ids []string, set IDSet) []string {
	if set == nil {
		return nil
	}
	var out []string
	for _, id := range ids {
		if !set.Has(id) {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

func unknownIDs(kind string, ids []string) error {
	return types.ValidationError("unknown %s IDs: %s", kind, strings.Join(ids, ", "))
}

// emblem checks an optional emblem reference.
func emblem(name string, refs Refs) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil
	}
	if !ValidEmblemName(name) {
		return "", types.ValidationError("emblem %q must be a file name like name.svg", name)
	}
	if refs.EmblemExists != nil && !refs.EmblemExists(name) {
		return "", types.ValidationError("emblem %q does not exist", name)
	}
	return name, nil
}
