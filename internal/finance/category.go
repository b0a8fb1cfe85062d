package finance

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
)

const customPrefix = "custom:"

// maxCustomNameLength bounds user-defined category names.
const maxCustomNameLength = 50

// Category key errors.
var (
	ErrUnknownCategory     = errors.New("unknown category")
	ErrInvalidCustomName   = errors.New("invalid custom category name")
	errUnsupportedScanType = errors.New("unsupported category key type")
)

// CategoryKey identifies a budget category. It is either one of the well-known
// core keys or a user-defined custom key; the zero value is not a valid key.
type CategoryKey struct {
	name   string
	custom bool
}

// Core category keys.
var (
	Housing        = CategoryKey{name: "housing"}
	Utilities      = CategoryKey{name: "utilities"}
	Groceries      = CategoryKey{name: "groceries"}
	Dining         = CategoryKey{name: "dining"}
	Transportation = CategoryKey{name: "transportation"}
	Healthcare     = CategoryKey{name: "healthcare"}
	Insurance      = CategoryKey{name: "insurance"}
	Debt           = CategoryKey{name: "debt"}
	Entertainment  = CategoryKey{name: "entertainment"}
	Personal       = CategoryKey{name: "personal"}
	Education      = CategoryKey{name: "education"}
	Savings        = CategoryKey{name: "savings"}
	Other          = CategoryKey{name: "other"}
)

var coreCategories = []CategoryKey{
	Housing, Utilities, Groceries, Dining, Transportation, Healthcare,
	Insurance, Debt, Entertainment, Personal, Education, Savings, Other,
}

// CoreCategories returns the well-known category keys in display order.
func CoreCategories() []CategoryKey {
	out := make([]CategoryKey, len(coreCategories))
	copy(out, coreCategories)
	return out
}

// Custom builds a user-defined category key. The name is trimmed and lower-cased.
func Custom(name string) (CategoryKey, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" || len(n) > maxCustomNameLength || strings.Contains(n, ":") {
		return CategoryKey{}, fmt.Errorf("%w: %q", ErrInvalidCustomName, name)
	}
	return CategoryKey{name: n, custom: true}, nil
}

// ParseCategoryKey parses the canonical string form produced by String.
func ParseCategoryKey(s string) (CategoryKey, error) {
	if rest, ok := strings.CutPrefix(s, customPrefix); ok {
		return Custom(rest)
	}
	for _, k := range coreCategories {
		if k.name == s {
			return k, nil
		}
	}
	return CategoryKey{}, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// IsCustom reports whether k is a user-defined category.
func (k CategoryKey) IsCustom() bool { return k.custom }

// IsZero reports whether k is the unset key.
func (k CategoryKey) IsZero() bool { return k.name == "" }

// Name returns the bare category name without the custom prefix.
func (k CategoryKey) Name() string { return k.name }

// String returns the canonical form: the core name, or "custom:<name>".
func (k CategoryKey) String() string {
	if k.custom {
		return customPrefix + k.name
	}
	return k.name
}

// MarshalText implements encoding.TextMarshaler.
func (k CategoryKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *CategoryKey) UnmarshalText(b []byte) error {
	parsed, err := ParseCategoryKey(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Value implements driver.Valuer.
func (k CategoryKey) Value() (driver.Value, error) {
	if k.IsZero() {
		return nil, nil
	}
	return k.String(), nil
}

// Scan implements sql.Scanner.
func (k *CategoryKey) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*k = CategoryKey{}
		return nil
	case string:
		return k.UnmarshalText([]byte(v))
	case []byte:
		return k.UnmarshalText(v)
	default:
		return fmt.Errorf("%w: %T", errUnsupportedScanType, src)
	}
}

// GormDataType tells gorm to store the key as a string column.
func (CategoryKey) GormDataType() string { return "string" }
