// Package sqltype provides the logical column type model and runtime value
// coercion shared by catalog loading and query construction.
package sqltype

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// LogicalType is the engine-independent category of a column's data type.
type LogicalType int

const (
	// TypeString is the default type for text, dates, and unknown native types.
	TypeString LogicalType = iota
	// TypeInt represents integer numeric types.
	TypeInt
	// TypeFloat represents floating-point and fixed-point numeric types.
	TypeFloat
	// TypeBoolean represents boolean types.
	TypeBoolean
	// TypeBytes represents binary types.
	TypeBytes
	// TypeDateTime represents date and time types.
	TypeDateTime
	// TypeUUID represents UUID types.
	TypeUUID
	// TypeJSON represents JSON document types.
	TypeJSON
)

func (t LogicalType) String() string {
	switch t {
	case TypeInt:
		return "Int"
	case TypeFloat:
		return "Float"
	case TypeBoolean:
		return "Boolean"
	case TypeBytes:
		return "Bytes"
	case TypeDateTime:
		return "DateTime"
	case TypeUUID:
		return "UUID"
	case TypeJSON:
		return "JSON"
	default:
		return "String"
	}
}

// MapNativeType converts a native SQL data type name to its logical category.
// The input is case-insensitive; size specifiers like (10,2) or (255) are
// stripped before matching. Covers the MySQL, PostgreSQL, and SQLite names
// the supported engines report through their metadata catalogs.
func MapNativeType(nativeType string) LogicalType {
	if idx := strings.Index(nativeType, "("); idx != -1 {
		nativeType = nativeType[:idx]
	}
	switch strings.ToUpper(strings.TrimSpace(nativeType)) {
	case "TINYINT", "SMALLINT", "MEDIUMINT", "INT", "INTEGER", "BIGINT",
		"SERIAL", "BIGSERIAL", "SMALLSERIAL", "INT2", "INT4", "INT8", "BIT":
		return TypeInt
	case "FLOAT", "DOUBLE", "DOUBLE PRECISION", "REAL", "FLOAT4", "FLOAT8",
		"DECIMAL", "NUMERIC", "MONEY":
		return TypeFloat
	case "BOOL", "BOOLEAN":
		return TypeBoolean
	case "BLOB", "TINYBLOB", "MEDIUMBLOB", "LONGBLOB", "BINARY", "VARBINARY", "BYTEA":
		return TypeBytes
	case "DATE", "DATETIME", "TIMESTAMP", "TIMESTAMPTZ", "TIME", "TIMETZ", "YEAR",
		"TIMESTAMP WITH TIME ZONE", "TIMESTAMP WITHOUT TIME ZONE",
		"TIME WITH TIME ZONE", "TIME WITHOUT TIME ZONE", "INTERVAL":
		return TypeDateTime
	case "UUID":
		return TypeUUID
	case "JSON", "JSONB":
		return TypeJSON
	default:
		return TypeString
	}
}

// Coerce converts a caller-supplied runtime value to the Go representation
// expected for the given logical type. Values typically arrive from JSON
// deserialization, so float64 and json.Number are accepted for numeric types.
// A value that cannot represent the target type is an error; it is never
// silently mapped to an unrelated type.
func Coerce(value any, target LogicalType) (any, error) {
	if value == nil {
		return nil, nil
	}
	switch target {
	case TypeInt:
		return coerceInt(value)
	case TypeFloat:
		return coerceFloat(value)
	case TypeBoolean:
		return coerceBool(value)
	case TypeUUID:
		return coerceUUID(value)
	case TypeBytes:
		switch v := value.(type) {
		case []byte:
			return v, nil
		case string:
			return []byte(v), nil
		}
		return nil, fmt.Errorf("value %v (%T) is not valid for type Bytes", value, value)
	case TypeJSON:
		// Any JSON-decoded value is acceptable for a JSON column.
		return value, nil
	default:
		// String and DateTime columns take their values as strings; the
		// database parses temporal literals itself.
		switch v := value.(type) {
		case string:
			return v, nil
		case fmt.Stringer:
			return v.String(), nil
		}
		return nil, fmt.Errorf("value %v (%T) is not valid for type %s", value, value, target)
	}
}

func coerceInt(value any) (any, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		if v != math.Trunc(v) {
			return nil, fmt.Errorf("value %v has a fractional part and is not valid for type Int", v)
		}
		return int64(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return nil, fmt.Errorf("value %q is not valid for type Int", v.String())
		}
		return n, nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("value %q is not valid for type Int", v)
		}
		return n, nil
	}
	return nil, fmt.Errorf("value %v (%T) is not valid for type Int", value, value)
}

func coerceFloat(value any) (any, error) {
	switch v := value.(type) {
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("value %q is not valid for type Float", v.String())
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("value %q is not valid for type Float", v)
		}
		return f, nil
	}
	return nil, fmt.Errorf("value %v (%T) is not valid for type Float", value, value)
}

func coerceBool(value any) (any, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("value %q is not valid for type Boolean", v)
		}
		return b, nil
	}
	return nil, fmt.Errorf("value %v (%T) is not valid for type Boolean", value, value)
}

func coerceUUID(value any) (any, error) {
	switch v := value.(type) {
	case uuid.UUID:
		return v.String(), nil
	case string:
		parsed, err := uuid.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("value %q is not valid for type UUID", v)
		}
		return parsed.String(), nil
	}
	return nil, fmt.Errorf("value %v (%T) is not valid for type UUID", value, value)
}
