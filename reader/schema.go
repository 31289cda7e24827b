package reader

import (
	"github.com/parquet-go/parquet-go"
)

// ColumnInfo describes one top-level column of a Parquet file
type ColumnInfo struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	PhysicalType string `json:"physical_type"`
	LogicalType  string `json:"logical_type"`
	Optional     bool   `json:"optional"`
}

// describeSchema lists the top-level fields of a schema in order.
// Nested groups are reported with type GROUP and loaded as their string form.
func describeSchema(schema *parquet.Schema) []ColumnInfo {
	fields := schema.Fields()
	infos := make([]ColumnInfo, 0, len(fields))
	for _, field := range fields {
		infos = append(infos, ColumnInfo{
			Name:         field.Name(),
			Type:         userType(field),
			PhysicalType: physicalType(field),
			LogicalType:  logicalType(field),
			Optional:     field.Optional(),
		})
	}
	return infos
}

func physicalType(field parquet.Field) string {
	if !field.Leaf() {
		return "GROUP"
	}

	switch field.Type().Kind() {
	case parquet.Boolean:
		return "BOOLEAN"
	case parquet.Int32:
		return "INT32"
	case parquet.Int64:
		return "INT64"
	case parquet.Int96:
		return "INT96"
	case parquet.Float:
		return "FLOAT"
	case parquet.Double:
		return "DOUBLE"
	case parquet.ByteArray:
		return "BYTE_ARRAY"
	case parquet.FixedLenByteArray:
		return "FIXED_LEN_BYTE_ARRAY"
	default:
		return "UNKNOWN"
	}
}

func logicalType(field parquet.Field) string {
	if !field.Leaf() {
		return ""
	}
	lt := field.Type().LogicalType()
	if lt == nil {
		return ""
	}
	return lt.String()
}

// userType maps a field onto the table type it loads as
func userType(field parquet.Field) string {
	if !field.Leaf() {
		return "string"
	}

	switch field.Type().Kind() {
	case parquet.Boolean:
		return "bool"
	case parquet.Int32, parquet.Int64:
		return "int"
	case parquet.Float, parquet.Double:
		return "float"
	default:
		return "string"
	}
}
