package recordstore

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func Op(v string) zap.Field {
	return zap.String("op", v)
}

func Table(td TableDef) zap.Field {
	if td.Schema != "" {
		return zap.String("table", td.Schema+"."+td.Name)
	}
	return zap.String("table", td.Name)
}

// TenantID logs an ambient tenant value, which is nil outside a tenant.
func TenantID(v any) zap.Field {
	return optionalIDField("tenant_id", v)
}

func UserID(v any) zap.Field {
	return optionalIDField("user_id", v)
}

func SQL(v string) zap.Field {
	return zap.String("sql", v)
}

// Bindings logs the parameter bag of a statement.
func Bindings(p Params) zap.Field {
	return zap.Object("params", p)
}

func optionalIDField(key string, v any) zap.Field {
	if id, ok := v.(uuid.UUID); ok {
		return zap.Stringer(key, id)
	}
	return zap.Skip()
}
