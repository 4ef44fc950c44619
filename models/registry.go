package models

// All returns every model managed by schema migration, parents first.
func All() []interface{} {
	return []interface{}{&User{}, &Article{}}
}
