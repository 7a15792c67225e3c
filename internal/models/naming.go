// ABOUTME: Table naming convention for the fitplan schema.
// ABOUTME: Every table is namespaced with a shared prefix so several projects can share one database.
package models

// TablePrefix namespaces every fitplan table.
const TablePrefix = "mvfp_"

// Table returns the prefixed table name for name.
func Table(name string) string {
	return TablePrefix + name
}
