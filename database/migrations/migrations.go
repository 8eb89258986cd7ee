// Package migrations holds the schema migrations. Each migration registers
// itself from init(), so importing this package for side effects is enough
// to make them visible to migration.New.
package migrations
