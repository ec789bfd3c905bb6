// Package types defines the Cupboard and Table interfaces, the Fruit entity,
// the checkbox coercion rule, and standard errors for the fruits record store.
package types
