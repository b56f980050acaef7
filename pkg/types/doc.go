// Package types defines the entity identity contract, the CRUD capability
// contracts, the paged result value, the persistence engine contracts and
// the standard error values shared by every entityaxis package.
package types
