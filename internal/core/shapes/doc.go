// Package shapes registers the record shapes of a brokerage statement
// export with the core registry.
// Import this package to make "account" and "transaction" available.
package shapes
