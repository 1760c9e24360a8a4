// Package gorm provides GORM-based implementations of the store interfaces
// defined in the parent store package.
//
// Stores that touch sealed columns expect the *gorm.DB they are built with to
// carry a secretbox cipher in its context. Per-request contexts passed to the
// store methods inherit that cipher.
package gorm
