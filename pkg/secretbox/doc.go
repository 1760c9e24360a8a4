// Package secretbox seals sensitive columns before they reach the database.
//
// Values are encrypted with AES-256-GCM. The additional authenticated data
// binds a ciphertext to the row it belongs to, so a sealed SMTP password
// cannot be copied into an identity provider row and decrypted there.
//
//	box, err := secretbox.New(dataKey)
//	sealed, err := box.Seal([]byte(idp.ID), []byte(idp.ClientSecret))
//	plain, err := box.Open([]byte(idp.ID), sealed)
//
// Sealed values are laid out as version byte, nonce, ciphertext and tag.
package secretbox
