// Package client is an HTTP client for the IAM administration API.
//
// Client implements OrgService and policy.Manager, so policy forms and policy documents can
// be submitted to a running server:
//
//	c := client.New("https://iam.example.com", token, nil)
//	results, err := doc.Apply(ctx, c)
//
// Error responses are returned as *APIError. 404 and 409 responses match
// store.ErrNotFound and store.ErrAlreadyExists with errors.Is.
package client
