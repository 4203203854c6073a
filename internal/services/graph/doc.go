// Package graph talks to a Microsoft Graph style drive API.
//
// Client handles transport concerns: bearer auth, bounded retries with
// exponential backoff, 429 Retry-After handling, and @odata.nextLink
// pagination. Operations layers drive semantics on top: listing children,
// resolving items by path, idempotent folder-path creation, and moves.
// Transient failures surface as services.ErrRemoteUnavailable after retries
// are exhausted; missing paths surface as services.ErrNotFound.
package graph
