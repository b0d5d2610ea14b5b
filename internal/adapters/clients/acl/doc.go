// Package acl is the anti-corruption layer between the quotation backend's
// REST API and the domain model.
//
// Backend DTOs stay unexported in this package. [BackendClient] decodes them,
// translates them into domain.Quotation and domain.Client values and maps
// every failure onto a domain error:
//
//   - 404 becomes domain.ErrNotFound
//   - 400, 409 and 422 become domain.ErrValidation
//   - 401 and 403 become domain.ErrForbidden
//   - 429, 5xx, transport errors, an open circuit and undecodable bodies
//     become domain.ErrUnavailable
//
// Translation is lenient where the listing page was lenient: a created_at or
// valid_until the backend sends in an unknown format is dropped rather than
// failing the whole list.
package acl
