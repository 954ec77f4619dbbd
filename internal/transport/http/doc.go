// Package http implements the HTTP handlers of the chart API.
//
// Handlers are thin: they decode and validate the request, call the chart
// or health service and render the result. Request bodies are validated
// with the struct tags of pkg/contracts/api/v1 and every failure is
// answered as RFC 7807 problem details by the shared error handler, so a
// missing session is always a 404 with error_code SESSION_NOT_FOUND no
// matter which route produced it.
//
// # Routes
//
//	POST   /api/sessions                              create a session
//	GET    /api/sessions                              list sessions
//	GET    /api/sessions/{id}                         current snapshot
//	DELETE /api/sessions/{id}                         drop a session
//	PUT    /api/sessions/{id}/data                    replace the paste buffer
//	POST   /api/sessions/{id}/import                  load an .xlsx upload
//	PATCH  /api/sessions/{id}/settings                toggle settings
//	PATCH  /api/sessions/{id}/dimensions/{dim}        edit one axis
//	DELETE /api/sessions/{id}/dimensions/{dim}/range  restore the auto range
//	PUT    /api/sessions/{id}/colors/{series}         override a color
//	DELETE /api/sessions/{id}/colors/{series}         clear the override
//
// Dimension and series names are path segments and must be URL escaped.
package http
