// Package web serves the bookmark UI.
//
// # Routes
//
//	GET  /                              redirect to /bookmarks
//	GET  /about                         about page (embedded markdown)
//	GET  /bookmarks                     list page
//	GET  /bookmarks/partial[?force=1]   list fragment; 204 when unchanged
//	GET  /bookmarks/{id}                details; opens the bookmark in the session
//	GET  /bookmarks/new                 create form
//	POST /bookmarks/new                 create
//	GET  /bookmarks/edit                edit form for the open bookmark
//	POST /bookmarks/edit                update the open bookmark
//	POST /bookmarks/delete              delete the open bookmark
//	GET  /bookmarks/conflict?title=     JSON bool
//	POST /bookmarks/sort                toggle title sort direction
//	POST /bookmarks/group/titles        list by title
//	POST /bookmarks/group/categories    group by category
//	POST /bookmarks/search/toggle       toggle search mode
//	POST /bookmarks/search/text         set search text (form field "value")
//	POST /bookmarks/search/category     set category filter (form field "value")
//
// # Sessions
//
// Each visitor gets a signed session cookie naming a server-side
// session.State. The state holds the visitor's Query, the bookmark they last
// opened and the store Version they last rendered. Edit and delete act on
// the open bookmark; ids from the request are never trusted for them.
//
// # CSRF
//
// Every POST must carry the value of the bookmarkd_csrf cookie, either as
// the csrf_token form field or the X-CSRF-Token header.
//
// # Errors
//
// Validation failures re-render the form with status 422. Persistence
// failures are logged and answered with status 500.
package web
