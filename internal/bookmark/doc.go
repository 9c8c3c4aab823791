// Package bookmark defines the Bookmark entity and the presentation logic
// applied to bookmark lists.
//
// Repository embeds store.EntityStore[Bookmark], so it exposes List, Get,
// Add, Update, Delete, Version and HasChanged directly, plus:
//
//   - Categories: distinct categories, ascending
//   - TitleConflict: whether another bookmark already uses a title
//   - Create / Edit: Normalize then Add / Update
//
// Query is an immutable value describing search text, category filter, sort
// direction and grouping. Apply runs it over a List result; the store itself
// never filters or sorts on a caller's behalf.
package bookmark
