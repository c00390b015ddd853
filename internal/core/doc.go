// Package core provides the business logic for the buy-side search tool.
//
// This package has no UI dependencies. It can be used by the web handlers,
// the CLI, or tests without modification.
//
// # Architecture
//
// The package is organized around a few key concepts:
//
//   - Schemas: registered via [RegisterSchema], each dataset kind (Factbook,
//     Pipeline, mapping) declares the fixed column names it is matched on.
//   - Sources: CSV files, XLSX workbooks and Postgres tables all read into a
//     [RawTable] through the [Source] interface.
//   - Loader: [Load] concatenates sources, joins the brand->company mapping
//     and computes standardized keys, producing an immutable [Dataset].
//   - Service: the entry point for searching, tagging, summaries and reloads.
//
// # Standardized names
//
// Every join and match uses [Standardize]: NFKC-normalized, trimmed,
// uppercased, with trailing parentheticals removed:
//
//	Standardize("  Brand (Owner Co) ") == "BRAND"
//
// Raw cell values are never rewritten; keys live on [Record].
//
// # Matching
//
// [Dataset.Search] returns brand matches (name or mapped company equals the
// key), pipeline matches (name equals the key, or notes/tags contain it),
// and a combined view: brand matches left-joined to the whole Pipeline, or
// the pipeline matches alone when no brand matched.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - SRCH001: search errors
//   - TAG001-TAG002: tag errors
//   - SUM001-SUM004: AI summary errors
//   - DATA001-DATA004: data source errors
package core
