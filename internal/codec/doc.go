// Package codec converts marker lists to and from their exchange formats.
//
// Four shapes are supported:
//   - records: the JSON array persisted under each media key, including the
//     legacy bare-integer form written by early versions;
//   - text: the human-typable "H:MM:SS - memo, MM:SS" form used for export
//     and import;
//   - share: records packed into a single URL query parameter;
//   - backup: every persisted key under a prefix mapped to its raw text.
//
// Everything here is stateless. Callers own logging and persistence.
//
// # Memo escaping in the text form
//
// Entries are joined with ", " and a memo runs from the first " - " after a
// time to the next unescaped comma or line break. Inside a memo a backslash,
// comma, line feed and carriage return are written as \\, \,, \n and \r, so
// every memo survives an export/import round trip. A memo may contain " - "
// verbatim.
package codec
