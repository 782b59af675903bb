// Package ir provides the intermediate representation for etch specs.
//
// This package contains type definitions and the document-state codec only.
// All other internal packages import ir; ir imports nothing internal. This
// keeps the IR the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Entries are immutable after parsing; stages never mutate them
//   - Document offsets are byte offsets into Text, never line/column pairs
//   - Step kinds are a closed tag set decided at parse time; later stages
//     switch on the tag and never re-match source text
package ir
