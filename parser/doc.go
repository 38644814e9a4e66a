// Copyright 2025 Sieve Data
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package parser normalizes heterogeneous CSV/JSON rows into canonical data
// records.
//
// Input rows are open string-keyed mappings (Row) because upstream exports
// agree on almost nothing: column names, rating scales, and timestamp
// formats all vary by source. The parser is a prioritized list of extractor
// rules evaluated in order with early exit, so each heuristic stays
// auditable and testable on its own.
//
// Parsing is a pure transformation over one row and never fails a batch:
// rows with no recognizable content degrade to a JSON serialization of the
// whole row, which guarantees every record has non-empty content. The open
// Row mapping does not leak past this package except as the record's opaque
// Metadata blob.
package parser
