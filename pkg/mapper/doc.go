// Package mapper translates between generic identifier keys
// (identifier_a..identifier_j) and their business-meaningful names
// throughout nested JSON-like documents.
//
// Records are stored with meaningful keys; the processing pipeline works on
// the canonical generic form. The mapping table lives in a flat JSON file:
//
//	{
//	    "identifier_a": "sector",
//	    "identifier_b": "region"
//	}
//
// Round-trip property: for documents whose keys are covered by (or absent
// from) the table, Reverse(Forward(doc)) is structurally equal to doc.
package mapper
