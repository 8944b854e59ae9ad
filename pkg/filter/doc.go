// Package filter compiles declaration search filters into SQL predicates over the
// BC 2.0 header table (alias h).
//
// A filter is a tree of groups and rules. It arrives either as JSON from a query
// builder UI (ParseRuleTree), as a flat key/value map (FromFlat) or as a text
// expression (ParseExpression). Compiler.Compile turns the tree into a squirrel
// predicate.
//
// Grammar of text expressions
//
//	expression  : term ( "or" term )* ;
//	term        : factor ( "and" factor )* ;
//	factor      : comparison | "(" expression ")" ;
//	comparison  : IDENTIFIER ( "=" | "!=" | "<>" | "<" | "<=" | ">" | ">=" | "~" | "!~" ) value
//	            | IDENTIFIER "in" "(" value ( "," value )* ")" ;
//	value       : STRING | NUMBER ;
//
//	IDENTIFIER  : [a-zA-Z_][a-zA-Z0-9_.]* ;
//	STRING      : "'" (.*?) "'" | "\"" (.*?) "\"" ;
//	NUMBER      : "-"? [0-9]+ ( "." [0-9]+ )? ;
//
// "~" is contains and "!~" is doesNotContain.
//
// Field routing
//
// Field names are either bare header columns (nomordaftar, tanggaldaftar, jalur,
// nomoraju), bare detail columns (bruto, kodevaluta, ...), "prefix.column" or
// "calculated.name". Prefixes select a child relation and, for entities, a role:
//
//	importir.*   bc20_entitas where kodeentitas = '1'
//	ppjk.*       bc20_entitas where kodeentitas = '4'
//	pemilik.*    bc20_entitas where kodeentitas = '7'
//	pengirim.*   bc20_entitas where kodeentitas = '9'
//	penjual.*    bc20_entitas where kodeentitas = '10'
//	barang.*     bc20_barang
//	kontainer.*  bc20_kontainer
//	pengangkut.* bc20_pengangkut
//	dokumen.*    bc20_dokumen
//	pungutan.*   bc20_pungutan
//	data.*       bc20_data
//
// Child relation rules compile to correlated EXISTS subqueries. Rules of the same
// group that hit the same scope share one EXISTS, so
//
//	barang.uraian ~ 'ban' and barang.postarif = '40111000'
//
// requires a single goods line satisfying both conditions:
//
//	EXISTS (SELECT 1 FROM bc20_barang b WHERE b.idheader = h.idheader
//	    AND (UPPER(b.uraian) LIKE ? AND UPPER(b.postarif) = ?))
//
// Calculated fields are correlated scalar subqueries compared directly.
package filter
