// Package handlers implements the HTTP API of bc20-explorer.
//
// Handlers validate and parse requests, check the caller's permissions, delegate
// to the services layer and map results and errors to HTTP responses.
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────────────────────┐
//	│                     HTTP Request (Gin)                          │
//	│        middlewares: Logger (request id) │ auth (JWT)            │
//	└─────────────────────────────────────────────────────────────────┘
//	                              │
//	                              ▼
//	┌─────────────────────────────────────────────────────────────────┐
//	│                      Handler (this package)                     │
//	│  - Permission checks (bc20.view, bc20.export, oss.view)         │
//	│  - Parameter binding and validation                             │
//	│  - Flat filters and text expressions to rule trees              │
//	│  - Error mapping to HTTP status codes                           │
//	└─────────────────────────────────────────────────────────────────┘
//	                              │
//	                              ▼
//	┌─────────────────────────────────────────────────────────────────┐
//	│                      Services Layer                             │
//	│  DeclarationService │ CompanyService                            │
//	└─────────────────────────────────────────────────────────────────┘
//
// # API Endpoints
//
//	┌────────┬────────────────────────┬────────────┬──────────────────────────────┐
//	│ Method │ Endpoint               │ Permission │ Description                  │
//	├────────┼────────────────────────┼────────────┼──────────────────────────────┤
//	│ GET    │ /health                │ -          │ Liveness and database ping   │
//	│ GET    │ /fields                │ bc20.view  │ Filterable field catalog     │
//	│ GET    │ /declarations          │ bc20.view  │ Search with flat filters     │
//	│ POST   │ /declarations/query    │ bc20.view  │ Search with a rule tree      │
//	│ POST   │ /declarations/export   │ bc20.export│ xlsx export of a rule tree   │
//	│ GET    │ /declarations/suggest  │ bc20.view  │ Autocomplete field values    │
//	│ GET    │ /declarations/{id}     │ bc20.view  │ Declaration with children    │
//	│ GET    │ /companies             │ oss.view   │ Search the OSS/NIB registry  │
//	│ GET    │ /companies/{nib}       │ oss.view   │ Company with children        │
//	└────────┴────────────────────────┴────────────┴──────────────────────────────┘
//
// # Declaration Search
//
// GET /declarations reads these parameters; every other query parameter is a
// flat filter (text columns match with contains, others with equality):
//
//	┌────────────────┬────────┬──────────────────────────────────────────┐
//	│ Parameter      │ Type   │ Description                              │
//	├────────────────┼────────┼──────────────────────────────────────────┤
//	│ filter         │ string │ Text expression, see package filter      │
//	│ date_from      │ date   │ tanggaldaftar >= date (YYYY-MM-DD)       │
//	│ date_to        │ date   │ tanggaldaftar <= date (YYYY-MM-DD)       │
//	│ sort_by        │ string │ nomordaftar, tanggaldaftar, jalur, ...   │
//	│ sort_direction │ string │ asc or desc (default desc)               │
//	│ page           │ int    │ Page number (default: 1)                 │
//	│ per_page       │ int    │ Items per page (default: 20, max: 100)   │
//	└────────────────┴────────┴──────────────────────────────────────────┘
//
// Example: /declarations?importir.namaentitas=maju&jalur=H&date_from=2024-03-01&filter=barang.postarif~'8703'
//
// POST /declarations/query takes the rule tree of a query builder UI:
//
//	{
//	    "rules": {
//	        "combinator": "and",
//	        "rules": [
//	            { "field": "importir.namaentitas", "operator": "contains", "value": "maju" },
//	            { "field": "calculated.gross_weight_per_teus", "operator": ">", "value": 1000 }
//	        ]
//	    },
//	    "page": 1,
//	    "per_page": 20,
//	    "sort_by": "tanggaldaftar",
//	    "sort_direction": "desc"
//	}
//
// Both return the page envelope:
//
//	{
//	    "data": [{ "idheader": 1, "nomoraju": "...", "importerName": "...", "teuSum": 5.25, ... }],
//	    "current_page": 1,
//	    "last_page": 3,
//	    "per_page": 20,
//	    "total": 41,
//	    "from": 1,
//	    "to": 20
//	}
//
// Without any effective filter only declarations registered today are returned.
//
// # Error Handling
//
//	{ "error": "error message" }
//
//	┌─────────────────────────────┬────────┬──────────────────────────────┐
//	│ Error Type                  │ Status │ When                         │
//	├─────────────────────────────┼────────┼──────────────────────────────┤
//	│ Validation error            │ 400    │ Bad params, body or dates    │
//	│ InvalidFieldError           │ 400    │ Field cannot be suggested    │
//	│ InvalidRequestError         │ 400    │ Strict filter rejected       │
//	│ ExportLimitError            │ 400    │ Export over the row cap      │
//	│ UnauthorizedError           │ 401    │ Missing or invalid token     │
//	│ PermissionDeniedError       │ 403    │ Permission not granted       │
//	│ ResourceNotFoundError       │ 404    │ Declaration/company missing  │
//	│ Internal error              │ 500    │ Unexpected service errors    │
//	└─────────────────────────────┴────────┴──────────────────────────────┘
package handlers
