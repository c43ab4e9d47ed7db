// Package http implements the HTTP handlers of the dsdgen service. Handlers
// are thin: they bind and validate the query, call a service and render the
// result with go-chi/render.
//
// # Routes
//
//	GET /xbrl-parser/xbrl-to-dataframe?corp_code=   extract, upsert, return records
//	GET /xbrl-parser/export?corp_code=&format=       extract, return a csv or xlsx attachment
//	GET /dsdgen/sources?corp_code=&year=             stored rows for an entity
//	GET /api/health, /api/health/ready, /api/health/live
//	GET /metrics                                     Prometheus exposition
//
// # Error Handling
//
// Failures are reported as RFC 7807 problem documents through
// errors.ErrorHandler:
//
//	{
//	    "type": "/errors/validation",
//	    "title": "Bad Request",
//	    "status": 400,
//	    "detail": "Request validation failed",
//	    "instance": "/xbrl-parser/export"
//	}
//
// An extraction that finds nothing is not a failure. The extraction
// endpoint answers 200 with success=false and an empty data array.
package http
