// Package storage persists extracted source figures in Postgres.
//
// Engine merges canonical records into the dsd_source table keyed by
// (corp_code, source_name, year). With the unique constraint in place the
// batch runs in one transaction with INSERT ... ON CONFLICT; without it,
// and only when strict schema checking is off, each row is looked up and
// then updated or inserted. SourceRepository reads the stored rows back.
package storage
