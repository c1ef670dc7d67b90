// Affinity - Interest Graph & Match Scoring Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

// Package store persists users, match scores, and relationship records in an
// embedded BadgerDB keyspace.
//
// Key layout:
//
//	user:{id}                                        user document
//	tagidx:{tag}:{userID}                            tag membership index
//	score:{owner}:{target}                           match score document
//	scoreidx:{owner}:score:{scoreDesc}:{target}      sort index (score desc, target asc)
//	scoreidx:{owner}:shared:{sharedDesc}:{scoreDesc}:{target}
//	rel:{kind}:{owner}:{target}                      relationship document
//	relidx:{kind}:{owner}:{createdDesc}:{target}     sort index (created desc, target asc)
//
// Index keys embed sort fields in order-preserving byte form (descending
// fields as fixed-width decimal complements), so badger's ordered iteration
// yields rows in the listing order and a keyset cursor becomes a plain seek.
// Document writes and their index rows share one transaction; sorted reads
// never observe a document without its index rows.
//
// Identifiers (user ids, tag ids) must not contain ':' or control bytes;
// the HTTP layer validates this before any key is built.
package store
