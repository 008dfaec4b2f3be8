// Package queries contains the read side: order listings and lookups plus the
// latest courier position. Handlers read the tables directly and return flat
// read models instead of aggregates.
package queries
