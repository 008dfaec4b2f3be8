// Package services holds domain logic that does not belong to a single
// aggregate. AccessPolicy decides which role may perform which action; it is
// the only place role permissions are spelled out.
package services
