// Package tenancy enforces organization ownership on record mutations.
//
// Every mutation of an organization-owned record passes through Authorize
// with a record loaded fresh from the store. The guard itself performs no
// I/O; callers are responsible for the fetch and for mapping a missing
// record to ErrNotFound before the ownership comparison runs.
package tenancy

import "errors"

var (
	// ErrNotFound indicates the referenced record does not exist. Callers
	// surface this before any ownership comparison.
	ErrNotFound = errors.New("tenancy: record not found")
	// ErrMissingOrganization indicates the caller omitted the required
	// organization id. Absence is a client error, never "no restriction".
	ErrMissingOrganization = errors.New("tenancy: organization id required")
	// ErrOrganizationMismatch indicates the record belongs to a different
	// organization than the caller declared.
	ErrOrganizationMismatch = errors.New("tenancy: record belongs to another organization")
)

// Authorize compares the owning organization of a freshly loaded record
// against the organization the caller declared for this operation. A zero
// declared id is rejected as missing rather than treated as unrestricted.
func Authorize(declaredOrgID, recordOrgID int64) error {
	if declaredOrgID == 0 {
		return ErrMissingOrganization
	}
	if recordOrgID != declaredOrgID {
		return ErrOrganizationMismatch
	}
	return nil
}
