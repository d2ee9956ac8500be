package tenancy

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAuthorize(t *testing.T) {
	require.NoError(t, Authorize(7, 7))
	require.ErrorIs(t, Authorize(7, 8), ErrOrganizationMismatch)
	require.ErrorIs(t, Authorize(0, 8), ErrMissingOrganization)
}

func TestAuthorizeMissingBeforeMismatch(t *testing.T) {
	// A missing declared id is reported even when the comparison would
	// also fail, so clients get the actionable error.
	require.ErrorIs(t, Authorize(0, 0), ErrMissingOrganization)
}

func TestAuthorizeIsRepeatable(t *testing.T) {
	for i := 0; i < 3; i++ {
		require.ErrorIs(t, Authorize(1, 2), ErrOrganizationMismatch)
	}
}
