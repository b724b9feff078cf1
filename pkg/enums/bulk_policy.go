package enums

// BulkPolicy names the failure policy a bulk lifecycle operation applies.
// Bulk assignment is all-or-nothing; bulk unassignment tolerates per-order
// failures. The asymmetry is deliberate and surfaced on the operation result.
type BulkPolicy string

const (
	BulkPolicyAtomicAll  BulkPolicy = "atomic_all"
	BulkPolicyBestEffort BulkPolicy = "best_effort"
)

// String implements fmt.Stringer.
func (b BulkPolicy) String() string {
	return string(b)
}
