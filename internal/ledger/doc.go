// Package ledger holds the pure rules for a student's class history: drift
// detection, reconciliation planning, in-memory synthesis and academic year
// derivation. Nothing here touches storage; repositories apply the plans.
package ledger
