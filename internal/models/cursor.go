package models

// SyncCursor tracks the last successful pull boundary so pulls are
// resumable and idempotent. LastPulledAt is the highest remote updated_at
// seen in the last fully completed collection walk; interrupted walks do
// not move it. SyncEpoch increments once per completed reconciliation
// pass.
type SyncCursor struct {
	LastPulledAt int64 `json:"last_pulled_at"` // unix milliseconds
	SyncEpoch    int64 `json:"sync_epoch"`
	LastSyncedAt int64 `json:"last_synced_at"` // wall clock of the last completed pass
}
