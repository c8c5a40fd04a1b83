package observability

const (
	MStoreOps         MetricKey = "store_operations_total"
	MStoreOpDuration  MetricKey = "store_operation_duration_seconds"
	MSnapshotOps      MetricKey = "snapshot_operations_total"
	MSnapshotDuration MetricKey = "snapshot_operation_duration_seconds"
	MJournalEvents    MetricKey = "journal_events_total"
)
