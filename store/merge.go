package store

// MergeDailyLogs combines the device-local logs with the mirror's copy, keyed
// by id. The remote version wins for ids present on both sides (last write to
// the mirror wins, no per-field conflict resolution); local-only logs, created
// offline and not yet received by the mirror, are preserved. Local order is
// kept, remote-only rows are appended in their mirror order.
func MergeDailyLogs(local, remote []DailyLog) []DailyLog {
	remoteById := make(map[string]DailyLog, len(remote))
	for _, log := range remote {
		remoteById[log.Id] = log
	}

	merged := make([]DailyLog, 0, len(local)+len(remote))
	seen := make(map[string]bool, len(local))
	for _, log := range local {
		if remoteLog, ok := remoteById[log.Id]; ok {
			merged = append(merged, remoteLog)
		} else {
			merged = append(merged, log)
		}
		seen[log.Id] = true
	}
	for _, log := range remote {
		if !seen[log.Id] {
			merged = append(merged, log)
		}
	}
	return merged
}

// MergeSettings applies a cloud-origin settings object over the local one.
// The cloud connection credentials are device-local and are the means of
// reaching the mirror in the first place, so they always survive the merge.
func MergeSettings(local, remote Settings) Settings {
	merged := remote
	merged.CloudUrl = local.CloudUrl
	merged.CloudAnonKey = local.CloudAnonKey
	return merged
}
