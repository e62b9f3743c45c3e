package core

// MergeTransactions combines a local and a remote transaction set into one
// set with no duplicate ids, using last-writer-wins keyed by per-record
// modification time.
//
// Every local record is kept unless the remote copy of the same id is
// strictly newer; ties favor local. Remote-only records are appended in
// remote order. This is not a three-way merge and carries no tombstones: a
// record deleted locally but still present in an older remote snapshot
// reappears after a pull. That is a known property of the protocol, not a
// defect to paper over here.
func MergeTransactions(local, remote []Transaction) []Transaction {
	merged := make([]Transaction, len(local))
	copy(merged, local)

	index := make(map[string]int, len(local))
	for i, tx := range merged {
		index[tx.ID] = i
	}

	for _, rt := range remote {
		i, ok := index[rt.ID]
		if !ok {
			index[rt.ID] = len(merged)
			merged = append(merged, rt)
			continue
		}
		if rt.ModifiedAt().After(merged[i].ModifiedAt()) {
			merged[i] = rt
		}
	}

	return merged
}
