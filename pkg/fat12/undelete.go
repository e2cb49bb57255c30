// file: pkg/fat12/undelete.go

package fat12

import "fmt"

// score judges whether a deleted entry's payload is still intact:
// the FAT chain for a deleted file is zeroed, so recoverability is
// estimated from the contiguous run of free clusters starting at the
// entry's original start cluster, under the assumption that the file
// was stored contiguously. This generalizes a contiguous-free-run
// bitmap scan from sector granularity to FAT12 cluster granularity.
func (v *Volume) score(startCluster, size int) (bool, string) {
	needed := (size + v.clusterBytes - 1) / v.clusterBytes
	if needed == 0 {
		needed = 1
	}
	if startCluster < 2 || startCluster >= v.totalClusters {
		return false, "Start cluster reallocated"
	}
	if !isFree(v.entry(startCluster)) {
		return false, "Start cluster reallocated"
	}

	free := v.freeRunLength(startCluster)
	if free >= needed {
		return true, fmt.Sprintf("%d cluster(s) free", needed)
	}
	return false, fmt.Sprintf("Only %d/%d clusters free", free, needed)
}

// Recover reads back a deleted file's payload from its contiguous
// run of clusters, ignoring the (zeroed) FAT chain entirely. A start
// cluster outside the volume's valid data-cluster range is rejected
// with KindInvalidCluster; this is checked independently of score's
// recoverability verdict since a caller may force a recovery attempt.
func (v *Volume) Recover(e DeletedEntry) ([]byte, error) {
	if e.Cluster < 2 || e.Cluster >= v.totalClusters {
		return nil, newErr(KindInvalidCluster, "start cluster is out of range")
	}
	needed := (e.Size + v.clusterBytes - 1) / v.clusterBytes
	if needed == 0 {
		needed = 1
	}
	return v.readContiguous(e.Cluster, needed, e.Size), nil
}
