// file: pkg/fat12/walk.go

package fat12

import "path"

// Walk recursively lists every live file and directory reachable from
// the volume's root, producing fully qualified forward-slash paths.
// Directories are followed by their unbounded cluster chain, not by
// the entry's declared size (directories don't carry one).
func (v *Volume) Walk() []DirEntry {
	root := v.flat[v.rootStart : v.rootStart+v.rootByteCount]
	var out []DirEntry
	v.walkBuffer(root, "", &out)
	return out
}

func (v *Volume) walkBuffer(buf []byte, prefix string, out *[]DirEntry) {
	for _, e := range parseDirectoryBuffer(buf) {
		if e.ShortName == "." || e.ShortName == ".." {
			continue
		}
		e.Path = joinPath(prefix, e.Name)
		*out = append(*out, e)

		if e.IsDir && e.Cluster >= 2 {
			sub := v.readChain(e.Cluster, v.totalClusters*v.clusterBytes)
			v.walkBuffer(sub, e.Path, out)
		}
	}
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// ListDeleted scans the root directory and every reachable live
// subdirectory for tombstoned entries and scores each one's
// recoverability.
func (v *Volume) ListDeleted() []DeletedEntry {
	root := v.flat[v.rootStart : v.rootStart+v.rootByteCount]
	var out []DeletedEntry
	v.scanDeleted(root, "", &out)

	for _, dir := range v.Walk() {
		if dir.IsDir && dir.Cluster >= 2 {
			sub := v.readChain(dir.Cluster, v.totalClusters*v.clusterBytes)
			v.scanDeleted(sub, dir.Path, &out)
		}
	}
	return out
}

func (v *Volume) scanDeleted(buf []byte, prefix string, out *[]DeletedEntry) {
	for _, d := range parseDeletedBuffer(buf) {
		d.Path = joinPath(prefix, d.Name)
		d.Recoverable, d.Reason = v.score(d.Cluster, d.Size)
		*out = append(*out, d)
	}
}

// ReadFile returns the payload bytes for a live file's cluster chain,
// truncated or padded never: callers receive whatever prefix of the
// declared size is actually readable. A start cluster outside the
// volume's valid data-cluster range is rejected with KindInvalidCluster
// rather than silently returning an empty file.
func (v *Volume) ReadFile(e DirEntry) ([]byte, error) {
	if e.Cluster < 2 || e.Cluster >= v.totalClusters {
		return nil, newErr(KindInvalidCluster, "file start cluster is out of range")
	}
	return v.readChain(e.Cluster, e.Size), nil
}
