// file: pkg/acquire/process.go

package acquire

import (
	"os/exec"
	"strings"

	log "github.com/sirupsen/logrus"
)

var acquisitionSubcommands = map[string]bool{
	"read": true, "write": true, "convert": true, "erase": true,
	"info": true, "rpm": true, "seek": true, "clean": true,
}

// siblingProcessBusy shells out to the OS process table to check
// whether another gw acquisition process is already running on the
// host, the same way other command-spawning code in this lineage
// inspects exec.Command output directly rather than reaching for a
// process-listing library. On platforms where ps is unavailable it
// degrades to "not busy" rather than failing the caller's request.
func siblingProcessBusy(binaryName string) bool {
	out, err := exec.Command("ps", "-eo", "args=").Output()
	if err != nil {
		log.WithError(err).Debug("acquire: could not query process table")
		return false
	}
	for _, line := range strings.Split(string(out), "\n") {
		fields := strings.Fields(line)
		for i, f := range fields {
			base := f
			if idx := strings.LastIndex(base, "/"); idx >= 0 {
				base = base[idx+1:]
			}
			if base != binaryName {
				continue
			}
			if i+1 < len(fields) && acquisitionSubcommands[fields[i+1]] {
				return true
			}
		}
	}
	return false
}
