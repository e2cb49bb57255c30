// file: cmd/list/list.go

package list

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ha1tch/floppyarchive/pkg/container"
	"github.com/ha1tch/floppyarchive/pkg/fat12"
)

// ListOptions configures the directory listing.
type ListOptions struct {
	ImagePath string // Path to the disk image, kept for header display
	JSON      bool   // Output in JSON format
	Long      bool   // Also show modification time
	Sort      string // Sort order: name, size, path
	Reverse   bool   // Reverse sort order
	Pattern   string // Filter by filename pattern
	Human     bool   // Human-readable sizes
}

// DefaultListOptions returns default options for List.
func DefaultListOptions() *ListOptions {
	return &ListOptions{
		JSON:    false,
		Long:    false,
		Sort:    "path",
		Reverse: false,
		Pattern: "*",
		Human:   true,
	}
}

// List displays the FAT12 directory tree found inside a disk image.
func List(imagePath string, opts *ListOptions) error {
	if opts == nil {
		opts = DefaultListOptions()
	}
	opts.ImagePath = imagePath

	if _, err := os.Stat(imagePath); os.IsNotExist(err) {
		return fmt.Errorf("image does not exist: %w", err)
	}

	buf, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	idx, err := container.Load(buf)
	if err != nil {
		return fmt.Errorf("failed to parse image: %w", err)
	}
	flat := container.FlatImage(buf, idx)
	desc := container.DetectFromImage(flat, idx)

	v, err := fat12.Open(flat, desc)
	if err != nil {
		return fmt.Errorf("failed to open filesystem: %w", err)
	}

	var entries []fat12.DirEntry
	for _, e := range v.Walk() {
		if matchesPattern(filepath.Base(e.Path), opts.Pattern) {
			entries = append(entries, e)
		}
	}
	sortEntries(entries, opts)

	if opts.JSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(entries)
	}
	return printListing(entries, opts)
}

func matchesPattern(name, pattern string) bool {
	if pattern == "" || pattern == "*" {
		return true
	}
	matched, err := filepath.Match(strings.ToUpper(pattern), strings.ToUpper(name))
	return err == nil && matched
}

func sortEntries(entries []fat12.DirEntry, opts *ListOptions) {
	less := func(i, j int) bool {
		var result bool
		switch strings.ToLower(opts.Sort) {
		case "size":
			result = entries[i].Size < entries[j].Size
		case "name":
			result = entries[i].Name < entries[j].Name
		default: // "path"
			result = entries[i].Path < entries[j].Path
		}
		if opts.Reverse {
			return !result
		}
		return result
	}
	sort.Slice(entries, less)
}

func printListing(entries []fat12.DirEntry, opts *ListOptions) error {
	fmt.Printf("\n Directory of %s\n\n", opts.ImagePath)

	if len(entries) == 0 {
		fmt.Println("File Not Found")
		return nil
	}

	var totalBytes int64
	for _, e := range entries {
		tag := " "
		if e.IsDir {
			tag = "<DIR>"
		}
		size := formatWithCommas(e.Size)
		if opts.Human && !e.IsDir {
			size = humanSize(e.Size)
		}
		if opts.Long {
			ts := e.ModTime.Format("02/01/2006  15:04")
			if e.ModTime.IsZero() {
				ts = strings.Repeat(" ", 16)
			}
			fmt.Printf("%s  %-5s  %12s  %s\n", ts, tag, size, e.Path)
		} else {
			fmt.Printf("%-5s  %12s  %s\n", tag, size, e.Path)
		}
		totalBytes += int64(e.Size)
	}

	fmt.Printf("\n    %d File(s)    %14s bytes\n", len(entries), formatWithCommas(int(totalBytes)))
	return nil
}

func formatWithCommas(n int) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	str := fmt.Sprintf("%d", n)
	if len(str) <= 3 {
		return sign + str
	}
	var result []byte
	pos := len(str) - 1
	count := 0
	for pos >= 0 {
		if count > 0 && count%3 == 0 {
			result = append([]byte{','}, result...)
		}
		result = append([]byte{str[pos]}, result...)
		pos--
		count++
	}
	return sign + string(result)
}

func humanSize(size int) string {
	if size < 1024 {
		return fmt.Sprintf("%dB", size)
	}
	sizef := float64(size)
	for _, unit := range []string{"K", "M"} {
		sizef /= 1024
		if sizef < 1024 {
			return fmt.Sprintf("%.1f%s", sizef, unit)
		}
	}
	return fmt.Sprintf("%.1fM", sizef)
}
