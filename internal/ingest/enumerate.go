package ingest

import (
	"os"
	"path/filepath"
	"sort"
)

// ExpandPaths turns CLI path arguments into a flat, ordered list of
// FileSource values, expanding any directory argument into the files it
// contains (SPEC_FULL.md §5's supplemented directory enumerator,
// standing in behind spec.md §6's ingester flags {recursive,
// basic-enumeration}).
//
// recursive descends into subdirectories (-s); basic restricts a
// directory argument to its immediate entries with no recursion and no
// further expansion of symlinked directories (-b). A plain file
// argument is passed through unchanged regardless of either flag.
func ExpandPaths(args []string, recursive, basic bool) ([]Source, error) {
	var out []Source
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, FileSource{Path: arg})
			continue
		}

		files, err := expandDir(arg, recursive && !basic)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			out = append(out, FileSource{Path: f})
		}
	}
	return out, nil
}

func expandDir(dir string, recursive bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var out []string
	for _, e := range entries {
		full := filepath.Join(dir, e.Name())
		if e.IsDir() {
			if !recursive {
				continue
			}
			sub, err := expandDir(full, recursive)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
			continue
		}
		out = append(out, full)
	}
	return out, nil
}
