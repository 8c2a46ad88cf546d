package persist

import "strconv"

const keySeparator = '.'

// relativeKey joins a parent key with a suffix. An empty suffix returns the
// parent unchanged. A suffix starting with the separator is appended raw,
// letting delegates address namespaced sub-paths of their own choosing;
// otherwise the suffix is joined with a single separator. An empty parent
// yields the suffix alone in either case.
func relativeKey(parent, ext string) string {
	if ext == "" {
		return parent
	}
	if ext[0] == keySeparator {
		if parent == "" {
			return ext[1:]
		}
		return parent + ext
	}
	if parent == "" {
		return ext
	}
	return parent + string(keySeparator) + ext
}

func indexedKey(parent string, index int) string {
	return relativeKey(parent, strconv.Itoa(index))
}
