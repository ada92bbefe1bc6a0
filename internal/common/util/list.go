package util

// StringListToSet returns a set holding every element of list.
func StringListToSet(list []string) map[string]bool {
	set := make(map[string]bool, len(list))
	for _, item := range list {
		set[item] = true
	}
	return set
}

// ContainsAny reports whether any element of list is in set.
func ContainsAny(set map[string]bool, list []string) bool {
	for _, item := range list {
		if set[item] {
			return true
		}
	}
	return false
}
