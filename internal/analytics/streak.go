package analytics

// LongestRun returns the longest run of consecutive true values in a
// chronologically ordered flag sequence. Any false resets the run.
func LongestRun(flags []bool) int {
	longest, current := 0, 0
	for _, flag := range flags {
		if flag {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 0
		}
	}
	return longest
}
