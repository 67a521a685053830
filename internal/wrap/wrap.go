// Package wrap implements the text wrap engine of spec.md §4.4: a greedy
// word wrap with a long-word fallback rule, returning byte-offset split
// indices rather than the wrapped lines themselves so callers can slice
// the original string without copying.
package wrap

// Split computes the word-wrap split indices for text at column width w.
// Adjacent pairs of the returned slice delimit one wrapped line; a final
// split at len(text) is appended when the last computed split does not
// already land there.
//
// Characters are processed as single display columns (the algorithm
// assumes single-byte, single-column text, matching the tree/session
// columns it is used for); multi-byte runes are not given special
// treatment.
func Split(text string, w int) []int {
	if w == 0 {
		return []int{0, 0}
	}
	if text == "" {
		return nil
	}

	n := len(text)
	var splits []int
	i, beg, altBeg := 0, 0, 0
	inWord := false
	longWord := false
	d := 0

	for j := 0; j <= n; j++ {
		ch := byte(' ')
		if j < n {
			ch = text[j]
		}
		pos := j
		diff := (j+d)/w - (i+d)/w

		if ch == ' ' {
			if inWord {
				if j-i == w && !longWord {
					splits = append(splits, i)
					d += w - (i+d)%w
				}
				if (j+d)%w == 0 {
					splits = append(splits, pos)
					i = j
					beg = pos
				} else if diff > 0 {
					if !longWord {
						splits = append(splits, beg)
						d += w - (i+d)%w
					} else {
						splits = append(splits, altBeg)
					}
				}
				inWord = false
				longWord = false
			} else if (j+d)%w == 0 {
				splits = append(splits, pos)
				i = j
				beg = pos
			}
		} else {
			if !inWord {
				if (j+d)%w == 0 {
					splits = append(splits, pos)
				}
				i = j
				beg = pos
				inWord = true
			} else {
				if (j+d)%w == 0 {
					altBeg = pos
				}
				if j-i == w {
					splits = append(splits, altBeg)
					i = j
					beg = pos
					altBeg = pos
					longWord = true
				}
			}
		}
	}

	if len(splits) == 0 || splits[len(splits)-1] != n {
		splits = append(splits, n)
	}
	return splits
}

// Height returns the number of wrapped lines text occupies at width w —
// the row-height contribution a single column makes to its node's row
// height (spec.md §4.3).
func Height(text string, w int) int {
	splits := Split(text, w)
	if len(splits) == 0 {
		return 0
	}
	return len(splits) - 1
}
