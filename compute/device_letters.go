package compute

// MaxLetterSequenceLength bounds the synthesized letter sequences: a..z
// then aa..zz, 702 device slots in total.
const MaxLetterSequenceLength = 2

const letterAlphabet = "abcdefghijklmnopqrstuvwxyz"

// LetterSequenceLess orders letter sequences the way device slots are
// handed out: shorter first, then lexicographically (z < aa < ab < ba).
func LetterSequenceLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

// letterSequences calls fn for every sequence of exactly length letters
// in ascending order until fn returns false.
func letterSequences(length int, fn func(string) bool) bool {
	if length <= 0 {
		return true
	}
	idx := make([]int, length)
	buf := make([]byte, length)
	for {
		for i, n := range idx {
			buf[i] = letterAlphabet[n]
		}
		if !fn(string(buf)) {
			return false
		}
		pos := length - 1
		for pos >= 0 {
			idx[pos]++
			if idx[pos] < len(letterAlphabet) {
				break
			}
			idx[pos] = 0
			pos--
		}
		if pos < 0 {
			return true
		}
	}
}

// UnusedLetters returns the smallest letter sequence, up to
// MaxLetterSequenceLength letters long, which is not in used. Entries of
// used that can never be synthesized are simply never hit.
func UnusedLetters(used map[string]struct{}) (string, error) {
	return unusedLetters(used, MaxLetterSequenceLength)
}

func unusedLetters(used map[string]struct{}, maxLength int) (string, error) {
	found := ""
	for length := 1; length <= maxLength && found == ""; length++ {
		letterSequences(length, func(candidate string) bool {
			if _, taken := used[candidate]; taken {
				return true
			}
			found = candidate
			return false
		})
	}
	if found == "" {
		return "", ErrNoAvailableDevice
	}
	return found, nil
}
