package compute

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func letterSet(letters ...string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, l := range letters {
		set[l] = struct{}{}
	}
	return set
}

func allSequences(maxLength int) []string {
	result := []string{}
	for length := 1; length <= maxLength; length++ {
		letterSequences(length, func(s string) bool {
			result = append(result, s)
			return true
		})
	}
	return result
}

func TestLetterSequencesOrder(t *testing.T) {
	all := allSequences(MaxLetterSequenceLength)
	require.Len(t, all, 26+26*26)
	assert.Equal(t, "a", all[0])
	assert.Equal(t, "z", all[25])
	assert.Equal(t, "aa", all[26])
	assert.Equal(t, "ab", all[27])
	assert.Equal(t, "ba", all[26+26])
	assert.Equal(t, "zz", all[len(all)-1])
	assert.True(t, sort.SliceIsSorted(all, func(i, j int) bool {
		return LetterSequenceLess(all[i], all[j])
	}))
}

func TestUnusedLetters(t *testing.T) {
	singles := allSequences(1)
	tests := []struct {
		name string
		used map[string]struct{}
		want string
	}{
		{name: "nothing used", used: letterSet(), want: "a"},
		{name: "first used", used: letterSet("a"), want: "b"},
		{name: "gap", used: letterSet("a", "c"), want: "b"},
		{name: "singles exhausted", used: letterSet(singles...), want: "aa"},
		{name: "singles and some doubles", used: letterSet(append(singles, "aa", "ab")...), want: "ac"},
		{name: "out of range ignored", used: letterSet("a", "aaa", "zzzz", ""), want: "b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UnusedLetters(tt.used)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnusedLettersIsMinimal(t *testing.T) {
	all := allSequences(MaxLetterSequenceLength)
	for _, k := range []int{0, 1, 13, 25, 26, 27, 100, 701} {
		got, err := UnusedLetters(letterSet(all[:k]...))
		require.NoError(t, err)
		assert.Equal(t, all[k], got, "with %d sequences used", k)
	}
}

func TestUnusedLettersExhausted(t *testing.T) {
	_, err := UnusedLetters(letterSet(allSequences(MaxLetterSequenceLength)...))
	assert.ErrorIs(t, err, ErrNoAvailableDevice)
}

func TestUnusedLettersLongerSequences(t *testing.T) {
	got, err := unusedLetters(letterSet(allSequences(2)...), 3)
	require.NoError(t, err)
	assert.Equal(t, "aaa", got)
}
