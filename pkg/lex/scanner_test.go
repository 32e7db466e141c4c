package lex

import "testing"

// A Sequence whose final element is an optional Many must still accept the
// input when that Many matches zero repetitions — the bug this guards
// against conflated "matched nothing" with "rejected the input" because both
// were once reported as 0.
func TestSequenceAcceptsTrailingEmptyMany(t *testing.T) {
	digit := Within('0', '9')
	alpha := Within('a', 'z')
	digitsThenAlpha := Sequence(digit, Many(alpha))

	n := digitsThenAlpha([]rune("7"))
	if n != 1 {
		t.Errorf("got %d, want 1 (a lone digit with no trailing letters)", n)
	}
}

// A sequence whose final element is mandatory (not an empty-accepting Many)
// must still reject when that element does not match.
func TestSequenceStillRejectsOnGenuineFailure(t *testing.T) {
	digit := Within('0', '9')
	letterA := Unit('a')
	s := Sequence(digit, letterA)

	if n := s([]rune("7b")); n != NoMatch {
		t.Errorf("got %d, want NoMatch (second element never matches 'b')", n)
	}
}

func TestManyNeverReportsNoMatch(t *testing.T) {
	alpha := Within('a', 'z')
	if n := Many(alpha)([]rune("123")); n != 0 {
		t.Errorf("got %d, want 0 (zero repetitions is a valid match)", n)
	}
}

func TestUntilUnescapedSkipsEscapedStop(t *testing.T) {
	body := UntilUnescaped('\\', '"')
	n := body([]rune(`a\"b"`))
	if n != 4 {
		t.Errorf("got %d, want 4 (consumes a\\\"b, stops before the unescaped quote)", n)
	}
}
