package model

import "testing"

func TestQuestionCount(t *testing.T) {
	cases := map[int]int{
		15: 3,
		30: 6,
		45: 9,
		60: 12,
		75: 15,
		90: 18,
	}
	for duration, want := range cases {
		if got := QuestionCount(duration); got != want {
			t.Errorf("QuestionCount(%d) = %d, want %d", duration, got, want)
		}
	}
}

func TestQuestionCountRoundsUp(t *testing.T) {
	if got := QuestionCount(7); got != 2 {
		t.Errorf("QuestionCount(7) = %d, want 2", got)
	}
	if got := QuestionCount(5); got != 1 {
		t.Errorf("QuestionCount(5) = %d, want 1", got)
	}
}

func TestQuestionCountFloorsAtOne(t *testing.T) {
	for _, d := range []int{0, -10, 3} {
		if got := QuestionCount(d); got < 1 {
			t.Errorf("QuestionCount(%d) = %d, want >= 1", d, got)
		}
	}
}

func TestValidDuration(t *testing.T) {
	for _, d := range ValidDurations {
		if !ValidDuration(d) {
			t.Errorf("ValidDuration(%d) = false", d)
		}
	}
	for _, d := range []int{0, 10, 20, 120} {
		if ValidDuration(d) {
			t.Errorf("ValidDuration(%d) = true", d)
		}
	}
}

func TestValidInterviewTypeAndDifficulty(t *testing.T) {
	for _, typ := range []string{TypeTechnical, TypeBehavioral, TypeMixed, TypeHR} {
		if !ValidInterviewType(typ) {
			t.Errorf("ValidInterviewType(%s) = false", typ)
		}
	}
	if ValidInterviewType("casual") {
		t.Error(`ValidInterviewType("casual") = true`)
	}

	for _, d := range []string{DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced} {
		if !ValidDifficulty(d) {
			t.Errorf("ValidDifficulty(%s) = false", d)
		}
	}
	if ValidDifficulty("expert") {
		t.Error(`ValidDifficulty("expert") = true`)
	}
}
