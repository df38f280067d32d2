package ingest

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDecodeAnswer_Valid(t *testing.T) {
	raw := []byte(`{"event_id":"e1","learner_id":"ana","item_id":"q1","topic":"Algebra","correct":true,"score":0.75,"difficulty":"hard","at":"2026-03-10T09:00:00Z"}`)
	a, err := DecodeAnswer(raw)
	if err != nil {
		t.Fatalf("DecodeAnswer: %v", err)
	}
	if a.ItemID != "q1" || !a.Correct || a.Score != 0.75 || a.Difficulty != "hard" {
		t.Errorf("decoded = %+v", a)
	}
	want := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	if !a.At.Equal(want) {
		t.Errorf("At = %v, want %v", a.At, want)
	}
}

func TestDecodeAnswer_QuizID(t *testing.T) {
	a, err := DecodeAnswer([]byte(`{"item_id":"q1","quiz_id":"quiz-7","correct":false}`))
	if err != nil {
		t.Fatalf("DecodeAnswer: %v", err)
	}
	if a.QuizID != "quiz-7" {
		t.Errorf("QuizID = %q, want quiz-7", a.QuizID)
	}

	if _, err := DecodeAnswer([]byte(`{"item_id":"q1","quiz_id":7,"correct":false}`)); err == nil {
		t.Error("numeric quiz_id should fail validation")
	}
}

func TestDecodeAnswer_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{"item_id":`},
		{"missing item", `{"correct":true}`},
		{"missing correct", `{"item_id":"q1"}`},
		{"score above one", `{"item_id":"q1","correct":true,"score":1.2}`},
		{"negative score", `{"item_id":"q1","correct":false,"score":-0.1}`},
		{"correct as string", `{"item_id":"q1","correct":"yes"}`},
		{"unknown field", `{"item_id":"q1","correct":true,"hints":2}`},
		{"empty item", `{"item_id":"","correct":true}`},
		{"bad timestamp", `{"item_id":"q1","correct":true,"at":"yesterday"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeAnswer([]byte(tt.raw))
			if err == nil {
				t.Fatal("expected error")
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationError, got %T: %v", err, err)
			}
			if ve.Index != -1 {
				t.Errorf("Index = %d, want -1", ve.Index)
			}
		})
	}
}

func TestDecodeAnswer_UnknownDifficultyPassesValidation(t *testing.T) {
	a, err := DecodeAnswer([]byte(`{"item_id":"q1","correct":true,"difficulty":"legendary"}`))
	if err != nil {
		t.Fatalf("DecodeAnswer: %v", err)
	}
	if a.Difficulty != "legendary" {
		t.Errorf("Difficulty = %q", a.Difficulty)
	}
}

func TestDecodeBatch(t *testing.T) {
	in := `[
		{"item_id":"q1","topic":"Algebra","correct":true},
		{"item_id":"q2","topic":"Algebra","correct":false,"score":0.5}
	]`
	answers, err := DecodeBatch(strings.NewReader(in))
	if err != nil {
		t.Fatalf("DecodeBatch: %v", err)
	}
	if len(answers) != 2 {
		t.Fatalf("len = %d, want 2", len(answers))
	}
	if answers[1].ItemID != "q2" || answers[1].Score != 0.5 {
		t.Errorf("answers[1] = %+v", answers[1])
	}
}

func TestDecodeBatch_SingleObject(t *testing.T) {
	answers, err := DecodeBatch(strings.NewReader(`{"item_id":"q1","correct":true}`))
	if err != nil {
		t.Fatalf("DecodeBatch: %v", err)
	}
	if len(answers) != 1 {
		t.Fatalf("len = %d, want 1", len(answers))
	}
}

func TestDecodeBatch_Empty(t *testing.T) {
	answers, err := DecodeBatch(strings.NewReader("  \n"))
	if err != nil {
		t.Fatalf("DecodeBatch: %v", err)
	}
	if len(answers) != 0 {
		t.Errorf("len = %d, want 0", len(answers))
	}
}

func TestDecodeBatch_ReportsIndex(t *testing.T) {
	in := `[{"item_id":"q1","correct":true},{"item_id":"q2"}]`
	_, err := DecodeBatch(strings.NewReader(in))
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if ve.Index != 1 {
		t.Errorf("Index = %d, want 1", ve.Index)
	}
	if !strings.Contains(err.Error(), "index 1") {
		t.Errorf("error %q does not name the index", err)
	}
}

func TestDecodeBatch_NotAnArray(t *testing.T) {
	_, err := DecodeBatch(strings.NewReader(`"answers"`))
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
}
