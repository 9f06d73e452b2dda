package engine

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestAnswerSet_InsertionOrderPreserved(t *testing.T) {
	s := NewAnswerSet()
	s.Set("q3", "c")
	s.Set("q1", "a")
	s.Set("q2", "b")

	want := []Answer{{"q3", "c"}, {"q1", "a"}, {"q2", "b"}}
	if !reflect.DeepEqual(s.All(), want) {
		t.Errorf("expected insertion order %v, got %v", want, s.All())
	}
}

func TestAnswerSet_ReAnswerKeepsPosition(t *testing.T) {
	s := NewAnswerSet()
	s.Set("q1", "a")
	s.Set("q2", "b")
	s.Set("q1", "changed")

	want := []Answer{{"q1", "changed"}, {"q2", "b"}}
	if !reflect.DeepEqual(s.All(), want) {
		t.Errorf("expected %v, got %v", want, s.All())
	}
}

func TestAnswerSet_Remove(t *testing.T) {
	s := NewAnswerSet(Answer{"q1", "a"}, Answer{"q2", "b"})
	s.Remove("q1")
	if _, ok := s.Get("q1"); ok {
		t.Error("expected q1 to be removed")
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 answer, got %d", s.Len())
	}
	s.Remove("not-there")
	if s.Len() != 1 {
		t.Error("removing an absent node should be a no-op")
	}
}

func TestAnswerSet_CloneIsIndependent(t *testing.T) {
	s := NewAnswerSet(Answer{"q1", "a"})
	c := s.Clone()
	c.Set("q2", "b")
	if s.Len() != 1 {
		t.Error("expected clone mutation not to affect original")
	}
}

func TestAnswerSet_JSONRoundTrip(t *testing.T) {
	s := NewAnswerSet(Answer{"q1", "Yes"}, Answer{"q2", "No"})
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}

	var decoded AnswerSet
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(s.All(), decoded.All()) {
		t.Errorf("expected %v after round trip, got %v", s.All(), decoded.All())
	}
}

func TestAnswerSet_EmptyMarshalsToArray(t *testing.T) {
	data, err := json.Marshal(NewAnswerSet())
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[]" {
		t.Errorf("expected [], got %s", data)
	}
}
