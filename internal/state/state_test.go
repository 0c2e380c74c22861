package state

import (
	"errors"
	"testing"
)

func TestStoreAndLookup(t *testing.T) {
	s := New()

	reply := BestReply{UCI: "e7e5", SAN: "e5", Centipawns: 20}
	if err := s.Store("fen|e2e4", reply); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	got, ok := s.Lookup("fen|e2e4")
	if !ok {
		t.Fatal("Lookup() ok = false, want true")
	}
	if got != reply {
		t.Errorf("Lookup() = %+v, want %+v", got, reply)
	}

	if _, ok := s.Lookup("fen|d2d4"); ok {
		t.Error("Lookup() of absent key ok = true, want false")
	}
}

func TestStoreIdempotent(t *testing.T) {
	s := New()

	reply := BestReply{UCI: "e7e5", SAN: "e5", Centipawns: 20}
	if err := s.Store("fen|e2e4", reply); err != nil {
		t.Fatalf("first Store() error = %v", err)
	}
	if err := s.Store("fen|e2e4", reply); err != nil {
		t.Errorf("identical re-Store() error = %v, want nil", err)
	}
	if got := s.ReplyCount(); got != 1 {
		t.Errorf("ReplyCount() = %d, want 1", got)
	}
}

func TestStoreDivergent(t *testing.T) {
	s := New()

	original := BestReply{UCI: "e7e5", SAN: "e5", Centipawns: 20}
	if err := s.Store("fen|e2e4", original); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	divergent := BestReply{UCI: "c7c5", SAN: "c5", Centipawns: 15}
	if err := s.Store("fen|e2e4", divergent); !errors.Is(err, ErrDivergentReply) {
		t.Fatalf("divergent Store() error = %v, want ErrDivergentReply", err)
	}

	// The original value survives.
	got, ok := s.Lookup("fen|e2e4")
	if !ok || got != original {
		t.Errorf("Lookup() after divergent store = %+v, want %+v", got, original)
	}
}

func TestMarkExplored(t *testing.T) {
	s := New()

	if s.IsExplored("fen1") {
		t.Error("IsExplored() on fresh state = true, want false")
	}

	s.MarkExplored("fen1")
	if !s.IsExplored("fen1") {
		t.Error("IsExplored() after mark = false, want true")
	}

	// Marking twice is harmless.
	s.MarkExplored("fen1")
	if got := s.ExploredCount(); got != 1 {
		t.Errorf("ExploredCount() = %d, want 1", got)
	}
}

func TestAppendLineAssignsSequentialIDs(t *testing.T) {
	s := New()

	first := s.AppendLine("1. e4 e5", 20, 1000, 2)
	second := s.AppendLine("1. d4 d5", 15, 800, 2)

	if first.ID != 1 || second.ID != 2 {
		t.Errorf("ids = %d, %d, want 1, 2", first.ID, second.ID)
	}
	if got := s.LastID(); got != 2 {
		t.Errorf("LastID() = %d, want 2", got)
	}

	lines := s.Lines()
	if len(lines) != 2 {
		t.Fatalf("Lines() returned %d records, want 2", len(lines))
	}
	if lines[0] != first || lines[1] != second {
		t.Errorf("Lines() = %+v, want [%+v %+v]", lines, first, second)
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	s := New()
	if err := s.Store("fen|e2e4", BestReply{UCI: "e7e5", SAN: "e5", Centipawns: 20}); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	s.MarkExplored("fenB")
	s.MarkExplored("fenA")
	s.AppendLine("1. e4 e5", 20, 1000, 2)

	doc := s.Document()

	// Explored positions serialize sorted for stable checkpoints.
	if len(doc.Explored) != 2 || doc.Explored[0] != "fenA" || doc.Explored[1] != "fenB" {
		t.Errorf("Explored = %v, want [fenA fenB]", doc.Explored)
	}

	restored := FromDocument(doc)
	if got := restored.ReplyCount(); got != 1 {
		t.Errorf("restored ReplyCount() = %d, want 1", got)
	}
	if !restored.IsExplored("fenA") || !restored.IsExplored("fenB") {
		t.Error("restored state lost explored marks")
	}
	if got := restored.LastID(); got != 1 {
		t.Errorf("restored LastID() = %d, want 1", got)
	}

	// IDs keep counting from where the restored run stopped.
	next := restored.AppendLine("1. d4 d5", 15, 800, 2)
	if next.ID != 2 {
		t.Errorf("AppendLine() after restore id = %d, want 2", next.ID)
	}
}

func TestFromDocumentNil(t *testing.T) {
	s := FromDocument(nil)
	if got := s.ReplyCount(); got != 0 {
		t.Errorf("ReplyCount() = %d, want 0", got)
	}
	rec := s.AppendLine("1. e4 e5", 20, 1000, 2)
	if rec.ID != 1 {
		t.Errorf("AppendLine() id = %d, want 1", rec.ID)
	}
}
