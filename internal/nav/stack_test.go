package nav

import (
	"context"
	"errors"
	"testing"
)

type recordingDeleter struct {
	deleted []Handle
	fail    map[int]error
}

func (d *recordingDeleter) Delete(_ context.Context, h Handle) error {
	d.deleted = append(d.deleted, h)
	if err, ok := d.fail[h.MessageID]; ok {
		return err
	}
	return nil
}

func TestPopDeletesExactlyCurrentLevel(t *testing.T) {
	var s Stack
	s.Push()
	s.Record(Handle{ChatID: 1, MessageID: 10})
	s.Record(Handle{ChatID: 1, MessageID: 11})
	s.Push()
	s.Record(Handle{ChatID: 1, MessageID: 20})

	del := &recordingDeleter{}
	s.Pop(context.Background(), del)

	if s.Depth() != 1 {
		t.Fatalf("depth = %d, want 1", s.Depth())
	}
	if len(del.deleted) != 1 || del.deleted[0].MessageID != 20 {
		t.Fatalf("deleted = %v, want only message 20", del.deleted)
	}

	// The level beneath is intact.
	cur := s.Current()
	if len(cur) != 2 || cur[0].MessageID != 10 || cur[1].MessageID != 11 {
		t.Fatalf("current = %v", cur)
	}
}

func TestPopSwallowsDeleteFailures(t *testing.T) {
	var s Stack
	s.Push()
	s.Record(Handle{ChatID: 1, MessageID: 1})
	s.Record(Handle{ChatID: 1, MessageID: 2})
	s.Record(Handle{ChatID: 1, MessageID: 3})

	del := &recordingDeleter{fail: map[int]error{2: errors.New("already deleted")}}
	s.Pop(context.Background(), del)

	if s.Depth() != 0 {
		t.Fatalf("depth = %d, want 0", s.Depth())
	}
	if len(del.deleted) != 3 {
		t.Fatalf("all handles must be attempted, got %v", del.deleted)
	}
}

func TestDrainEmptiesStack(t *testing.T) {
	var s Stack
	for i := 0; i < 3; i++ {
		s.Push()
		s.Record(Handle{ChatID: 9, MessageID: i})
	}
	del := &recordingDeleter{}
	s.Drain(context.Background(), del)

	if s.Depth() != 0 {
		t.Fatalf("depth = %d, want 0", s.Depth())
	}
	if len(del.deleted) != 3 {
		t.Fatalf("deleted %d handles, want 3", len(del.deleted))
	}
}

func TestRecordWithoutLevelIsDropped(t *testing.T) {
	var s Stack
	s.Record(Handle{ChatID: 1, MessageID: 99})
	if s.Depth() != 0 {
		t.Fatalf("depth = %d, want 0", s.Depth())
	}

	del := &recordingDeleter{}
	s.Pop(context.Background(), del)
	if len(del.deleted) != 0 {
		t.Fatalf("nothing should be deleted, got %v", del.deleted)
	}
}
