package store

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/matzehuels/gutterview/pkg/config"
	errs "github.com/matzehuels/gutterview/pkg/errors"
)

func TestNewRun(t *testing.T) {
	a, b := NewRun("g"), NewRun("g")
	if a.ID == b.ID {
		t.Error("run ids must be unique")
	}
	if err := ValidateID(a.ID); err != nil {
		t.Error(err)
	}
	if a.GraphHash != "g" || a.CreatedAt.IsZero() {
		t.Errorf("NewRun() = %+v", a)
	}
	if err := ValidateID("not-a-uuid"); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("ValidateID() error = %v", err)
	}
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	defer m.Close(ctx)

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	for i := range 4 {
		r := NewRun("g")
		r.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		r.Cost = uint32(10 - i)
		r.Order = []int{i, 0}
		if err := m.Save(ctx, r); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, r.ID)
	}

	got, err := m.Get(ctx, ids[1])
	if err != nil || got.Cost != 9 {
		t.Fatalf("Get() = %+v, %v", got, err)
	}
	got.Order[0] = 99
	again, _ := m.Get(ctx, ids[1])
	if again.Order[0] != 1 {
		t.Error("Get() must return a copy of the order")
	}

	if _, err := m.Get(ctx, "missing"); !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("missing run error = %v", err)
	}
	if err := m.Save(ctx, Run{}); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("empty id error = %v", err)
	}

	list, _ := m.List(ctx, 2)
	if len(list) != 2 || list[0].ID != ids[3] || list[1].ID != ids[2] {
		t.Errorf("List(2) returned %d runs, want newest first", len(list))
	}
	all, _ := m.List(ctx, 0)
	if len(all) != 4 {
		t.Errorf("List(0) = %d runs, want 4", len(all))
	}

	updated := again
	updated.Cost = 1
	_ = m.Save(ctx, updated)
	if r, _ := m.Get(ctx, ids[1]); r.Cost != 1 {
		t.Error("Save() should replace an existing run")
	}
}

func TestRunBSON(t *testing.T) {
	r := NewRun("abc")
	r.Cost = 4_000_000_000
	r.Order = []int{2, 0, 1}
	r.Elapsed = 1500 * time.Millisecond

	data, err := bson.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	var raw bson.M
	if err := bson.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if raw["_id"] != r.ID || raw["graph_hash"] != "abc" {
		t.Errorf("document = %v", raw)
	}

	var back Run
	if err := bson.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back.Cost != r.Cost || back.Elapsed != r.Elapsed || len(back.Order) != 3 {
		t.Errorf("decoded = %+v", back)
	}
}

func TestNewMongoInvalidURI(t *testing.T) {
	_, err := NewMongo(context.Background(), MongoOptions{URI: "not-a-mongo-uri", Database: "x"})
	if err == nil {
		t.Error("NewMongo() should reject a malformed uri")
	}
}

func TestOpenMemory(t *testing.T) {
	s, err := Open(context.Background(), config.Store{})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*Memory); !ok {
		t.Errorf("Open() = %T, want *Memory", s)
	}
}
