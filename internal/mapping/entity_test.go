package mapping

import (
	"errors"
	"strings"
	"testing"
)

func newTestEntity(t *testing.T, fields ...FieldSpec) (*PersistentEntity, *Schema) {
	t.Helper()
	s := &Schema{Type: "sample", Fields: fields}
	return NewPersistentEntity(*s), s
}

func mustProperty(t *testing.T, e *PersistentEntity, s *Schema, name string) *PersistentProperty {
	t.Helper()
	d, err := NewPropertyDescriptor(s, name)
	if err != nil {
		t.Fatalf("descriptor %s: %v", name, err)
	}
	p, err := NewPersistentProperty(d, e)
	if err != nil {
		t.Fatalf("property %s: %v", name, err)
	}
	return p
}

func TestAddPersistentProperty_MultipleVersionProperties(t *testing.T) {
	e, s := newTestEntity(t,
		FieldSpec{Name: "version1", Type: KindInt64, Role: RoleVersion},
		FieldSpec{Name: "version2", Type: KindInt64, Role: RoleVersion},
	)
	p1 := mustProperty(t, e, s, "version1")
	p2 := mustProperty(t, e, s, "version2")

	if err := e.AddPersistentProperty(p1); err != nil {
		t.Fatalf("first version property: %v", err)
	}
	err := e.AddPersistentProperty(p2)
	if !errors.Is(err, ErrMapping) {
		t.Fatalf("expected ErrMapping, got %v", err)
	}
	for _, want := range []string{"version1", "version2"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}

	vp, ok := e.VersionProperty()
	if !ok || vp != p1 {
		t.Errorf("version property = %v, want version1", vp)
	}
	if got := len(e.Properties()); got != 1 {
		t.Errorf("len(properties) = %d, want 1 (rejected property must not be appended)", got)
	}
	if _, ok := e.GetPersistentProperty("version2"); ok {
		t.Error("rejected property is visible by name")
	}
}

func TestAddPersistentProperty_MultipleScoreProperties(t *testing.T) {
	e, s := newTestEntity(t,
		FieldSpec{Name: "first", Type: KindFloat32, Role: RoleScore},
		FieldSpec{Name: "second", Type: KindFloat32, Role: RoleScore},
	)
	if err := e.AddPersistentProperty(mustProperty(t, e, s, "first")); err != nil {
		t.Fatalf("first score property: %v", err)
	}

	err := e.AddPersistentProperty(mustProperty(t, e, s, "second"))
	var me *MappingError
	if !errors.As(err, &me) {
		t.Fatalf("expected *MappingError, got %T (%v)", err, err)
	}
	if me.Property != "second" {
		t.Errorf("rejected property = %q, want second", me.Property)
	}
	sp, _ := e.ScoreProperty()
	if sp.Name() != "first" {
		t.Errorf("score property = %q, want first", sp.Name())
	}
}

func TestAddPersistentProperty_ScoreMessageOrderWords(t *testing.T) {
	e, s := newTestEntity(t,
		FieldSpec{Name: "relevance", Type: KindFloat64, Role: RoleScore},
		FieldSpec{Name: "rank", Type: KindFloat64, Role: RoleScore},
	)
	if err := e.AddPersistentProperty(mustProperty(t, e, s, "relevance")); err != nil {
		t.Fatal(err)
	}
	err := e.AddPersistentProperty(mustProperty(t, e, s, "rank"))
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"first", "second", "relevance", "rank"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not contain %q", err, want)
		}
	}
}

func TestAddPersistentProperty_DuplicateID(t *testing.T) {
	e, s := newTestEntity(t,
		FieldSpec{Name: "id", Type: KindString, Role: RoleID},
		FieldSpec{Name: "key", Type: KindString, Role: RoleID},
	)
	if err := e.AddPersistentProperty(mustProperty(t, e, s, "id")); err != nil {
		t.Fatal(err)
	}
	if err := e.AddPersistentProperty(mustProperty(t, e, s, "key")); !errors.Is(err, ErrMapping) {
		t.Fatalf("expected ErrMapping, got %v", err)
	}
	idp, _ := e.IDProperty()
	if idp.Name() != "id" {
		t.Errorf("id property = %q, want id", idp.Name())
	}
}

func TestAddPersistentProperty_DuplicateFieldName(t *testing.T) {
	e, s := newTestEntity(t,
		FieldSpec{Name: "title", Type: KindString},
		FieldSpec{Name: "headline", Type: KindString, FieldName: "title"},
	)
	if err := e.AddPersistentProperty(mustProperty(t, e, s, "title")); err != nil {
		t.Fatal(err)
	}
	if err := e.AddPersistentProperty(mustProperty(t, e, s, "headline")); !errors.Is(err, ErrMapping) {
		t.Fatalf("expected ErrMapping, got %v", err)
	}
}

func TestAddPersistentProperty_ForeignProperty(t *testing.T) {
	e1, s := newTestEntity(t, FieldSpec{Name: "title", Type: KindString})
	e2 := NewPersistentEntity(*s)
	p := mustProperty(t, e1, s, "title")

	if err := e2.AddPersistentProperty(p); !errors.Is(err, ErrMapping) {
		t.Fatalf("expected ErrMapping, got %v", err)
	}
}

func TestAddPersistentProperty_Sealed(t *testing.T) {
	e, s := newTestEntity(t, FieldSpec{Name: "title", Type: KindString})
	e.seal()
	if err := e.AddPersistentProperty(mustProperty(t, e, s, "title")); !errors.Is(err, ErrMapping) {
		t.Fatalf("expected ErrMapping, got %v", err)
	}
	if !e.Sealed() {
		t.Error("entity should report sealed")
	}
}

func TestGetPersistentPropertyWithFieldName(t *testing.T) {
	e, s := newTestEntity(t,
		FieldSpec{Name: "id", Type: KindString, Role: RoleID},
		FieldSpec{Name: "renamedField", Type: KindString, FieldName: "renamed-field"},
		FieldSpec{Name: "plain", Type: KindString},
	)
	for _, f := range s.Fields {
		if err := e.AddPersistentProperty(mustProperty(t, e, s, f.Name)); err != nil {
			t.Fatal(err)
		}
	}

	p, ok := e.GetPersistentPropertyWithFieldName("renamed-field")
	if !ok {
		t.Fatal("property not found by field name")
	}
	if p.Name() != "renamedField" {
		t.Errorf("name = %q, want renamedField", p.Name())
	}
	if p.FieldName() != "renamed-field" {
		t.Errorf("field name = %q, want renamed-field", p.FieldName())
	}

	if _, ok := e.GetPersistentPropertyWithFieldName("renamedField"); ok {
		t.Error("declared name must not match when an override exists")
	}
	if p, ok := e.GetPersistentPropertyWithFieldName("plain"); !ok || p.Name() != "plain" {
		t.Error("property without override should match by its declared name")
	}
}

func TestResolveFieldName(t *testing.T) {
	e, s := newTestEntity(t,
		FieldSpec{Name: "renamedField", Type: KindString, FieldName: "renamed-field"},
		FieldSpec{Name: "swap", Type: KindString, FieldName: "renamedField"},
	)
	for _, f := range s.Fields {
		if err := e.AddPersistentProperty(mustProperty(t, e, s, f.Name)); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		ref  string
		want string
	}{
		{"renamed-field", "renamedField"},
		{"renamedField", "swap"}, // field names win over declared names
		{"swap", "swap"},
	}
	for _, tc := range tests {
		p, err := e.ResolveFieldName(tc.ref)
		if err != nil {
			t.Fatalf("ResolveFieldName(%q): %v", tc.ref, err)
		}
		if p.Name() != tc.want {
			t.Errorf("ResolveFieldName(%q) = %q, want %q", tc.ref, p.Name(), tc.want)
		}
	}

	if _, err := e.ResolveFieldName("missing"); !errors.Is(err, ErrPropertyNotFound) {
		t.Errorf("expected ErrPropertyNotFound, got %v", err)
	}
}

func TestEntity_EmptyBackReferences(t *testing.T) {
	e, _ := newTestEntity(t)
	if _, ok := e.IDProperty(); ok {
		t.Error("unexpected id property")
	}
	if _, ok := e.VersionProperty(); ok {
		t.Error("unexpected version property")
	}
	if _, ok := e.ScoreProperty(); ok {
		t.Error("unexpected score property")
	}
	if e.IndexName() != "sample" {
		t.Errorf("index = %q, want sample", e.IndexName())
	}
}

func TestPersistentEntity_SchemaIsACopy(t *testing.T) {
	replicas := 1
	e := NewPersistentEntity(Schema{
		Type:     "sample",
		Index:    "samples",
		Replicas: &replicas,
		Fields:   []FieldSpec{{Name: "title", Type: KindString}},
	})

	s := e.Schema()
	s.Index = "other"
	*s.Replicas = 5
	s.Fields[0].FieldName = "headline"
	no := false
	s.CreateIndex = &no

	if e.IndexName() != "samples" {
		t.Errorf("index = %q, want samples", e.IndexName())
	}
	if !e.ShouldCreateIndex() {
		t.Error("create index flag changed through the returned schema")
	}
	again := e.Schema()
	if *again.Replicas != 1 || again.Fields[0].FieldName != "" {
		t.Errorf("schema = replicas %d field %q", *again.Replicas, again.Fields[0].FieldName)
	}

	replicas = 3
	if *e.Schema().Replicas != 1 {
		t.Error("entity shares replicas with the caller's schema")
	}
}
