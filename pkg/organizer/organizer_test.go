package organizer

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type record struct {
	calls []string
	user  string
}

type namedStep struct {
	name string
	err  error
	run  func(r *record)
}

func (s *namedStep) Name() string { return s.name }

func (s *namedStep) Call(_ context.Context, r *record) error {
	r.calls = append(r.calls, s.name)
	if s.run != nil {
		s.run(r)
	}
	return s.err
}

func step(name string) *namedStep { return &namedStep{name: name} }

func names(descs []Descriptor[*record]) []string {
	var out []string
	for _, d := range descs {
		out = append(out, d.Step.(*namedStep).name)
	}
	return out
}

func TestOrganizedEmptyByDefault(t *testing.T) {
	def := Define[*record]("empty")

	got := def.Organized()
	if got == nil || len(got) != 0 {
		t.Fatalf("Organized() = %#v, want empty non-nil slice", got)
	}

	r := &record{}
	if err := def.New(nil).Call(context.Background(), r); err != nil {
		t.Fatalf("Call on empty definition returned %v", err)
	}
	if len(r.calls) != 0 {
		t.Errorf("expected no steps to run, got %v", r.calls)
	}
}

func TestOrganizePreservesOrder(t *testing.T) {
	a, b, c := step("a"), step("b"), step("c")
	def := Define[*record]("ordered").Organize(a, b, c)

	if got := names(def.Organized()); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("Organized() = %v, want [a b c]", got)
	}

	r := &record{}
	if err := def.New(nil).Call(context.Background(), r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(r.calls, []string{"a", "b", "c"}) {
		t.Errorf("calls = %v, want [a b c]", r.calls)
	}
}

func TestOrganizeAccumulates(t *testing.T) {
	a, b := step("a"), step("b")
	def := Define[*record]("acc")
	def.Organize(a)
	def.Organize(b)

	if got := names(def.Organized()); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Organized() = %v, want [a b]", got)
	}
}

func TestOrganizeFlattensSteps(t *testing.T) {
	a, b := step("a"), step("b")
	flat := Define[*record]("flat").Organize(a, b)
	list := Define[*record]("list").Organize(Steps[*record]{a, b})

	if !reflect.DeepEqual(flat.Organized(), list.Organized()) {
		t.Errorf("Organize(Steps{a, b}) = %v, want %v", names(list.Organized()), names(flat.Organized()))
	}
}

func TestOrganizeKeepsDescriptors(t *testing.T) {
	a, b := step("a"), step("b")
	def := Define[*record]("desc").Organize(If[*record](a, "user_missing"), Steps[*record]{If[*record](b, "user_present")})

	got := def.Organized()
	if len(got) != 2 {
		t.Fatalf("expected 2 descriptors, got %d", len(got))
	}
	if got[0].If != "user_missing" || got[1].If != "user_present" {
		t.Errorf("guards = %q, %q", got[0].If, got[1].If)
	}
}

func TestOrganizedReturnsCopy(t *testing.T) {
	def := Define[*record]("copy").Organize(step("a"))
	got := def.Organized()
	got[0].If = "mutated"

	if def.Organized()[0].If != "" {
		t.Error("mutating Organized() result changed the definition")
	}
}

func TestCallSkipsFalseGuards(t *testing.T) {
	tests := []struct {
		name        string
		userMissing bool
		want        []string
	}{
		{name: "guard false", userMissing: false, want: []string{"b", "d"}},
		{name: "guard true", userMissing: true, want: []string{"b", "c", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := Define[*record]("guarded").Organize(
				step("b"),
				If[*record](step("c"), "user_missing"),
				If[*record](step("d"), "user_present"),
			)
			inst := def.New(Guards[*record]{
				"user_missing": func(*record) (bool, error) { return tt.userMissing, nil },
				"user_present": func(*record) (bool, error) { return true, nil },
			})

			r := &record{}
			if err := inst.Call(context.Background(), r); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(r.calls, tt.want) {
				t.Errorf("calls = %v, want %v", r.calls, tt.want)
			}
		})
	}
}

func TestCallStopsAtFirstFailure(t *testing.T) {
	errB := errors.New("b failed")
	a := step("a")
	b := &namedStep{name: "b", err: errB}
	c := &namedStep{name: "c", err: errors.New("never reached")}

	r := &record{}
	err := Define[*record]("failfast").Organize(a, b, c).New(nil).Call(context.Background(), r)

	if err != errB {
		t.Fatalf("err = %v, want the unwrapped step error %v", err, errB)
	}
	if !reflect.DeepEqual(r.calls, []string{"a", "b"}) {
		t.Errorf("calls = %v, want [a b]", r.calls)
	}
}

func TestCallMissingGuardFails(t *testing.T) {
	r := &record{}
	err := Define[*record]("missing").
		Organize(step("a"), If[*record](step("b"), "nope"), step("c")).
		New(Guards[*record]{}).
		Call(context.Background(), r)

	if !errors.Is(err, ErrGuardNotFound) {
		t.Fatalf("err = %v, want ErrGuardNotFound", err)
	}
	if !reflect.DeepEqual(r.calls, []string{"a"}) {
		t.Errorf("calls = %v, want [a]", r.calls)
	}
}

func TestCallGuardErrorPropagates(t *testing.T) {
	errGuard := errors.New("guard broke")
	r := &record{}
	err := Define[*record]("guarderr").
		Organize(If[*record](step("a"), "broken"), step("b")).
		New(Guards[*record]{"broken": func(*record) (bool, error) { return false, errGuard }}).
		Call(context.Background(), r)

	if err != errGuard {
		t.Fatalf("err = %v, want %v", err, errGuard)
	}
	if len(r.calls) != 0 {
		t.Errorf("calls = %v, want none", r.calls)
	}
}

func TestGuardSeesEarlierMutations(t *testing.T) {
	fetch := &namedStep{name: "fetch", run: func(r *record) { r.user = "ada" }}
	var seenByStep string
	validate := StepFunc[*record](func(_ context.Context, r *record) error {
		seenByStep = r.user
		r.calls = append(r.calls, "validate")
		return nil
	})

	var seenByGuard string
	inst := Define[*record]("shared").
		Organize(fetch, If[*record](validate, "user_present")).
		New(Guards[*record]{"user_present": func(r *record) (bool, error) {
			seenByGuard = r.user
			return r.user != "", nil
		}})

	r := &record{}
	if err := inst.Call(context.Background(), r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seenByGuard != "ada" || seenByStep != "ada" {
		t.Errorf("guard saw %q, step saw %q, want ada for both", seenByGuard, seenByStep)
	}
	if !reflect.DeepEqual(r.calls, []string{"fetch", "validate"}) {
		t.Errorf("calls = %v", r.calls)
	}
}

func TestNestedOrganizers(t *testing.T) {
	inner := Define[*record]("inner").Organize(step("b"), step("c"))
	outer := Define[*record]("outer").Organize(step("a"), inner.New(nil), step("d"))

	r := &record{}
	if err := outer.Call(context.Background(), r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(r.calls, []string{"a", "b", "c", "d"}) {
		t.Errorf("calls = %v", r.calls)
	}
}

func TestScenarios(t *testing.T) {
	errA := errors.New("step a failed")

	tests := []struct {
		name    string
		def     func() *Definition[*record]
		guards  Guards[*record]
		want    []string
		wantErr error
	}{
		{
			name: "fetch validate save",
			def: func() *Definition[*record] {
				return Define[*record]("s1").Organize(
					&namedStep{name: "fetch", run: func(r *record) { r.user = "ada" }},
					If[*record](step("validate"), "user_present"),
					step("save"),
				)
			},
			guards: Guards[*record]{"user_present": func(r *record) (bool, error) { return r.user != "", nil }},
			want:   []string{"fetch", "validate", "save"},
		},
		{
			name: "notify skipped",
			def: func() *Definition[*record] {
				return Define[*record]("s2").Organize(
					&namedStep{name: "fetch", run: func(r *record) { r.user = "ada" }},
					If[*record](step("notify"), "user_missing"),
				)
			},
			guards: Guards[*record]{"user_missing": func(r *record) (bool, error) { return r.user == "", nil }},
			want:   []string{"fetch"},
		},
		{
			name: "first step fails",
			def: func() *Definition[*record] {
				return Define[*record]("s3").Organize(&namedStep{name: "a", err: errA}, step("b"))
			},
			want:    []string{"a"},
			wantErr: errA,
		},
		{
			name: "nothing declared",
			def:  func() *Definition[*record] { return Define[*record]("s4") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &record{}
			err := tt.def().New(tt.guards).Call(context.Background(), r)
			if err != tt.wantErr {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if !reflect.DeepEqual(r.calls, tt.want) {
				t.Errorf("calls = %v, want %v", r.calls, tt.want)
			}
		})
	}
}
