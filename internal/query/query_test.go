package query

import (
	"reflect"
	"testing"
)

func TestQuery_Builders(t *testing.T) {
	t.Parallel()

	base := New().Eq("status", "published")
	derived := base.ILike("title", "go")

	if len(base.Filters) != 1 {
		t.Fatalf("builder mutated its receiver: %+v", base.Filters)
	}
	if len(derived.Filters) != 2 || derived.Filters[1].Op != OpILike {
		t.Fatalf("unexpected filters: %+v", derived.Filters)
	}
	if v, ok := derived.Value("status"); !ok || v != "published" {
		t.Fatalf("Value(status) = %q, %v", v, ok)
	}
	if _, ok := derived.Value("title"); ok {
		t.Fatalf("Value must ignore non-equality filters")
	}
	if q := New().WithLimit(-3); q.Limit != 0 {
		t.Fatalf("negative limit should clamp to zero, got %d", q.Limit)
	}
}

func TestQuery_EncodeDecode(t *testing.T) {
	t.Parallel()

	t.Run("decode restores an encoded query", func(t *testing.T) {
		t.Parallel()
		q := New().Eq("organizer_id", "user-001").Neq("status", "draft").Order("start_date", true).WithLimit(5)

		params := q.Encode()
		if got := params["order"]; !reflect.DeepEqual(got, []string{"start_date.desc"}) {
			t.Fatalf("unexpected order param: %v", got)
		}
		if got := params["organizer_id"]; !reflect.DeepEqual(got, []string{"eq.user-001"}) {
			t.Fatalf("unexpected filter param: %v", got)
		}

		decoded, err := Decode(params, "organizer_id", "status", "start_date")
		if err != nil {
			t.Fatalf("Decode returned error: %v", err)
		}
		if decoded.OrderBy != "start_date" || !decoded.Descending || decoded.Limit != 5 {
			t.Fatalf("unexpected decoded query: %+v", decoded)
		}
		if len(decoded.Filters) != 2 {
			t.Fatalf("unexpected filters: %+v", decoded.Filters)
		}
	})

	t.Run("values may contain dots", func(t *testing.T) {
		t.Parallel()
		decoded, err := Decode(map[string][]string{"title": {"ilike.v1.2"}}, "title")
		if err != nil {
			t.Fatalf("Decode returned error: %v", err)
		}
		if decoded.Filters[0].Value != "v1.2" {
			t.Fatalf("unexpected value: %q", decoded.Filters[0].Value)
		}
	})

	t.Run("unknown parameters are ignored", func(t *testing.T) {
		t.Parallel()
		decoded, err := Decode(map[string][]string{"token": {"abc"}}, "title")
		if err != nil {
			t.Fatalf("Decode returned error: %v", err)
		}
		if len(decoded.Filters) != 0 {
			t.Fatalf("expected no filters, got %+v", decoded.Filters)
		}
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		t.Parallel()
		cases := []map[string][]string{
			{"title": {"like.x"}},
			{"title": {"nodot"}},
			{"order": {"title.sideways"}},
			{"order": {"secret.asc"}},
			{"limit": {"-1"}},
			{"limit": {"many"}},
		}
		for _, params := range cases {
			if _, err := Decode(params, "title"); err == nil {
				t.Fatalf("expected error for %v", params)
			}
		}
	})
}
