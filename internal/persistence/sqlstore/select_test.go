package sqlstore

import (
	"errors"
	"reflect"
	"testing"

	"github.com/example/eventhub/internal/persistence"
	"github.com/example/eventhub/internal/query"
)

func TestDialect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		dsn  string
		want Dialect
	}{
		{dsn: "file:eventhub.db?_pragma=foreign_keys(1)", want: DialectSQLite},
		{dsn: ":memory:", want: DialectSQLite},
		{dsn: "postgres://user:pw@localhost/eventhub?sslmode=disable", want: DialectPostgres},
		{dsn: "PostgreSQL://localhost/eventhub", want: DialectPostgres},
	}
	for _, tt := range tests {
		if got := DialectFor(tt.dsn); got != tt.want {
			t.Errorf("DialectFor(%q) = %q, want %q", tt.dsn, got, tt.want)
		}
	}

	statement := "SELECT * FROM events WHERE id = ? AND status = ?"
	if got := DialectSQLite.Rebind(statement); got != statement {
		t.Fatalf("sqlite rebind changed the query: %q", got)
	}
	if got := DialectPostgres.Rebind(statement); got != "SELECT * FROM events WHERE id = $1 AND status = $2" {
		t.Fatalf("unexpected postgres rebind: %q", got)
	}
}

func TestCollectionBuild(t *testing.T) {
	t.Parallel()

	t.Run("renders filters ordering and limit", func(t *testing.T) {
		t.Parallel()
		q := query.New().ILike("full_name", "Al_").Neq("id", "me").Order("full_name", true).WithLimit(5)

		statement, args, err := profileCollection.build("SELECT id FROM profiles", q)
		if err != nil {
			t.Fatalf("build returned error: %v", err)
		}
		want := `SELECT id FROM profiles WHERE LOWER(full_name) LIKE ? ESCAPE '\' AND id <> ? ORDER BY full_name DESC, id LIMIT 5`
		if statement != want {
			t.Fatalf("unexpected statement:\n got %s\nwant %s", statement, want)
		}
		if !reflect.DeepEqual(args, []any{`%al\_%`, "me"}) {
			t.Fatalf("unexpected args: %#v", args)
		}
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		t.Parallel()
		_, _, err := eventCollection.build("SELECT id FROM events", query.New().Eq("password_hash", "x"))
		if !errors.Is(err, persistence.ErrInvalidQuery) {
			t.Fatalf("expected ErrInvalidQuery, got %v", err)
		}
		_, _, err = eventCollection.build("SELECT id FROM events", query.New().Order("password_hash", false))
		if !errors.Is(err, persistence.ErrInvalidQuery) {
			t.Fatalf("expected ErrInvalidQuery for order, got %v", err)
		}
	})
}
