package settings

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestSections(t *testing.T) {
	t.Parallel()

	got := Sections()
	if len(got) != 9 {
		t.Fatalf("expected 9 sections, got %d", len(got))
	}
	if got[0].ID != "profile" || got[8].ID != "support" {
		t.Fatalf("unexpected section order: %s ... %s", got[0].ID, got[8].ID)
	}

	seen := make(map[string]bool)
	defaults := Defaults()
	for _, section := range got {
		if len(section.Fields) == 0 {
			t.Fatalf("section %s has no fields", section.ID)
		}
		for _, field := range section.Fields {
			if seen[field.ID] {
				t.Fatalf("duplicate field id %s", field.ID)
			}
			seen[field.ID] = true
			if _, err := defaults.Value(field.ID); err != nil {
				t.Fatalf("field %s has no value: %v", field.ID, err)
			}
		}
	}

	got[0].Fields[0].Label = "changed"
	if Sections()[0].Fields[0].Label == "changed" {
		t.Fatalf("Sections must return a copy")
	}
}

func TestSettings_Apply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		field   string
		value   string
		want    string
		wantErr error
	}{
		{name: "toggle", field: "twoFactorAuth", value: "true", want: "true"},
		{name: "select", field: "subscriptionTier", value: "elite", want: "elite"},
		{name: "input", field: "bio", value: "Runner", want: "Runner"},
		{name: "multi select dedups", field: "preferredEventTypes", value: "yoga, swimming,yoga", want: "yoga,swimming"},
		{name: "bad toggle", field: "syncFitbit", value: "maybe", wantErr: ErrInvalidValue},
		{name: "bad option", field: "teamInvites", value: "everyone", wantErr: ErrInvalidValue},
		{name: "bad multi option", field: "preferredEventTypes", value: "chess", wantErr: ErrInvalidValue},
		{name: "unknown field", field: "theme", value: "dark", wantErr: ErrUnknownField},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := Defaults()
			before := Defaults()

			err := s.Apply(tt.field, tt.value)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if !reflect.DeepEqual(s, before) {
					t.Fatalf("failed Apply must not change settings")
				}
				return
			}
			if err != nil {
				t.Fatalf("Apply returned error: %v", err)
			}
			got, err := s.Value(tt.field)
			if err != nil {
				t.Fatalf("Value returned error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestSettings_JSONFieldNames(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(Defaults())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, section := range Sections() {
		for _, field := range section.Fields {
			if _, ok := doc[field.ID]; !ok {
				t.Fatalf("json document lacks field %s", field.ID)
			}
		}
	}
	if doc["participantLimit"] != "1000" {
		t.Fatalf("unexpected participant limit: %v", doc["participantLimit"])
	}
}
