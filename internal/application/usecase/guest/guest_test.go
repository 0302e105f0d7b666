package guest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/annoylog/backend/internal/application/adapter"
	domainerror "github.com/annoylog/backend/internal/domain/error"
	"github.com/annoylog/backend/internal/domain/valueobject"
	"github.com/annoylog/backend/internal/integration/localstore"
)

const device = "device-guest-001"

type mapStore map[string]string

func (m mapStore) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

func (m mapStore) Set(_ context.Context, key, value string) error {
	m[key] = value
	return nil
}

func (m mapStore) Remove(_ context.Context, key string) error {
	delete(m, key)
	return nil
}

func (m mapStore) Ping(context.Context) error { return nil }

func newStaging() (adapter.GuestStaging, mapStore) {
	store := mapStore{}
	return localstore.NewGuestStaging(store), store
}

func guestCode(err error) domainerror.GuestErrorCode {
	var guestErr *domainerror.GuestError
	if errors.As(err, &guestErr) {
		return guestErr.Code
	}
	return ""
}

func TestValidateDeviceID(t *testing.T) {
	tests := []struct {
		name     string
		deviceID string
		wantCode domainerror.GuestErrorCode
	}{
		{name: "uuid", deviceID: "6f1c1a52-3b0e-4f55-9d8e-1b2f2c3d4e5f"},
		{name: "minimum length", deviceID: "abcd1234"},
		{name: "empty", deviceID: "", wantCode: domainerror.ErrCodeMissingDeviceID},
		{name: "too short", deviceID: "abc123", wantCode: domainerror.ErrCodeInvalidDeviceID},
		{name: "spaces", deviceID: "device 12345", wantCode: domainerror.ErrCodeInvalidDeviceID},
		{name: "key separator", deviceID: "device:12345", wantCode: domainerror.ErrCodeInvalidDeviceID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDeviceID(tt.deviceID)
			if got := guestCode(err); got != tt.wantCode {
				t.Errorf("ValidateDeviceID(%q) code = %q, want %q", tt.deviceID, got, tt.wantCode)
			}
		})
	}
}

func TestStartGuestSession(t *testing.T) {
	uc := NewStartGuestSessionUseCase()

	out, err := uc.Execute(context.Background(), StartGuestSessionInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ValidateDeviceID(out.Session.DeviceID) != nil {
		t.Errorf("issued device id %q is not valid", out.Session.DeviceID)
	}

	out, err = uc.Execute(context.Background(), StartGuestSessionInput{DeviceID: device})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Session.DeviceID != device {
		t.Errorf("device id = %q, want %q", out.Session.DeviceID, device)
	}

	if _, err := uc.Execute(context.Background(), StartGuestSessionInput{DeviceID: "bad"}); err == nil {
		t.Error("expected an error for a malformed device id")
	}
}

func TestStageCategory(t *testing.T) {
	ctx := context.Background()
	staging, _ := newStaging()
	uc := NewStageCategoryUseCase(staging)
	fixed := time.UnixMilli(1_750_000_000_000)
	uc.now = func() time.Time { return fixed }

	first, err := uc.Execute(ctx, StageCategoryInput{DeviceID: device, Name: " Gym "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Category.Name != "Gym" {
		t.Errorf("name = %q, want trimmed", first.Category.Name)
	}

	second, err := uc.Execute(ctx, StageCategoryInput{DeviceID: device, Name: "Landlord"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Category.LocalID == first.Category.LocalID {
		t.Errorf("local ids collide: %s", first.Category.LocalID)
	}

	for _, name := range []string{"gym", "Work"} {
		_, err := uc.Execute(ctx, StageCategoryInput{DeviceID: device, Name: name})
		if !errors.Is(err, domainerror.ErrCategoryNameExists) {
			t.Errorf("staging %q: got %v, want name exists", name, err)
		}
	}
}

func TestStageEntry(t *testing.T) {
	ctx := context.Background()
	staging, _ := newStaging()
	gym, err := NewStageCategoryUseCase(staging).Execute(ctx, StageCategoryInput{DeviceID: device, Name: "Gym"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	uc := NewStageEntryUseCase(staging)

	ref := func(r valueobject.CategoryRef) *valueobject.CategoryRef { return &r }

	tests := []struct {
		name     string
		category *valueobject.CategoryRef
		want     *valueobject.CategoryRef
		wantCode domainerror.GuestErrorCode
	}{
		{name: "no category"},
		{name: "default", category: ref(valueobject.DefaultRef("tech")), want: ref(valueobject.DefaultRef("tech"))},
		{name: "legacy default key", category: ref(valueobject.LegacyRef("home")), want: ref(valueobject.DefaultRef("home"))},
		{name: "staged category", category: ref(valueobject.UserRef(gym.Category.LocalID)), want: ref(valueobject.UserRef(gym.Category.LocalID))},
		{name: "legacy staged id", category: ref(valueobject.LegacyRef(gym.Category.LocalID.String())), want: ref(valueobject.UserRef(gym.Category.LocalID))},
		{name: "unknown default", category: ref(valueobject.DefaultRef("gardening")), wantCode: domainerror.ErrCodeStagedCategoryNotFound},
		{name: "unknown staged category", category: ref(valueobject.UserRef("999")), wantCode: domainerror.ErrCodeStagedCategoryNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := uc.Execute(ctx, StageEntryInput{DeviceID: device, Text: "Loud music", Rating: 6, Category: tt.category})
			if tt.wantCode != "" {
				if got := guestCode(err); got != tt.wantCode {
					t.Errorf("code = %q, want %q (err %v)", got, tt.wantCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			switch {
			case tt.want == nil && out.Entry.Category != nil:
				t.Errorf("category = %+v, want nil", *out.Entry.Category)
			case tt.want != nil && (out.Entry.Category == nil || *out.Entry.Category != *tt.want):
				t.Errorf("category = %+v, want %+v", out.Entry.Category, *tt.want)
			}
		})
	}

	if _, err := uc.Execute(ctx, StageEntryInput{DeviceID: device, Text: "x", Rating: 0}); !errors.Is(err, domainerror.ErrInvalidRating) {
		t.Errorf("rating 0: got %v, want invalid rating", err)
	}
}

func TestListAndDeleteStaged(t *testing.T) {
	ctx := context.Background()
	staging, store := newStaging()
	stage := NewStageEntryUseCase(staging)

	var ids []valueobject.LocalID
	for _, text := range []string{"first", "second"} {
		out, err := stage.Execute(ctx, StageEntryInput{DeviceID: device, Text: text, Rating: 3})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		ids = append(ids, out.Entry.LocalID)
	}

	list := NewListStagedUseCase(staging)
	out, err := list.Execute(ctx, ListStagedInput{DeviceID: device})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Entries) != 2 || len(out.Categories) != 0 {
		t.Fatalf("got %d entries and %d categories, want 2 and 0", len(out.Entries), len(out.Categories))
	}

	del := NewDeleteStagedEntryUseCase(staging)
	if err := del.Execute(ctx, DeleteStagedEntryInput{DeviceID: device, LocalID: "missing"}); guestCode(err) != domainerror.ErrCodeStagedEntryNotFound {
		t.Errorf("deleting a missing entry: got %v", err)
	}
	for _, id := range ids {
		if err := del.Execute(ctx, DeleteStagedEntryInput{DeviceID: device, LocalID: id}); err != nil {
			t.Fatalf("delete %s: %v", id, err)
		}
	}
	if _, ok := store["device:"+device+":staged_entries"]; ok {
		t.Error("staged_entries key should be removed once empty")
	}
}

func TestListStaged_CorruptData(t *testing.T) {
	staging, store := newStaging()
	store["device:"+device+":staged_entries"] = "[{"

	_, err := NewListStagedUseCase(staging).Execute(context.Background(), ListStagedInput{DeviceID: device})
	if !errors.Is(err, domainerror.ErrCorruptStagedData) {
		t.Errorf("got %v, want corrupt staged data", err)
	}
}
