package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annoylog/backend/internal/application/adapter"
	"github.com/annoylog/backend/internal/domain/entity"
	domainerror "github.com/annoylog/backend/internal/domain/error"
)

type fakeTokens struct {
	adapter.TokenService
	refresh    map[string]*adapter.TokenClaims
	parseErr   error
	revoked    []string
	revokedAll []uuid.UUID
	issued     []*entity.Session
}

func (f *fakeTokens) ParseRefreshToken(_ context.Context, token string) (*adapter.TokenClaims, error) {
	if f.parseErr != nil {
		return nil, f.parseErr
	}
	claims, ok := f.refresh[token]
	if !ok {
		return nil, domainerror.ErrInvalidToken
	}
	return claims, nil
}

func (f *fakeTokens) IssueTokens(_ context.Context, session *entity.Session, _ string) (*adapter.TokenPair, error) {
	f.issued = append(f.issued, session)
	return &adapter.TokenPair{AccessToken: "at", RefreshToken: "rt-next"}, nil
}

func (f *fakeTokens) RevokeRefreshToken(_ context.Context, token string) error {
	f.revoked = append(f.revoked, token)
	if _, ok := f.refresh[token]; !ok {
		return domainerror.ErrRevokedToken
	}
	delete(f.refresh, token)
	return nil
}

func (f *fakeTokens) RevokeUserTokens(_ context.Context, userID uuid.UUID) error {
	f.revokedAll = append(f.revokedAll, userID)
	return nil
}

type fakeResets struct {
	adapter.PasswordResetTokenService
	grant    *adapter.PasswordResetToken
	err      error
	consumed int
}

func (f *fakeResets) ConsumeResetToken(context.Context, string) (*adapter.PasswordResetToken, error) {
	f.consumed++
	return f.grant, f.err
}

type fakeStaging struct {
	adapter.GuestStaging
	cleared []string
	err     error
}

func (f *fakeStaging) ClearEntitlement(_ context.Context, deviceID string) error {
	f.cleared = append(f.cleared, deviceID)
	return f.err
}

// fakeHasher "hashes" by prefixing; outdated marks every stored hash stale.
type fakeHasher struct {
	outdated bool
}

func (fakeHasher) Hash(password string) (string, error) {
	return "hash:" + password, nil
}

func (fakeHasher) Check(hash, password string) bool {
	return hash == "hash:"+password
}

func (h fakeHasher) Outdated(string) bool {
	return h.outdated
}

// purgeLog records the order in which per-user data is removed.
type purgeLog struct {
	steps []string
}

type purgeUsers struct {
	adapter.UserRepository
	log  *purgeLog
	user *entity.User
}

func (r *purgeUsers) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	if r.user == nil || r.user.ID != id {
		return nil, domainerror.ErrUserNotFound
	}
	return r.user, nil
}

func (r *purgeUsers) Delete(context.Context, uuid.UUID) error {
	r.log.steps = append(r.log.steps, "user")
	return nil
}

type purgeEntries struct {
	adapter.EntryRepository
	log *purgeLog
}

func (r *purgeEntries) DeleteByUserID(context.Context, uuid.UUID) error {
	r.log.steps = append(r.log.steps, "entries")
	return nil
}

type purgeCategories struct {
	adapter.CategoryRepository
	log *purgeLog
}

func (r *purgeCategories) DeleteByUserID(context.Context, uuid.UUID) error {
	r.log.steps = append(r.log.steps, "categories")
	return nil
}

type purgeSubscriptions struct {
	adapter.SubscriptionRepository
	log *purgeLog
}

func (r *purgeSubscriptions) DeleteByUserID(context.Context, uuid.UUID) error {
	r.log.steps = append(r.log.steps, "subscription")
	return nil
}

type purgeMigrations struct {
	adapter.GuestMigrationRepository
	log *purgeLog
}

func (r *purgeMigrations) DeleteByUserID(context.Context, uuid.UUID) error {
	r.log.steps = append(r.log.steps, "migration")
	return nil
}

func TestLogout(t *testing.T) {
	ctx := context.Background()

	t.Run("revokes and clears the given device", func(t *testing.T) {
		tokens := &fakeTokens{refresh: map[string]*adapter.TokenClaims{"rt": {DeviceID: "device-0"}}}
		staging := &fakeStaging{}

		out := NewLogoutUserUseCase(tokens, staging).Execute(ctx, LogoutUserInput{RefreshToken: "rt", DeviceID: "device-1"})

		assert.Equal(t, LoggedOut{Revoked: true, Device: "device-1"}, out)
		assert.Equal(t, []string{"rt"}, tokens.revoked)
		assert.Equal(t, []string{"device-1"}, staging.cleared)
	})

	t.Run("falls back to the token's device", func(t *testing.T) {
		tokens := &fakeTokens{refresh: map[string]*adapter.TokenClaims{
			"rt": {UserID: uuid.New(), DeviceID: "device-from-token"},
		}}
		staging := &fakeStaging{}

		out := NewLogoutUserUseCase(tokens, staging).Execute(ctx, LogoutUserInput{RefreshToken: "rt"})

		assert.Equal(t, "device-from-token", out.Device)
		assert.Equal(t, []string{"device-from-token"}, staging.cleared)
	})

	t.Run("unknown token and no device", func(t *testing.T) {
		staging := &fakeStaging{}

		out := NewLogoutUserUseCase(&fakeTokens{}, staging).Execute(ctx, LogoutUserInput{RefreshToken: "rt"})

		assert.False(t, out.Revoked)
		assert.Empty(t, staging.cleared)
	})

	t.Run("empty body still clears the header device", func(t *testing.T) {
		tokens := &fakeTokens{}
		staging := &fakeStaging{}

		out := NewLogoutUserUseCase(tokens, staging).Execute(ctx, LogoutUserInput{DeviceID: "device-1"})

		assert.Equal(t, "device-1", out.Device)
		assert.Empty(t, tokens.revoked)
	})

	t.Run("store failure is swallowed", func(t *testing.T) {
		staging := &fakeStaging{err: errors.New("store down")}

		out := NewLogoutUserUseCase(&fakeTokens{}, staging).Execute(ctx, LogoutUserInput{DeviceID: "device-1"})

		assert.Empty(t, out.Device)
		assert.Len(t, staging.cleared, 1)
	})
}

func TestRefreshRotatesOnTheSameDevice(t *testing.T) {
	userID := uuid.New()
	tokens := &fakeTokens{refresh: map[string]*adapter.TokenClaims{
		"rt": {UserID: userID, Email: "ana@example.com", DeviceID: "device-1"},
	}}
	uc := NewRefreshTokenUseCase(tokens)

	pair, err := uc.Execute(context.Background(), "rt")

	require.NoError(t, err)
	assert.Equal(t, "rt-next", pair.RefreshToken)
	assert.Equal(t, []string{"rt"}, tokens.revoked)
	require.Len(t, tokens.issued, 1)
	assert.Equal(t, userID, tokens.issued[0].UserID)
	assert.Equal(t, "device-1", tokens.issued[0].DeviceID)
}

func TestRefreshRejections(t *testing.T) {
	tests := []struct {
		name     string
		parseErr error
		code     domainerror.AuthErrorCode
	}{
		{name: "revoked", parseErr: domainerror.ErrRevokedToken, code: domainerror.ErrCodeInvalidToken},
		{name: "expired", parseErr: fmt.Errorf("%w: %w", domainerror.ErrExpiredToken, domainerror.ErrInvalidToken), code: domainerror.ErrCodeExpiredToken},
		{name: "garbage", parseErr: domainerror.ErrInvalidToken, code: domainerror.ErrCodeInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := &fakeTokens{parseErr: tt.parseErr}
			_, err := NewRefreshTokenUseCase(tokens).Execute(context.Background(), "rt")

			var authErr *domainerror.AuthError
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, tt.code, authErr.Code)
			assert.Empty(t, tokens.issued)
		})
	}
}

// racingTokens parses fine but another rotation revoked the token first.
type racingTokens struct {
	*fakeTokens
}

func (racingTokens) RevokeRefreshToken(context.Context, string) error {
	return domainerror.ErrRevokedToken
}

func TestRefreshLosesARotationRace(t *testing.T) {
	tokens := &fakeTokens{refresh: map[string]*adapter.TokenClaims{"rt": {UserID: uuid.New()}}}

	_, err := NewRefreshTokenUseCase(racingTokens{tokens}).Execute(context.Background(), "rt")

	var authErr *domainerror.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, domainerror.ErrCodeInvalidToken, authErr.Code)
	assert.Empty(t, tokens.issued)
}

type resetUsers struct {
	adapter.UserRepository
	user    *entity.User
	updated bool
}

func (r *resetUsers) SetPasswordHash(_ context.Context, id uuid.UUID, hash string, _ time.Time) error {
	if id != r.user.ID {
		return domainerror.ErrUserNotFound
	}
	r.user.PasswordHash = hash
	r.updated = true
	return nil
}

func TestResetPassword(t *testing.T) {
	user := entity.NewUser("ana@example.com", "Ana", "hash:old-secret", time.Now())

	t.Run("signs out every device", func(t *testing.T) {
		users := &resetUsers{user: user}
		tokens := &fakeTokens{}
		resets := &fakeResets{grant: &adapter.PasswordResetToken{UserID: user.ID}}
		uc := NewResetPasswordUseCase(users, fakeHasher{}, resets, tokens)

		err := uc.Execute(context.Background(), ResetPasswordInput{Token: "t", NewPassword: "new-secret-1"})

		require.NoError(t, err)
		assert.True(t, users.updated)
		assert.Equal(t, "hash:new-secret-1", user.PasswordHash)
		assert.Equal(t, []uuid.UUID{user.ID}, tokens.revokedAll)
	})

	t.Run("weak password keeps the link usable", func(t *testing.T) {
		resets := &fakeResets{grant: &adapter.PasswordResetToken{UserID: user.ID}}
		uc := NewResetPasswordUseCase(&resetUsers{user: user}, fakeHasher{}, resets, &fakeTokens{})

		err := uc.Execute(context.Background(), ResetPasswordInput{Token: "t", NewPassword: "short"})

		var authErr *domainerror.AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, domainerror.ErrCodeWeakPassword, authErr.Code)
		assert.Zero(t, resets.consumed)
	})

	t.Run("expired link", func(t *testing.T) {
		resets := &fakeResets{err: domainerror.ErrExpiredResetToken}
		uc := NewResetPasswordUseCase(&resetUsers{user: user}, fakeHasher{}, resets, &fakeTokens{})

		err := uc.Execute(context.Background(), ResetPasswordInput{Token: "t", NewPassword: "new-secret-1"})

		var authErr *domainerror.AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, domainerror.ErrCodeExpiredResetToken, authErr.Code)
	})
}

type forgotUsers struct {
	adapter.UserRepository
	user *entity.User
}

func (r *forgotUsers) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	if r.user.Email != email {
		return nil, domainerror.ErrUserNotFound
	}
	return r.user, nil
}

type issuingResets struct {
	adapter.PasswordResetTokenService
	issued int
	err    error
}

func (f *issuingResets) IssueResetToken(_ context.Context, userID uuid.UUID, email string) (*adapter.PasswordResetToken, error) {
	f.issued++
	if f.err != nil {
		return nil, f.err
	}
	return &adapter.PasswordResetToken{Token: "a b/c", UserID: userID, Email: email}, nil
}

func (f *issuingResets) Lifetime() time.Duration { return time.Hour }

type recordingNotifier struct {
	adapter.Notifier
	resets []adapter.PasswordResetNotice
	err    error
}

func (n *recordingNotifier) NotifyPasswordReset(_ context.Context, notice adapter.PasswordResetNotice) error {
	n.resets = append(n.resets, notice)
	return n.err
}

func TestForgotPassword(t *testing.T) {
	ctx := context.Background()
	user := entity.NewUser("ana@example.com", "Ana", "hash:secret-1", time.Now())

	t.Run("queues a link for a known account", func(t *testing.T) {
		resets := &issuingResets{}
		notifier := &recordingNotifier{}
		uc := NewForgotPasswordUseCase(&forgotUsers{user: user}, resets, notifier, "https://annoylog.app")

		require.NoError(t, uc.Execute(ctx, "  ANA@example.com "))

		require.Len(t, notifier.resets, 1)
		notice := notifier.resets[0]
		assert.Equal(t, "ana@example.com", notice.Email)
		assert.Equal(t, "https://annoylog.app/reset-password?token=a+b%2Fc", notice.Link)
		assert.Equal(t, time.Hour, notice.ValidFor)
	})

	t.Run("unknown account looks the same", func(t *testing.T) {
		resets := &issuingResets{}
		notifier := &recordingNotifier{}
		uc := NewForgotPasswordUseCase(&forgotUsers{user: user}, resets, notifier, "")

		require.NoError(t, uc.Execute(ctx, "nobody@example.com"))
		assert.Zero(t, resets.issued)
		assert.Empty(t, notifier.resets)
	})

	t.Run("downstream failures are swallowed", func(t *testing.T) {
		uc := NewForgotPasswordUseCase(&forgotUsers{user: user}, &issuingResets{}, &recordingNotifier{err: errors.New("outbox down")}, "")
		assert.NoError(t, uc.Execute(ctx, "ana@example.com"))

		uc = NewForgotPasswordUseCase(&forgotUsers{user: user}, &issuingResets{err: errors.New("db down")}, nil, "")
		assert.NoError(t, uc.Execute(ctx, "ana@example.com"))
	})

	t.Run("malformed address", func(t *testing.T) {
		uc := NewForgotPasswordUseCase(&forgotUsers{user: user}, &issuingResets{}, nil, "")

		err := uc.Execute(ctx, "not-an-email")

		var authErr *domainerror.AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, domainerror.ErrCodeInvalidEmail, authErr.Code)
	})
}

type loginUsers struct {
	adapter.UserRepository
	user    *entity.User
	updates int
	err     error
}

func (r *loginUsers) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	if r.user == nil || r.user.Email != email {
		return nil, domainerror.ErrUserNotFound
	}
	return r.user, nil
}

func (r *loginUsers) SetPasswordHash(context.Context, uuid.UUID, string, time.Time) error {
	r.updates++
	return r.err
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("opens a session on the device", func(t *testing.T) {
		user := entity.NewUser("ana@example.com", "Ana", "hash:journal-42", time.Now())
		users := &loginUsers{user: user}
		uc := NewLoginUserUseCase(users, fakeHasher{}, &fakeTokens{})

		out, err := uc.Execute(ctx, LoginUserInput{Email: " Ana@Example.com", Password: "journal-42", DeviceID: "device-0001"})

		require.NoError(t, err)
		assert.Equal(t, "device-0001", out.Session.DeviceID)
		assert.Equal(t, "rt-next", out.Tokens.RefreshToken)
		assert.Zero(t, users.updates)
	})

	t.Run("unknown email and wrong password look the same", func(t *testing.T) {
		user := entity.NewUser("ana@example.com", "Ana", "hash:journal-42", time.Now())
		uc := NewLoginUserUseCase(&loginUsers{user: user}, fakeHasher{}, &fakeTokens{})

		for _, in := range []LoginUserInput{
			{Email: "ana@example.com", Password: "journal-43"},
			{Email: "bob@example.com", Password: "journal-42"},
		} {
			_, err := uc.Execute(ctx, in)
			var authErr *domainerror.AuthError
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, domainerror.ErrCodeInvalidCredentials, authErr.Code)
		}
	})

	t.Run("outdated hash is replaced", func(t *testing.T) {
		user := entity.NewUser("ana@example.com", "Ana", "hash:journal-42", time.Now())
		users := &loginUsers{user: user}
		uc := NewLoginUserUseCase(users, fakeHasher{outdated: true}, &fakeTokens{})

		_, err := uc.Execute(ctx, LoginUserInput{Email: "ana@example.com", Password: "journal-42"})

		require.NoError(t, err)
		assert.Equal(t, 1, users.updates)
	})

	t.Run("failed rehash still signs in", func(t *testing.T) {
		user := entity.NewUser("ana@example.com", "Ana", "hash:journal-42", time.Now())
		users := &loginUsers{user: user, err: errors.New("db down")}
		uc := NewLoginUserUseCase(users, fakeHasher{outdated: true}, &fakeTokens{})

		_, err := uc.Execute(ctx, LoginUserInput{Email: "ana@example.com", Password: "journal-42"})

		require.NoError(t, err)
		assert.Equal(t, "hash:journal-42", user.PasswordHash)
	})
}

func newDeleteAccount(user *entity.User) (*DeleteAccountUseCase, *purgeLog, *fakeTokens) {
	log := &purgeLog{}
	tokens := &fakeTokens{}
	uc := NewDeleteAccountUseCase(
		&purgeUsers{log: log, user: user},
		fakeHasher{},
		tokens,
		&purgeEntries{log: log},
		&purgeCategories{log: log},
		&purgeSubscriptions{log: log},
		&purgeMigrations{log: log},
	)
	return uc, log, tokens
}

func TestDeleteAccountPurgesJournalData(t *testing.T) {
	user := entity.NewUser("ana@example.com", "Ana", "hash:secret", time.Now())
	uc, log, tokens := newDeleteAccount(user)

	err := uc.Execute(context.Background(), DeleteAccountInput{
		UserID:       user.ID,
		Password:     "secret",
		Confirmation: "DELETE",
	})

	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{user.ID}, tokens.revokedAll)
	assert.Equal(t, []string{"entries", "categories", "subscription", "migration", "user"}, log.steps)
}

func TestDeleteAccountRejections(t *testing.T) {
	user := entity.NewUser("ana@example.com", "Ana", "hash:secret", time.Now())

	tests := []struct {
		name  string
		input DeleteAccountInput
		code  domainerror.AuthErrorCode
	}{
		{
			name:  "wrong confirmation",
			input: DeleteAccountInput{UserID: user.ID, Password: "secret", Confirmation: "delete"},
			code:  domainerror.ErrCodeInvalidConfirmation,
		},
		{
			name:  "wrong password",
			input: DeleteAccountInput{UserID: user.ID, Password: "nope"},
			code:  domainerror.ErrCodeInvalidCredentials,
		},
		{
			name:  "unknown user",
			input: DeleteAccountInput{UserID: uuid.New(), Password: "secret"},
			code:  domainerror.ErrCodeUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, log, _ := newDeleteAccount(user)

			err := uc.Execute(context.Background(), tt.input)

			var authErr *domainerror.AuthError
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, tt.code, authErr.Code)
			assert.Empty(t, log.steps)
		})
	}
}

func TestValidateTimezone(t *testing.T) {
	assert.NoError(t, validateTimezone(""))
	assert.NoError(t, validateTimezone("Europe/Lisbon"))
	assert.ErrorIs(t, validateTimezone("Mars/Olympus"), domainerror.ErrInvalidTimezone)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ana@example.com", normalizeEmail("  Ana@Example.COM "))
	assert.True(t, isValidEmail("ana@example.com"))
	assert.False(t, isValidEmail("ana@example"))
}

type profileUsers struct {
	adapter.UserRepository
	user   *entity.User
	change *adapter.ProfileChange
}

func (r *profileUsers) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	if r.user == nil || r.user.ID != id {
		return nil, domainerror.ErrUserNotFound
	}
	return r.user, nil
}

func (r *profileUsers) UpdateProfile(ctx context.Context, id uuid.UUID, change adapter.ProfileChange, at time.Time) (*entity.User, error) {
	user, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.change = &change
	if change.Name != nil {
		user.Name = *change.Name
	}
	if change.Timezone != nil {
		user.Timezone = *change.Timezone
	}
	user.UpdatedAt = at
	return user, nil
}

func ptr(s string) *string { return &s }

func TestGetProfile(t *testing.T) {
	user := entity.NewUser("ana@example.com", "Ana", "hash:x", time.Now())
	uc := NewGetProfileUseCase(&profileUsers{user: user})

	got, err := uc.Execute(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", got.Email)

	_, err = uc.Execute(context.Background(), uuid.New())
	var authErr *domainerror.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, domainerror.ErrCodeUserNotFound, authErr.Code)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("partial edit", func(t *testing.T) {
		user := entity.NewUser("ana@example.com", "Ana", "hash:x", time.Now())
		users := &profileUsers{user: user}

		got, err := NewUpdateProfileUseCase(users).Execute(ctx, UpdateProfileInput{
			UserID:   user.ID,
			Timezone: ptr("America/Sao_Paulo"),
		})

		require.NoError(t, err)
		assert.Equal(t, "America/Sao_Paulo", got.Timezone)
		assert.Equal(t, "Ana", got.Name)
		assert.Nil(t, users.change.Name)
	})

	t.Run("name is trimmed and blank timezone resets to UTC", func(t *testing.T) {
		user := entity.NewUser("ana@example.com", "Ana", "hash:x", time.Now())
		user.Timezone = "Europe/Lisbon"

		got, err := NewUpdateProfileUseCase(&profileUsers{user: user}).Execute(ctx, UpdateProfileInput{
			UserID:   user.ID,
			Name:     ptr("  Ana B. "),
			Timezone: ptr(""),
		})

		require.NoError(t, err)
		assert.Equal(t, "Ana B.", got.Name)
		assert.Equal(t, entity.DefaultTimezone, got.Timezone)
	})

	tests := []struct {
		name  string
		input func(id uuid.UUID) UpdateProfileInput
		code  domainerror.AuthErrorCode
	}{
		{"nothing to change", func(id uuid.UUID) UpdateProfileInput { return UpdateProfileInput{UserID: id} }, domainerror.ErrCodeInvalidProfile},
		{"blank name", func(id uuid.UUID) UpdateProfileInput { return UpdateProfileInput{UserID: id, Name: ptr("   ")} }, domainerror.ErrCodeInvalidProfile},
		{"unknown zone", func(id uuid.UUID) UpdateProfileInput {
			return UpdateProfileInput{UserID: id, Timezone: ptr("Mars/Olympus")}
		}, domainerror.ErrCodeInvalidTimezone},
		{"account gone", func(uuid.UUID) UpdateProfileInput {
			return UpdateProfileInput{UserID: uuid.New(), Name: ptr("Ana")}
		}, domainerror.ErrCodeUserNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := entity.NewUser("ana@example.com", "Ana", "hash:x", time.Now())
			users := &profileUsers{user: user}

			_, err := NewUpdateProfileUseCase(users).Execute(ctx, tt.input(user.ID))

			var authErr *domainerror.AuthError
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, tt.code, authErr.Code)
			assert.Equal(t, "Ana", user.Name)
		})
	}
}
