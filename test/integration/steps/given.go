//go:build integration

package steps

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cucumber/godog"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/annoylog/backend/internal/domain/entity"
	"github.com/annoylog/backend/internal/integration/adapters"
	"github.com/annoylog/backend/internal/integration/persistence/model"
)

func (t *testContext) aUserExistsWithEmail(email string) error {
	return t.createUser(email, defaultPassword, "Test User")
}

func (t *testContext) aUserExistsWithEmailAndPassword(email, password string) error {
	return t.createUser(email, password, "Test User")
}

func (t *testContext) createUser(email, password, name string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.UserModel{
		ID:              uuid.New(),
		Email:           email,
		Name:            name,
		PasswordHash:    string(hash),
		Timezone:        "UTC",
		TermsAcceptedAt: now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := t.db.DbConn.Create(user).Error; err != nil {
		return err
	}

	t.currentUserID = user.ID
	t.currentEmail = email
	return nil
}

func (t *testContext) theUserIsLoggedInWithValidTokens() error {
	if t.currentUserID == uuid.Nil {
		return fmt.Errorf("no user created yet")
	}
	pair, err := t.tokens.IssueTokens(context.Background(), entity.NewSession(t.currentUserID, ""), t.currentEmail)
	if err != nil {
		return fmt.Errorf("failed to generate tokens: %w", err)
	}
	t.accessToken = pair.AccessToken
	t.refreshToken = pair.RefreshToken
	return nil
}

func (t *testContext) iAmLoggedInAs(email string) error {
	if err := t.createUser(email, defaultPassword, "Test User"); err != nil {
		return err
	}
	return t.theUserIsLoggedInWithValidTokens()
}

func (t *testContext) aPasswordResetTokenExistsFor(email string) error {
	var user model.UserModel
	if err := t.db.DbConn.Where("email = ?", email).First(&user).Error; err != nil {
		return fmt.Errorf("user not found: %w", err)
	}

	t.resetToken = "test-reset-token-" + uuid.NewString()
	return t.db.DbConn.Create(&model.PasswordResetTokenModel{
		ID:        uuid.New(),
		TokenHash: adapters.HashToken(t.resetToken),
		UserID:    user.ID,
		Email:     email,
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	}).Error
}

func (t *testContext) theUserHasACategoryNamed(name string) error {
	now := time.Now().UTC()
	category := &model.CategoryModel{
		ID:        uuid.New(),
		UserID:    t.currentUserID,
		Name:      name,
		Color:     "#6366F1",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := t.db.DbConn.Create(category).Error; err != nil {
		return err
	}
	t.currentCategoryID = category.ID
	return nil
}

func (t *testContext) theUserHasAnEntryCreatedHoursAgo(text string, rating, hours int) error {
	created := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	e := &model.EntryModel{
		ID:        uuid.New(),
		UserID:    t.currentUserID,
		Text:      text,
		Rating:    rating,
		CreatedAt: created,
		UpdatedAt: created,
	}
	if t.currentCategoryID != uuid.Nil {
		id := t.currentCategoryID
		e.CategoryID = &id
	}
	if err := t.db.DbConn.Create(e).Error; err != nil {
		return err
	}
	t.lastEntryID = e.ID
	return nil
}

func (t *testContext) theUserHasASubscription(status string) error {
	now := time.Now().UTC()
	sub := &model.SubscriptionModel{
		UserID:        t.currentUserID,
		IsPro:         status == "active" || status == "cancelled",
		Status:        status,
		EntitlementID: "pro",
		SyncedAt:      now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if sub.IsPro {
		expires := now.Add(30 * 24 * time.Hour)
		sub.ExpiresAt = &expires
	}
	return t.db.DbConn.Create(sub).Error
}

func (t *testContext) aMigrationIsInProgress(deviceID string) error {
	return t.db.DbConn.Create(&model.GuestMigrationModel{
		ID:        uuid.New(),
		UserID:    t.currentUserID,
		DeviceID:  deviceID,
		Status:    "in_progress",
		StartedAt: time.Now().UTC(),
	}).Error
}

func (t *testContext) theDeviceHasStagedCategories(deviceID string, content *godog.DocString) error {
	return t.theLocalStoreKeyHolds("device:"+deviceID+":staged_categories", content)
}

func (t *testContext) theDeviceHasStagedEntries(deviceID string, content *godog.DocString) error {
	return t.theLocalStoreKeyHolds("device:"+deviceID+":staged_entries", content)
}

// theLocalStoreKeyHolds writes the raw document so legacy shapes can be staged.
func (t *testContext) theLocalStoreKeyHolds(key string, content *godog.DocString) error {
	return t.localStore.Set(context.Background(), key, t.replacePlaceholders(content.Content))
}

func (t *testContext) theBillingProviderReturnsForTheUser(status int, content *godog.DocString) error {
	t.billing.SetResponse(http.MethodGet, t.subscriberPath(), status, t.replacePlaceholders(content.Content))
	return nil
}

func (t *testContext) theBillingProviderHasAnActiveEntitlement(entitlementID string) error {
	expires := time.Now().UTC().Add(30 * 24 * time.Hour).Format(time.RFC3339)
	purchased := time.Now().UTC().Add(-24 * time.Hour).Format(time.RFC3339)
	body := fmt.Sprintf(`{
		"subscriber": {
			"original_app_user_id": %q,
			"entitlements": {
				%q: {"expires_date": %q, "product_identifier": "annoylog_pro_monthly", "purchase_date": %q}
			},
			"subscriptions": {
				"annoylog_pro_monthly": {"expires_date": %q, "unsubscribe_detected_at": null, "billing_issues_detected_at": null}
			}
		}
	}`, t.currentUserID.String(), entitlementID, expires, purchased, expires)

	t.billing.SetResponse(http.MethodGet, t.subscriberPath(), http.StatusOK, body)
	return nil
}

func (t *testContext) theBillingProviderIsFailing() error {
	t.billing.SetResponse(http.MethodGet, "*", http.StatusInternalServerError, `{"message":"internal error"}`)
	return nil
}

func (t *testContext) subscriberPath() string {
	return "/subscribers/" + t.currentUserID.String()
}

func (t *testContext) theHeaderIsEmpty() error {
	t.headers = make(map[string]string)
	t.accessToken = ""
	return nil
}

func (t *testContext) theHeaderContainsTheKeyWith(key, value string) error {
	t.headers[key] = t.replacePlaceholders(value)
	return nil
}
