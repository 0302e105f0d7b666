//go:build integration

// Package steps provides step definitions for BDD integration tests.
package steps

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/cucumber/godog"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/annoylog/backend/config"
	"github.com/annoylog/backend/internal/application/adapter"
	"github.com/annoylog/backend/internal/infra/dependency"
	"github.com/annoylog/backend/internal/integration/adapters"
	"github.com/annoylog/backend/internal/integration/billing"
	"github.com/annoylog/backend/internal/integration/localstore"
	"github.com/annoylog/backend/internal/integration/persistence"
	"github.com/annoylog/backend/internal/integration/persistence/model"
	"github.com/annoylog/backend/test/integration/mock"
)

const (
	testJWTSecret   = "test-jwt-secret-key-for-testing-purposes"
	testStorePrefix = "test:"
	defaultPassword = "DefaultPass123"
)

type testContext struct {
	uri        string
	client     *http.Client
	headers    map[string]string
	response   *response
	db         *mock.Db
	redis      *redis.Client
	localStore *localstore.RedisStore
	billing    *mock.ApiMock
	tokens     adapter.TokenService

	accessToken       string
	refreshToken      string
	resetToken        string
	currentUserID     uuid.UUID
	currentEmail      string
	currentCategoryID uuid.UUID
	lastEntryID       uuid.UUID
}

type response struct {
	status int
	body   any
	raw    string
}

// Shared across scenarios; the database and Redis are cleared in before().
var (
	serverInit sync.Once
	server     *httptest.Server
	billingAPI *mock.ApiMock
)

// InitializeTestSuite starts the shared fakes and tears them down at the end.
func InitializeTestSuite(ctx *godog.TestSuiteContext) {
	ctx.BeforeSuite(func() {
		gin.SetMode(gin.TestMode)
		billingAPI = mock.NewApiServer()
		billingAPI.Start()
	})

	ctx.AfterSuite(func() {
		if server != nil {
			server.Close()
		}
		if billingAPI != nil {
			billingAPI.Close()
		}
	})
}

// InitializeScenario registers every step.
func InitializeScenario(ctx *godog.ScenarioContext) {
	test := &testContext{
		client: &http.Client{Timeout: 10 * time.Second},
		db: mock.NewDb(map[string]any{
			"users":                 &model.UserModel{},
			"refresh_tokens":        &model.RefreshTokenModel{},
			"password_reset_tokens": &model.PasswordResetTokenModel{},
			"categories":            &model.CategoryModel{},
			"entries":               &model.EntryModel{},
			"subscriptions":         &model.SubscriptionModel{},
			"guest_migrations":      &model.GuestMigrationModel{},
			"outbound_mail":         &model.OutboundMailModel{},
		}),
		redis:   mock.NewRedis(),
		billing: billingAPI,
	}
	test.localStore = localstore.NewRedisStore(test.redis, testStorePrefix, 0)
	test.tokens = adapters.NewTokenService(testJWTSecret, persistence.NewTokenRepository(test.db.DbConn), adapters.DefaultTokenTTL)

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		return ctx, test.before()
	})

	// Background
	ctx.Given(`^the API server is running$`, test.theAPIServerIsRunning)

	// Accounts
	ctx.Given(`^a user exists with email "([^"]*)"$`, test.aUserExistsWithEmail)
	ctx.Given(`^a user exists with email "([^"]*)" and password "([^"]*)"$`, test.aUserExistsWithEmailAndPassword)
	ctx.Given(`^the user is logged in with valid tokens$`, test.theUserIsLoggedInWithValidTokens)
	ctx.Given(`^I am logged in as "([^"]*)"$`, test.iAmLoggedInAs)
	ctx.Given(`^a password reset token exists for "([^"]*)"$`, test.aPasswordResetTokenExistsFor)

	// Journal data
	ctx.Given(`^the user has a category named "([^"]*)"$`, test.theUserHasACategoryNamed)
	ctx.Given(`^the user has an entry "([^"]*)" rated (\d+) created (\d+) hours ago$`, test.theUserHasAnEntryCreatedHoursAgo)
	ctx.Given(`^the user has a "([^"]*)" subscription$`, test.theUserHasASubscription)
	ctx.Given(`^a migration is in progress for the user from device "([^"]*)"$`, test.aMigrationIsInProgress)

	// Device staging
	ctx.Given(`^the device "([^"]*)" has staged categories:$`, test.theDeviceHasStagedCategories)
	ctx.Given(`^the device "([^"]*)" has staged entries:$`, test.theDeviceHasStagedEntries)
	ctx.Given(`^the local store key "([^"]*)" holds:$`, test.theLocalStoreKeyHolds)

	// Billing provider
	ctx.Given(`^the billing provider returns status (\d+) for the user with body:$`, test.theBillingProviderReturnsForTheUser)
	ctx.Given(`^the billing provider has an active "([^"]*)" entitlement for the user$`, test.theBillingProviderHasAnActiveEntitlement)
	ctx.Given(`^the billing provider is failing$`, test.theBillingProviderIsFailing)

	// Headers
	ctx.Given(`^the header is empty$`, test.theHeaderIsEmpty)
	ctx.Given(`^the header contains the key "([^"]*)" with "([^"]*)"$`, test.theHeaderContainsTheKeyWith)

	// Requests
	ctx.When(`^I send a "([^"]*)" request to "([^"]*)"$`, test.iSendARequestTo)
	ctx.When(`^I send a "([^"]*)" request to "([^"]*)" with body:$`, test.iSendARequestToWithBody)

	// Response assertions
	ctx.Then(`^the response status should be (\d+)$`, test.theResponseStatusShouldBe)
	ctx.Then(`^the response should be JSON$`, test.theResponseShouldBeJSON)
	ctx.Then(`^the response should contain "([^"]*)"$`, test.theResponseShouldContain)
	ctx.Then(`^the response field "([^"]*)" should be "([^"]*)"$`, test.theResponseFieldShouldBe)
	ctx.Then(`^the response field "([^"]*)" should exist$`, test.theResponseFieldShouldExist)
	ctx.Then(`^the response field "([^"]*)" should not exist$`, test.theResponseFieldShouldNotExist)
	ctx.Then(`^the response field "([^"]*)" should have (\d+) items$`, test.theResponseFieldShouldHaveItems)
	ctx.Then(`^the response body should include "([^"]*)"$`, test.theResponseBodyShouldInclude)

	// Database assertions
	ctx.Then(`^the db should contain (\d+) objects in the "([^"]*)" table$`, test.theDbShouldContainObjectsInTheTable)
	ctx.Then(`^the db should contain (\d+) objects in "([^"]*)" with the values$`, test.theDbShouldContainObjectsInWithTheValues)

	// Local store and billing assertions
	ctx.Then(`^the local store key "([^"]*)" should exist$`, test.theLocalStoreKeyShouldExist)
	ctx.Then(`^the local store key "([^"]*)" should not exist$`, test.theLocalStoreKeyShouldNotExist)
	ctx.Then(`^the local store key "([^"]*)" should hold (\d+) items$`, test.theLocalStoreKeyShouldHoldItems)
	ctx.Then(`^the billing provider should have received (\d+) requests?$`, test.theBillingProviderShouldHaveReceived)
}

func (t *testContext) before() error {
	t.headers = make(map[string]string)
	t.response = nil
	t.accessToken = ""
	t.refreshToken = ""
	t.resetToken = ""
	t.currentUserID = uuid.Nil
	t.currentEmail = ""
	t.currentCategoryID = uuid.Nil
	t.lastEntryID = uuid.Nil

	if t.billing != nil {
		t.billing.Reset()
	}
	if err := mock.ClearRedis(t.redis); err != nil {
		return err
	}
	return t.db.ClearDB()
}

// startServer wires the real dependency graph over the fakes.
func (t *testContext) startServer() error {
	var initErr error
	serverInit.Do(func() {
		cfg := config.Load()
		cfg.Server.Environment = "test"
		cfg.JWT.Secret = testJWTSecret
		cfg.RateLimit.Enabled = false
		cfg.Email.WorkerEnabled = false

		injector, err := dependency.NewInjector(cfg, t.db.DbConn, dependency.Externals{
			LocalStore:     t.localStore,
			Billing:        billing.NewClient(t.billing.GetUrl(), "test-key", 2*time.Second),
			PasswordHasher: adapters.NewPasswordHasher(bcrypt.MinCost),
		})
		if err != nil {
			initErr = err
			return
		}

		server = httptest.NewServer(injector.Router.Setup(cfg.Server.Environment))
	})
	if initErr != nil {
		return initErr
	}
	t.uri = server.URL
	return nil
}

func (t *testContext) theAPIServerIsRunning() error {
	return t.startServer()
}
