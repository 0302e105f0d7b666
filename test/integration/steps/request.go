//go:build integration

package steps

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/cucumber/godog"
	"github.com/google/uuid"
)

func (t *testContext) iSendARequestTo(method, path string) error {
	return t.executeRequest(method, t.replacePlaceholders(path), nil)
}

func (t *testContext) iSendARequestToWithBody(method, path string, body *godog.DocString) error {
	var payload []byte
	if body != nil && body.Content != "" {
		payload = []byte(t.replacePlaceholders(body.Content))
	}
	return t.executeRequest(method, t.replacePlaceholders(path), payload)
}

func (t *testContext) replacePlaceholders(content string) string {
	return strings.NewReplacer(
		"{{access_token}}", t.accessToken,
		"{{refresh_token}}", t.refreshToken,
		"{{reset_token}}", t.resetToken,
		"{{user_id}}", t.currentUserID.String(),
		"{{category_id}}", t.currentCategoryID.String(),
		"{{entry_id}}", t.lastEntryID.String(),
	).Replace(content)
}

func (t *testContext) executeRequest(method, path string, payload []byte) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, t.uri+path, body)
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	if t.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+t.accessToken)
	}
	for key, value := range t.headers {
		req.Header.Set(key, value)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	t.response = &response{status: resp.StatusCode, raw: string(raw)}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.response.body = string(raw)
		return nil
	}
	t.response.body = decoded
	t.capture(decoded)
	return nil
}

// capture remembers ids and tokens from the response for later placeholders.
func (t *testContext) capture(decoded any) {
	body, ok := decoded.(map[string]any)
	if !ok {
		return
	}

	if token, ok := body["access_token"].(string); ok && token != "" {
		t.accessToken = token
	}
	if token, ok := body["refresh_token"].(string); ok && token != "" {
		t.refreshToken = token
	}
	if user, ok := body["user"].(map[string]any); ok {
		if id, err := uuid.Parse(stringField(user, "id")); err == nil {
			t.currentUserID = id
		}
	}

	id, err := uuid.Parse(stringField(body, "id"))
	if err != nil {
		return
	}
	// entries carry a rating; categories carry a name
	if _, isEntry := body["rating"]; isEntry {
		t.lastEntryID = id
	} else if _, isCategory := body["name"]; isCategory {
		t.currentCategoryID = id
	}
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
