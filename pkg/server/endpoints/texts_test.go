package endpoints

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/iam-admin/pkg/customtext"
	"github.com/doodlesbykumbi/iam-admin/pkg/model"
	"github.com/doodlesbykumbi/iam-admin/pkg/server/store"
)

func TestGetText(t *testing.T) {
	t.Run("falls back to the default", func(t *testing.T) {
		ts := newTestServer(t)
		ts.orgs.On("GetOrg", "acme").Return(acmeOrg(), nil)
		ts.texts.On("GetCustomText", acmeID, customtext.KeyInitCode, "de").Return(nil, store.ErrNotFound)

		w := ts.do(t, "GET", "/orgs/acme/texts/initcode/de", ts.ownerToken(t, "acme"), nil)

		require.Equal(t, http.StatusOK, w.Code)
		var resp TextResponse
		decodeBody(t, w, &resp)
		assert.True(t, resp.Default)
		assert.Equal(t, customtext.KeyInitCode, resp.Key)
		assert.Equal(t, "Konto aktivieren", resp.Title)
		// Missing German fields come from English.
		assert.Equal(t, "If you did not request this, ignore this email.", resp.FooterText)
	})

	t.Run("override merged with the default", func(t *testing.T) {
		ts := newTestServer(t)
		ts.orgs.On("GetOrg", "acme").Return(acmeOrg(), nil)
		ts.texts.On("GetCustomText", acmeID, customtext.KeyPasswordReset, "en").Return(&model.CustomText{
			OrgID:    acmeID,
			Key:      customtext.KeyPasswordReset,
			Language: "en",
			Message:  customtext.Message{Title: "Forgot it again?"},
		}, nil)

		w := ts.do(t, "GET", "/orgs/acme/texts/PasswordReset/en", ts.ownerToken(t, "acme"), nil)

		require.Equal(t, http.StatusOK, w.Code)
		var resp TextResponse
		decodeBody(t, w, &resp)
		assert.False(t, resp.Default)
		assert.Equal(t, "Forgot it again?", resp.Title)
		assert.Equal(t, "Reset password", resp.ButtonText)
	})

	t.Run("unknown key", func(t *testing.T) {
		ts := newTestServer(t)

		w := ts.do(t, "GET", "/orgs/acme/texts/Welcome/en", ts.ownerToken(t, "acme"), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid language", func(t *testing.T) {
		ts := newTestServer(t)

		w := ts.do(t, "GET", "/orgs/acme/texts/InitCode/12", ts.ownerToken(t, "acme"), nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSetText(t *testing.T) {
	t.Run("saved", func(t *testing.T) {
		ts := newTestServer(t)
		ts.orgs.On("GetOrg", "acme").Return(acmeOrg(), nil)
		ts.texts.On("SetCustomText", mock.MatchedBy(func(text *model.CustomText) bool {
			return text.OrgID == acmeID && text.Key == customtext.KeyVerifyEmail && text.Language == "en" && text.Subject == "Please verify"
		})).Return(nil)
		ts.texts.On("GetCustomText", acmeID, customtext.KeyVerifyEmail, "en").Return(&model.CustomText{
			Message: customtext.Message{Subject: "Please verify"},
		}, nil)

		w := ts.do(t, "PUT", "/orgs/acme/texts/VerifyEmail/en", ts.ownerToken(t, "acme"), customtext.Message{Subject: "Please verify"})

		require.Equal(t, http.StatusOK, w.Code)
		var resp TextResponse
		decodeBody(t, w, &resp)
		assert.Equal(t, "Please verify", resp.Subject)
		ts.texts.AssertExpectations(t)
	})

	t.Run("broken template", func(t *testing.T) {
		ts := newTestServer(t)
		ts.orgs.On("GetOrg", "acme").Return(acmeOrg(), nil)

		w := ts.do(t, "PUT", "/orgs/acme/texts/VerifyEmail/en", ts.ownerToken(t, "acme"), customtext.Message{Subject: "Hi {{.Name"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		ts.texts.AssertNotCalled(t, "SetCustomText", mock.Anything)
	})
}

func TestResetText(t *testing.T) {
	ts := newTestServer(t)
	ts.orgs.On("GetOrg", "acme").Return(acmeOrg(), nil)
	ts.texts.On("ResetCustomText", acmeID, customtext.KeyInitCode, "en").Return(nil)
	ts.texts.On("ResetCustomText", acmeID, customtext.KeyInitCode, "de").Return(store.ErrNotFound)

	w := ts.do(t, "DELETE", "/orgs/acme/texts/InitCode/en", ts.ownerToken(t, "acme"), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(t, "DELETE", "/orgs/acme/texts/InitCode/de", ts.ownerToken(t, "acme"), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPreviewText(t *testing.T) {
	ts := newTestServer(t)
	ts.orgs.On("GetOrg", "acme").Return(acmeOrg(), nil)
	ts.texts.On("GetCustomText", acmeID, customtext.KeyInitCode, "en").Return(nil, store.ErrNotFound)

	w := ts.do(t, "GET", "/orgs/acme/texts/InitCode/en/_preview?Code=XYZ789", ts.ownerToken(t, "acme"), nil)

	require.Equal(t, http.StatusOK, w.Code)
	var preview customtext.Preview
	decodeBody(t, w, &preview)
	assert.Equal(t, "Activate your acme account", preview.Subject)
	assert.Contains(t, preview.HTML, "<strong>XYZ789</strong>")
	assert.Contains(t, preview.HTML, "<strong>acme</strong>")
}
