package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/doodlesbykumbi/iam-admin/pkg/client"
	"github.com/doodlesbykumbi/iam-admin/pkg/identity"
	"github.com/doodlesbykumbi/iam-admin/pkg/model"
	"github.com/doodlesbykumbi/iam-admin/pkg/policy"
)

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc           *TestContext
	response     *http.Response
	responseBody []byte
	authToken    string
	orgIDs       map[string]string
	saved        map[string]string
	applied      []policy.Result
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{
		tc:     tc,
		orgIDs: make(map[string]string),
		saved:  make(map[string]string),
	}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		return ctx, s.tc.Reset()
	})

	// Background steps
	sc.Step(`^an IAM admin server is running$`, s.anIAMAdminServerIsRunning)
	sc.Step(`^an org "([^"]*)" exists$`, s.anOrgExists)

	// Authentication steps
	sc.Step(`^I am an IAM admin$`, s.iAmAnIAMAdmin)
	sc.Step(`^I am the owner of org "([^"]*)"$`, s.iAmTheOwnerOfOrg)
	sc.Step(`^I am not authenticated$`, s.iAmNotAuthenticated)
	sc.Step(`^I use an expired token$`, s.iUseAnExpiredToken)
	sc.Step(`^I use a token signed with another key$`, s.iUseATokenSignedWithAnotherKey)

	// Request steps
	sc.Step(`^I send a (GET|POST|PUT|DELETE) request to "([^"]*)"$`, s.iSendARequestTo)
	sc.Step(`^I send a (POST|PUT) request to "([^"]*)" with body:$`, s.iSendARequestWithBody)

	// Response steps
	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^the response JSON "([^"]*)" should be "([^"]*)"$`, s.theResponseJSONShouldBe)
	sc.Step(`^the response JSON "([^"]*)" should have (\d+) items?$`, s.theResponseJSONShouldHaveItems)
	sc.Step(`^the response error should be "([^"]*)"$`, s.theResponseErrorShouldBe)
	sc.Step(`^the response body should not contain "([^"]*)"$`, s.theResponseBodyShouldNotContain)
	sc.Step(`^I save the response JSON "([^"]*)" as "([^"]*)"$`, s.iSaveTheResponseJSONAs)

	// Storage steps
	sc.Step(`^the SMTP password stored in the database should be sealed$`, s.theSMTPPasswordShouldBeSealed)
	sc.Step(`^org "([^"]*)" should have no ([a-z]+) policy row$`, s.orgShouldHaveNoPolicyRow)

	// Policy document steps
	sc.Step(`^I apply the policy document:$`, s.iApplyThePolicyDocument)
	sc.Step(`^(\d+) polic(?:y was|ies were) changed$`, s.policiesWereChanged)
}

func (s *StepsContext) anIAMAdminServerIsRunning() error {
	// Server is already running via TestContext
	return nil
}

func (s *StepsContext) anOrgExists(name string) error {
	org := &model.Org{Name: name, PrimaryDomain: name + ".com"}
	if err := s.tc.DB.Create(org).Error; err != nil {
		return fmt.Errorf("failed to create org %s: %w", name, err)
	}
	s.orgIDs[name] = org.ID
	return nil
}

// Authentication steps

func (s *StepsContext) issue(id *identity.Identity, ttl time.Duration) error {
	token, err := s.tc.Tokens.Issue(id, ttl)
	if err != nil {
		return err
	}
	s.authToken = token
	return nil
}

func (s *StepsContext) iAmAnIAMAdmin() error {
	return s.issue(&identity.Identity{Subject: "ops", Roles: []string{identity.RoleIAMAdmin}}, time.Hour)
}

func (s *StepsContext) iAmTheOwnerOfOrg(name string) error {
	return s.issue(&identity.Identity{Subject: "owner@" + name, OrgID: name, Roles: []string{identity.RoleOrgOwner}}, time.Hour)
}

func (s *StepsContext) iAmNotAuthenticated() error {
	s.authToken = ""
	return nil
}

// Request steps

// expand replaces {org:name} with the id of a created org and {saved:name}
// with a value saved from an earlier response.
func (s *StepsContext) expand(path string) string {
	for name, id := range s.orgIDs {
		path = strings.ReplaceAll(path, "{org:"+name+"}", id)
	}
	for name, v := range s.saved {
		path = strings.ReplaceAll(path, "{saved:"+name+"}", v)
	}
	return path
}

func (s *StepsContext) do(method, path string, body io.Reader) error {
	req, err := http.NewRequest(method, s.tc.ServerURL+s.expand(path), body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.authToken)
	}

	s.response, err = s.tc.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	s.responseBody, err = io.ReadAll(s.response.Body)
	_ = s.response.Body.Close()
	return err
}

func (s *StepsContext) iSendARequestTo(method, path string) error {
	return s.do(method, path, nil)
}

func (s *StepsContext) iSendARequestWithBody(method, path string, body *godog.DocString) error {
	return s.do(method, path, bytes.NewBufferString(s.expand(body.Content)))
}

// Response steps

func (s *StepsContext) theResponseStatusShouldBe(status int) error {
	if s.response == nil {
		return fmt.Errorf("no request was sent")
	}
	if s.response.StatusCode != status {
		return fmt.Errorf("expected status %d, got %d: %s", status, s.response.StatusCode, string(s.responseBody))
	}
	return nil
}

// lookup walks a dotted path through the decoded response. Numeric
// segments index arrays.
func (s *StepsContext) lookup(path string) (interface{}, error) {
	var v interface{}
	if err := json.Unmarshal(s.responseBody, &v); err != nil {
		return nil, fmt.Errorf("response is not JSON: %w", err)
	}
	for _, segment := range strings.Split(path, ".") {
		switch node := v.(type) {
		case map[string]interface{}:
			next, ok := node[segment]
			if !ok {
				return nil, fmt.Errorf("%s: no field %q in %s", path, segment, string(s.responseBody))
			}
			v = next
		case []interface{}:
			i, err := strconv.Atoi(segment)
			if err != nil || i < 0 || i >= len(node) {
				return nil, fmt.Errorf("%s: bad index %q", path, segment)
			}
			v = node[i]
		default:
			return nil, fmt.Errorf("%s: cannot descend into %v", path, v)
		}
	}
	return v, nil
}

func (s *StepsContext) theResponseJSONShouldBe(path, expected string) error {
	v, err := s.lookup(path)
	if err != nil {
		return err
	}
	actual := fmt.Sprint(v)
	if v == nil {
		actual = "null"
	}
	if actual != s.expand(expected) {
		return fmt.Errorf("expected %s to be %q, got %q", path, expected, actual)
	}
	return nil
}

func (s *StepsContext) theResponseJSONShouldHaveItems(path string, count int) error {
	v, err := s.lookup(path)
	if err != nil {
		return err
	}
	items, ok := v.([]interface{})
	if !ok {
		return fmt.Errorf("%s is not an array", path)
	}
	if len(items) != count {
		return fmt.Errorf("expected %d items in %s, got %d", count, path, len(items))
	}
	return nil
}

func (s *StepsContext) theResponseErrorShouldBe(message string) error {
	return s.theResponseJSONShouldBe("error.message", message)
}

func (s *StepsContext) theResponseBodyShouldNotContain(text string) error {
	if strings.Contains(string(s.responseBody), text) {
		return fmt.Errorf("response body contains %q: %s", text, string(s.responseBody))
	}
	return nil
}

func (s *StepsContext) iSaveTheResponseJSONAs(path, name string) error {
	v, err := s.lookup(path)
	if err != nil {
		return err
	}
	s.saved[name] = fmt.Sprint(v)
	return nil
}

// Storage steps

func (s *StepsContext) theSMTPPasswordShouldBeSealed() error {
	var id string
	var sealed []byte
	if err := s.tc.RawDB.QueryRow(`SELECT id, password FROM smtp_configs`).Scan(&id, &sealed); err != nil {
		return err
	}
	if len(sealed) == 0 {
		return fmt.Errorf("no password stored")
	}
	if _, err := s.tc.Cipher.Open([]byte(id), sealed); err != nil {
		return fmt.Errorf("stored password does not open with the data key: %w", err)
	}
	return nil
}

func (s *StepsContext) orgShouldHaveNoPolicyRow(name, kind string) error {
	k, err := policy.KindString(kind)
	if err != nil {
		return err
	}
	tables := map[policy.Kind]string{
		policy.KindComplexity: "password_complexity_policies",
		policy.KindAge:        "password_age_policies",
		policy.KindLockout:    "password_lockout_policies",
	}
	var count int
	if err := s.tc.RawDB.QueryRow(`SELECT count(*) FROM `+tables[k]+` WHERE org_id = $1`, s.orgIDs[name]).Scan(&count); err != nil {
		return err
	}
	if count != 0 {
		return fmt.Errorf("expected no %s policy row for %s, found %d", kind, name, count)
	}
	return nil
}

// Policy document steps

func (s *StepsContext) iApplyThePolicyDocument(body *godog.DocString) error {
	doc, err := policy.ParseDocument(strings.NewReader(body.Content))
	if err != nil {
		return err
	}
	c := client.New(s.tc.ServerURL, s.authToken, s.tc.HTTPClient)
	s.applied, err = doc.Apply(context.Background(), c)
	return err
}

func (s *StepsContext) policiesWereChanged(count int) error {
	changed := 0
	for _, r := range s.applied {
		if r.Changed {
			changed++
		}
	}
	if changed != count {
		return fmt.Errorf("expected %d changed policies, got %d", count, changed)
	}
	return nil
}
