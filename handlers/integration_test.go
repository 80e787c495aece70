// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/danielhkuo/branchline/models"
	"github.com/danielhkuo/branchline/testutil"
)

// TestFullSurveyWorkflow tests the complete end-to-end workflow:
// 1. Author creates a poll
// 2. Author adds a branching question graph
// 3. Publish is refused while a question has too few choices
// 4. Publish succeeds once the poll is well-formed
// 5. Voter registers and is shown the entry question
// 6. An empty submission bounces back as invalid
// 7. A real answer advances to the conditional follow-up
// 8. Finishing the traversal lands on the result page
func TestFullSurveyWorkflow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	userHandler := NewUserHandler(db, cfg)
	pollHandler := NewPollHandler(db, cfg)
	votingHandler := NewVotingHandler(db, cfg)
	resultsHandler := NewResultsHandler(db, cfg)

	// Step 1: Create a poll
	req := testutil.MakeRequest("POST", "/polls", models.CreatePollRequest{
		Name:        "Commute survey",
		Description: "How our team gets to work",
	}, nil)
	w := httptest.NewRecorder()
	pollHandler.CreatePoll(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Step 1 - Create poll failed: %d - %s", w.Code, w.Body.String())
	}
	var createResp models.CreatePollResponse
	testutil.AssertJSON(t, w, &createResp)
	pollID := createResp.PollID
	author := map[string]string{"X-Author-Key": createResp.AuthorKey}
	t.Logf("Step 1 - Created poll: %d", pollID)

	pollPath := func(suffix string) string {
		return fmt.Sprintf("/polls/%d/%s", pollID, suffix)
	}
	withPollID := func(req *http.Request) *http.Request {
		req.SetPathValue("id", fmt.Sprintf("%d", pollID))
		return req
	}

	addQuestion := func(text string, isDefault bool) int64 {
		req := withPollID(testutil.MakeRequest("POST", pollPath("questions"), models.AddQuestionRequest{
			Text:    text,
			Default: isDefault,
		}, author))
		w := httptest.NewRecorder()
		pollHandler.AddQuestion(w, req)
		if w.Code != http.StatusCreated {
			t.Fatalf("Step 2 - Add question failed: %d - %s", w.Code, w.Body.String())
		}
		var resp models.AddQuestionResponse
		testutil.AssertJSON(t, w, &resp)
		return resp.QuestionID
	}

	addChoice := func(questionID int64, text string) int64 {
		path := fmt.Sprintf("/polls/%d/questions/%d/choices", pollID, questionID)
		req := withPollID(testutil.MakeRequest("POST", path, models.AddChoiceRequest{Text: text}, author))
		req.SetPathValue("qid", fmt.Sprintf("%d", questionID))
		w := httptest.NewRecorder()
		pollHandler.AddChoice(w, req)
		if w.Code != http.StatusCreated {
			t.Fatalf("Step 2 - Add choice failed: %d - %s", w.Code, w.Body.String())
		}
		var resp models.AddChoiceResponse
		testutil.AssertJSON(t, w, &resp)
		return resp.ChoiceID
	}

	// Step 2: Q1 is the entry; Q2 only shows for drivers
	q1 := addQuestion("How do you commute?", true)
	q2 := addQuestion("How long is the drive?", false)
	drive := addChoice(q1, "Drive")
	addChoice(q1, "Bike")

	req = withPollID(testutil.MakeRequest("POST", pollPath("conditions"), models.AddConditionRequest{
		QuestionID:    q2,
		ChoiceID:      drive,
		ConditionType: models.ConditionShow,
	}, author))
	w = httptest.NewRecorder()
	pollHandler.AddCondition(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("Step 2 - Add condition failed: %d - %s", w.Code, w.Body.String())
	}
	t.Logf("Step 2 - Built questions %d and %d with a show condition", q1, q2)

	// Step 3: Q2 has no choices yet, so publish must be refused
	req = withPollID(testutil.MakeRequest("POST", pollPath("publish"), nil, author))
	w = httptest.NewRecorder()
	pollHandler.PublishPoll(w, req)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Step 3 - Expected publish refusal, got %d - %s", w.Code, w.Body.String())
	}
	var readiness models.ReadinessResponse
	testutil.AssertJSON(t, w, &readiness)
	if readiness.Ready || len(readiness.Violations) == 0 {
		t.Fatalf("Step 3 - Expected violations, got %+v", readiness)
	}
	t.Logf("Step 3 - Publish refused: %v", readiness.Violations)

	// Step 4: Fix the poll and publish for real
	addChoice(q2, "Under 30 minutes")
	addChoice(q2, "Over 30 minutes")

	req = withPollID(testutil.MakeRequest("POST", pollPath("publish"), nil, author))
	w = httptest.NewRecorder()
	pollHandler.PublishPoll(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Step 4 - Publish failed: %d - %s", w.Code, w.Body.String())
	}
	t.Logf("Step 4 - Poll published")

	// Step 5: A voter registers and opens the poll
	req = testutil.MakeRequest("POST", "/users/register", models.RegisterUserRequest{Username: "commuter"}, nil)
	w = httptest.NewRecorder()
	userHandler.Register(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("Step 5 - Register failed: %d - %s", w.Code, w.Body.String())
	}
	var regResp models.RegisterUserResponse
	testutil.AssertJSON(t, w, &regResp)
	session := map[string]string{"X-Session-Token": regResp.Token}

	req = withPollID(testutil.MakeRequest("GET", pollPath("vote"), nil, session))
	w = httptest.NewRecorder()
	votingHandler.GetVote(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Step 5 - Get entry question failed: %d - %s", w.Code, w.Body.String())
	}
	var view models.QuestionView
	testutil.AssertJSON(t, w, &view)
	if view.Question.ID != q1 {
		t.Fatalf("Step 5 - Expected entry question %d, got %d", q1, view.Question.ID)
	}
	t.Logf("Step 5 - Voter sees entry question %d", q1)

	// Step 6: Submitting nothing bounces back with invalid=1
	form := url.Values{}
	form.Set("question", fmt.Sprintf("%d", q1))
	req = withPollID(testutil.MakeFormRequest("POST", pollPath("vote"), form, session))
	w = httptest.NewRecorder()
	votingHandler.PostVote(w, req)
	testutil.AssertRedirect(t, w, pollPath(fmt.Sprintf("vote?question=%d&invalid=1", q1)))

	req = withPollID(testutil.MakeRequest("GET",
		pollPath(fmt.Sprintf("vote?question=%d&invalid=1", q1)), nil, session))
	w = httptest.NewRecorder()
	votingHandler.GetVote(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Step 6 - Re-ask failed: %d - %s", w.Code, w.Body.String())
	}
	testutil.AssertJSON(t, w, &view)
	if view.Question.ID != q1 || view.Message == "" {
		t.Fatalf("Step 6 - Expected question %d re-asked with a message, got %+v", q1, view)
	}
	t.Logf("Step 6 - Empty submission re-asked with message %q", view.Message)

	// Step 7: Answer "Drive"; the follow-up must appear
	form = url.Values{}
	form.Set("question", fmt.Sprintf("%d", q1))
	form.Set("radio", fmt.Sprintf("%d", drive))
	req = withPollID(testutil.MakeFormRequest("POST", pollPath("vote"), form, session))
	w = httptest.NewRecorder()
	votingHandler.PostVote(w, req)
	testutil.AssertRedirect(t, w, pollPath(fmt.Sprintf("vote?question=%d", q1)))

	req = withPollID(testutil.MakeRequest("GET",
		pollPath(fmt.Sprintf("vote?question=%d", q1)), nil, session))
	w = httptest.NewRecorder()
	votingHandler.GetVote(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Step 7 - Next question failed: %d - %s", w.Code, w.Body.String())
	}
	testutil.AssertJSON(t, w, &view)
	if view.Question.ID != q2 {
		t.Fatalf("Step 7 - Expected follow-up %d, got %d", q2, view.Question.ID)
	}
	t.Logf("Step 7 - Conditional follow-up %d shown", q2)

	// Step 8: Answer the follow-up; the traversal is done
	short := view.Choices[0].ID
	form = url.Values{}
	form.Set("question", fmt.Sprintf("%d", q2))
	form.Set("radio", fmt.Sprintf("%d", short))
	req = withPollID(testutil.MakeFormRequest("POST", pollPath("vote"), form, session))
	w = httptest.NewRecorder()
	votingHandler.PostVote(w, req)
	testutil.AssertRedirect(t, w, pollPath(fmt.Sprintf("vote?question=%d", q2)))

	req = withPollID(testutil.MakeRequest("GET",
		pollPath(fmt.Sprintf("vote?question=%d", q2)), nil, session))
	w = httptest.NewRecorder()
	votingHandler.GetVote(w, req)
	testutil.AssertRedirect(t, w, pollPath("result"))

	req = withPollID(testutil.MakeRequest("GET", pollPath("result"), nil, session))
	w = httptest.NewRecorder()
	resultsHandler.GetResult(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Step 8 - Get result failed: %d - %s", w.Code, w.Body.String())
	}
	var result models.PollResultResponse
	testutil.AssertJSON(t, w, &result)
	if len(result.Questions) != 2 {
		t.Fatalf("Step 8 - Expected 2 answered questions, got %+v", result.Questions)
	}
	t.Logf("Step 8 - Result lists %d answered questions for %q", len(result.Questions), result.PollName)
}

// TestBranchSkipsFollowUp walks the other branch: picking the choice
// that does not trigger the show condition ends the traversal early.
func TestBranchSkipsFollowUp(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	votingHandler := NewVotingHandler(db, cfg)
	resultsHandler := NewResultsHandler(db, cfg)

	p := setupBranchingPoll(t, db)
	_, token := testutil.CreateTestUser(t, db, "cyclist")
	session := map[string]string{"X-Session-Token": token}

	form := url.Values{}
	form.Set("question", fmt.Sprintf("%d", p.q1))
	form.Set("radio", fmt.Sprintf("%d", p.choiceB))
	w := postVote(votingHandler, p.pollID, form, session)
	testutil.AssertRedirect(t, w, fmt.Sprintf("/polls/%d/vote?question=%d", p.pollID, p.q1))

	// The resolver must skip Q2 and send the voter to the result
	w = getVote(votingHandler, p.pollID, fmt.Sprintf("question=%d", p.q1), session)
	testutil.AssertRedirect(t, w, fmt.Sprintf("/polls/%d/result", p.pollID))

	req := testutil.MakeRequest("GET", fmt.Sprintf("/polls/%d/result", p.pollID), nil, session)
	req.SetPathValue("id", fmt.Sprintf("%d", p.pollID))
	rec := httptest.NewRecorder()
	resultsHandler.GetResult(rec, req)
	testutil.AssertStatus(t, rec, http.StatusOK)

	var result models.PollResultResponse
	testutil.AssertJSON(t, rec, &result)
	if len(result.Questions) != 1 {
		t.Fatalf("Expected 1 answered question, got %+v", result.Questions)
	}
	if result.Questions[0].QuestionID != p.q1 {
		t.Errorf("Expected only question %d answered, got %+v", p.q1, result.Questions[0])
	}
}
